// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package analysis

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/js-arias/timetree"
)

// startingTree returns the starting tree
// of the analysis as a newick tree
// with branch lengths in years.
// It returns an empty string
// if there is no starting tree.
func (a *Analysis) startingTree() (string, error) {
	if a.trees == nil {
		return "", nil
	}

	name := a.settings.Languages.StartingTree
	if name == "" {
		names := a.trees.Names()
		if len(names) == 0 {
			return "", nil
		}
		if len(names) > 1 {
			return "", fmt.Errorf("starting tree: %d trees defined in project, but starting tree not set", len(names))
		}
		name = names[0]
	}
	t := a.trees.Tree(name)
	if t == nil {
		return "", fmt.Errorf("starting tree: tree %q not found", name)
	}

	n, err := a.prune(t)
	if err != nil {
		return "", fmt.Errorf("starting tree %q: %v", name, err)
	}
	n = collapse(n)
	n.resolve()

	var b strings.Builder
	n.newick(&b, n.age)
	b.WriteString(";")
	return b.String(), nil
}

// node is a node of a starting tree.
type node struct {
	taxon    string
	age      int64
	children []*node
}

// prune copies a tree
// keeping only the languages of the analysis.
func (a *Analysis) prune(t *timetree.Tree) (*node, error) {
	in := make(map[string]bool, len(a.langs))
	for _, tx := range a.langs {
		in[tx] = true
	}

	seen := make(map[string]bool)
	for _, tx := range t.Terms() {
		if seen[tx] {
			return nil, fmt.Errorf("repeated terminal %q", tx)
		}
		seen[tx] = true
	}
	var missing []string
	for _, tx := range a.langs {
		if !seen[tx] {
			missing = append(missing, tx)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("languages not in tree: %s", strings.Join(missing, ", "))
	}
	if extra := len(seen) - len(a.langs); extra > 0 {
		a.logger.Info(fmt.Sprintf("Starting tree includes %d languages not included in the analysis; pruning them.", extra))
	}

	var cp func(id int) *node
	cp = func(id int) *node {
		n := &node{age: t.Age(id)}
		if t.IsTerm(id) {
			n.taxon = t.Taxon(id)
			if !in[n.taxon] {
				return nil
			}
			return n
		}
		for _, c := range t.Children(id) {
			if d := cp(c); d != nil {
				n.children = append(n.children, d)
			}
		}
		if len(n.children) == 0 {
			return nil
		}
		return n
	}
	return cp(t.Root()), nil
}

// collapse removes the nodes
// with a single descendant.
func collapse(n *node) *node {
	for len(n.children) == 1 {
		n = n.children[0]
	}
	for i, c := range n.children {
		n.children[i] = collapse(c)
	}
	return n
}

// resolve resolves the polytomies
// adding zero length branches.
func (n *node) resolve() {
	for _, c := range n.children {
		c.resolve()
	}
	for len(n.children) > 2 {
		last := len(n.children) - 2
		nn := &node{
			age:      n.age,
			children: slices.Clone(n.children[last:]),
		}
		n.children = append(n.children[:last], nn)
	}
}

func (n *node) newick(b *strings.Builder, parentAge int64) {
	if len(n.children) == 0 {
		b.WriteString(n.taxon)
	} else {
		b.WriteString("(")
		for i, c := range n.children {
			if i > 0 {
				b.WriteString(",")
			}
			c.newick(b, n.age)
		}
		b.WriteString(")")
	}
	b.WriteString(":")
	b.WriteString(strconv.FormatInt(parentAge-n.age, 10))
}
