// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package terms implements a command to print
// the terminals of the starting trees of a BEASTgen project.
package terms

import (
	"fmt"

	"github.com/js-arias/beastgen/analysis"
	"github.com/js-arias/beastgen/project"
	"github.com/js-arias/command"
	"golang.org/x/exp/slices"
)

var Command = &command.Command{
	Usage: "terms [--tree <tree-name>] [--missing] <project-file>",
	Short: "print a list of tree terminals",
	Long: `
Command terms reads the starting trees from a BEASTgen project and prints the
name of the terminals in the standard output.

The argument of the command is the name of the project file.

By default all terminals will be printed. If the flag --tree is set, only the
terminals of the indicated tree will be printed.

If the flag --missing is set, the command prints the languages of the analysis
that are not terminals of the trees. A starting tree must include all the
languages of the analysis.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeName string
var missing bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().BoolVar(&missing, "missing", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	if p.Path(project.Trees) == "" {
		return nil
	}

	terms, err := makeTermList(p)
	if err != nil {
		return err
	}

	if missing {
		a, err := analysis.Load(p, nil)
		if err != nil {
			return err
		}
		for _, l := range a.Languages() {
			if _, ok := slices.BinarySearch(terms, l); ok {
				continue
			}
			fmt.Fprintf(c.Stdout(), "%s\n", l)
		}
		return nil
	}

	for _, term := range terms {
		fmt.Fprintf(c.Stdout(), "%s\n", term)
	}
	return nil
}

func makeTermList(p *project.Project) ([]string, error) {
	c, err := p.Trees()
	if err != nil {
		return nil, err
	}

	var ls []string
	if treeName != "" {
		ls = append(ls, treeName)
	} else {
		ls = c.Names()
	}

	terms := make(map[string]bool)
	for _, tn := range ls {
		t := c.Tree(tn)
		if t == nil {
			continue
		}
		for _, tax := range t.Terms() {
			terms[tax] = true
		}
	}

	termList := make([]string, 0, len(terms))
	for tax := range terms {
		termList = append(termList, tax)
	}
	slices.Sort(termList)

	return termList, nil
}
