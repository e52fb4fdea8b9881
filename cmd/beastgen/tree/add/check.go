// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package add

import (
	"fmt"
	"slices"

	"github.com/js-arias/beastgen/classify"
	"github.com/js-arias/beastgen/project"
	"github.com/js-arias/beastgen/taxlist"
	"github.com/js-arias/timetree"
)

// checker validates the terminals of a starting tree
// against the languages known by a project.
type checker struct {
	class *classify.Classification
	langs taxlist.List
}

// newChecker returns a checker
// with the classification
// and the language list of a project.
// Datasets not defined in the project
// are not used to validate the terminals.
func newChecker(p *project.Project) (*checker, error) {
	ck := &checker{}
	if p.Path(project.Glottolog) != "" || p.Path(project.Classification) != "" {
		c, err := p.Classification()
		if err != nil {
			return nil, err
		}
		ck.class = c
	}
	if p.Path(project.Langs) != "" {
		ls, err := p.Langs()
		if err != nil {
			return nil, err
		}
		ck.langs = ls
	}
	return ck, nil
}

// report is the result of checking a tree.
type report struct {
	// terminals without classification
	unclassified []string

	// languages of the project list
	// absent from the tree
	missing []string
}

// check returns the terminals of the tree
// that are not classified,
// and the languages of the project list
// that are not in the tree.
// A repeated terminal is an error.
func (ck *checker) check(t *timetree.Tree) (report, error) {
	var r report

	terms := t.Terms()
	seen := make(map[string]bool, len(terms))
	for _, tx := range terms {
		if seen[tx] {
			return r, fmt.Errorf("tree %q: repeated terminal %q", t.Name(), tx)
		}
		seen[tx] = true
		if ck.class != nil && !ck.class.Has(tx) {
			r.unclassified = append(r.unclassified, tx)
		}
	}
	for _, l := range ck.langs.IDs() {
		if !seen[l] {
			r.missing = append(r.missing, l)
		}
	}
	slices.Sort(r.unclassified)
	return r, nil
}
