// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package monophyly builds monophyly constraints
// from a hierarchical classification.
//
// A set of taxa is partitioned recursively
// following the ancestors shared by the taxa
// at successive depths of the classification.
// The resulting nested structure is serialized
// as a parenthetical (newick-like) string
// without branch lengths or node labels,
// used as a topological constraint.
package monophyly

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// A Resolver returns the lineage of a taxon,
// i.e., the names of its ancestors
// ordered from the most general to the most specific.
// If the taxon is not classified,
// ok should be false.
type Resolver interface {
	Lineage(taxon string) (lineage []string, ok bool)
}

// ErrEmptyTaxa is returned when a constraint is requested
// for an empty set of taxa.
var ErrEmptyTaxa = errors.New("monophyly: empty taxon set")

// UnresolvedTaxonError is returned when a taxon
// does not have any classification.
type UnresolvedTaxonError struct {
	Taxon string
}

func (e *UnresolvedTaxonError) Error() string {
	return fmt.Sprintf("monophyly: taxon %q without classification", e.Taxon)
}

// DuplicateTaxonError is returned when a taxon
// is given more than once.
type DuplicateTaxonError struct {
	Taxon string
}

func (e *DuplicateTaxonError) Error() string {
	return fmt.Sprintf("monophyly: taxon %q repeated", e.Taxon)
}

// A Structure is a monophyly structure.
// It is either a leaf,
// a flat group of taxa without further internal structure,
// or a group of nested structures.
type Structure struct {
	leaf   bool
	taxa   []string
	groups []*Structure
}

// Leaf returns a new structure
// with a flat group of taxa.
func Leaf(taxa ...string) *Structure {
	return &Structure{
		leaf: true,
		taxa: taxa,
	}
}

// Group returns a new structure
// made of nested structures.
func Group(groups ...*Structure) *Structure {
	return &Structure{
		groups: groups,
	}
}

// IsLeaf returns true if the structure
// is a flat group of taxa.
func (s *Structure) IsLeaf() bool {
	return s.leaf
}

// Children returns the nested structures of a group.
// It returns nil for a leaf.
func (s *Structure) Children() []*Structure {
	return s.groups
}

// Taxa returns the taxa in the structure,
// in the order in which they are serialized.
func (s *Structure) Taxa() []string {
	if s.leaf {
		return slices.Clone(s.taxa)
	}
	var taxa []string
	for _, g := range s.groups {
		taxa = append(taxa, g.Taxa()...)
	}
	return taxa
}

// String returns the structure
// as a parenthetical string.
func (s *Structure) String() string {
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s *Structure) write(b *strings.Builder) {
	b.WriteByte('(')
	if s.leaf {
		b.WriteString(strings.Join(s.taxa, ","))
		b.WriteByte(')')
		return
	}
	for i, g := range s.groups {
		if i > 0 {
			b.WriteByte(',')
		}
		g.write(b)
	}
	b.WriteByte(')')
}

// sortKey returns the nesting level
// (as a negative number)
// of the first terminal of the structure
// and the name of that terminal.
func (s *Structure) sortKey() (int, string) {
	d := -1
	for !s.leaf {
		if len(s.groups) == 0 {
			return d, ""
		}
		s = s.groups[0]
		d--
	}
	if len(s.taxa) == 0 {
		return d, ""
	}
	return d, s.taxa[0]
}

// Build partitions a set of taxa
// using the classification of the resolver,
// starting at the depth b.Start
// and stopping after depth b.End.
func Build(r Resolver, taxa []string, b Bounds) (*Structure, error) {
	if len(taxa) == 0 {
		return nil, ErrEmptyTaxa
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	lineage := make(map[string][]string, len(taxa))
	for _, tx := range taxa {
		if _, dup := lineage[tx]; dup {
			return nil, &DuplicateTaxonError{Taxon: tx}
		}
		ln, ok := r.Lineage(tx)
		if !ok {
			return nil, &UnresolvedTaxonError{Taxon: tx}
		}
		if ln == nil {
			ln = []string{}
		}
		lineage[tx] = ln
	}

	bd := builder{lineage: lineage}
	return bd.build(slices.Clone(taxa), b.Start, b.End), nil
}

type builder struct {
	lineage map[string][]string
}

// label returns the ancestor of a taxon at a given depth,
// or an empty string if the classification
// is not as deep.
func (bd builder) label(taxon string, depth int) string {
	ln := bd.lineage[taxon]
	if depth < len(ln) {
		return ln[depth]
	}
	return ""
}

func (bd builder) build(taxa []string, depth, maxDepth int) *Structure {
	for {
		if depth > maxDepth {
			return Leaf(taxa...)
		}

		var levels []string
		parts := make(map[string][]string)
		for _, tx := range taxa {
			lb := bd.label(tx, depth)
			if _, ok := parts[lb]; !ok {
				levels = append(levels, lb)
			}
			parts[lb] = append(parts[lb], tx)
		}

		if len(levels) > 1 {
			groups := make([]*Structure, 0, len(levels))
			for _, lb := range levels {
				groups = append(groups, bd.build(parts[lb], depth+1, maxDepth))
			}
			sortGroups(groups)
			return Group(groups...)
		}

		if levels[0] == "" {
			// classification exhausted
			slices.Sort(taxa)
			return Leaf(taxa...)
		}
		depth++
	}
}

func sortGroups(groups []*Structure) {
	sort.SliceStable(groups, func(i, j int) bool {
		di, ti := groups[i].sortKey()
		dj, tj := groups[j].sortKey()
		if di != dj {
			return di < dj
		}
		return ti < tj
	})
}

// Newick builds the monophyly structure
// of a set of taxa,
// with the depth bounds derived from a policy,
// and returns it as a parenthetical string.
func Newick(r Resolver, taxa []string, p Policy) (string, error) {
	b, err := p.Bounds(r, taxa)
	if err != nil {
		return "", err
	}
	s, err := Build(r, taxa, b)
	if err != nil {
		return "", err
	}
	return s.String(), nil
}
