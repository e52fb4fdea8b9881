// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package classify implements a hierarchical classification
// of languages
// (for example, the Glottolog classification).
//
// Each classified taxon has a lineage:
// the list of its ancestors
// from the most general to the most specific.
// Taxon identifiers are case insensitive.
package classify

import (
	"slices"
	"strings"
)

// An Ancestor is a node of the classification.
type Ancestor struct {
	// Name of the node
	Name string

	// Code is the identifier of the node
	// (for example a Glottolog glottocode).
	Code string
}

// Classification is a collection of lineages
// for a set of taxa.
type Classification struct {
	taxa map[string][]Ancestor
}

// New creates a new empty classification.
func New() *Classification {
	return &Classification{
		taxa: make(map[string][]Ancestor),
	}
}

// Add adds or replaces the lineage of a taxon.
func (c *Classification) Add(taxon string, lineage []Ancestor) {
	taxon = key(taxon)
	if taxon == "" {
		return
	}
	c.taxa[taxon] = slices.Clone(lineage)
}

// Chain returns the ancestors of a taxon.
// If the taxon is not classified,
// it returns false.
func (c *Classification) Chain(taxon string) ([]Ancestor, bool) {
	ln, ok := c.taxa[key(taxon)]
	if !ok {
		return nil, false
	}
	return slices.Clone(ln), true
}

// Has returns true if the taxon is classified.
func (c *Classification) Has(taxon string) bool {
	_, ok := c.taxa[key(taxon)]
	return ok
}

// Lineage returns the names of the ancestors of a taxon.
// If the taxon is not classified,
// it returns false.
func (c *Classification) Lineage(taxon string) ([]string, bool) {
	ln, ok := c.taxa[key(taxon)]
	if !ok {
		return nil, false
	}
	names := make([]string, len(ln))
	for i, a := range ln {
		names[i] = a.Name
	}
	return names, true
}

// InClade returns true if the taxon
// belongs to a clade,
// identified either by its name
// or its code.
func (c *Classification) InClade(taxon, clade string) bool {
	clade = strings.TrimSpace(clade)
	if clade == "" {
		return false
	}
	for _, a := range c.taxa[key(taxon)] {
		if strings.EqualFold(a.Name, clade) || strings.EqualFold(a.Code, clade) {
			return true
		}
	}
	return false
}

// InFamily returns true if the taxon
// belongs to any of the indicated clades.
func (c *Classification) InFamily(taxon string, families []string) bool {
	for _, f := range families {
		if c.InClade(taxon, f) {
			return true
		}
	}
	return false
}

// Len returns the number of classified taxa.
func (c *Classification) Len() int {
	return len(c.taxa)
}

// Taxa returns the classified taxa.
func (c *Classification) Taxa() []string {
	taxa := make([]string, 0, len(c.taxa))
	for tx := range c.taxa {
		taxa = append(taxa, tx)
	}
	slices.Sort(taxa)
	return taxa
}

// Key returns the canonical form
// of a taxon identifier.
func key(taxon string) string {
	return strings.ToLower(strings.TrimSpace(taxon))
}
