// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package trait provides a collection of features
// (for example lexical cognate classes,
// or typological features)
// observed in a set of languages.
package trait

import (
	"slices"
	"strings"
)

// Missing is the value used for a missing observation.
const Missing = "?"

// Data is a collection of feature values
// observed in a set of taxa.
type Data struct {
	taxon    map[string]map[string]string
	features map[string]bool
}

// New creates a new empty data set.
func New() *Data {
	return &Data{
		taxon:    make(map[string]map[string]string),
		features: make(map[string]bool),
	}
}

// Add adds the value of a feature
// for a given taxon.
// Missing values are ignored,
// but the feature is registered.
func (d *Data) Add(taxon, feature, value string) {
	taxon = strings.TrimSpace(taxon)
	if taxon == "" {
		return
	}
	feature = strings.Join(strings.Fields(feature), " ")
	if feature == "" {
		return
	}
	d.features[feature] = true

	obs, ok := d.taxon[taxon]
	if !ok {
		obs = make(map[string]string)
		d.taxon[taxon] = obs
	}
	value = strings.TrimSpace(value)
	if value == "" || value == Missing {
		return
	}
	obs[feature] = value
}

// Features returns the features defined in a data set.
func (d *Data) Features() []string {
	fs := make([]string, 0, len(d.features))
	for f := range d.features {
		fs = append(fs, f)
	}
	slices.Sort(fs)
	return fs
}

// HasTaxon returns true if the taxon
// is defined in the data set.
func (d *Data) HasTaxon(taxon string) bool {
	_, ok := d.taxon[strings.TrimSpace(taxon)]
	return ok
}

// States returns the observed values of a feature
// in a set of taxa.
// If no taxa are given,
// all taxa in the data set will be used.
func (d *Data) States(feature string, taxa ...string) []string {
	if len(taxa) == 0 {
		taxa = d.Taxa()
	}
	st := make(map[string]bool)
	for _, tx := range taxa {
		v, ok := d.Value(tx, feature)
		if !ok {
			continue
		}
		st[v] = true
	}

	states := make([]string, 0, len(st))
	for s := range st {
		states = append(states, s)
	}
	slices.Sort(states)
	return states
}

// Taxa returns the taxa defined in a data set.
func (d *Data) Taxa() []string {
	taxa := make([]string, 0, len(d.taxon))
	for tx := range d.taxon {
		taxa = append(taxa, tx)
	}
	slices.Sort(taxa)
	return taxa
}

// Value returns the value of a feature
// for a taxon.
func (d *Data) Value(taxon, feature string) (string, bool) {
	obs, ok := d.taxon[strings.TrimSpace(taxon)]
	if !ok {
		return "", false
	}
	v, ok := obs[feature]
	return v, ok
}

// Coverage returns the proportion of taxa
// with an observed value for a feature.
func (d *Data) Coverage(feature string, taxa ...string) float64 {
	if len(taxa) == 0 {
		taxa = d.Taxa()
	}
	if len(taxa) == 0 {
		return 0
	}
	var n int
	for _, tx := range taxa {
		if _, ok := d.Value(tx, feature); ok {
			n++
		}
	}
	return float64(n) / float64(len(taxa))
}

// Filter returns the features
// that have at least the minimum coverage
// in the indicated taxa.
// If removeConstant is true,
// features with a single observed state
// will be excluded.
func (d *Data) Filter(taxa []string, minimum float64, removeConstant bool) []string {
	var fs []string
	for _, f := range d.Features() {
		if d.Coverage(f, taxa...) < minimum {
			continue
		}
		st := d.States(f, taxa...)
		if len(st) == 0 {
			continue
		}
		if removeConstant && len(st) < 2 {
			continue
		}
		fs = append(fs, f)
	}
	return fs
}

// Binarise returns a new data set
// in which each state of each feature
// is a presence-absence feature,
// named as "feature:state".
func (d *Data) Binarise() *Data {
	nd := New()
	for _, f := range d.Features() {
		states := d.States(f)
		for _, tx := range d.Taxa() {
			v, ok := d.Value(tx, f)
			for _, s := range states {
				bf := f + ":" + s
				switch {
				case !ok:
					nd.Add(tx, bf, Missing)
				case v == s:
					nd.Add(tx, bf, "1")
				default:
					nd.Add(tx, bf, "0")
				}
			}
		}
	}
	return nd
}
