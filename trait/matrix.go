// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package trait

import (
	"strconv"
	"strings"
)

// Matrix is a coded data matrix:
// the states of each feature
// are coded as integers
// (starting at 0)
// following the order of the sorted states.
type Matrix struct {
	taxa     []string
	features []string
	states   []map[string]int
	d        *Data
}

// NewMatrix creates a coded matrix
// for a set of features
// observed in a set of taxa.
// Only states observed in the indicated taxa
// are coded.
func NewMatrix(d *Data, taxa, features []string) *Matrix {
	states := make([]map[string]int, len(features))
	for i, f := range features {
		st := d.States(f, taxa...)
		states[i] = make(map[string]int, len(st))
		for j, s := range st {
			states[i][s] = j
		}
	}
	return &Matrix{
		taxa:     taxa,
		features: features,
		states:   states,
		d:        d,
	}
}

// Code returns the code of the value of a feature
// for a taxon,
// or "?" if the value is missing.
func (m *Matrix) Code(taxon string, feature int) string {
	v, ok := m.d.Value(taxon, m.features[feature])
	if !ok {
		return Missing
	}
	c, ok := m.states[feature][v]
	if !ok {
		return Missing
	}
	return strconv.Itoa(c)
}

// Features returns the features in the matrix.
func (m *Matrix) Features() []string {
	return m.features
}

// NumStates returns the number of states
// of a feature.
func (m *Matrix) NumStates(feature int) int {
	return len(m.states[feature])
}

// Sequence returns the codes of all the features
// for a taxon,
// separated by commas.
func (m *Matrix) Sequence(taxon string) string {
	codes := make([]string, len(m.features))
	for i := range m.features {
		codes[i] = m.Code(taxon, i)
	}
	return strings.Join(codes, ",")
}

// Taxa returns the taxa in the matrix.
func (m *Matrix) Taxa() []string {
	return m.taxa
}

// TraitValue returns the matrix
// in the form of a trait set value:
// taxon and sequence pairs,
// separated by new lines.
func (m *Matrix) TraitValue() string {
	var b strings.Builder
	for i, tx := range m.taxa {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString(tx)
		b.WriteByte('=')
		b.WriteString(m.Sequence(tx))
	}
	return b.String()
}
