// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package calibration implements age calibrations
// for clades of a phylogenetic tree.
package calibration

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Root is the name used for a calibration
// of the root of the tree.
const Root = "root"

// Calibration distributions.
const (
	// NormalDist is a normal distribution
	// centered in the midpoint of the range.
	NormalDist = "normal"

	// UniformDist is a hard bounded
	// uniform distribution.
	UniformDist = "uniform"
)

// A Calibration is an age range
// for the most recent common ancestor of a clade.
type Calibration struct {
	// Clade is the name or code
	// of a classification node.
	Clade string

	// Dist is the distribution
	// of the calibration.
	Dist string

	Lower float64
	Upper float64
}

// Parse parses a calibration range
// in the form "lower-upper".
// The range can be enclosed
// in a distribution name,
// as in "uniform(lower-upper)".
// By default the distribution is normal.
func Parse(clade, s string) (Calibration, error) {
	clade = strings.ToLower(strings.TrimSpace(clade))
	if clade == "" {
		return Calibration{}, fmt.Errorf("calibration: empty clade name")
	}

	dist := NormalDist
	s = strings.TrimSpace(s)
	if name, rng, ok := strings.Cut(s, "("); ok {
		if !strings.HasSuffix(rng, ")") {
			return Calibration{}, fmt.Errorf("calibration %q: unclosed parenthesis in %q", clade, s)
		}
		dist = strings.ToLower(strings.TrimSpace(name))
		s = strings.TrimSuffix(rng, ")")
	}
	switch dist {
	case NormalDist, UniformDist:
	default:
		return Calibration{}, fmt.Errorf("calibration %q: unknown distribution %q", clade, dist)
	}

	lw, up, ok := strings.Cut(s, "-")
	if !ok {
		return Calibration{}, fmt.Errorf("calibration %q: expecting range, found %q", clade, s)
	}
	lower, err := strconv.ParseFloat(strings.TrimSpace(lw), 64)
	if err != nil {
		return Calibration{}, fmt.Errorf("calibration %q: lower bound: %v", clade, err)
	}
	upper, err := strconv.ParseFloat(strings.TrimSpace(up), 64)
	if err != nil {
		return Calibration{}, fmt.Errorf("calibration %q: upper bound: %v", clade, err)
	}
	if lower < 0 || lower > upper {
		return Calibration{}, fmt.Errorf("calibration %q: invalid range %v-%v", clade, lower, upper)
	}
	return Calibration{
		Clade: clade,
		Dist:  dist,
		Lower: lower,
		Upper: upper,
	}, nil
}

// IsRoot returns true if the calibration
// is for the root of the tree.
func (c Calibration) IsRoot() bool {
	return c.Clade == Root
}

// Mean returns the midpoint of the calibration range.
func (c Calibration) Mean() float64 {
	return (c.Upper + c.Lower) / 2
}

// StdDev returns the standard deviation
// of the normal distribution
// used for the calibration
// (half the distance between the mean
// and the upper bound).
func (c Calibration) StdDev() float64 {
	return (c.Upper - c.Mean()) / 2
}

// Normal returns the normal distribution
// of the calibration.
func (c Calibration) Normal() distuv.Normal {
	return distuv.Normal{
		Mu:    c.Mean(),
		Sigma: c.StdDev(),
	}
}

// Interval returns the central interval
// of the calibration distribution
// with the given probability mass.
func (c Calibration) Interval(p float64) (lower, upper float64) {
	if c.StdDev() == 0 {
		return c.Mean(), c.Mean()
	}
	n := c.Normal()
	return n.Quantile((1 - p) / 2), n.Quantile((1 + p) / 2)
}

// IsUniform returns true if the calibration
// uses hard bounds.
func (c Calibration) IsUniform() bool {
	return c.Dist == UniformDist
}

// String returns the calibration range.
func (c Calibration) String() string {
	rng := strconv.FormatFloat(c.Lower, 'f', -1, 64) + "-" + strconv.FormatFloat(c.Upper, 'f', -1, 64)
	if c.IsUniform() {
		return UniformDist + "(" + rng + ")"
	}
	return rng
}

// A Classifier returns true if a taxon
// belongs to a clade.
type Classifier interface {
	InClade(taxon, clade string) bool
}

// Clade is a calibration
// with the taxa of the clade.
type Clade struct {
	Calibration
	Taxa []string
}

// Resolve returns the taxa of the calibrated clade.
func (c Calibration) Resolve(taxa []string, cl Classifier) Clade {
	cc := Clade{Calibration: c}
	if c.IsRoot() {
		cc.Taxa = append(cc.Taxa, taxa...)
		return cc
	}
	for _, tx := range taxa {
		if cl.InClade(tx, c.Clade) {
			cc.Taxa = append(cc.Taxa, tx)
		}
	}
	return cc
}

// Nested returns true if the taxa of one clade
// are a subset of the other.
func Nested(a, b Clade) bool {
	in := make(map[string]bool, len(a.Taxa))
	for _, tx := range a.Taxa {
		in[tx] = true
	}
	var shared int
	for _, tx := range b.Taxa {
		if in[tx] {
			shared++
		}
	}
	return shared == len(a.Taxa) || shared == len(b.Taxa)
}

// euler is the Euler–Mascheroni constant.
const euler = 0.5772156649

// BirthRate estimates the birth rate of a Yule tree
// from a set of calibrated clades,
// and the expected height of a tree
// with the given number of terminals.
// Only normal calibrations of clades
// with more than one terminal are used.
// It returns false if no calibration can be used.
//
// The expected height of a Yule tree with n terminals
// and birth rate λ is (H(n) - 1) / λ,
// where H(n) is the n-th harmonic number,
// approximated as log(n) + γ.
func BirthRate(clades []Clade, terms int) (rate, height float64, ok bool) {
	var sum float64
	var n int
	for _, c := range clades {
		if len(c.Taxa) < 2 || c.IsUniform() {
			continue
		}
		mid := c.Mean()
		if mid <= 0 {
			continue
		}
		sum += (math.Log(float64(len(c.Taxa))) + euler - 1) / mid
		n++
	}
	if n == 0 || terms < 2 {
		return 0, 0, false
	}

	rate = round(sum/float64(n), 4)
	if rate <= 0 {
		return 0, 0, false
	}
	height = round((math.Log(float64(terms))+euler-1)/rate, 4)
	return rate, height, true
}

func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
