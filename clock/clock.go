// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package clock implements the clock models
// of a phylogenetic analysis:
// the rate of change of the characters
// along the branches of the tree.
//
// Three clocks are implemented:
// a strict clock,
// with a single rate for the whole tree;
// an uncorrelated relaxed clock,
// in which the rate of each branch
// is drawn from a discretized distribution;
// and a random local clock,
// in which the rate changes in a few branches
// and it is inherited by the descendants.
package clock

import (
	"fmt"
	"strings"

	"github.com/js-arias/beastgen/beastxml"
	"github.com/js-arias/beastgen/settings"
)

// Clock types.
const (
	Strict  = "strict"
	Relaxed = "relaxed"
	Random  = "random"
)

// DefaultName is the name of the clock
// used by models without an explicit clock.
const DefaultName = "default"

// A Clock is a clock model.
type Clock interface {
	beastxml.Clock

	// Name returns the name of the clock.
	Name() string

	// Type returns the clock type.
	Type() string

	// BranchRateModel adds the branch rate model
	// of the clock to a tree likelihood.
	// The model is defined in its first use,
	// and referenced afterwards.
	BranchRateModel(likelihood *beastxml.Element)
}

// New creates a new clock
// from its settings.
// Branches is the number of branches
// of the tree of the analysis.
func New(c settings.Clock, branches int) (Clock, error) {
	b := newBase(c)
	switch strings.ToLower(c.Type) {
	case Strict, "":
		return &StrictClock{base: b}, nil
	case Relaxed:
		return newRelaxed(b, c, branches)
	case Random:
		return &RandomLocal{
			base:     b,
			branches: branches,
		}, nil
	}
	return nil, fmt.Errorf("clock %q: unknown type %q", c.Name, c.Type)
}

// Default returns a strict clock
// with the default name.
func Default() Clock {
	c, _ := New(settings.Clock{
		Name: DefaultName,
		Type: Strict,
	}, 0)
	return c
}

// Branches returns the number of branches
// of a rooted binary tree
// with the given number of terminals.
func Branches(terms int) int {
	if terms < 2 {
		return 0
	}
	return 2*terms - 2
}

// base implements the mean rate of a clock.
type base struct {
	name     string
	rate     float64
	estimate bool

	// defined is set after the first use
	// of the branch rate model.
	defined bool
}

func newBase(c settings.Clock) base {
	rate := c.Rate
	if rate == 0 {
		rate = 1
	}
	return base{
		name:     c.Name,
		rate:     rate,
		estimate: c.EstimatesRate(),
	}
}

// Name returns the name of the clock.
func (b *base) Name() string {
	return b.name
}

// RateID returns the id of the mean rate parameter,
// or an empty string if the rate is fixed.
func (b *base) RateID() string {
	if !b.estimate {
		return ""
	}
	return b.rateID()
}

func (b *base) rateID() string {
	return "clockRate.c:" + b.name
}

func (b *base) id(prefix string) string {
	return prefix + ".c:" + b.name
}

// firstUse returns true
// the first time the branch rate model is used.
// Otherwise it adds a reference to the model.
func (b *base) firstUse(likelihood *beastxml.Element, id string) bool {
	if b.defined {
		likelihood.Add("branchRateModel", "idref", id)
		return false
	}
	b.defined = true
	return true
}

func (b *base) rateState(state *beastxml.Element) {
	if !b.estimate {
		return
	}
	state.Add("parameter", "id", b.rateID(), "name", "stateNode").SetText(beastxml.Num(b.rate))
}

func (b *base) rateInput(brm *beastxml.Element) {
	if b.estimate {
		brm.Set("clock.rate", beastxml.Ref(b.rateID()))
		return
	}
	brm.Add("parameter",
		"id", b.rateID(),
		"name", "clock.rate",
		"estimate", "false",
	).SetText(beastxml.Num(b.rate))
}

func (b *base) ratePrior(prior *beastxml.Element) {
	if !b.estimate {
		return
	}
	p := prior.Add("prior",
		"id", b.id("clockRatePrior"),
		"name", "distribution",
		"x", beastxml.Ref(b.rateID()),
	)
	p.Add("Uniform", "id", b.id("UniformClockPrior"), "name", "distr", "upper", "Infinity")
}

func (b *base) rateOperators(run *beastxml.Element) {
	if !b.estimate {
		return
	}
	run.Add("operator",
		"id", b.id("clockRateScaler"),
		"spec", "ScaleOperator",
		"parameter", beastxml.Ref(b.rateID()),
		"scaleFactor", "0.5",
		"weight", "3.0",
	)
}

func (b *base) rateLogs(trace *beastxml.Element) {
	if !b.estimate {
		return
	}
	trace.Add("log", "idref", b.rateID())
}

// StrictClock is a clock
// with a single rate for all branches.
type StrictClock struct {
	base
}

// Type returns the clock type.
func (s *StrictClock) Type() string {
	return Strict
}

func (s *StrictClock) modelID() string {
	return s.id("StrictClockModel")
}

// BranchRateModel adds the branch rate model
// of the clock to a tree likelihood.
func (s *StrictClock) BranchRateModel(likelihood *beastxml.Element) {
	if !s.firstUse(likelihood, s.modelID()) {
		return
	}
	brm := likelihood.Add("branchRateModel",
		"id", s.modelID(),
		"spec", "beast.evolution.branchratemodel.StrictClockModel",
	)
	s.rateInput(brm)
}

// State adds the clock rate to the state.
func (s *StrictClock) State(state *beastxml.Element) {
	s.rateState(state)
}

// Prior adds the prior of the clock rate.
func (s *StrictClock) Prior(prior *beastxml.Element) {
	s.ratePrior(prior)
}

// Operators adds the operator of the clock rate.
func (s *StrictClock) Operators(run *beastxml.Element) {
	s.rateOperators(run)
}

// Logs adds the clock rate to the trace log.
func (s *StrictClock) Logs(trace *beastxml.Element) {
	s.rateLogs(trace)
}
