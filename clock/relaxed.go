// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package clock

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/js-arias/beastgen/beastxml"
	"github.com/js-arias/beastgen/cats"
	"github.com/js-arias/beastgen/settings"
)

// Relaxed clock distributions.
const (
	LogNormal   = "lognormal"
	Exponential = "exponential"
	Gamma       = "gamma"
)

// Initial values of the spread parameter
// of the relaxed clock distributions.
const (
	lnStdDev   = 0.3
	gammaShape = 2.0
)

// RelaxedClock is an uncorrelated relaxed clock.
// The rate of each branch is taken
// from a discretized distribution
// with mean 1.
type RelaxedClock struct {
	base

	dist     string
	numCats  int
	branches int
	cats     cats.Discrete
}

func newRelaxed(b base, c settings.Clock, branches int) (*RelaxedClock, error) {
	dist := strings.ToLower(c.Distribution)
	if dist == "" {
		dist = LogNormal
	}

	var param float64
	switch dist {
	case LogNormal:
		param = lnStdDev
	case Gamma:
		param = gammaShape
	case Exponential:
	default:
		return nil, fmt.Errorf("clock %q: unknown distribution %q", c.Name, c.Distribution)
	}
	if c.Categories < 0 {
		return nil, fmt.Errorf("clock %q: invalid number of categories %d", c.Name, c.Categories)
	}

	// by default,
	// each branch has its own category
	n := c.Categories
	if n == 0 {
		n = max(branches, 1)
	}
	d, err := cats.New(dist, param, n)
	if err != nil {
		return nil, fmt.Errorf("clock %q: %v", c.Name, err)
	}

	return &RelaxedClock{
		base:     b,
		dist:     dist,
		numCats:  c.Categories,
		branches: max(branches, 1),
		cats:     d,
	}, nil
}

// Type returns the clock type.
func (r *RelaxedClock) Type() string {
	return Relaxed
}

// Cats returns the initial values
// of the discrete rate categories.
func (r *RelaxedClock) Cats() []float64 {
	return r.cats.Cats()
}

// Distribution returns the distribution
// of the branch rates.
func (r *RelaxedClock) Distribution() string {
	return r.cats.String()
}

func (r *RelaxedClock) modelID() string {
	return r.id("RelaxedClock")
}

// spreadID returns the id of the parameter
// that defines the variance of the rates,
// or an empty string for an exponential distribution.
func (r *RelaxedClock) spreadID() string {
	switch r.dist {
	case LogNormal:
		return r.id("ucldStdev")
	case Gamma:
		return r.id("ucgdShape")
	}
	return ""
}

// BranchRateModel adds the branch rate model
// of the clock to a tree likelihood.
func (r *RelaxedClock) BranchRateModel(likelihood *beastxml.Element) {
	if !r.firstUse(likelihood, r.modelID()) {
		return
	}
	brm := likelihood.Add("branchRateModel",
		"id", r.modelID(),
		"spec", "beast.evolution.branchratemodel.UCRelaxedClockModel",
		"rateCategories", beastxml.Ref(r.id("rateCategories")),
		"tree", beastxml.Ref(beastxml.TreeID),
	)
	if r.numCats > 0 {
		brm.Set("numberOfDiscreteRates", strconv.Itoa(r.numCats))
	}
	r.rateInput(brm)

	switch r.dist {
	case LogNormal:
		ln := brm.Add("LogNormal",
			"id", r.id("LogNormalDistributionModel"),
			"S", beastxml.Ref(r.spreadID()),
			"meanInRealSpace", "true",
			"name", "distr",
		)
		ln.Add("parameter", "name", "M", "estimate", "false", "lower", "0.0", "upper", "1.0").SetText("1.0")
	case Exponential:
		ex := brm.Add("Exponential", "id", r.id("Exponential"), "name", "distr")
		ex.Add("parameter", "name", "mean", "estimate", "false").SetText("1.0")
	case Gamma:
		g := brm.Add("Gamma",
			"id", r.id("Gamma"),
			"alpha", beastxml.Ref(r.spreadID()),
			"mode", "ShapeMean",
			"name", "distr",
		)
		g.Add("parameter", "name", "beta", "estimate", "false").SetText("1.0")
	}
}

// State adds the rate categories,
// and the spread of the distribution,
// to the state.
func (r *RelaxedClock) State(state *beastxml.Element) {
	r.rateState(state)
	state.Add("stateNode",
		"id", r.id("rateCategories"),
		"spec", "parameter.IntegerParameter",
		"dimension", strconv.Itoa(r.branches),
	).SetText("1")

	switch r.dist {
	case LogNormal:
		state.Add("parameter", "id", r.spreadID(), "lower", "0.0", "name", "stateNode").SetText(beastxml.Num(lnStdDev))
	case Gamma:
		state.Add("parameter", "id", r.spreadID(), "lower", "0.0", "name", "stateNode").SetText(beastxml.Num(gammaShape))
	}
}

// Prior adds the prior of the clock rate
// and the spread of the distribution.
func (r *RelaxedClock) Prior(prior *beastxml.Element) {
	r.ratePrior(prior)
	id := r.spreadID()
	if id == "" {
		return
	}
	p := prior.Add("prior",
		"id", r.id("spreadPrior"),
		"name", "distribution",
		"x", beastxml.Ref(id),
	)
	ex := p.Add("Exponential", "id", r.id("spreadPriorExponential"), "name", "distr")
	mean := "0.3333"
	if r.dist == Gamma {
		mean = "1.0"
	}
	ex.Add("parameter", "name", "mean", "estimate", "false").SetText(mean)
}

// Operators adds the operators
// of the rate categories.
func (r *RelaxedClock) Operators(run *beastxml.Element) {
	r.rateOperators(run)
	if id := r.spreadID(); id != "" {
		run.Add("operator",
			"id", r.id("spreadScaler"),
			"spec", "ScaleOperator",
			"parameter", beastxml.Ref(id),
			"scaleFactor", "0.5",
			"weight", "3.0",
		)
	}
	rc := beastxml.Ref(r.id("rateCategories"))
	run.Add("operator",
		"id", r.id("CategoriesRandomWalk"),
		"spec", "IntRandomWalkOperator",
		"parameter", rc,
		"windowSize", "1",
		"weight", "10.0",
	)
	run.Add("operator",
		"id", r.id("CategoriesSwapOperator"),
		"spec", "SwapOperator",
		"intparameter", rc,
		"weight", "10.0",
	)
	run.Add("operator",
		"id", r.id("CategoriesUniform"),
		"spec", "UniformOperator",
		"parameter", rc,
		"weight", "10.0",
	)
}

// Logs adds the clock parameters,
// and the rate statistics,
// to the trace log.
func (r *RelaxedClock) Logs(trace *beastxml.Element) {
	r.rateLogs(trace)
	if id := r.spreadID(); id != "" {
		trace.Add("log", "idref", id)
	}
	trace.Add("log",
		"id", r.id("rate"),
		"spec", "beast.evolution.branchratemodel.RateStatistic",
		"branchratemodel", beastxml.Ref(r.modelID()),
		"tree", beastxml.Ref(beastxml.TreeID),
	)
}
