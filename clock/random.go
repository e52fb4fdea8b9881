// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package clock

import (
	"math"
	"strconv"

	"github.com/js-arias/beastgen/beastxml"
)

// RandomLocal is a random local clock.
// Each branch has an indicator
// that marks a change of rate,
// and the new rate is inherited
// by the descendant branches.
type RandomLocal struct {
	base

	branches int
}

// Type returns the clock type.
func (r *RandomLocal) Type() string {
	return Random
}

func (r *RandomLocal) modelID() string {
	return r.id("RandomLocalClock")
}

// BranchRateModel adds the branch rate model
// of the clock to a tree likelihood.
func (r *RandomLocal) BranchRateModel(likelihood *beastxml.Element) {
	if !r.firstUse(likelihood, r.modelID()) {
		return
	}
	brm := likelihood.Add("branchRateModel",
		"id", r.modelID(),
		"spec", "beast.evolution.branchratemodel.RandomLocalClockModel",
		"indicators", beastxml.Ref(r.id("Indicators")),
		"rates", beastxml.Ref(r.id("clockrates")),
		"tree", beastxml.Ref(beastxml.TreeID),
	)
	r.rateInput(brm)
}

// State adds the rate indicators,
// and the branch rates,
// to the state.
func (r *RandomLocal) State(state *beastxml.Element) {
	r.rateState(state)
	dim := strconv.Itoa(max(r.branches, 1))
	state.Add("stateNode",
		"id", r.id("Indicators"),
		"spec", "parameter.BooleanParameter",
		"dimension", dim,
	).SetText("false")
	state.Add("parameter",
		"id", r.id("clockrates"),
		"name", "stateNode",
		"dimension", dim,
		"lower", "0.0",
	).SetText("1.0")
}

// Prior adds the prior of the branch rates
// and the number of rate changes.
func (r *RandomLocal) Prior(prior *beastxml.Element) {
	r.ratePrior(prior)

	p := prior.Add("prior",
		"id", r.id("RandomRatesPrior"),
		"name", "distribution",
		"x", beastxml.Ref(r.id("clockrates")),
	)
	g := p.Add("Gamma", "id", r.id("RandomRatesGamma"), "name", "distr")
	g.Add("parameter", "name", "alpha", "estimate", "false").SetText("0.5")
	g.Add("parameter", "name", "beta", "estimate", "false").SetText("2.0")

	// a prior probability of 0.5
	// for no rate changes
	p = prior.Add("prior",
		"id", r.id("RandomRateChangesPrior"),
		"name", "distribution",
	)
	p.Add("x",
		"id", r.id("RandomRateChangesCount"),
		"spec", "util.Sum",
		"arg", beastxml.Ref(r.id("Indicators")),
	)
	ps := p.Add("distr",
		"id", r.id("RandomRatesPoisson"),
		"spec", "beast.math.distributions.Poisson",
	)
	ps.Add("parameter", "name", "lambda", "estimate", "false").SetText(beastxml.Num(math.Ln2))
}

// Operators adds the operators
// of the indicators and branch rates.
func (r *RandomLocal) Operators(run *beastxml.Element) {
	r.rateOperators(run)
	run.Add("operator",
		"id", r.id("IndicatorsBitFlip"),
		"spec", "BitFlipOperator",
		"parameter", beastxml.Ref(r.id("Indicators")),
		"weight", "15.0",
	)
	run.Add("operator",
		"id", r.id("ClockRatesScaler"),
		"spec", "ScaleOperator",
		"parameter", beastxml.Ref(r.id("clockrates")),
		"scaleFactor", "0.5",
		"weight", "15.0",
	)
}

// Logs adds the indicators,
// the branch rates,
// and the number of rate changes,
// to the trace log.
func (r *RandomLocal) Logs(trace *beastxml.Element) {
	r.rateLogs(trace)
	trace.Add("log", "idref", r.id("Indicators"))
	trace.Add("log", "idref", r.id("clockrates"))
	trace.Add("log", "idref", r.id("RandomRateChangesCount"))
}
