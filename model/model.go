// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package model implements substitution models
// for language features.
//
// Three models are implemented:
// the Lewis Mk model,
// the binary covarion model,
// and the Bayesian stochastic variable selection (BSVS)
// of a general substitution model.
//
// In the Mk and BSVS models
// the features are partitioned
// by their number of states,
// and each partition has its own alignment,
// substitution model,
// and tree likelihood.
package model

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/js-arias/beastgen/beastxml"
	"github.com/js-arias/beastgen/clock"
	"github.com/js-arias/beastgen/settings"
	"github.com/js-arias/beastgen/trait"
)

// Model types.
const (
	Mk       = "mk"
	Covarion = "covarion"
	BSVS     = "bsvs"
)

// Model is a substitution model
// bounded to a dataset and a clock.
type Model struct {
	name          string
	kind          string
	rateVariation bool
	clock         clock.Clock

	taxa     []string
	features []string
	data     *trait.Data
	parts    []partition
}

// A partition is a set of features
// with the same number of states.
type partition struct {
	states int
	matrix *trait.Matrix
}

// New creates a new model
// for a dataset,
// using the indicated taxa.
// Features are filtered
// using the minimum data
// (as a percentage)
// and the constant feature options of the settings.
func New(s settings.Model, d *trait.Data, taxa []string, c clock.Clock) (*Model, error) {
	kind := strings.ToLower(s.Model)
	switch kind {
	case Mk, Covarion, BSVS:
	default:
		return nil, fmt.Errorf("model %q: unknown model type %q", s.Name, s.Model)
	}
	if c == nil {
		return nil, fmt.Errorf("model %q: undefined clock", s.Name)
	}
	if len(taxa) == 0 {
		return nil, fmt.Errorf("model %q: empty taxon list", s.Name)
	}

	if s.IsBinarised() || (kind == Covarion && !isBinary(d)) {
		d = d.Binarise()
	}
	features := d.Filter(taxa, s.MinimumData/100, s.RemovesConstant())
	if len(features) == 0 {
		return nil, fmt.Errorf("model %q: no features left after filtering", s.Name)
	}

	m := &Model{
		name:          s.Name,
		kind:          kind,
		rateVariation: s.RateVariation,
		clock:         c,
		taxa:          taxa,
		features:      features,
		data:          d,
	}
	if kind != Covarion {
		m.partition()
	}
	return m, nil
}

// isBinary returns true if all features
// are coded as 0 or 1.
func isBinary(d *trait.Data) bool {
	for _, f := range d.Features() {
		for _, s := range d.States(f) {
			if s != "0" && s != "1" {
				return false
			}
		}
	}
	return true
}

func (m *Model) partition() {
	byStates := make(map[int][]string)
	for _, f := range m.features {
		// constant features are coded as binary
		n := max(len(m.data.States(f, m.taxa...)), 2)
		byStates[n] = append(byStates[n], f)
	}
	states := make([]int, 0, len(byStates))
	for n := range byStates {
		states = append(states, n)
	}
	slices.Sort(states)

	for _, n := range states {
		m.parts = append(m.parts, partition{
			states: n,
			matrix: trait.NewMatrix(m.data, m.taxa, byStates[n]),
		})
	}
}

// Clock returns the clock of the model.
func (m *Model) Clock() clock.Clock {
	return m.clock
}

// Dependencies returns the BEAST packages
// required by the model.
func (m *Model) Dependencies() []string {
	switch m.kind {
	case Mk:
		return []string{
			fmt.Sprintf("Model %s: Lewis Mk substitution model is implemented in the BEAST package \"morph-models\".", m.name),
			fmt.Sprintf("Model %s: AlignmentFromTrait is implemented in the BEAST package \"BEAST_CLASSIC\".", m.name),
		}
	case BSVS:
		return []string{
			fmt.Sprintf("Model %s: BSSVS is implemented in the BEAST package \"BEAST_CLASSIC\".", m.name),
			fmt.Sprintf("Model %s: AlignmentFromTrait is implemented in the BEAST package \"BEAST_CLASSIC\".", m.name),
		}
	}
	return nil
}

// Features returns the features used by the model.
func (m *Model) Features() []string {
	return m.features
}

// Kind returns the model type.
func (m *Model) Kind() string {
	return m.kind
}

// Name returns the name of the model.
func (m *Model) Name() string {
	return m.name
}

// Partitions returns the number of states
// of each partition of the model.
func (m *Model) Partitions() []int {
	if m.kind == Covarion {
		return []int{2}
	}
	states := make([]int, len(m.parts))
	for i, p := range m.parts {
		states[i] = p.states
	}
	return states
}

func (m *Model) id(prefix string) string {
	return prefix + ".s:" + m.name
}

func (m *Model) partID(prefix string, p partition) string {
	return prefix + ".s:" + m.name + ":" + strconv.Itoa(p.states)
}

func (m *Model) dataID(p partition) string {
	if m.kind == Covarion {
		return "data_" + m.name
	}
	return "data_" + m.name + ":" + strconv.Itoa(p.states)
}

// Data adds the alignments of the model.
func (m *Model) Data(beast *beastxml.Element) {
	if m.kind == Covarion {
		m.covarionData(beast)
		return
	}
	for _, p := range m.parts {
		sfx := m.name + ":" + strconv.Itoa(p.states)
		data := beast.Add("data", "id", m.dataID(p), "spec", "AlignmentFromTrait")
		data.Add("traitSet",
			"id", "traitSet."+sfx,
			"spec", "beast.evolution.tree.TraitSet",
			"taxa", beastxml.Ref(beastxml.TaxaID),
			"traitname", "discrete",
		).SetText(p.matrix.TraitValue())
		data.Add("userDataType",
			"id", "traitDataType."+sfx,
			"spec", "beast.evolution.datatype.UserDataType",
			"codeMap", codeMap(p.states),
			"codelength", "-1",
			"states", strconv.Itoa(p.states),
		)
	}
}

// codeMap returns the code map
// of a user data type
// with n states.
func codeMap(n int) string {
	codes := make([]string, 0, n+1)
	all := make([]string, n)
	for i := 0; i < n; i++ {
		s := strconv.Itoa(i)
		codes = append(codes, s+"="+s)
		all[i] = s
	}
	codes = append(codes, trait.Missing+"="+strings.Join(all, " "))
	return strings.Join(codes, ",")
}

func (m *Model) covarionData(beast *beastxml.Element) {
	data := beast.Add("data",
		"id", m.dataID(partition{}),
		"spec", "Alignment",
		"dataType", "twoStateCovarion",
	)
	for _, tx := range m.taxa {
		var b strings.Builder
		for _, f := range m.features {
			v, ok := m.data.Value(tx, f)
			if !ok {
				v = trait.Missing
			}
			b.WriteString(v)
		}
		data.Add("sequence",
			"id", "seq_"+tx+"_"+m.name,
			"taxon", tx,
			"totalcount", "2",
			"value", b.String(),
		)
	}
}

// State adds the model parameters to the state.
func (m *Model) State(state *beastxml.Element) {
	if m.rateVariation {
		state.Add("parameter", "id", m.id("gammaShape"), "name", "stateNode").SetText("1.0")
	}

	switch m.kind {
	case Covarion:
		state.Add("parameter", "id", m.id("covarionAlpha"), "lower", "1.0E-4", "name", "stateNode", "upper", "1.0").SetText("0.5")
		state.Add("parameter", "id", m.id("covarionSwitchRate"), "lower", "1.0E-4", "name", "stateNode", "upper", "Infinity").SetText("0.5")
		state.Add("parameter", "id", m.id("frequencies"), "dimension", "2", "name", "stateNode").SetText("0.5 0.5")
	case BSVS:
		for _, p := range m.parts {
			dim := strconv.Itoa(rates(p.states))
			state.Add("stateNode",
				"id", m.partID("rateIndicator", p),
				"spec", "parameter.BooleanParameter",
				"dimension", dim,
			).SetText("true")
			state.Add("parameter",
				"id", m.partID("relativeRates", p),
				"dimension", dim,
				"name", "stateNode",
			).SetText("1.0")
		}
	}
}

// rates returns the number of rates
// of a symmetric model with n states.
func rates(n int) int {
	return max(n*(n-1)/2, 1)
}

// Likelihood adds the tree likelihood of the model.
func (m *Model) Likelihood(likelihood *beastxml.Element) {
	if m.kind == Covarion {
		m.treeLikelihood(likelihood, partition{states: 2})
		return
	}
	for _, p := range m.parts {
		m.treeLikelihood(likelihood, p)
	}
}

func (m *Model) treeLikelihood(likelihood *beastxml.Element, p partition) {
	id := m.name
	if m.kind != Covarion {
		id = m.name + ":" + strconv.Itoa(p.states)
	}
	dist := likelihood.Add("distribution",
		"id", "traitedtreeLikelihood."+id,
		"spec", "TreeLikelihood",
		"data", beastxml.Ref(m.dataID(p)),
		"tree", beastxml.Ref(beastxml.TreeID),
		"useAmbiguities", "true",
	)

	site := dist.Add("siteModel", "id", "SiteModel."+id, "spec", "SiteModel")
	if m.rateVariation {
		site.Set("gammaCategoryCount", "4")
		site.Set("shape", beastxml.Ref(m.id("gammaShape")))
	}
	site.Add("parameter", "id", "mutationRate.s:"+id, "name", "mutationRate", "estimate", "false").SetText("1.0")
	site.Add("parameter", "id", "proportionInvariant.s:"+id, "name", "proportionInvariant", "estimate", "false", "lower", "0.0", "upper", "1.0").SetText("0.0")

	switch m.kind {
	case Mk:
		site.Add("substModel",
			"id", "mk.s:"+id,
			"spec", "LewisMK",
			"datatype", beastxml.Ref("traitDataType."+id),
		)
	case BSVS:
		sm := site.Add("substModel",
			"id", "svs.s:"+id,
			"spec", "SVSGeneralSubstitutionModel",
			"rateIndicator", beastxml.Ref(m.partID("rateIndicator", p)),
			"rates", beastxml.Ref(m.partID("relativeRates", p)),
			"symmetric", "true",
		)
		sm.Add("frequencies",
			"id", "freqs.s:"+id,
			"spec", "Frequencies",
			"data", beastxml.Ref(m.dataID(p)),
			"estimate", "false",
		)
	case Covarion:
		sm := site.Add("substModel",
			"id", "covarion.s:"+id,
			"spec", "BinaryCovarion",
			"alpha", beastxml.Ref(m.id("covarionAlpha")),
			"switchRate", beastxml.Ref(m.id("covarionSwitchRate")),
			"vfrequencies", beastxml.Ref(m.id("frequencies")),
		)
		sm.Add("parameter", "id", "hiddenfrequencies.s:"+id, "dimension", "2", "lower", "0.0", "name", "hfrequencies", "upper", "1.0").SetText("0.5 0.5")
		sm.Add("frequencies", "id", "dummyfrequencies.s:"+id, "spec", "Frequencies", "frequencies", "0.5 0.5")
	}

	m.clock.BranchRateModel(dist)
}

// Prior adds the priors of the model parameters.
func (m *Model) Prior(prior *beastxml.Element) {
	if m.rateVariation {
		p := prior.Add("prior", "id", m.id("gammaShapePrior"), "name", "distribution", "x", beastxml.Ref(m.id("gammaShape")))
		ex := p.Add("Exponential", "id", m.id("gammaShapePriorExponential"), "name", "distr")
		ex.Add("parameter", "name", "mean", "estimate", "false").SetText("1.0")
	}

	switch m.kind {
	case Covarion:
		p := prior.Add("prior", "id", m.id("covarionAlphaPrior"), "name", "distribution", "x", beastxml.Ref(m.id("covarionAlpha")))
		p.Add("Uniform", "id", m.id("covarionAlphaUniform"), "name", "distr", "lower", "1.0E-4", "upper", "1.0")

		p = prior.Add("prior", "id", m.id("covarionSwitchRatePrior"), "name", "distribution", "x", beastxml.Ref(m.id("covarionSwitchRate")))
		g := p.Add("Gamma", "id", m.id("covarionSwitchRateGamma"), "name", "distr")
		g.Add("parameter", "name", "alpha", "estimate", "false").SetText("0.05")
		g.Add("parameter", "name", "beta", "estimate", "false").SetText("10.0")
	case BSVS:
		for _, p := range m.parts {
			nz := prior.Add("prior", "id", m.partID("nonZeroRatePrior", p), "name", "distribution")
			nz.Add("x",
				"id", m.partID("nonZeroRates", p),
				"spec", "util.Sum",
				"arg", beastxml.Ref(m.partID("rateIndicator", p)),
			)
			ps := nz.Add("distr", "id", m.partID("nonZeroRatePoisson", p), "spec", "beast.math.distributions.Poisson")
			ps.Add("parameter", "name", "lambda", "estimate", "false").SetText(strconv.Itoa(max(p.states-1, 1)))

			rp := prior.Add("prior", "id", m.partID("relativeRatePrior", p), "name", "distribution", "x", beastxml.Ref(m.partID("relativeRates", p)))
			g := rp.Add("Gamma", "id", m.partID("relativeRateGamma", p), "name", "distr")
			g.Add("parameter", "name", "alpha", "estimate", "false").SetText("1.0")
			g.Add("parameter", "name", "beta", "estimate", "false").SetText("1.0")
		}
	}
}

// Operators adds the operators of the model parameters.
func (m *Model) Operators(run *beastxml.Element) {
	if m.rateVariation {
		run.Add("operator", "id", m.id("gammaShapeScaler"), "spec", "ScaleOperator", "parameter", beastxml.Ref(m.id("gammaShape")), "scaleFactor", "0.5", "weight", "0.1")
	}

	switch m.kind {
	case Covarion:
		run.Add("operator", "id", m.id("covarionAlphaScaler"), "spec", "ScaleOperator", "parameter", beastxml.Ref(m.id("covarionAlpha")), "scaleFactor", "0.5", "weight", "1.0")
		run.Add("operator", "id", m.id("covarionSwitchRateScaler"), "spec", "ScaleOperator", "parameter", beastxml.Ref(m.id("covarionSwitchRate")), "scaleFactor", "0.5", "weight", "1.0")
		run.Add("operator", "id", m.id("frequenciesDelta"), "spec", "DeltaExchangeOperator", "parameter", beastxml.Ref(m.id("frequencies")), "delta", "0.01", "weight", "1.0")
	case BSVS:
		for _, p := range m.parts {
			run.Add("operator", "id", m.partID("indicatorFlip", p), "spec", "BitFlipOperator", "parameter", beastxml.Ref(m.partID("rateIndicator", p)), "weight", "30.0")
			run.Add("operator", "id", m.partID("relativeRatesScaler", p), "spec", "ScaleOperator", "parameter", beastxml.Ref(m.partID("relativeRates", p)), "scaleAllIndependently", "true", "scaleFactor", "0.5", "weight", "15.0")
		}
	}
}

// Logs adds the model parameters to the trace log.
func (m *Model) Logs(trace *beastxml.Element) {
	if m.rateVariation {
		trace.Add("log", "idref", m.id("gammaShape"))
	}

	switch m.kind {
	case Covarion:
		trace.Add("log", "idref", m.id("covarionAlpha"))
		trace.Add("log", "idref", m.id("covarionSwitchRate"))
		trace.Add("log", "idref", m.id("frequencies"))
	case BSVS:
		for _, p := range m.parts {
			trace.Add("log", "idref", m.partID("rateIndicator", p))
			trace.Add("log", "idref", m.partID("relativeRates", p))
			trace.Add("log", "idref", m.partID("nonZeroRates", p))
		}
	}
}
