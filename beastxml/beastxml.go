// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package beastxml builds BEAST 2 XML documents
// for the phylogenetic analysis of languages.
//
// The document is built from the tree of the analysis
// (taxa, starting tree, monophyly constraints,
// calibrations and tree prior)
// and a set of components,
// the clocks and substitution models,
// that add their own elements
// to the state,
// the prior,
// the likelihood,
// the operators,
// and the trace log.
package beastxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/js-arias/beastgen/calibration"
	"github.com/js-arias/beastgen/mcmc"
	"github.com/js-arias/beastgen/settings"
)

// Identifiers of the tree elements.
const (
	TreeID       = "Tree.t:beastgenTree"
	TaxaID       = "taxa"
	ConstraintID = "constraints"
	BirthRateID  = "birthRate.t:beastgenTree"
	DeathRateID  = "deathRate.t:beastgenTree"
	SamplingID   = "sampling.t:beastgenTree"
	PopSizeID    = "popSize.t:beastgenTree"
)

// Ref returns a reference to an element id,
// to be used as an attribute value.
func Ref(id string) string {
	return "@" + id
}

// Num formats a number
// to be used as an attribute value.
func Num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// A Component is a part of the analysis
// that adds elements to the document.
type Component interface {
	// State adds the parameters of the component
	// to the state of the MCMC.
	State(state *Element)

	// Prior adds the prior distributions
	// of the component parameters.
	Prior(prior *Element)

	// Operators adds the MCMC operators
	// of the component parameters.
	Operators(run *Element)

	// Logs adds the parameters
	// to the trace log.
	Logs(trace *Element)
}

// A Clock is a component that defines
// the rate of change along the branches of the tree.
type Clock interface {
	Component

	// RateID returns the id of the mean rate parameter,
	// or an empty string if the rate is not estimated.
	RateID() string
}

// A Model is a component that defines
// a substitution model for a dataset.
type Model interface {
	Component

	// Data adds the alignments of the model
	// to the root of the document.
	Data(beast *Element)

	// Likelihood adds the tree likelihood
	// of the model.
	Likelihood(likelihood *Element)
}

// Embedded is a data file
// embedded as a comment in the document.
type Embedded struct {
	Name    string
	Content string
}

// Config is the configuration of an analysis.
type Config struct {
	// Languages are the terminals of the tree.
	Languages []string

	// Params are the MCMC parameters.
	Params *mcmc.Params

	// TreePrior is the prior of the tree.
	TreePrior string

	// Monophyly is the newick string
	// of the monophyly constraints.
	// If empty,
	// no monophyly constraint will be used.
	Monophyly string

	// Calibrations are the calibrated clades.
	Calibrations []calibration.Clade

	// StartingTree is a newick tree
	// used as the starting tree.
	StartingTree string

	SampleTopology      bool
	SampleBranchLengths bool

	Clocks []Clock
	Models []Model

	// Data are the data files
	// embedded in the document.
	Data []Embedded

	// Source is the text of the settings
	// included in the header comment.
	Source string

	// Date is the creation date of the document.
	Date time.Time
}

// A Document is a BEAST XML document.
type Document struct {
	cfg Config

	beast      *Element
	state      *Element
	run        *Element
	prior      *Element
	likelihood *Element

	birthRate float64
	height    float64
	estimated bool
}

// New creates a new document
// from an analysis configuration.
func New(cfg Config) *Document {
	if cfg.Params == nil {
		cfg.Params = mcmc.New("")
	}
	if cfg.TreePrior == "" {
		cfg.TreePrior = settings.Yule
	}
	if cfg.Date.IsZero() {
		cfg.Date = time.Now()
	}

	d := &Document{cfg: cfg}
	d.birthRate, d.height, d.estimated = calibration.BirthRate(cfg.Calibrations, len(cfg.Languages))
	d.build()
	return d
}

// BirthRate returns the estimated birth rate
// and tree height from the calibrations.
// It returns false if there is no estimate.
func (d *Document) BirthRate() (rate, height float64, ok bool) {
	return d.birthRate, d.height, d.estimated
}

// Root returns the root element of the document.
func (d *Document) Root() *Element {
	return d.beast
}

// TreeLogging returns true
// if the sampled trees are logged.
func (d *Document) TreeLogging() bool {
	if d.cfg.StartingTree == "" {
		return true
	}
	return d.cfg.SampleTopology || d.cfg.SampleBranchLengths
}

// Write writes the document.
func (d *Document) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(d.beast); err != nil {
		return fmt.Errorf("beastxml: %v", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("beastxml: %v", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

var namespaces = "beast.core:beast.evolution.alignment:beast.evolution.tree.coalescent:beast.core.util:beast.evolution.nuc:beast.evolution.operators:beast.evolution.sitemodel:beast.evolution.substitutionmodel:beast.evolution.likelihood"

// maps are the shortcuts for distribution names.
var maps = [][2]string{
	{"Beta", "beast.math.distributions.Beta"},
	{"Exponential", "beast.math.distributions.Exponential"},
	{"InverseGamma", "beast.math.distributions.InverseGamma"},
	{"LogNormal", "beast.math.distributions.LogNormalDistributionModel"},
	{"Gamma", "beast.math.distributions.Gamma"},
	{"Uniform", "beast.math.distributions.Uniform"},
	{"prior", "beast.math.distributions.Prior"},
	{"LaplaceDistribution", "beast.math.distributions.LaplaceDistribution"},
	{"OneOnX", "beast.math.distributions.OneOnX"},
	{"Normal", "beast.math.distributions.Normal"},
	{"Poisson", "beast.math.distributions.Poisson"},
}

func (d *Document) build() {
	d.beast = NewElement("beast",
		"beautitemplate", "Standard",
		"beautistatus", "",
		"namespace", namespaces,
		"version", "2.0",
	)
	d.beast.AddComment(d.header())

	if d.cfg.Params.EmbedData() {
		for _, e := range d.cfg.Data {
			d.beast.AddComment(fmt.Sprintf("Embedded data file: %s\n%s", e.Name, e.Content))
		}
	}

	for _, m := range maps {
		d.beast.Add("map", "name", m[0]).SetText(m[1])
	}

	d.addState()

	for _, m := range d.cfg.Models {
		m.Data(d.beast)
	}

	attrs := []string{
		"id", "mcmc",
		"spec", "MCMC",
		"chainLength", strconv.Itoa(d.cfg.Params.ChainLength()),
	}
	if d.cfg.Params.SamplePrior() {
		attrs = append(attrs, "sampleFromPrior", "true")
	}
	d.run = d.beast.Add("run", attrs...)

	d.addInit()

	posterior := d.run.Add("distribution", "id", "posterior", "spec", "util.CompoundDistribution")
	d.prior = posterior.Add("distribution", "id", "prior", "spec", "util.CompoundDistribution")
	d.addPrior()
	for _, c := range d.cfg.Clocks {
		c.Prior(d.prior)
	}
	for _, m := range d.cfg.Models {
		m.Prior(d.prior)
	}

	d.likelihood = posterior.Add("distribution", "id", "likelihood", "spec", "util.CompoundDistribution")
	for _, m := range d.cfg.Models {
		m.Likelihood(d.likelihood)
	}

	d.addOperators()
	for _, c := range d.cfg.Clocks {
		c.Operators(d.run)
	}
	for _, m := range d.cfg.Models {
		m.Operators(d.run)
	}

	d.addLoggers()
}

func (d *Document) header() string {
	h := fmt.Sprintf("Generated by beastgen on %s.\n", d.cfg.Date.Format("Monday, 02 Jan 2006 3:04 PM"))
	if d.cfg.Source == "" {
		return h + "Settings built programmatically.\n"
	}
	return h + "Original settings file:\n" + d.cfg.Source
}

func (d *Document) addState() {
	d.state = d.beast.Add("state", "id", "state", "storeEvery", "5000")

	tree := d.state.Add("tree", "id", TreeID, "name", "stateNode")
	taxa := tree.Add("taxonset", "id", TaxaID, "spec", "TaxonSet")
	for _, l := range d.cfg.Languages {
		taxa.Add("taxon", "id", l, "spec", "Taxon")
	}

	switch d.cfg.TreePrior {
	case settings.Yule, settings.BirthDeath:
		rate := "1.0"
		if d.estimated {
			rate = Num(d.birthRate)
		}
		d.state.Add("parameter", "id", BirthRateID, "name", "stateNode").SetText(rate)
		if d.cfg.TreePrior == settings.BirthDeath {
			d.state.Add("parameter", "id", DeathRateID, "name", "stateNode").SetText("0.5")
			d.state.Add("parameter", "id", SamplingID, "name", "stateNode").SetText("0.2")
		}
	case settings.Coalescent:
		d.state.Add("parameter", "id", PopSizeID, "name", "stateNode").SetText("1.0")
	}

	for _, c := range d.cfg.Clocks {
		c.State(d.state)
	}
	for _, m := range d.cfg.Models {
		m.State(d.state)
	}
}

func (d *Document) addInit() {
	if d.cfg.StartingTree != "" {
		d.run.Add("init",
			"estimate", "false",
			"id", "startingTree",
			"initial", Ref(TreeID),
			"spec", "beast.util.TreeParser",
			"IsLabelledNewick", "true",
			"newick", d.cfg.StartingTree,
		)
		return
	}

	spec := "beast.evolution.tree.RandomTree"
	switch {
	case d.cfg.Monophyly != "" && len(d.cfg.Languages) > 2:
		spec = "beast.evolution.tree.ConstrainedRandomTree"
	case d.hasUniformCalibration():
		spec = "beast.evolution.tree.SimpleRandomTree"
	}

	in := d.run.Add("init",
		"estimate", "false",
		"id", "startingTree",
		"initial", Ref(TreeID),
		"taxonset", Ref(TaxaID),
		"spec", spec,
	)
	if spec == "beast.evolution.tree.ConstrainedRandomTree" {
		in.Set("constraints", Ref(ConstraintID))
	}
	if d.estimated {
		in.Set("rootHeight", Num(d.height))
	}
	if spec == "beast.evolution.tree.SimpleRandomTree" {
		return
	}
	pop := in.Add("populationModel", "spec", "ConstantPopulation")
	pop.Add("popSize", "spec", "parameter.RealParameter", "value", "1")
}

func (d *Document) hasUniformCalibration() bool {
	for _, c := range d.cfg.Calibrations {
		if c.IsUniform() {
			return true
		}
	}
	return false
}

func (d *Document) addPrior() {
	if d.cfg.Monophyly != "" {
		d.prior.Add("distribution",
			"id", ConstraintID,
			"spec", "beast.math.distributions.MultiMonophyleticConstraint",
			"tree", Ref(TreeID),
			"newick", d.cfg.Monophyly,
		)
	}

	for i, c := range d.cfg.Calibrations {
		if len(c.Taxa) == 0 {
			continue
		}
		cp := d.prior.Add("distribution",
			"id", c.Clade+"-calibration.prior",
			"spec", "beast.math.distributions.MRCAPrior",
			"tree", Ref(TreeID),
		)
		if len(c.Taxa) > 1 {
			cp.Set("monophyletic", "true")
		}
		ts := cp.Add("taxonset", "id", c.Clade+".taxa", "spec", "TaxonSet")
		for _, tx := range c.Taxa {
			ts.Add("taxon", "idref", tx)
		}

		if c.IsUniform() {
			cp.Add("Uniform",
				"id", fmt.Sprintf("CalibrationUniform.%d", i),
				"name", "distr",
				"lower", Num(c.Lower),
				"upper", Num(c.Upper),
			)
			continue
		}
		n := cp.Add("Normal",
			"id", fmt.Sprintf("CalibrationNormal.%d", i),
			"name", "distr",
			"offset", Num(c.Mean()),
		)
		n.Add("parameter",
			"id", "parameter.hyperNormal-mean-"+c.Clade+".prior",
			"name", "mean",
			"estimate", "false",
		).SetText("0.0")
		n.Add("parameter",
			"id", "parameter.hyperNormal-sigma-"+c.Clade+".prior",
			"name", "sigma",
			"estimate", "false",
		).SetText(Num(c.StdDev()))
	}

	switch d.cfg.TreePrior {
	case settings.Yule:
		d.addYule()
	case settings.BirthDeath:
		d.addBirthDeath()
	case settings.Coalescent:
		d.addCoalescent()
	}
}

// calibratedYule returns true
// if the calibrated Yule model can be used:
// a single calibration,
// or two nested calibrations.
func (d *Document) calibratedYule() bool {
	switch len(d.cfg.Calibrations) {
	case 1:
		return true
	case 2:
		return calibration.Nested(d.cfg.Calibrations[0], d.cfg.Calibrations[1])
	}
	return false
}

func (d *Document) addYule() {
	yule := d.prior.Add("distribution",
		"id", "YuleModel.t:beastgenTree",
		"tree", Ref(TreeID),
	)
	if d.calibratedYule() {
		yule.Set("spec", "beast.evolution.speciation.CalibratedYuleModel")
		yule.Set("birthRate", Ref(BirthRateID))
	} else {
		yule.Set("spec", "beast.evolution.speciation.YuleModel")
		yule.Set("birthDiffRate", Ref(BirthRateID))
		if d.rootCalibration() {
			yule.Set("conditionalOnRoot", "true")
		}
	}

	p := d.prior.Add("prior",
		"id", "YuleBirthRatePrior.t:beastgenTree",
		"name", "distribution",
		"x", Ref(BirthRateID),
	)
	p.Add("Uniform", "id", "Uniform.0", "name", "distr", "upper", "Infinity")
}

func (d *Document) rootCalibration() bool {
	for _, c := range d.cfg.Calibrations {
		if c.IsRoot() {
			return true
		}
	}
	return false
}

func (d *Document) addBirthDeath() {
	d.prior.Add("distribution",
		"id", "BirthDeathModel.t:beastgenTree",
		"spec", "beast.evolution.speciation.BirthDeathGernhard08Model",
		"tree", Ref(TreeID),
		"birthRate", Ref(BirthRateID),
		"relativeDeathRate", Ref(DeathRateID),
		"sampleProbability", Ref(SamplingID),
		"type", "restricted",
	)

	p := d.prior.Add("prior",
		"id", "BirthRatePrior.t:beastgenTree",
		"name", "distribution",
		"x", Ref(BirthRateID),
	)
	p.Add("Uniform", "id", "Uniform.0", "name", "distr", "upper", "Infinity")

	p = d.prior.Add("prior",
		"id", "relativeDeathRatePrior.t:beastgenTree",
		"name", "distribution",
		"x", Ref(DeathRateID),
	)
	p.Add("Uniform", "id", "Uniform.1", "name", "distr", "upper", "Infinity")

	p = d.prior.Add("prior",
		"id", "samplingPrior.t:beastgenTree",
		"name", "distribution",
		"x", Ref(SamplingID),
	)
	p.Add("Uniform", "id", "Uniform.3", "name", "distr", "lower", "0", "upper", "1")
}

func (d *Document) addCoalescent() {
	c := d.prior.Add("distribution", "id", "Coalescent.t:beastgenTree", "spec", "Coalescent")
	pop := c.Add("populationModel", "id", "ConstantPopulation:beastgenTree", "spec", "ConstantPopulation")
	pop.Add("parameter", "idref", PopSizeID, "name", "popSize")
	c.Add("treeIntervals", "id", "TreeIntervals", "spec", "TreeIntervals", "tree", Ref(TreeID))
}

func (d *Document) addOperators() {
	tree := Ref(TreeID)
	if d.cfg.SampleTopology {
		d.run.Add("operator", "id", "SubtreeSlide.t:beastgenTree", "spec", "SubtreeSlide", "tree", tree, "markclades", "true", "weight", "15.0")
		d.run.Add("operator", "id", "narrow.t:beastgenTree", "spec", "Exchange", "tree", tree, "markclades", "true", "weight", "15.0")
		d.run.Add("operator", "id", "wide.t:beastgenTree", "isNarrow", "false", "spec", "Exchange", "tree", tree, "markclades", "true", "weight", "3.0")
		d.run.Add("operator", "id", "WilsonBalding.t:beastgenTree", "spec", "WilsonBalding", "tree", tree, "markclades", "true", "weight", "3.0")
	}

	birth := d.cfg.TreePrior == settings.Yule || d.cfg.TreePrior == settings.BirthDeath
	if d.cfg.SampleBranchLengths {
		d.run.Add("operator", "id", "UniformOperator.t:beastgenTree", "spec", "Uniform", "tree", tree, "weight", "30.0")
		d.run.Add("operator", "id", "treeScaler.t:beastgenTree", "scaleFactor", "0.5", "spec", "ScaleOperator", "tree", tree, "weight", "3.0")
		d.run.Add("operator", "id", "treeRootScaler.t:beastgenTree", "scaleFactor", "0.5", "spec", "ScaleOperator", "tree", tree, "rootOnly", "true", "weight", "3.0")

		if birth {
			ud := d.run.Add("operator", "id", "UpDown", "spec", "UpDownOperator", "scaleFactor", "0.5", "weight", "3.0")
			ud.Add("tree", "idref", TreeID, "name", "up")
			ud.Add("parameter", "idref", BirthRateID, "name", "down")

			// clock rates are only identifiable
			// with calibrations
			if len(d.cfg.Calibrations) > 0 {
				for _, c := range d.cfg.Clocks {
					if id := c.RateID(); id != "" {
						ud.Add("parameter", "idref", id, "name", "down")
					}
				}
			}
		}
	}

	switch d.cfg.TreePrior {
	case settings.Yule, settings.BirthDeath:
		d.run.Add("operator", "id", "YuleBirthRateScaler.t:beastgenTree", "spec", "ScaleOperator", "parameter", Ref(BirthRateID), "scaleFactor", "0.5", "weight", "3.0")
		if d.cfg.TreePrior == settings.BirthDeath {
			d.run.Add("operator", "id", "SamplingScaler.t:beastgenTree", "spec", "ScaleOperator", "parameter", Ref(SamplingID), "scaleFactor", "0.8", "weight", "1.0")
			d.run.Add("operator", "id", "DeathRateScaler.t:beastgenTree", "spec", "ScaleOperator", "parameter", Ref(DeathRateID), "scaleFactor", "0.5", "weight", "3.0")
		}
	case settings.Coalescent:
		d.run.Add("operator", "id", "PopulationSizeScaler.t:beastgenTree", "spec", "ScaleOperator", "parameter", Ref(PopSizeID), "scaleFactor", "0.5", "weight", "3.0")
	}
}

func (d *Document) addLoggers() {
	p := d.cfg.Params
	every := strconv.Itoa(p.LogEvery())
	basename := p.Basename()

	if p.ScreenLog() {
		screen := d.run.Add("logger", "id", "screenlog", "logEvery", every)
		screen.Add("log", "arg", Ref("posterior"), "id", "ESS.0", "spec", "util.ESS")
		screen.Add("log", "idref", "prior")
		screen.Add("log", "idref", "likelihood")
		screen.Add("log", "idref", "posterior")
	}

	if p.LogProbs() || p.LogParams() {
		trace := d.run.Add("logger",
			"id", "tracelog",
			"fileName", basename+".log",
			"logEvery", every,
			"model", Ref("posterior"),
			"sanitiseHeaders", "true",
			"sort", "smart",
		)
		if p.LogProbs() {
			trace.Add("log", "idref", "prior")
			trace.Add("log", "idref", "likelihood")
			trace.Add("log", "idref", "posterior")
		}
		if p.LogParams() {
			switch d.cfg.TreePrior {
			case settings.Yule:
				trace.Add("log", "idref", BirthRateID)
			case settings.BirthDeath:
				trace.Add("log", "idref", BirthRateID)
				trace.Add("log", "idref", DeathRateID)
				trace.Add("log", "idref", SamplingID)
			case settings.Coalescent:
				trace.Add("log", "idref", PopSizeID)
			}
			if d.TreeLogging() {
				trace.Add("log", "id", "treeStats", "spec", "beast.evolution.tree.TreeStatLogger", "tree", Ref(TreeID))
			}
			for _, c := range d.cfg.Clocks {
				c.Logs(trace)
			}
			for _, m := range d.cfg.Models {
				m.Logs(trace)
			}
		}
	}

	if p.LogTrees() && d.TreeLogging() {
		tl := d.run.Add("logger",
			"mode", "tree",
			"fileName", basename+".nex",
			"logEvery", every,
			"id", "treeWithMetaDataLogger",
		)
		tl.Add("log", "id", "TreeLogger", "spec", "beast.evolution.tree.TreeWithMetaDataLogger", "tree", Ref(TreeID))
	}
}
