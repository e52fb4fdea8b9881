// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package settings implements the settings file
// of a BEASTgen analysis.
//
// The settings are stored as a YAML document,
// with the definition of the languages,
// calibrations,
// clocks,
// and substitution models of the analysis.
package settings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/js-arias/beastgen/calibration"
	"github.com/js-arias/beastgen/monophyly"
	"gopkg.in/yaml.v3"
)

// Settings of an analysis.
type Settings struct {
	Languages    Languages         `yaml:"languages"`
	Calibrations map[string]string `yaml:"calibrations,omitempty"`
	Clocks       []Clock           `yaml:"clocks,omitempty"`
	Models       []Model           `yaml:"models"`
}

// Languages defines the languages
// and the tree of the analysis.
type Languages struct {
	// Languages is a list of languages
	// to be included in the analysis.
	Languages []string `yaml:"languages,omitempty"`

	// Families is a list of clades
	// to be included in the analysis.
	Families []string `yaml:"families,omitempty"`

	// Exclusions are languages
	// removed from the analysis.
	Exclusions []string `yaml:"exclusions,omitempty"`

	// Overlap is the way in which language sets
	// from different data files are combined,
	// either "union" or "intersection".
	Overlap string `yaml:"overlap,omitempty"`

	Monophyly           bool   `yaml:"monophyly,omitempty"`
	MonophylyStartDepth int    `yaml:"monophyly_start_depth,omitempty"`
	MonophylyEndDepth   *int   `yaml:"monophyly_end_depth,omitempty"`
	MonophylyLevels     *int   `yaml:"monophyly_levels,omitempty"`
	MonophylyDirection  string `yaml:"monophyly_direction,omitempty"`

	SampleTopology      *bool `yaml:"sample_topology,omitempty"`
	SampleBranchLengths *bool `yaml:"sample_branch_lengths,omitempty"`

	// TreePrior is the prior of the tree:
	// "yule", "birthdeath", "coalescent", or "uniform".
	TreePrior string `yaml:"tree_prior,omitempty"`

	// StartingTree is the name of a tree
	// in the project trees file.
	StartingTree string `yaml:"starting_tree,omitempty"`
}

// Clock defines a clock model.
type Clock struct {
	Name string `yaml:"name"`

	// Type is the kind of clock:
	// "strict", "relaxed", or "random".
	Type string `yaml:"type"`

	// Distribution of a relaxed clock:
	// "lognormal", "exponential", or "gamma".
	Distribution string `yaml:"distribution,omitempty"`

	Rate         float64 `yaml:"rate,omitempty"`
	EstimateRate *bool   `yaml:"estimate_rate,omitempty"`

	// Categories is the number of rate categories
	// of a relaxed clock.
	Categories int `yaml:"categories,omitempty"`
}

// Model defines a substitution model.
type Model struct {
	Name string `yaml:"name"`

	// Model is the kind of substitution model:
	// "mk", "covarion", or "bsvs".
	Model string `yaml:"model"`

	// Data is the path of the data file.
	Data string `yaml:"data"`

	// Clock is the name of the clock used by the model.
	Clock string `yaml:"clock,omitempty"`

	RateVariation          bool    `yaml:"rate_variation,omitempty"`
	RemoveConstantFeatures *bool   `yaml:"remove_constant_features,omitempty"`
	MinimumData            float64 `yaml:"minimum_data,omitempty"`
	Binarised              *bool   `yaml:"binarised,omitempty"`
	Binarized              *bool   `yaml:"binarized,omitempty"`
}

// Tree priors.
const (
	Yule       = "yule"
	BirthDeath = "birthdeath"
	Coalescent = "coalescent"
	Uniform    = "uniform"
)

// Language set overlaps.
const (
	Union        = "union"
	Intersection = "intersection"
)

// ErrNoModels is returned when a settings file
// does not define any model.
var ErrNoModels = errors.New("settings: no models defined")

// Read reads the settings from a YAML document.
// Unknown fields are an error.
func Read(r io.Reader) (*Settings, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Settings
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoModels
		}
		return nil, fmt.Errorf("settings: %w", err)
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadFile reads the settings from a file.
func ReadFile(name string) (*Settings, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return s, nil
}

// Write writes the settings as a YAML document.
func (s *Settings) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	return enc.Close()
}

func (s *Settings) normalize() {
	l := &s.Languages
	l.Overlap = strings.ToLower(strings.TrimSpace(l.Overlap))
	if l.Overlap == "" {
		l.Overlap = Union
	}
	l.TreePrior = strings.ToLower(strings.TrimSpace(l.TreePrior))
	if l.TreePrior == "" {
		l.TreePrior = Yule
	}

	for i := range s.Clocks {
		c := &s.Clocks[i]
		c.Name = strings.TrimSpace(c.Name)
		c.Type = strings.ToLower(strings.TrimSpace(c.Type))
		c.Distribution = strings.ToLower(strings.TrimSpace(c.Distribution))
	}
	for i := range s.Models {
		m := &s.Models[i]
		m.Name = strings.TrimSpace(m.Name)
		m.Model = strings.ToLower(strings.TrimSpace(m.Model))
		m.Clock = strings.TrimSpace(m.Clock)
		if m.Binarised == nil {
			m.Binarised = m.Binarized
		}
		m.Binarized = nil
	}
}

// Validate returns an error
// if the settings are invalid.
func (s *Settings) Validate() error {
	l := s.Languages
	if len(l.Languages) > 0 && len(l.Families) > 0 {
		return fmt.Errorf("settings: languages and families both defined")
	}
	switch l.Overlap {
	case Union, Intersection:
	default:
		return fmt.Errorf("settings: overlap must be %q or %q, found %q", Union, Intersection, l.Overlap)
	}
	switch l.TreePrior {
	case Yule, BirthDeath, Coalescent, Uniform:
	default:
		return fmt.Errorf("settings: unknown tree prior %q", l.TreePrior)
	}
	if _, err := s.Policy(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if _, err := s.CalibrationList(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	clocks := make(map[string]bool)
	for i, c := range s.Clocks {
		if c.Name == "" {
			return fmt.Errorf("settings: clock %d: undefined name", i+1)
		}
		if clocks[c.Name] {
			return fmt.Errorf("settings: clock %q: repeated name", c.Name)
		}
		clocks[c.Name] = true
		switch c.Type {
		case "strict", "relaxed", "random":
		default:
			return fmt.Errorf("settings: clock %q: unknown type %q", c.Name, c.Type)
		}
		if c.Rate < 0 {
			return fmt.Errorf("settings: clock %q: invalid rate %v", c.Name, c.Rate)
		}
	}

	if len(s.Models) == 0 {
		return ErrNoModels
	}
	models := make(map[string]bool)
	for i, m := range s.Models {
		if m.Name == "" {
			return fmt.Errorf("settings: model %d: undefined name", i+1)
		}
		if models[m.Name] {
			return fmt.Errorf("settings: model %q: repeated name", m.Name)
		}
		models[m.Name] = true
		if m.Model == "" {
			return fmt.Errorf("settings: model %q: model not specified", m.Name)
		}
		switch m.Model {
		case "mk", "covarion", "bsvs":
		default:
			return fmt.Errorf("settings: model %q: unknown model type %q", m.Name, m.Model)
		}
		if m.Data == "" {
			return fmt.Errorf("settings: model %q: data source not specified", m.Name)
		}
		if m.Clock != "" && m.Clock != "default" && !clocks[m.Clock] {
			return fmt.Errorf("settings: model %q: unknown clock %q", m.Name, m.Clock)
		}
		if m.MinimumData < 0 || m.MinimumData > 100 {
			return fmt.Errorf("settings: model %q: invalid minimum data %v", m.Name, m.MinimumData)
		}
	}
	return nil
}

// Policy returns the policy used to build
// the monophyly constraint.
func (s *Settings) Policy() (monophyly.Policy, error) {
	l := s.Languages
	p := monophyly.Policy{
		Start:  l.MonophylyStartDepth,
		Levels: monophyly.Unlimited,
	}
	if l.MonophylyLevels != nil {
		if *l.MonophylyLevels < 0 {
			return monophyly.Policy{}, fmt.Errorf("invalid monophyly levels %d", *l.MonophylyLevels)
		}
		p.Levels = *l.MonophylyLevels
	}

	// an explicit end depth always takes precedence
	if l.MonophylyEndDepth != nil {
		p.Direction = monophyly.Explicit
		p.End = *l.MonophylyEndDepth
		return p, nil
	}

	d, err := monophyly.ParseDirection(l.MonophylyDirection)
	if err != nil {
		return monophyly.Policy{}, err
	}
	if d == monophyly.Explicit {
		return monophyly.Policy{}, fmt.Errorf("explicit monophyly direction without an end depth")
	}
	p.Direction = d
	return p, nil
}

// CalibrationList returns the calibrations
// sorted by clade.
// A calibration key might include several clades
// separated by commas.
func (s *Settings) CalibrationList() ([]calibration.Calibration, error) {
	var cals []calibration.Calibration
	seen := make(map[string]bool)
	for clades, dates := range s.Calibrations {
		for _, cl := range strings.Split(clades, ",") {
			cl = strings.TrimSpace(cl)
			if cl == "" {
				continue
			}
			c, err := calibration.Parse(cl, dates)
			if err != nil {
				return nil, err
			}
			if seen[c.Clade] {
				return nil, fmt.Errorf("calibration %q: repeated clade", c.Clade)
			}
			seen[c.Clade] = true
			cals = append(cals, c)
		}
	}
	slices.SortFunc(cals, func(a, b calibration.Calibration) int {
		return strings.Compare(a.Clade, b.Clade)
	})
	return cals, nil
}

// TopologySampled returns true if the tree topology
// is sampled.
func (l Languages) TopologySampled() bool {
	if l.SampleTopology == nil {
		return true
	}
	return *l.SampleTopology
}

// BranchLengthsSampled returns true if the branch lengths
// are sampled.
func (l Languages) BranchLengthsSampled() bool {
	if l.SampleBranchLengths == nil {
		return true
	}
	return *l.SampleBranchLengths
}

// EstimatesRate returns true if the clock rate
// is estimated.
func (c Clock) EstimatesRate() bool {
	if c.EstimateRate == nil {
		return true
	}
	return *c.EstimateRate
}

// IsBinarised returns true if the data
// should be binarised.
func (m Model) IsBinarised() bool {
	if m.Binarised == nil {
		return false
	}
	return *m.Binarised
}

// RemovesConstant returns true if constant features
// are removed from the data.
func (m Model) RemovesConstant() bool {
	if m.RemoveConstantFeatures == nil {
		return true
	}
	return *m.RemoveConstantFeatures
}
