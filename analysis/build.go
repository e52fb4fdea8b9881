// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package analysis

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/js-arias/beastgen/beastxml"
	"github.com/js-arias/beastgen/calibration"
	"github.com/js-arias/beastgen/clock"
	"github.com/js-arias/beastgen/model"
	"github.com/js-arias/beastgen/settings"
	"go.uber.org/zap"
)

// Document compiles the analysis
// into a BEAST XML document.
func (a *Analysis) Document() (*beastxml.Document, error) {
	s := a.settings

	clades, err := a.calibrations()
	if err != nil {
		return nil, err
	}

	clocks, err := a.clocks(len(clades) > 0)
	if err != nil {
		return nil, err
	}
	if len(clades) == 0 {
		a.logger.Info("No calibrations given; clock rates are fixed.")
	}

	cfg := beastxml.Config{
		Languages:           a.Languages(),
		Params:              a.params,
		TreePrior:           s.Languages.TreePrior,
		Calibrations:        clades,
		SampleTopology:      s.Languages.TopologySampled(),
		SampleBranchLengths: s.Languages.BranchLengthsSampled(),
		Source:              a.source,
		Date:                time.Now(),
	}

	used := make(map[string]bool)
	for i, ms := range s.Models {
		c := linkClock(ms, clocks)
		m, err := model.New(ms, a.data[i], a.langs, c)
		if err != nil {
			return nil, err
		}
		if !used[c.Name()] {
			used[c.Name()] = true
			cfg.Clocks = append(cfg.Clocks, c)
		}
		for _, d := range m.Dependencies() {
			a.dependency(d)
		}
		a.logger.Debug("model",
			zap.String("name", m.Name()),
			zap.String("type", m.Kind()),
			zap.String("clock", c.Name()),
			zap.Int("features", len(m.Features())),
			zap.Ints("partitions", m.Partitions()),
		)
		cfg.Models = append(cfg.Models, m)

		if a.params.EmbedData() {
			cfg.Data = append(cfg.Data, beastxml.Embedded{
				Name:    filepath.Base(a.files[i]),
				Content: a.raw[i],
			})
		}
	}
	for _, c := range s.Clocks {
		if !used[c.Name] {
			a.logger.Info(fmt.Sprintf("Clock %q is not used by any model; it will be ignored.", c.Name))
		}
	}
	for _, c := range cfg.Clocks {
		if r, ok := c.(*clock.RelaxedClock); ok {
			a.logger.Debug("relaxed clock rate categories",
				zap.String("clock", r.Name()),
				zap.String("distribution", r.Distribution()),
				zap.Float64s("rates", r.Cats()),
			)
		}
	}

	if s.Languages.Monophyly {
		p, err := s.Policy()
		if err != nil {
			return nil, err
		}
		cfg.Monophyly, err = a.Constraint(p)
		if err != nil {
			return nil, fmt.Errorf("monophyly constraint: %w", err)
		}
	}

	cfg.StartingTree, err = a.startingTree()
	if err != nil {
		return nil, err
	}
	if cfg.Monophyly != "" && cfg.StartingTree == "" && len(a.langs) > 2 {
		a.dependency("ConstrainedRandomTree is implemented in the BEAST package \"BEASTLabs\".")
	}

	doc := beastxml.New(cfg)
	if rate, height, ok := doc.BirthRate(); ok {
		a.logger.Debug("birth rate estimate",
			zap.Float64("rate", rate),
			zap.Float64("height", height),
		)
	}
	if a.params.LogTrees() && !doc.TreeLogging() {
		a.logger.Info("Tree logging disabled because the starting tree is known and fixed.")
	}
	return doc, nil
}

// dependency writes a notice
// of a required BEAST package.
func (a *Analysis) dependency(msg string) {
	a.logger.Named("dependency").Info(msg)
}

// calibrations returns the calibrated clades
// with at least one language of the analysis.
func (a *Analysis) calibrations() ([]calibration.Clade, error) {
	cals, err := a.settings.CalibrationList()
	if err != nil {
		return nil, err
	}

	var clades []calibration.Clade
	for _, c := range cals {
		cc := c.Resolve(a.langs, a.class)
		if len(cc.Taxa) == 0 {
			a.logger.Info(fmt.Sprintf("Calibration on clade %q ignored: no languages in the clade.", c.Clade))
			continue
		}
		clades = append(clades, cc)
	}
	return clades, nil
}

// clocks returns the clocks of the analysis
// including the default clock.
// If there are no calibrations,
// clock rates are fixed.
func (a *Analysis) clocks(calibrated bool) (map[string]clock.Clock, error) {
	defs := make([]settings.Clock, 0, len(a.settings.Clocks)+1)
	hasDefault := false
	for _, c := range a.settings.Clocks {
		if c.Name == clock.DefaultName {
			hasDefault = true
		}
		defs = append(defs, c)
	}
	if !hasDefault {
		defs = append(defs, settings.Clock{
			Name: clock.DefaultName,
			Type: clock.Strict,
		})
	}

	fixed := false
	branches := clock.Branches(len(a.langs))
	clocks := make(map[string]clock.Clock, len(defs))
	for _, c := range defs {
		if !calibrated && c.EstimatesRate() {
			c.EstimateRate = &fixed
			a.logger.Debug("clock rate fixed without calibrations", zap.String("clock", c.Name))
		}
		cl, err := clock.New(c, branches)
		if err != nil {
			return nil, err
		}
		clocks[c.Name] = cl
	}
	return clocks, nil
}

// linkClock returns the clock of a model.
// A model uses the clock explicitly set,
// or a clock with the model name,
// or the default clock.
func linkClock(m settings.Model, clocks map[string]clock.Clock) clock.Clock {
	if m.Clock != "" {
		return clocks[m.Clock]
	}
	if c, ok := clocks[m.Name]; ok {
		return c
	}
	return clocks[clock.DefaultName]
}
