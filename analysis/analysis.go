// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package analysis compiles a BEASTgen project
// into a BEAST XML document.
//
// An analysis is loaded from a project:
// the settings,
// the MCMC parameters,
// the classification of the languages,
// the data of each substitution model,
// and, if defined,
// a collection of starting trees.
// The languages of the analysis
// are the languages with data
// that pass the language filters of the project.
package analysis

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/js-arias/beastgen/classify"
	"github.com/js-arias/beastgen/mcmc"
	"github.com/js-arias/beastgen/monophyly"
	"github.com/js-arias/beastgen/project"
	"github.com/js-arias/beastgen/settings"
	"github.com/js-arias/beastgen/taxlist"
	"github.com/js-arias/beastgen/trait"
	"github.com/js-arias/timetree"
	"go.uber.org/zap"
)

// An Analysis is a project
// ready to be compiled.
type Analysis struct {
	logger *zap.Logger

	settings *settings.Settings
	source   string
	dir      string

	params *mcmc.Params
	class  *classify.Classification
	trees  *timetree.Collection

	data  []*trait.Data
	files []string
	raw   []string

	langs []string
}

// Load reads the files of a project
// and builds the list of languages of the analysis.
// Messages are written into the logger,
// if logger is nil,
// no messages will be written.
func Load(p *project.Project, logger *zap.Logger) (*Analysis, error) {
	name := p.Path(project.Settings)
	if name == "" {
		return nil, fmt.Errorf("settings not defined in project %q", p.Name())
	}
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return load(p, src, name, filepath.Dir(name), logger)
}

// LoadSettings is like Load,
// but the settings are read from r
// instead of the settings file of the project.
// Data paths are relative to the project file.
func LoadSettings(p *project.Project, r io.Reader, logger *zap.Logger) (*Analysis, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return load(p, src, "stdin", filepath.Dir(p.Name()), logger)
}

func load(p *project.Project, src []byte, name, dir string, logger *zap.Logger) (*Analysis, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Analysis{
		logger: logger,
		source: string(src),
		dir:    dir,
	}

	var err error
	a.settings, err = settings.Read(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}

	a.params, err = p.MCMC()
	if err != nil {
		return nil, err
	}
	a.class, err = p.Classification()
	if err != nil {
		return nil, err
	}
	if p.Path(project.Trees) != "" {
		a.trees, err = p.Trees()
		if err != nil {
			return nil, err
		}
	}

	if err := a.readData(); err != nil {
		return nil, err
	}

	langs, err := p.Langs()
	if err != nil {
		return nil, err
	}
	families, err := p.Families()
	if err != nil {
		return nil, err
	}
	if err := a.selectLanguages(langs, families); err != nil {
		return nil, err
	}
	return a, nil
}

// Classification returns the classification
// of the languages.
func (a *Analysis) Classification() *classify.Classification {
	return a.class
}

// Languages returns the languages
// included in the analysis.
func (a *Analysis) Languages() []string {
	return slices.Clone(a.langs)
}

// Params returns the MCMC parameters of the analysis.
func (a *Analysis) Params() *mcmc.Params {
	return a.params
}

// Settings returns the settings of the analysis.
func (a *Analysis) Settings() *settings.Settings {
	return a.settings
}

// selectLanguages builds the language list
// from the languages with data in each model.
func (a *Analysis) selectLanguages(langs, families taxlist.List) error {
	for _, l := range a.settings.Languages.Languages {
		langs.Add(l)
	}
	for _, f := range a.settings.Languages.Families {
		families.Add(f)
	}
	if len(langs) > 0 && len(families) > 0 {
		return fmt.Errorf("both a language list and a family list are defined")
	}
	famList := families.IDs()

	var sets []map[string]bool
	for _, d := range a.data {
		set := make(map[string]bool)
		for _, tx := range d.Taxa() {
			if len(langs) > 0 && !langs.Has(tx) {
				continue
			}
			if len(famList) > 0 && !a.class.InFamily(tx, famList) {
				continue
			}
			set[tx] = true
		}
		sets = append(sets, set)
	}

	overlap := a.settings.Languages.Overlap
	in := make(map[string]bool)
	for tx := range sets[0] {
		in[tx] = true
	}
	differ := false
	for _, set := range sets[1:] {
		if len(set) != len(in) {
			differ = true
		}
		for tx := range set {
			if !in[tx] {
				differ = true
			}
			if overlap == settings.Union {
				in[tx] = true
			}
		}
		if overlap == settings.Intersection {
			for tx := range in {
				if !set[tx] {
					delete(in, tx)
				}
			}
		}
	}
	if differ {
		a.logger.Info(fmt.Sprintf("Not all data files have the same languages; using the %s of the language sets.", overlap))
	}

	for _, tx := range a.settings.Languages.Exclusions {
		delete(in, tx)
	}
	if len(in) == 0 {
		return fmt.Errorf("no languages left for the analysis")
	}

	a.langs = make([]string, 0, len(in))
	for tx := range in {
		a.langs = append(a.langs, tx)
	}
	slices.Sort(a.langs)
	a.logger.Info(fmt.Sprintf("%d languages included in analysis.", len(a.langs)))
	return nil
}

// Constraint returns the monophyly constraint
// of the classified languages of the analysis,
// using the indicated policy.
// Unclassified languages are excluded from the constraint.
func (a *Analysis) Constraint(p monophyly.Policy) (string, error) {
	var classified []string
	for _, tx := range a.langs {
		if !a.class.Has(tx) {
			continue
		}
		classified = append(classified, tx)
	}
	if n := len(a.langs) - len(classified); n > 0 {
		a.logger.Info(fmt.Sprintf("%d languages without classification excluded from the monophyly constraint.", n))
	}
	if len(classified) == 0 {
		return "", monophyly.ErrEmptyTaxa
	}
	return monophyly.Newick(a.class, classified, p)
}
