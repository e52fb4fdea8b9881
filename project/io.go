// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"fmt"
	"os"

	"github.com/js-arias/beastgen/classify"
	"github.com/js-arias/beastgen/mcmc"
	"github.com/js-arias/beastgen/settings"
	"github.com/js-arias/beastgen/taxlist"
	"github.com/js-arias/timetree"
)

// Classification reads the language classification
// as defined in a project.
// If both a classification file
// and a Glottolog tree are defined,
// the classifications in the file
// replace the ones from the tree.
func (p *Project) Classification() (*classify.Classification, error) {
	tName := p.Path(Glottolog)
	cName := p.Path(Classification)
	if tName == "" && cName == "" {
		return nil, fmt.Errorf("classification not defined in project %q", p.name)
	}

	c := classify.New()
	if tName != "" {
		f, err := os.Open(tName)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		c, err = classify.ReadNewick(f)
		if err != nil {
			return nil, fmt.Errorf("on file %q: %v", tName, err)
		}
	}

	if cName == "" {
		return c, nil
	}
	f, err := os.Open(cName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tc, err := classify.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", cName, err)
	}
	for _, tx := range tc.Taxa() {
		ch, _ := tc.Chain(tx)
		c.Add(tx, ch)
	}
	return c, nil
}

// Families reads the list of families
// as defined in a project.
// If no list is defined,
// it returns an empty list.
func (p *Project) Families() (taxlist.List, error) {
	return p.list(Families)
}

// Langs reads the list of languages
// as defined in a project.
// If no list is defined,
// it returns an empty list.
func (p *Project) Langs() (taxlist.List, error) {
	return p.list(Langs)
}

func (p *Project) list(set Dataset) (taxlist.List, error) {
	name := p.Path(set)
	if name == "" {
		return taxlist.New(), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ls, err := taxlist.Read(f)
	if err != nil {
		return nil, fmt.Errorf("when reading %q: %v", name, err)
	}
	return ls, nil
}

// MCMC reads the MCMC parameters
// as defined in a project.
// If no parameter file is defined,
// it returns the default parameters.
func (p *Project) MCMC() (*mcmc.Params, error) {
	name := p.Path(MCMC)
	if name == "" {
		return mcmc.New(""), nil
	}
	return mcmc.Read(name)
}

// Settings reads the analysis settings
// as defined in a project.
func (p *Project) Settings() (*settings.Settings, error) {
	name := p.Path(Settings)
	if name == "" {
		return nil, fmt.Errorf("settings not defined in project %q", p.name)
	}
	return settings.ReadFile(name)
}

// Trees reads a tree collection file
// as defined in a project.
func (p *Project) Trees() (*timetree.Collection, error) {
	name := p.Path(Trees)
	if name == "" {
		return nil, fmt.Errorf("trees not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := timetree.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return c, nil
}
