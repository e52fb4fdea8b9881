// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package add implements a command to add a file
// to a BEASTgen project.
package add

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/js-arias/beastgen/classify"
	"github.com/js-arias/beastgen/mcmc"
	"github.com/js-arias/beastgen/project"
	"github.com/js-arias/beastgen/settings"
	"github.com/js-arias/beastgen/taxlist"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: "add --set <dataset> <project-file> <file>",
	Short: "add a file to a project",
	Long: `
Command add adds the path of a file to a BEASTgen project. The file is read
before it is added, to check that it is valid.

The first argument of the command is the name of the project file. If no
project exists, a new project will be created.

The second argument is the valid path of a file. If there is a file of the
same dataset already defined in the project, its path will be replaced by the
path of the added file.

The dataset of the added file must be explicitly defined using the flag --set
with one of the following values:

	settings        for the analysis settings
	mcmc            for the MCMC parameters
	classification  for a classification file
	glottolog       for a Glottolog newick tree
	langs           for a list of languages
	families        for a list of families

To add starting trees use the command 'beastgen tree add'.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var setFlag string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&setFlag, "set", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if len(args) < 2 {
		return c.UsageError("expecting dataset file")
	}
	if setFlag == "" {
		return c.UsageError("flag --set undefined")
	}
	set, err := project.ParseDataset(setFlag)
	if err != nil {
		return c.UsageError(fmt.Sprintf("flag --set: %v", err))
	}
	if set == project.Trees {
		return c.UsageError("flag --set: use 'beastgen tree add' to add trees")
	}

	pFile := args[0]
	p, err := openProject(pFile)
	if err != nil {
		return err
	}

	if err := check(set, args[1]); err != nil {
		return err
	}
	p.Add(set, args[1])
	if err := p.Write(); err != nil {
		return err
	}
	return nil
}

func openProject(name string) (*project.Project, error) {
	p, err := project.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		p := project.New()
		p.SetName(name)
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open project %q: %v", name, err)
	}
	return p, nil
}

// check reads a file to check that is valid
// for a dataset.
func check(set project.Dataset, name string) error {
	switch set {
	case project.Settings:
		_, err := settings.ReadFile(name)
		return err
	case project.MCMC:
		_, err := mcmc.Read(name)
		return err
	}

	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	switch set {
	case project.Classification:
		_, err = classify.ReadTSV(f)
	case project.Glottolog:
		_, err = classify.ReadNewick(f)
	case project.Langs, project.Families:
		var ls taxlist.List
		ls, err = taxlist.Read(f)
		if err == nil && len(ls) == 0 {
			err = errors.New("empty list")
		}
	default:
		return fmt.Errorf("unsupported dataset %q", strings.ToLower(string(set)))
	}
	if err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}
