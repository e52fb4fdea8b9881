// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package prj implements a command to print
// the basic information of a project.
package prj

import (
	"fmt"
	"io"
	"math"

	"github.com/js-arias/beastgen/project"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: "prj <project-file>",
	Short: "print information about a project",
	Long: `
Command prj reads a BEASTgen project and prints the information of the
different project elements into the standard output.

The argument of the command is the name of the project file.
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	w := c.Stdout()
	if p.Path(project.Settings) != "" {
		if err := printSettings(w, p); err != nil {
			return err
		}
	}
	if err := printMCMC(w, p); err != nil {
		return err
	}
	if p.Path(project.Glottolog) != "" || p.Path(project.Classification) != "" {
		if err := printClassification(w, p); err != nil {
			return err
		}
	}
	if err := printLists(w, p); err != nil {
		return err
	}
	if p.Path(project.Trees) != "" {
		if err := printTrees(w, p); err != nil {
			return err
		}
	}
	return nil
}

func printSettings(w io.Writer, p *project.Project) error {
	s, err := p.Settings()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Settings:\n")
	fmt.Fprintf(w, "\tfile: %s\n", p.Path(project.Settings))
	fmt.Fprintf(w, "\ttree prior: %s\n", s.Languages.TreePrior)
	fmt.Fprintf(w, "\tmonophyly: %v\n", s.Languages.Monophyly)
	fmt.Fprintf(w, "\tcalibrations: %d\n", len(s.Calibrations))
	fmt.Fprintf(w, "\tclocks: %d\n", len(s.Clocks))
	fmt.Fprintf(w, "\tmodels:\n")
	for _, m := range s.Models {
		fmt.Fprintf(w, "\t\t%s [%s]: %s\n", m.Name, m.Model, m.Data)
	}
	fmt.Fprintf(w, "\n")
	return nil
}

func printMCMC(w io.Writer, p *project.Project) error {
	mp, err := p.MCMC()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "MCMC parameters:\n")
	if name := p.Path(project.MCMC); name != "" {
		fmt.Fprintf(w, "\tfile: %s\n", name)
	}
	fmt.Fprintf(w, "\tbasename: %s\n", mp.Basename())
	fmt.Fprintf(w, "\tchain length: %d\n", mp.ChainLength())
	fmt.Fprintf(w, "\tlog every: %d\n", mp.LogEvery())
	fmt.Fprintf(w, "\n")
	return nil
}

func printClassification(w io.Writer, p *project.Project) error {
	c, err := p.Classification()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Classification:\n")
	if name := p.Path(project.Glottolog); name != "" {
		fmt.Fprintf(w, "\tglottolog: %s\n", name)
	}
	if name := p.Path(project.Classification); name != "" {
		fmt.Fprintf(w, "\tfile: %s\n", name)
	}
	fmt.Fprintf(w, "\tclassified taxa: %d\n", c.Len())
	fmt.Fprintf(w, "\n")
	return nil
}

func printLists(w io.Writer, p *project.Project) error {
	if name := p.Path(project.Langs); name != "" {
		ls, err := p.Langs()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Languages:\n")
		fmt.Fprintf(w, "\tfile: %s\n", name)
		fmt.Fprintf(w, "\tlanguages: %d\n", len(ls))
		fmt.Fprintf(w, "\n")
	}
	if name := p.Path(project.Families); name != "" {
		ls, err := p.Families()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Families:\n")
		fmt.Fprintf(w, "\tfile: %s\n", name)
		fmt.Fprintf(w, "\tfamilies: %d\n", len(ls))
		fmt.Fprintf(w, "\n")
	}
	return nil
}

func printTrees(w io.Writer, p *project.Project) error {
	c, err := p.Trees()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Trees:\n")
	fmt.Fprintf(w, "\tfile: %s\n", p.Path(project.Trees))

	terms := make(map[string]bool)
	var min int64 = math.MaxInt64
	var max int64
	for _, tn := range c.Names() {
		t := c.Tree(tn)
		if t == nil {
			continue
		}
		ra := t.Age(t.Root())
		if ra > max {
			max = ra
		}
		if ra < min {
			min = ra
		}
		for _, tax := range t.Terms() {
			terms[tax] = true
		}
	}
	fmt.Fprintf(w, "\ttrees: %d\n", len(c.Names()))
	fmt.Fprintf(w, "\tterminals: %d\n", len(terms))
	if len(c.Names()) > 0 {
		fmt.Fprintf(w, "\troot age range: %d-%d years\n", min, max)
	}
	fmt.Fprintf(w, "\n")
	return nil
}
