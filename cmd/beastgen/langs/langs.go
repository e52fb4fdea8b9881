// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package langs implements a command to print
// the languages of a BEASTgen project.
package langs

import (
	"fmt"
	"strings"

	"github.com/js-arias/beastgen/analysis"
	"github.com/js-arias/beastgen/project"
	"github.com/js-arias/command"
	"golang.org/x/exp/slices"
)

var Command = &command.Command{
	Usage: "langs [--lineage] <project-file>",
	Short: "print the languages of a project",
	Long: `
Command langs reads a BEASTgen project and prints the languages included in
the analysis in the standard output.

The argument of the command is the name of the project file.

If the flag --lineage is defined, the classification of each language will be
printed after the language.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var lineageFlag bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&lineageFlag, "lineage", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	a, err := analysis.Load(p, nil)
	if err != nil {
		return err
	}

	ls := a.Languages()
	slices.SortFunc(ls, func(x, y string) int {
		return strings.Compare(strings.ToLower(x), strings.ToLower(y))
	})

	for _, l := range ls {
		if !lineageFlag {
			fmt.Fprintf(c.Stdout(), "%s\n", l)
			continue
		}
		ln, ok := a.Classification().Lineage(l)
		if !ok {
			fmt.Fprintf(c.Stdout(), "%s\t[unclassified]\n", l)
			continue
		}
		fmt.Fprintf(c.Stdout(), "%s\t%s\n", l, strings.Join(ln, ", "))
	}
	return nil
}
