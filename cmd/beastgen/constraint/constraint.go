// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package constraint implements a command to print
// the monophyly constraint of a BEASTgen project.
package constraint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/js-arias/beastgen/analysis"
	"github.com/js-arias/beastgen/cmd/beastgen/console"
	"github.com/js-arias/beastgen/monophyly"
	"github.com/js-arias/beastgen/project"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `constraint [--start <depth>] [--end <depth>]
	[--levels <number>] [--direction <direction>]
	<project-file>`,
	Short: "print the monophyly constraint of a project",
	Long: `
Command constraint reads a BEASTgen project and prints the monophyly constraint
of the languages of the analysis in the standard output, as a newick tree
without branch lengths.

The argument of the command is the name of the project file.

Languages without a classification are excluded from the constraint.

By default, the depths of the classification used to build the constraint are
the ones defined in the project settings. The flags can be used to override the
settings:

	--start      the first depth of the classification used in the
	             constraint (0 is the most general level).
	--end        the last depth used in the constraint. If defined, the
	             direction is 'explicit'.
	--levels     the number of levels used in the constraint. Use 'all' to
	             use all levels.
	--direction  the direction in which the levels are counted, either
	             'top_down' (from the start depth towards the languages), or
	             'bottom_up' (from the deepest classification towards the
	             root).
	`,
	SetFlags: setFlags,
	Run:      run,
}

var startFlag int
var endFlag int
var levelsFlag string
var directionFlag string

func setFlags(c *command.Command) {
	c.Flags().IntVar(&startFlag, "start", -1, "")
	c.Flags().IntVar(&endFlag, "end", -1, "")
	c.Flags().StringVar(&levelsFlag, "levels", "", "")
	c.Flags().StringVar(&directionFlag, "direction", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	a, err := analysis.Load(p, console.New(c.Stderr(), false))
	if err != nil {
		return err
	}

	pol, err := a.Settings().Policy()
	if err != nil {
		return err
	}
	if err := setPolicy(c, &pol); err != nil {
		return err
	}

	nw, err := a.Constraint(pol)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout(), "%s\n", nw)
	return nil
}

func setPolicy(c *command.Command, pol *monophyly.Policy) error {
	if startFlag >= 0 {
		pol.Start = startFlag
	}
	if directionFlag != "" {
		d, err := monophyly.ParseDirection(directionFlag)
		if err != nil {
			return c.UsageError(fmt.Sprintf("flag --direction: %v", err))
		}
		if d == monophyly.Explicit && endFlag < 0 {
			return c.UsageError("flag --direction: explicit direction requires flag --end")
		}
		pol.Direction = d
	}
	if endFlag >= 0 {
		pol.Direction = monophyly.Explicit
		pol.End = endFlag
	}

	switch l := strings.ToLower(strings.TrimSpace(levelsFlag)); l {
	case "":
	case "all":
		pol.Levels = monophyly.Unlimited
	default:
		v, err := strconv.Atoi(l)
		if err != nil || v < 0 {
			return c.UsageError(fmt.Sprintf("flag --levels: invalid value %q", levelsFlag))
		}
		pol.Levels = v
	}
	return nil
}
