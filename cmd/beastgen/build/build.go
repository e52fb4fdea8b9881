// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package build implements a command to compile
// a BEASTgen project into a BEAST XML file.
package build

import (
	"fmt"
	"os"

	"github.com/js-arias/beastgen/analysis"
	"github.com/js-arias/beastgen/beastxml"
	"github.com/js-arias/beastgen/cmd/beastgen/console"
	"github.com/js-arias/beastgen/project"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `build [-o|--output <file>] [--stdin] [-v|--verbose]
	<project-file>`,
	Short: "compile a project into a BEAST XML file",
	Long: `
Command build reads a BEASTgen project and writes a BEAST 2 XML file that
implements the analysis defined by the project settings.

The argument of the command is the name of the project file.

By default, the XML file will be named after the basename defined in the MCMC
parameters of the project (by default 'beastgen'), with the '.xml' extension.
Use the flag --output, or -o, to define a different output file. If the output
file is '-', the XML will be written in the standard output.

By default, the settings of the analysis are read from the settings file of
the project. If the flag --stdin is defined, the settings will be read from the
standard input. In that case, data files are relative to the project file.

Messages about the analysis (for example, the number of languages, or the BEAST
packages required by the analysis) are written in the standard error. Use the
flag --verbose, or -v, to write additional messages about the analysis.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var stdinFlag bool
var verbose bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().BoolVar(&stdinFlag, "stdin", false, "")
	c.Flags().BoolVar(&verbose, "verbose", false, "")
	c.Flags().BoolVar(&verbose, "v", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	logger := console.New(c.Stderr(), verbose)
	defer logger.Sync()

	var a *analysis.Analysis
	if stdinFlag {
		a, err = analysis.LoadSettings(p, c.Stdin(), logger)
	} else {
		a, err = analysis.Load(p, logger)
	}
	if err != nil {
		return err
	}

	doc, err := a.Document()
	if err != nil {
		return err
	}

	if output == "" {
		output = a.Params().Basename() + ".xml"
	}
	if output == "-" {
		return doc.Write(c.Stdout())
	}
	return writeDoc(doc)
}

func writeDoc(doc *beastxml.Document) (err error) {
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := doc.Write(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	return nil
}
