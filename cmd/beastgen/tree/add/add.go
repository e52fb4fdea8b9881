// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package add implements a command to add starting trees
// to a BEASTgen project.
package add

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/js-arias/beastgen/cmd/beastgen/console"
	"github.com/js-arias/beastgen/project"
	"github.com/js-arias/command"
	"github.com/js-arias/timetree"
	"go.uber.org/zap"
)

var Command = &command.Command{
	Usage: `add [-f|--file <tree-file>]
	[--newick <name>] [--age <years>] [--strict]
	<project-file> [<tree-file>...]`,
	Short: "add starting trees to a BEASTgen project",
	Long: `
Command add reads one or more time calibrated trees and adds them to a
BEASTgen project, to be used as starting trees of the analysis.

The first argument of the command is the name of the project file. If no
project file exists, a new project will be created.

One or more tree files can be given as arguments. If no file is given the
trees will be read from the standard input.

By default, the input is expected to be in the form of tab-delimited tree
files. To import newick trees (i.e., trees in parenthetical format), use the
flag --newick with a name to be defined for the trees found in the input
files. Newick branch lengths are read in million years (i.e., a branch of
2000 years has a length of 0.002). By default, the age of the root will be
calculated from the largest branch length between any terminal and the root.
To set a different root age, use the flag --age, with the age of the root in
years.

The terminals of the trees are checked against the languages of the project.
If the project has a classification, terminals without classification are
reported, as they are excluded from the monophyly constraint. If the project
has a language list, the languages of the list that are not in a tree are
reported, as the starting tree must include all the languages of the
analysis. With the flag --strict these problems are errors, and no tree is
added. A tree with a repeated terminal is always an error.

By default the trees will be stored in the tree file currently defined for the
project. If the project does not have a tree file, a new one will be created
with the name 'trees.tab'. A different tree file name can be defined using the
flag --file, or -f. If this flag is used, and there is tree file already
defined, then a new file with that name will be created, and used as the tree
file for the project (previously defined trees will be kept).

If the project includes more than one tree, the tree used as starting tree must
be set with the 'starting_tree' field of the settings file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

// defaultTreeFile is the tree file
// of a project without trees.
const defaultTreeFile = "trees.tab"

var treeFile string
var newickName string
var rootAge int
var strict bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeFile, "file", "", "")
	c.Flags().StringVar(&treeFile, "f", "", "")
	c.Flags().StringVar(&newickName, "newick", "", "")
	c.Flags().IntVar(&rootAge, "age", 0, "")
	c.Flags().BoolVar(&strict, "strict", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if rootAge < 0 {
		return c.UsageError("flag --age: root age must be positive")
	}
	if rootAge > 0 && newickName == "" {
		return c.UsageError("flag --age: only valid with --newick")
	}

	p, err := openProject(args[0])
	if err != nil {
		return err
	}
	tc, err := projectTrees(p)
	if err != nil {
		return err
	}
	ck, err := newChecker(p)
	if err != nil {
		return err
	}
	logger := console.New(c.Stderr(), false)

	args = args[1:]
	if len(args) == 0 {
		args = append(args, "-")
	}
	for i, a := range args {
		nc, err := readInput(c.Stdin(), a, i)
		if err != nil {
			return err
		}
		if err := addTrees(tc, nc, ck, logger); err != nil {
			return fmt.Errorf("when adding trees from %q: %v", inputName(a), err)
		}
	}

	if treeFile == "" {
		treeFile = p.Path(project.Trees)
		if treeFile == "" {
			treeFile = defaultTreeFile
		}
	}
	if err := writeTrees(tc, treeFile); err != nil {
		return err
	}
	p.Add(project.Trees, treeFile)
	return p.Write()
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

// projectTrees returns the trees already stored in the project.
func projectTrees(p *project.Project) (*timetree.Collection, error) {
	if p.Path(project.Trees) == "" {
		return timetree.NewCollection(), nil
	}
	tc, err := p.Trees()
	if err != nil {
		return nil, fmt.Errorf("on project %q: %v", p.Name(), err)
	}
	return tc, nil
}

// addTrees validates the trees of a collection
// and adds them to the project trees.
func addTrees(tc, nc *timetree.Collection, ck *checker, logger *zap.Logger) error {
	for _, tn := range nc.Names() {
		t := nc.Tree(tn)
		r, err := ck.check(t)
		if err != nil {
			return err
		}
		if len(r.unclassified) > 0 {
			msg := fmt.Sprintf("Tree %q: %d terminals without classification: %s.", tn, len(r.unclassified), strings.Join(r.unclassified, ", "))
			if strict {
				return errors.New(msg)
			}
			logger.Warn(msg)
		}
		if len(r.missing) > 0 {
			msg := fmt.Sprintf("Tree %q: %d languages of the project list not in the tree: %s.", tn, len(r.missing), strings.Join(r.missing, ", "))
			if strict {
				return errors.New(msg)
			}
			logger.Warn(msg)
		}

		if err := tc.Add(t); err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("Tree %q added: %d terminals, root age %d years.", tn, len(t.Terms()), t.Age(t.Root())))
	}
	return nil
}

func inputName(a string) string {
	if a == "-" {
		return "stdin"
	}
	return a
}

// readInput reads the trees from a file,
// or the standard input if the file is "-".
// Index is the position of the file
// in the command arguments,
// and is used to name newick trees.
func readInput(stdin io.Reader, a string, index int) (*timetree.Collection, error) {
	r := stdin
	if a != "-" {
		f, err := os.Open(a)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var tc *timetree.Collection
	var err error
	if newickName != "" {
		tn := newickName
		if index > 0 {
			tn = fmt.Sprintf("%s.%d", newickName, index)
		}
		tc, err = timetree.Newick(r, tn, int64(rootAge))
	} else {
		tc, err = timetree.ReadTSV(r)
	}
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", inputName(a), err)
	}
	return tc, nil
}

func writeTrees(tc *timetree.Collection, name string) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := tc.TSV(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", name, err)
	}
	return nil
}
