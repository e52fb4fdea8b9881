// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// BEASTgen is a tool to build BEAST 2 XML files
// for the phylogenetic analysis of languages.
package main

import (
	"github.com/js-arias/beastgen/cmd/beastgen/add"
	"github.com/js-arias/beastgen/cmd/beastgen/build"
	"github.com/js-arias/beastgen/cmd/beastgen/constraint"
	"github.com/js-arias/beastgen/cmd/beastgen/langs"
	"github.com/js-arias/beastgen/cmd/beastgen/prj"
	"github.com/js-arias/beastgen/cmd/beastgen/tree"
	"github.com/js-arias/command"
)

var app = &command.Command{
	Usage: "beastgen <command> [<argument>...]",
	Short: "a tool to build BEAST XML files for language phylogenies",
}

func init() {
	app.Add(add.Command)
	app.Add(build.Command)
	app.Add(constraint.Command)
	app.Add(langs.Command)
	app.Add(prj.Command)
	app.Add(tree.Command)
}

func main() {
	app.Main()
}
