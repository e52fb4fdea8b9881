// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree is a metapackage for commands
// that dealt with starting trees.
package tree

import (
	"github.com/js-arias/beastgen/cmd/beastgen/tree/add"
	"github.com/js-arias/beastgen/cmd/beastgen/tree/terms"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: "tree <command> [<argument>...]",
	Short: "commands for starting trees",
}

func init() {
	Command.Add(add.Command)
	Command.Add(terms.Command)
}
