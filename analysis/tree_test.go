// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package analysis

import (
	"strings"
	"testing"
)

func term(name string) *node {
	return &node{taxon: name}
}

func TestCollapseResolve(t *testing.T) {
	// root at 3 My with a polytomy,
	// and a single descendant node at 2 My
	root := &node{
		age: 3_000_000,
		children: []*node{
			term("a"),
			term("b"),
			{
				age:      2_000_000,
				children: []*node{term("c")},
			},
		},
	}

	n := collapse(root)
	n.resolve()
	if len(n.children) != 2 {
		t.Fatalf("root: got %d children, want 2", len(n.children))
	}

	var b strings.Builder
	n.newick(&b, n.age)
	want := "(a:3000000,(b:3000000,c:3000000):0):0"
	if got := b.String(); got != want {
		t.Errorf("newick: got %q, want %q", got, want)
	}
}
