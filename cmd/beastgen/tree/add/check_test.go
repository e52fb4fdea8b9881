// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package add

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/js-arias/beastgen/classify"
	"github.com/js-arias/beastgen/taxlist"
	"github.com/js-arias/timetree"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTrees(t testing.TB, name, newick string) *timetree.Collection {
	t.Helper()
	tc, err := timetree.Newick(strings.NewReader(newick), name, 0)
	if err != nil {
		t.Fatalf("unable to read tree: %v", err)
	}
	return tc
}

func newTestChecker() *checker {
	c := classify.New()
	fam := []classify.Ancestor{{Name: "Fam", Code: "fami1234"}}
	c.Add("aaaa1234", fam)
	c.Add("bbbb1234", fam)
	return &checker{
		class: c,
		langs: taxlist.New("aaaa1234", "bbbb1234", "cccc1234"),
	}
}

func TestCheck(t *testing.T) {
	tc := newTrees(t, "start", "((aaaa1234:0.001,zzzz1234:0.001):0.001,bbbb1234:0.002);")
	r, err := newTestChecker().check(tc.Tree("start"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"zzzz1234"}, r.unclassified); diff != "" {
		t.Errorf("unclassified: mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"cccc1234"}, r.missing); diff != "" {
		t.Errorf("missing: mismatch (-want +got):\n%s", diff)
	}

	// without project datasets every terminal is accepted
	r, err = (&checker{}).check(tc.Tree("start"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.unclassified) != 0 || len(r.missing) != 0 {
		t.Errorf("empty checker: got %v", r)
	}
}

func TestCheckRepeated(t *testing.T) {
	tc := newTrees(t, "start", "((aaaa1234:0.001,bbbb1234:0.001):0.001,aaaa1234:0.002);")
	if _, err := newTestChecker().check(tc.Tree("start")); err == nil {
		t.Errorf("repeated terminal: expecting error")
	}
}

func TestAddTrees(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	nc := newTrees(t, "start", "((aaaa1234:0.001,zzzz1234:0.001):0.001,bbbb1234:0.002);")
	tc := timetree.NewCollection()
	if err := addTrees(tc, nc, newTestChecker(), logger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.Tree("start") == nil {
		t.Errorf("tree %q not added", "start")
	}
	if n := logs.FilterMessageSnippet("without classification: zzzz1234").Len(); n != 1 {
		t.Errorf("unclassified message: got %d, want %d", n, 1)
	}
	if n := logs.FilterMessageSnippet("not in the tree: cccc1234").Len(); n != 1 {
		t.Errorf("missing message: got %d, want %d", n, 1)
	}
	if n := logs.FilterMessageSnippet(`Tree "start" added: 3 terminals`).Len(); n != 1 {
		t.Errorf("added message: got %d, want %d", n, 1)
	}

	strict = true
	defer func() { strict = false }()
	tc = timetree.NewCollection()
	if err := addTrees(tc, nc, newTestChecker(), logger); err == nil {
		t.Errorf("strict: expecting error")
	}
	if tc.Tree("start") != nil {
		t.Errorf("strict: unexpected tree %q", "start")
	}
}
