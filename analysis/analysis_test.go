// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package analysis_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/js-arias/beastgen/analysis"
	"github.com/js-arias/beastgen/beastxml"
	"github.com/js-arias/beastgen/monophyly"
	"github.com/js-arias/beastgen/project"
	"github.com/js-arias/timetree"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const glottolog = `(('A [aaaa1234]','B [bbbb1234]')'AB [abab1234]','C [cccc1234]')'Fam [fami1234]';
`

const lexData = `taxon	feature	value
aaaa1234	hand	1
bbbb1234	hand	2
cccc1234	hand	1
aaaa1234	water	1
bbbb1234	water	1
cccc1234	water	2
`

const typData = `Language_ID,fire,earth
aaaa1234,1,0
bbbb1234,0,1
dddd1234,1,1
`

const baseSettings = `languages:
  monophyly: true
  overlap: %s
models:
  - name: lex
    model: mk
    data: lex.tsv
  - name: typ
    model: covarion
    data: typ.csv
`

func writeFile(t testing.TB, name, data string) string {
	t.Helper()
	if err := os.WriteFile(name, []byte(data), 0o644); err != nil {
		t.Fatalf("unable to write %q: %v", name, err)
	}
	return name
}

// newProject creates a project in a temporary directory.
func newProject(t testing.TB, set string) *project.Project {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "lex.tsv"), lexData)
	writeFile(t, filepath.Join(dir, "typ.csv"), typData)

	p := project.New()
	p.SetName(filepath.Join(dir, "project.tab"))
	p.Add(project.Glottolog, writeFile(t, filepath.Join(dir, "glottolog.txt"), glottolog))
	p.Add(project.Settings, writeFile(t, filepath.Join(dir, "settings.yaml"), set))
	return p
}

func newLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return zap.New(core), logs
}

func TestUnion(t *testing.T) {
	p := newProject(t, strings.Replace(baseSettings, "%s", "union", 1))
	logger, logs := newLogger()

	a, err := analysis.Load(p, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"aaaa1234", "bbbb1234", "cccc1234", "dddd1234"}
	if diff := cmp.Diff(want, a.Languages()); diff != "" {
		t.Errorf("languages mismatch (-want +got):\n%s", diff)
	}
	if n := logs.FilterMessage("4 languages included in analysis.").Len(); n != 1 {
		t.Errorf("expecting languages message, got %d", n)
	}
	if n := logs.FilterMessageSnippet("using the union").Len(); n != 1 {
		t.Errorf("expecting overlap message, got %d", n)
	}

	p2, _ := a.Settings().Policy()
	nw, err := a.Constraint(p2)
	if err != nil {
		t.Fatalf("constraint: unexpected error: %v", err)
	}
	classified := []string{"aaaa1234", "bbbb1234", "cccc1234"}
	wantNw, err := monophyly.Newick(a.Classification(), classified, p2)
	if err != nil {
		t.Fatalf("monophyly: unexpected error: %v", err)
	}
	if nw != wantNw {
		t.Errorf("constraint: got %q, want %q", nw, wantNw)
	}
	if n := logs.FilterMessageSnippet("without classification").Len(); n != 1 {
		t.Errorf("expecting unclassified message, got %d", n)
	}

	doc, err := a.Document()
	if err != nil {
		t.Fatalf("document: unexpected error: %v", err)
	}
	root := doc.Root()
	for _, id := range []string{beastxml.TreeID, beastxml.ConstraintID, "startingTree"} {
		if root.Find(id) == nil {
			t.Errorf("document: expecting element %q", id)
		}
	}
	if v, _ := root.Find("startingTree").Attr("spec"); v != "beast.evolution.tree.ConstrainedRandomTree" {
		t.Errorf("starting tree: got %q", v)
	}
	if n := logs.FilterLoggerName("dependency").FilterMessageSnippet("BEASTLabs").Len(); n != 1 {
		t.Errorf("expecting constrained random tree dependency, got %d", n)
	}
	if n := logs.FilterMessageSnippet("clock rates are fixed").Len(); n != 1 {
		t.Errorf("expecting fixed clock message, got %d", n)
	}

	var b strings.Builder
	if err := doc.Write(&b); err != nil {
		t.Fatalf("write: unexpected error: %v", err)
	}
	if !strings.HasPrefix(b.String(), "<?xml") {
		t.Errorf("write: expecting XML header")
	}
}

func TestIntersection(t *testing.T) {
	p := newProject(t, strings.Replace(baseSettings, "%s", "intersection", 1))

	a, err := analysis.Load(p, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"aaaa1234", "bbbb1234"}
	if diff := cmp.Diff(want, a.Languages()); diff != "" {
		t.Errorf("languages mismatch (-want +got):\n%s", diff)
	}
}

func TestFilters(t *testing.T) {
	set := `languages:
  families: [AB]
  exclusions: [bbbb1234]
models:
  - name: lex
    model: mk
    data: lex.tsv
`
	p := newProject(t, set)
	a, err := analysis.Load(p, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"aaaa1234"}
	if diff := cmp.Diff(want, a.Languages()); diff != "" {
		t.Errorf("languages mismatch (-want +got):\n%s", diff)
	}

	// a language list in the project
	// and a family list in the settings
	p = newProject(t, set)
	langs := filepath.Join(filepath.Dir(p.Name()), "langs.txt")
	p.Add(project.Langs, writeFile(t, langs, "aaaa1234\n"))
	if _, err := analysis.Load(p, nil); err == nil {
		t.Errorf("expecting error when languages and families are defined")
	}
}

func TestUnusedClock(t *testing.T) {
	set := `languages:
  overlap: intersection
calibrations:
  AB: 2-4
clocks:
  - name: lex
    type: relaxed
  - name: spare
    type: strict
models:
  - name: lex
    model: mk
    data: lex.tsv
  - name: typ
    model: covarion
    data: typ.csv
`
	p := newProject(t, set)
	logger, logs := newLogger()
	a, err := analysis.Load(p, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := a.Document()
	if err != nil {
		t.Fatalf("document: unexpected error: %v", err)
	}

	if n := logs.FilterMessageSnippet(`"spare" is not used`).Len(); n != 1 {
		t.Errorf("expecting unused clock message, got %d", n)
	}
	if n := logs.FilterMessageSnippet("clock rates are fixed").Len(); n != 0 {
		t.Errorf("unexpected fixed clock message")
	}
	root := doc.Root()
	if root.Find("clockRate.c:lex") == nil {
		t.Errorf("expecting rate of clock %q", "lex")
	}
	if root.Find("clockRate.c:default") == nil {
		t.Errorf("expecting rate of default clock")
	}
	if root.Find("clockRate.c:spare") != nil {
		t.Errorf("unexpected rate of clock %q", "spare")
	}
}

func TestStartingTree(t *testing.T) {
	set := `languages:
  overlap: union
  sample_topology: false
  sample_branch_lengths: false
models:
  - name: lex
    model: mk
    data: lex.tsv
  - name: typ
    model: covarion
    data: typ.csv
`
	p := newProject(t, set)
	nw := "(((aaaa1234:1,bbbb1234:1):1,cccc1234:2):1,(dddd1234:2,eeee1234:2):1);"
	p.Add(project.Trees, writeTrees(t, filepath.Dir(p.Name()), nw))

	logger, logs := newLogger()
	a, err := analysis.Load(p, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := a.Document()
	if err != nil {
		t.Fatalf("document: unexpected error: %v", err)
	}

	in := doc.Root().Find("startingTree")
	if in == nil {
		t.Fatalf("expecting starting tree")
	}
	if v, _ := in.Attr("spec"); v != "beast.util.TreeParser" {
		t.Errorf("starting tree: got %q, want %q", v, "beast.util.TreeParser")
	}
	tree, _ := in.Attr("newick")
	if strings.Contains(tree, "eeee1234") {
		t.Errorf("starting tree: pruned language in %q", tree)
	}
	if !strings.Contains(tree, "dddd1234:3000000") {
		t.Errorf("starting tree: expecting collapsed branch in %q", tree)
	}
	if n := logs.FilterMessageSnippet("pruning").Len(); n != 1 {
		t.Errorf("expecting pruning message, got %d", n)
	}
	if n := logs.FilterMessageSnippet("Tree logging disabled").Len(); n != 1 {
		t.Errorf("expecting tree logging message, got %d", n)
	}
}

func TestStartingTreeMissing(t *testing.T) {
	p := newProject(t, strings.Replace(baseSettings, "%s", "union", 1))
	nw := "((aaaa1234:1,bbbb1234:1):1,cccc1234:2);"
	p.Add(project.Trees, writeTrees(t, filepath.Dir(p.Name()), nw))

	a, err := analysis.Load(p, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := a.Document(); err == nil {
		t.Errorf("expecting error for a language missing in the starting tree")
	}
}

func writeTrees(t testing.TB, dir, newick string) string {
	t.Helper()

	tc, err := timetree.Newick(strings.NewReader(newick), "start", 0)
	if err != nil {
		t.Fatalf("unable to read tree: %v", err)
	}
	name := filepath.Join(dir, "trees.tab")
	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("unable to create %q: %v", name, err)
	}
	defer f.Close()
	if err := tc.TSV(f); err != nil {
		t.Fatalf("unable to write trees: %v", err)
	}
	return name
}

func TestLoadSettings(t *testing.T) {
	p := newProject(t, "")
	set := strings.Replace(baseSettings, "%s", "intersection", 1)

	a, err := analysis.LoadSettings(p, strings.NewReader(set), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"aaaa1234", "bbbb1234"}
	if diff := cmp.Diff(want, a.Languages()); diff != "" {
		t.Errorf("languages mismatch (-want +got):\n%s", diff)
	}
	if _, err := analysis.Load(p, nil); err == nil {
		t.Errorf("expecting error for an empty settings file")
	}
}
