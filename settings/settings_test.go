// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package settings_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/js-arias/beastgen/monophyly"
	"github.com/js-arias/beastgen/settings"
)

const doc = `
languages:
  families: [Indo-European]
  exclusions: [latv1249]
  overlap: Intersection
  monophyly: true
  monophyly_levels: 2
  monophyly_direction: bottom_up
  sample_branch_lengths: false
calibrations:
  root: 5000-7000
  germanic, roma1334: 1500-2500
clocks:
  - name: lexical
    type: Relaxed
    distribution: lognormal
    categories: 4
models:
  - name: lexicon
    model: Covarion
    data: lexicon.tab
    clock: lexical
    binarized: true
  - name: grammar
    model: mk
    data: grammar.csv
    minimum_data: 50
    remove_constant_features: false
`

func TestRead(t *testing.T) {
	s, err := settings.Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unable to read settings: %v", err)
	}
	testSettings(t, "read", s)

	var buf bytes.Buffer
	if err := s.Write(&buf); err != nil {
		t.Fatalf("unable to write settings: %v", err)
	}
	t.Logf("output:\n%s\n", buf.String())

	ns, err := settings.Read(&buf)
	if err != nil {
		t.Fatalf("unable to read written settings: %v", err)
	}
	testSettings(t, "write", ns)
}

func testSettings(t testing.TB, name string, s *settings.Settings) {
	t.Helper()

	l := s.Languages
	if l.Overlap != settings.Intersection {
		t.Errorf("%s: overlap: got %q, want %q", name, l.Overlap, settings.Intersection)
	}
	if l.TreePrior != settings.Yule {
		t.Errorf("%s: tree prior: got %q, want %q", name, l.TreePrior, settings.Yule)
	}
	if !l.TopologySampled() {
		t.Errorf("%s: topology should be sampled", name)
	}
	if l.BranchLengthsSampled() {
		t.Errorf("%s: branch lengths should not be sampled", name)
	}

	p, err := s.Policy()
	if err != nil {
		t.Fatalf("%s: policy: %v", name, err)
	}
	want := monophyly.Policy{Direction: monophyly.BottomUp, Levels: 2}
	if p != want {
		t.Errorf("%s: policy: got %+v, want %+v", name, p, want)
	}

	cals, err := s.CalibrationList()
	if err != nil {
		t.Fatalf("%s: calibrations: %v", name, err)
	}
	var clades []string
	for _, c := range cals {
		clades = append(clades, c.Clade+":"+c.String())
	}
	wantCl := []string{"germanic:1500-2500", "roma1334:1500-2500", "root:5000-7000"}
	if diff := cmp.Diff(wantCl, clades); diff != "" {
		t.Errorf("%s: calibrations mismatch (-want +got):\n%s", name, diff)
	}

	if len(s.Models) != 2 {
		t.Fatalf("%s: models: got %d, want %d", name, len(s.Models), 2)
	}
	lex := s.Models[0]
	if lex.Model != "covarion" || !lex.IsBinarised() || !lex.RemovesConstant() {
		t.Errorf("%s: model %q: got %+v", name, lex.Name, lex)
	}
	gr := s.Models[1]
	if gr.MinimumData != 50 || gr.RemovesConstant() || gr.IsBinarised() {
		t.Errorf("%s: model %q: got %+v", name, gr.Name, gr)
	}

	if len(s.Clocks) != 1 || s.Clocks[0].Type != "relaxed" || !s.Clocks[0].EstimatesRate() {
		t.Errorf("%s: clocks: got %+v", name, s.Clocks)
	}
}

func TestPolicy(t *testing.T) {
	in := `
languages:
  monophyly_start_depth: 1
  monophyly_end_depth: 4
  monophyly_direction: bottom_up
models:
  - {name: m, model: mk, data: d.tab}
`
	s, err := settings.Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unable to read settings: %v", err)
	}
	p, _ := s.Policy()
	want := monophyly.Policy{Direction: monophyly.Explicit, Start: 1, End: 4, Levels: monophyly.Unlimited}
	if p != want {
		t.Errorf("policy: got %+v, want %+v", p, want)
	}
}

func TestReadErrors(t *testing.T) {
	tests := map[string]string{
		"no models":          "languages:\n  overlap: union\n",
		"unknown field":      "languages:\n  colour: red\nmodels:\n  - {name: m, model: mk, data: d}\n",
		"both lists":         "languages:\n  languages: [a]\n  families: [b]\nmodels:\n  - {name: m, model: mk, data: d}\n",
		"overlap":            "languages:\n  overlap: both\nmodels:\n  - {name: m, model: mk, data: d}\n",
		"tree prior":         "languages:\n  tree_prior: kingman\nmodels:\n  - {name: m, model: mk, data: d}\n",
		"direction":          "languages:\n  monophyly_direction: sideways\nmodels:\n  - {name: m, model: mk, data: d}\n",
		"calibration":        "calibrations:\n  root: 10\nmodels:\n  - {name: m, model: mk, data: d}\n",
		"model type":         "models:\n  - {name: m, model: gtr, data: d}\n",
		"model without data": "models:\n  - {name: m, model: mk}\n",
		"unknown clock":      "models:\n  - {name: m, model: mk, data: d, clock: fast}\n",
		"clock type":         "clocks:\n  - {name: c, type: atomic}\nmodels:\n  - {name: m, model: mk, data: d}\n",
	}
	for name, in := range tests {
		if _, err := settings.Read(strings.NewReader(in)); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}

	if _, err := settings.Read(strings.NewReader("")); !errors.Is(err, settings.ErrNoModels) {
		t.Errorf("empty: got error %v, want %v", err, settings.ErrNoModels)
	}
}
