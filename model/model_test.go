// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package model_test

import (
	"reflect"
	"testing"

	"github.com/js-arias/beastgen/beastxml"
	"github.com/js-arias/beastgen/clock"
	"github.com/js-arias/beastgen/model"
	"github.com/js-arias/beastgen/settings"
	"github.com/js-arias/beastgen/trait"
)

var taxa = []string{"a", "b", "c"}

func newData() *trait.Data {
	d := trait.New()
	d.Add("a", "hand", "1")
	d.Add("b", "hand", "2")
	d.Add("c", "hand", "1")
	d.Add("a", "water", "1")
	d.Add("b", "water", "2")
	d.Add("c", "water", "3")
	d.Add("a", "fire", "x")
	d.Add("b", "fire", "x")
	d.Add("c", "fire", "x")
	return d
}

func TestMk(t *testing.T) {
	m, err := model.New(settings.Model{Name: "lex", Model: "mk"}, newData(), taxa, clock.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := []string{"hand", "water"}; !reflect.DeepEqual(m.Features(), want) {
		t.Errorf("features: got %v, want %v", m.Features(), want)
	}
	if want := []int{2, 3}; !reflect.DeepEqual(m.Partitions(), want) {
		t.Errorf("partitions: got %v, want %v", m.Partitions(), want)
	}
	if len(m.Dependencies()) != 2 {
		t.Errorf("dependencies: got %d, want %d", len(m.Dependencies()), 2)
	}

	beast := beastxml.NewElement("beast")
	m.Data(beast)
	ts := beast.Find("traitSet.lex:2")
	if ts == nil {
		t.Fatalf("expecting trait set of binary partition")
	}
	if want := "a=0,\nb=1,\nc=0"; ts.Text() != want {
		t.Errorf("trait set: got %q, want %q", ts.Text(), want)
	}
	dt := beast.Find("traitDataType.lex:3")
	if dt == nil {
		t.Fatalf("expecting data type of three state partition")
	}
	if v, _ := dt.Attr("codeMap"); v != "0=0,1=1,2=2,?=0 1 2" {
		t.Errorf("code map: got %q", v)
	}

	l := beastxml.NewElement("distribution")
	m.Likelihood(l)
	ch := l.Children()
	if len(ch) != 2 {
		t.Fatalf("likelihood: got %d tree likelihoods, want %d", len(ch), 2)
	}
	if ch[0].Find("StrictClockModel.c:default") == nil {
		t.Errorf("likelihood: expecting branch rate model definition")
	}
	last := ch[1].Children()
	if v, _ := last[len(last)-1].Attr("idref"); v != "StrictClockModel.c:default" {
		t.Errorf("likelihood: got branch rate model reference %q", v)
	}
	if ch[1].Find("mk.s:lex:3") == nil {
		t.Errorf("likelihood: expecting Mk substitution model")
	}
}

func TestKeepConstant(t *testing.T) {
	keep := false
	s := settings.Model{Name: "lex", Model: "mk", RemoveConstantFeatures: &keep}
	m, err := model.New(s, newData(), taxa, clock.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"fire", "hand", "water"}; !reflect.DeepEqual(m.Features(), want) {
		t.Errorf("features: got %v, want %v", m.Features(), want)
	}
	if want := []int{2, 3}; !reflect.DeepEqual(m.Partitions(), want) {
		t.Errorf("partitions: got %v, want %v", m.Partitions(), want)
	}
}

func TestCovarion(t *testing.T) {
	m, err := model.New(settings.Model{Name: "cov", Model: "Covarion"}, newData(), taxa, clock.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"hand:1", "hand:2", "water:1", "water:2", "water:3"}
	if !reflect.DeepEqual(m.Features(), want) {
		t.Errorf("features: got %v, want %v", m.Features(), want)
	}
	if len(m.Dependencies()) != 0 {
		t.Errorf("dependencies: got %v, want none", m.Dependencies())
	}

	beast := beastxml.NewElement("beast")
	m.Data(beast)
	seq := beast.Find("seq_a_cov")
	if seq == nil {
		t.Fatalf("expecting sequence of taxon %q", "a")
	}
	if v, _ := seq.Attr("value"); v != "10100" {
		t.Errorf("sequence: got %q, want %q", v, "10100")
	}

	state := beastxml.NewElement("state")
	m.State(state)
	for _, id := range []string{"covarionAlpha.s:cov", "covarionSwitchRate.s:cov", "frequencies.s:cov"} {
		if state.Find(id) == nil {
			t.Errorf("state: expecting %q", id)
		}
	}
}

func TestBSVS(t *testing.T) {
	s := settings.Model{Name: "g", Model: "bsvs", RateVariation: true}
	m, err := model.New(s, newData(), taxa, clock.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := beastxml.NewElement("state")
	m.State(state)
	dims := map[string]string{
		"rateIndicator.s:g:2": "1",
		"rateIndicator.s:g:3": "3",
		"relativeRates.s:g:3": "3",
	}
	for id, want := range dims {
		e := state.Find(id)
		if e == nil {
			t.Errorf("state: expecting %q", id)
			continue
		}
		if v, _ := e.Attr("dimension"); v != want {
			t.Errorf("state %q: dimension: got %q, want %q", id, v, want)
		}
	}
	if state.Find("gammaShape.s:g") == nil {
		t.Errorf("state: expecting gamma shape")
	}

	l := beastxml.NewElement("distribution")
	m.Likelihood(l)
	site := l.Find("SiteModel.g:2")
	if site == nil {
		t.Fatalf("expecting site model")
	}
	if v, _ := site.Attr("gammaCategoryCount"); v != "4" {
		t.Errorf("site model: gamma categories: got %q, want %q", v, "4")
	}
}

func TestNewErrors(t *testing.T) {
	constant := trait.New()
	constant.Add("a", "fire", "x")
	constant.Add("b", "fire", "x")

	tests := map[string]struct {
		s    settings.Model
		d    *trait.Data
		taxa []string
		c    clock.Clock
	}{
		"unknown model": {s: settings.Model{Name: "x", Model: "gtr"}, d: newData(), taxa: taxa, c: clock.Default()},
		"no clock":      {s: settings.Model{Name: "x", Model: "mk"}, d: newData(), taxa: taxa},
		"no taxa":       {s: settings.Model{Name: "x", Model: "mk"}, d: newData(), c: clock.Default()},
		"no features":   {s: settings.Model{Name: "x", Model: "mk"}, d: constant, taxa: taxa, c: clock.Default()},
	}
	for name, test := range tests {
		if _, err := model.New(test.s, test.d, test.taxa, test.c); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}
}
