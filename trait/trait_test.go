// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package trait_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/beastgen/trait"
)

func TestData(t *testing.T) {
	d := newData()

	testData(t, "data", d)
}

func TestTSV(t *testing.T) {
	d := newData()

	var w bytes.Buffer
	if err := d.TSV(&w); err != nil {
		t.Fatalf("unable to write TSV data: %v", err)
	}
	t.Logf("output:\n%s\n", w.String())

	r := strings.NewReader(w.String())
	nd, err := trait.ReadTSV(r)
	if err != nil {
		t.Fatalf("unable to read TSV data: %v", err)
	}

	testData(t, "tsv", nd)
}

func TestCSV(t *testing.T) {
	in := `Language_ID,hand,water,fire
dutc1256,1,?,a
stan1288,2,3,a
stan1293,1,2,a
`
	d, err := trait.ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unable to read CSV data: %v", err)
	}
	testData(t, "csv", d)

	if _, err := trait.ReadCSV(strings.NewReader("lang,hand\nx,1\n")); err == nil {
		t.Errorf("csv: expecting error without a taxon field")
	}
}

func newData() *trait.Data {
	d := trait.New()

	d.Add("stan1293", "hand", "1")
	d.Add("stan1293", "water", "2")
	d.Add("stan1293", "fire", "a")
	d.Add("dutc1256", "hand", "1")
	d.Add("dutc1256", "water", "?")
	d.Add("dutc1256", "fire", "a")
	d.Add("stan1288", "hand", "2")
	d.Add("stan1288", "water", "3")
	d.Add("stan1288", "fire", "a")
	return d
}

func testData(t testing.TB, name string, d *trait.Data) {
	t.Helper()

	taxa := []string{"dutc1256", "stan1288", "stan1293"}
	if g := d.Taxa(); !reflect.DeepEqual(g, taxa) {
		t.Errorf("%s: taxa: got %v, want %v", name, g, taxa)
	}

	features := []string{"fire", "hand", "water"}
	if g := d.Features(); !reflect.DeepEqual(g, features) {
		t.Errorf("%s: features: got %v, want %v", name, g, features)
	}

	states := map[string][]string{
		"fire":  {"a"},
		"hand":  {"1", "2"},
		"water": {"2", "3"},
	}
	for f, w := range states {
		if g := d.States(f); !reflect.DeepEqual(g, w) {
			t.Errorf("%s: states for %q: got %v, want %v", name, f, g, w)
		}
	}

	if _, ok := d.Value("dutc1256", "water"); ok {
		t.Errorf("%s: value for %q %q should be missing", name, "dutc1256", "water")
	}
	if v, _ := d.Value("stan1288", "hand"); v != "2" {
		t.Errorf("%s: value for %q %q: got %q, want %q", name, "stan1288", "hand", v, "2")
	}
}

func TestFilter(t *testing.T) {
	d := newData()

	tests := map[string]struct {
		taxa     []string
		minimum  float64
		constant bool
		want     []string
	}{
		"all": {
			want: []string{"fire", "hand", "water"},
		},
		"remove constant": {
			constant: true,
			want:     []string{"hand", "water"},
		},
		"full coverage": {
			minimum:  1,
			constant: true,
			want:     []string{"hand"},
		},
		"subset": {
			taxa:     []string{"dutc1256", "stan1293"},
			constant: true,
		},
	}

	for name, test := range tests {
		got := d.Filter(test.taxa, test.minimum, test.constant)
		if len(got) == 0 && len(test.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s: got %v, want %v", name, got, test.want)
		}
	}
}

func TestMatrix(t *testing.T) {
	d := newData()
	taxa := []string{"dutc1256", "stan1288", "stan1293"}
	m := trait.NewMatrix(d, taxa, []string{"hand", "water"})

	seqs := map[string]string{
		"dutc1256": "0,?",
		"stan1288": "1,1",
		"stan1293": "0,0",
	}
	for tx, w := range seqs {
		if g := m.Sequence(tx); g != w {
			t.Errorf("sequence %q: got %q, want %q", tx, g, w)
		}
	}
	if n := m.NumStates(1); n != 2 {
		t.Errorf("states: got %d, want %d", n, 2)
	}

	want := "dutc1256=0,?,\nstan1288=1,1,\nstan1293=0,0"
	if g := m.TraitValue(); g != want {
		t.Errorf("trait value: got %q, want %q", g, want)
	}
}

func TestBinarise(t *testing.T) {
	d := newData().Binarise()

	features := []string{"fire:a", "hand:1", "hand:2", "water:2", "water:3"}
	if g := d.Features(); !reflect.DeepEqual(g, features) {
		t.Errorf("features: got %v, want %v", g, features)
	}

	if v, _ := d.Value("stan1288", "hand:2"); v != "1" {
		t.Errorf("value %q %q: got %q, want %q", "stan1288", "hand:2", v, "1")
	}
	if v, _ := d.Value("stan1288", "hand:1"); v != "0" {
		t.Errorf("value %q %q: got %q, want %q", "stan1288", "hand:1", v, "0")
	}
	if _, ok := d.Value("dutc1256", "water:2"); ok {
		t.Errorf("value %q %q: should be missing", "dutc1256", "water:2")
	}
}
