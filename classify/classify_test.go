// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package classify_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/js-arias/beastgen/classify"
	"github.com/js-arias/beastgen/monophyly"
)

var _ monophyly.Resolver = (*classify.Classification)(nil)

func newClassification() *classify.Classification {
	ie := classify.Ancestor{Name: "Indo-European", Code: "indo1319"}
	germ := classify.Ancestor{Name: "Germanic", Code: "germ1287"}
	rom := classify.Ancestor{Name: "Romance", Code: "roma1334"}

	c := classify.New()
	c.Add("stan1293", []classify.Ancestor{ie, germ})
	c.Add("DUTC1256", []classify.Ancestor{ie, germ})
	c.Add("stan1288", []classify.Ancestor{ie, rom})
	c.Add("basq1248", nil)
	return c
}

func TestClassification(t *testing.T) {
	c := newClassification()
	testClassification(t, "data", c)
}

func TestTSV(t *testing.T) {
	c := newClassification()

	var w bytes.Buffer
	if err := c.TSV(&w); err != nil {
		t.Fatalf("unable to write TSV data: %v", err)
	}
	t.Logf("output:\n%s\n", w.String())

	nc, err := classify.ReadTSV(strings.NewReader(w.String()))
	if err != nil {
		t.Fatalf("unable to read TSV data: %v", err)
	}
	testClassification(t, "tsv", nc)
}

func TestReadTSVErrors(t *testing.T) {
	tests := map[string]string{
		"missing field": "taxon\tdepth\tname\nabcd1234\t0\tA\n",
		"bad depth":     "taxon\tdepth\tname\tcode\nabcd1234\tx\tA\tcode0001\n",
		"gap":           "taxon\tdepth\tname\tcode\nabcd1234\t0\tA\tcode0001\nabcd1234\t2\tB\tcode0002\n",
		"repeated":      "taxon\tdepth\tname\tcode\nabcd1234\t0\tA\tcode0001\nabcd1234\t0\tB\tcode0002\n",
	}
	for name, in := range tests {
		if _, err := classify.ReadTSV(strings.NewReader(in)); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}
}

func testClassification(t testing.TB, name string, c *classify.Classification) {
	t.Helper()

	taxa := []string{"basq1248", "dutc1256", "stan1288", "stan1293"}
	if g := c.Taxa(); !reflect.DeepEqual(g, taxa) {
		t.Errorf("%s: taxa: got %v, want %v", name, g, taxa)
	}

	lineages := map[string][]string{
		"Stan1293": {"Indo-European", "Germanic"},
		"dutc1256": {"Indo-European", "Germanic"},
		"stan1288": {"Indo-European", "Romance"},
		"basq1248": {},
	}
	for tx, w := range lineages {
		g, ok := c.Lineage(tx)
		if !ok {
			t.Errorf("%s: taxon %q: not found", name, tx)
			continue
		}
		if len(g) == 0 && len(w) == 0 {
			continue
		}
		if !reflect.DeepEqual(g, w) {
			t.Errorf("%s: lineage of %q: got %v, want %v", name, tx, g, w)
		}
	}

	if _, ok := c.Lineage("nort2641"); ok {
		t.Errorf("%s: taxon %q: unexpected lineage", name, "nort2641")
	}

	if !c.InClade("stan1293", "germanic") {
		t.Errorf("%s: %q should be in clade %q", name, "stan1293", "germanic")
	}
	if !c.InClade("stan1288", "roma1334") {
		t.Errorf("%s: %q should be in clade %q", name, "stan1288", "roma1334")
	}
	if c.InClade("stan1288", "germanic") {
		t.Errorf("%s: %q should not be in clade %q", name, "stan1288", "germanic")
	}
	if c.InFamily("basq1248", []string{"Indo-European"}) {
		t.Errorf("%s: %q should not be in family %q", name, "basq1248", "Indo-European")
	}
}

func TestReadNewick(t *testing.T) {
	in := `(('Dutch [dutc1256][nld]':1,'Standard German [stan1295][deu]':1)'Germanic [germ1287]':1,'Latin [lati1261][lat]':1)'Indo-European [indo1319]':1;
'Basque [basq1248][eus]':1;
`
	c, err := classify.ReadNewick(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unable to read newick: %v", err)
	}

	want := map[string][]classify.Ancestor{
		"nld": {
			{Name: "Indo-European", Code: "indo1319"},
			{Name: "Germanic", Code: "germ1287"},
		},
		"stan1295": {
			{Name: "Indo-European", Code: "indo1319"},
			{Name: "Germanic", Code: "germ1287"},
		},
		"germ1287": {
			{Name: "Indo-European", Code: "indo1319"},
		},
		"lat": {
			{Name: "Indo-European", Code: "indo1319"},
		},
		"indo1319": {},
		"eus":      {},
	}
	for tx, w := range want {
		g, ok := c.Chain(tx)
		if !ok {
			t.Errorf("taxon %q: not found", tx)
			continue
		}
		if diff := cmp.Diff(w, g, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("taxon %q: chain mismatch (-want +got):\n%s", tx, diff)
		}
	}

	if n := c.Len(); n != 10 {
		t.Errorf("taxa: got %d, want %d", n, 10)
	}

	if _, err := classify.ReadNewick(strings.NewReader("('bad label':1);")); err == nil {
		t.Errorf("invalid label: expecting error")
	}
	if _, err := classify.ReadNewick(strings.NewReader("('  [abcd1234]':1)'Family [fami1234]';")); err == nil {
		t.Errorf("empty ancestor name: expecting error")
	}
}

func TestReadNewickQuotes(t *testing.T) {
	in := `('Ga\'anda [gaan1244][gqa]':1,'Ch''ol [chol1282][ctu]':1)'Smith\'s Family [fami1234]';`
	c, err := classify.ReadNewick(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unable to read newick: %v", err)
	}

	fam := []classify.Ancestor{{Name: "Smith's Family", Code: "fami1234"}}
	for _, tx := range []string{"gqa", "gaan1244", "ctu", "chol1282"} {
		g, ok := c.Chain(tx)
		if !ok {
			t.Errorf("taxon %q: not found", tx)
			continue
		}
		if diff := cmp.Diff(fam, g); diff != "" {
			t.Errorf("taxon %q: chain mismatch (-want +got):\n%s", tx, diff)
		}
	}

	// quoted names of internal nodes
	in = `(('Ch\'ol [chol1282][ctu]':1)'Ga''anda [gaan1244]':1)'Root [root1234]';`
	c, err = classify.ReadNewick(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unable to read newick: %v", err)
	}
	g, ok := c.Lineage("ctu")
	if !ok {
		t.Fatalf("taxon %q: not found", "ctu")
	}
	want := []string{"Root", "Ga'anda"}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("lineage mismatch (-want +got):\n%s", diff)
	}
}
