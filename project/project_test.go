// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project_test

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/js-arias/beastgen/mcmc"
	"github.com/js-arias/beastgen/project"
)

type setPath struct {
	set  project.Dataset
	path string
}

func TestProject(t *testing.T) {
	p := project.New()

	sets := []setPath{
		{project.Settings, "analysis.yaml"},
		{project.MCMC, "mcmc.tab"},
		{project.Classification, "classification.tab"},
		{project.Glottolog, "glottolog.txt"},
		{project.Langs, "langs.txt"},
		{project.Trees, "trees.tab"},
	}

	for _, s := range sets {
		p.Add(s.set, s.path)
	}
	testProject(t, p, sets)

	name := filepath.Join(t.TempDir(), "project.tab")
	p.SetName(name)
	if err := p.Write(); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	np, err := project.Read(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	if np.Name() != name {
		t.Errorf("name: got %q, want %q", np.Name(), name)
	}
	testProject(t, np, sets)
}

func testProject(t testing.TB, p *project.Project, sets []setPath) {
	t.Helper()

	for _, s := range sets {
		if path := p.Path(s.set); path != s.path {
			t.Errorf("set %s: got path %q, want %q", s.set, path, s.path)
		}
	}
	datasets := make([]project.Dataset, 0, len(sets))
	for _, v := range sets {
		datasets = append(datasets, v.set)
	}
	slices.Sort(datasets)

	if ls := p.Sets(); !reflect.DeepEqual(ls, datasets) {
		t.Errorf("sets: got %v, want %v", ls, datasets)
	}
}

func TestParseDataset(t *testing.T) {
	set, err := project.ParseDataset(" Glottolog ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set != project.Glottolog {
		t.Errorf("dataset: got %q, want %q", set, project.Glottolog)
	}
	if _, err := project.ParseDataset("geomotion"); err == nil {
		t.Errorf("dataset %q: expecting error", "geomotion")
	}
}

func writeFile(t testing.TB, name, data string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(data), 0o644); err != nil {
		t.Fatalf("unable to write %q: %v", name, err)
	}
}

func TestReaders(t *testing.T) {
	dir := t.TempDir()

	glotto := filepath.Join(dir, "glottolog.txt")
	writeFile(t, glotto, "(('Dutch [dutc1256][nld]','Standard German [stan1295][deu]')'Germanic [germ1287]')'Indo-European [indo1319]';\n")
	class := filepath.Join(dir, "classification.tab")
	writeFile(t, class, "taxon\tdepth\tname\tcode\ndutc1256\t0\tGermanic\tgerm1287\n")
	langs := filepath.Join(dir, "langs.txt")
	writeFile(t, langs, "# languages\ndutc1256\nstan1295\n")

	p := project.New()
	p.Add(project.Glottolog, glotto)
	p.Add(project.Classification, class)
	p.Add(project.Langs, langs)

	c, err := p.Classification()
	if err != nil {
		t.Fatalf("classification: unexpected error: %v", err)
	}
	if ln, _ := c.Lineage("dutc1256"); !reflect.DeepEqual(ln, []string{"Germanic"}) {
		t.Errorf("classification: dutc1256: got %v, want %v", ln, []string{"Germanic"})
	}
	if ln, _ := c.Lineage("deu"); !reflect.DeepEqual(ln, []string{"Indo-European", "Germanic"}) {
		t.Errorf("classification: deu: got %v, want %v", ln, []string{"Indo-European", "Germanic"})
	}

	ls, err := p.Langs()
	if err != nil {
		t.Fatalf("langs: unexpected error: %v", err)
	}
	if ids := ls.IDs(); !reflect.DeepEqual(ids, []string{"dutc1256", "stan1295"}) {
		t.Errorf("langs: got %v", ids)
	}

	fs, err := p.Families()
	if err != nil {
		t.Fatalf("families: unexpected error: %v", err)
	}
	if len(fs) != 0 {
		t.Errorf("families: got %v, want empty", fs.IDs())
	}

	params, err := p.MCMC()
	if err != nil {
		t.Fatalf("mcmc: unexpected error: %v", err)
	}
	if params.ChainLength() != mcmc.DefaultChainLength {
		t.Errorf("mcmc: chain length: got %d, want %d", params.ChainLength(), mcmc.DefaultChainLength)
	}

	if _, err := p.Settings(); err == nil {
		t.Errorf("settings: expecting error")
	}
	if _, err := p.Trees(); err == nil {
		t.Errorf("trees: expecting error")
	}
}
