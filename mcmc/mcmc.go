// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package mcmc implements reading and writing
// of the parameters of an MCMC run.
package mcmc

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Param is a keyword to identify
// the type of parameter in a parameter file.
type Param string

// Valid parameters
const (
	// Basename is the base name
	// of the output files.
	Basename Param = "basename"

	// ChainLength is the number of generations
	// of the chain.
	ChainLength Param = "chainlength"

	// EmbedData sets if the data files
	// are embedded in the output document.
	EmbedData Param = "embeddata"

	// LogAll enables all loggers.
	LogAll Param = "logall"

	// LogEvery is the sampling frequency.
	LogEvery Param = "logevery"

	// LogParams enables logging of model parameters.
	LogParams Param = "logparams"

	// LogProbs enables logging of the posterior,
	// prior and likelihood.
	LogProbs Param = "logprobs"

	// LogTrees enables logging of the trees.
	LogTrees Param = "logtrees"

	// SamplePrior sets the chain
	// to sample from the prior.
	SamplePrior Param = "sampleprior"

	// ScreenLog enables the screen logger.
	ScreenLog Param = "screenlog"
)

// DefaultChainLength is the default number of generations.
const DefaultChainLength = 10_000_000

// Params is a collection of MCMC parameters.
type Params struct {
	name string // file name

	basename string
	chain    int
	every    int

	embed       bool
	samplePrior bool

	// loggers
	screen bool
	all    bool
	probs  bool
	params bool
	trees  bool
}

// New creates a new parameter collection
// with default values.
func New(name string) *Params {
	return &Params{
		name:     name,
		basename: "beastgen",
		chain:    DefaultChainLength,
		screen:   true,
		probs:    true,
		trees:    true,
	}
}

var header = []string{
	"parameter",
	"value",
}

// Read reads a parameter file from a TSV file.
//
// The TSV must contains the following fields:
//
//   - parameter, the name of the parameter
//   - value, the value of the parameter
//
// Here is an example file:
//
//	# beastgen mcmc parameters
//	parameter	value
//	basename	indo-european
//	chainlength	20000000
//	logevery	1000
//	sampleprior	false
func Read(name string) (*Params, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := read(f, name)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return p, nil
}

func read(r io.Reader, name string) (*Params, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	p := New(name)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "parameter"
		param := Param(strings.ToLower(strings.TrimSpace(row[fields[f]])))

		f = "value"
		v := strings.TrimSpace(row[fields[f]])
		if err := p.set(param, v); err != nil {
			return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
		}
	}
	return p, nil
}

func (p *Params) set(param Param, v string) error {
	switch param {
	case Basename:
		return p.SetBasename(v)
	case ChainLength:
		c, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		return p.SetChainLength(c)
	case LogEvery:
		e, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		return p.SetLogEvery(e)
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parameter %q: %v", param, err)
	}
	switch param {
	case EmbedData:
		p.embed = b
	case LogAll:
		p.all = b
	case LogParams:
		p.params = b
	case LogProbs:
		p.probs = b
	case LogTrees:
		p.trees = b
	case SamplePrior:
		p.samplePrior = b
	case ScreenLog:
		p.screen = b
	default:
		return fmt.Errorf("unknown parameter %q", param)
	}
	return nil
}

// Basename returns the base name of the output files.
func (p *Params) Basename() string {
	return p.basename
}

// ChainLength returns the number of generations
// of the chain.
func (p *Params) ChainLength() int {
	return p.chain
}

// EmbedData returns true if the data
// should be embedded in the output.
func (p *Params) EmbedData() bool {
	return p.embed
}

// LogEvery returns the sampling frequency.
// If it is not set,
// the frequency is calculated to produce
// 10 000 samples.
func (p *Params) LogEvery() int {
	if p.every > 0 {
		return p.every
	}
	if e := p.chain / 10_000; e > 0 {
		return e
	}
	return 1
}

// LogParams returns true if model parameters are logged.
func (p *Params) LogParams() bool {
	return p.params || p.all
}

// LogProbs returns true if the posterior,
// the prior and the likelihood are logged.
func (p *Params) LogProbs() bool {
	return p.probs || p.all
}

// LogTrees returns true if the trees are logged.
func (p *Params) LogTrees() bool {
	return p.trees || p.all
}

// Name returns the name of the parameter file.
func (p *Params) Name() string {
	return p.name
}

// SamplePrior returns true if the chain
// samples from the prior.
func (p *Params) SamplePrior() bool {
	return p.samplePrior
}

// ScreenLog returns true if the screen logger is used.
func (p *Params) ScreenLog() bool {
	return p.screen
}

// SetBasename sets the base name of the output files.
func (p *Params) SetBasename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("empty base name")
	}
	p.basename = name
	return nil
}

// SetChainLength sets the number of generations.
func (p *Params) SetChainLength(c int) error {
	if c < 1 {
		return fmt.Errorf("invalid chain length: %d", c)
	}
	p.chain = c
	return nil
}

// SetEmbedData sets if the data is embedded
// in the output document.
func (p *Params) SetEmbedData(embed bool) {
	p.embed = embed
}

// SetLogEvery sets the sampling frequency.
// A zero value means that the frequency
// is calculated from the chain length.
func (p *Params) SetLogEvery(e int) error {
	if e < 0 {
		return fmt.Errorf("invalid sampling frequency: %d", e)
	}
	p.every = e
	return nil
}

// SetName sets the name of a parameter file.
func (p *Params) SetName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	p.name = name
}

// SetSamplePrior sets the chain to sample from the prior.
func (p *Params) SetSamplePrior(s bool) {
	p.samplePrior = s
}

// Write writes a parameter collection into a file.
func (p *Params) Write() (err error) {
	f, err := os.Create(p.name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# beastgen mcmc parameters\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", p.name, err)
	}

	rows := [][]string{
		{string(Basename), p.basename},
		{string(ChainLength), strconv.Itoa(p.chain)},
		{string(LogEvery), strconv.Itoa(p.every)},
		{string(SamplePrior), strconv.FormatBool(p.samplePrior)},
		{string(EmbedData), strconv.FormatBool(p.embed)},
		{string(ScreenLog), strconv.FormatBool(p.screen)},
		{string(LogAll), strconv.FormatBool(p.all)},
		{string(LogProbs), strconv.FormatBool(p.probs)},
		{string(LogParams), strconv.FormatBool(p.params)},
		{string(LogTrees), strconv.FormatBool(p.trees)},
	}
	for _, row := range rows {
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("on file %q: %v", p.name, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", p.name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", p.name, err)
	}
	return nil
}
