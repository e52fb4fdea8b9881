// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package taxlist implements a set of identifiers
// (for example language codes, or family names)
// read from a plain list file.
package taxlist

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

// List is a set of identifiers.
type List map[string]bool

// New returns an empty list.
func New(ids ...string) List {
	ls := List(make(map[string]bool))
	for _, id := range ids {
		ls.Add(id)
	}
	return ls
}

// Read reads a list from a TSV file.
//
// The TSV must be without header
// and the first column should contain
// the identifiers.
// Any other columns will be ignored.
//
// Here is an example file
//
//	# languages
//	stan1293
//	dutc1256
//	stan1288
func Read(r io.Reader) (List, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'
	tsv.FieldsPerRecord = -1

	ls := New()
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on line %d: %v", ln, err)
		}
		ls.Add(row[0])
	}
	return ls, nil
}

// Parse returns a list from a comma separated string.
func Parse(s string) List {
	return New(strings.Split(s, ",")...)
}

// Add adds an identifier to the list.
// Empty identifiers are ignored.
func (ls List) Add(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	ls[id] = true
}

// Has returns true if an identifier is in the list.
func (ls List) Has(id string) bool {
	return ls[strings.TrimSpace(id)]
}

// IDs returns a sorted slice
// with the identifiers in the list.
func (ls List) IDs() []string {
	ids := make([]string, 0, len(ls))
	for id := range ls {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Write writes a list into a tab-delimited file.
func (ls List) Write(w io.Writer, title string) (err error) {
	bw := bufio.NewWriter(w)
	if title != "" {
		fmt.Fprintf(bw, "# %s\n", title)
	}
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))

	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	for _, id := range ls.IDs() {
		if err := tsv.Write([]string{id}); err != nil {
			return err
		}
	}
	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}
