// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package trait

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// ReadTSV reads a set of feature observations
// from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - taxon, the identifier of the taxon
//   - feature, the name of the feature
//   - value, the observed value
//
// A value of "?" is a missing observation.
//
// Here is an example file:
//
//	taxon	feature	value
//	stan1293	hand	1
//	stan1293	water	2
//	dutc1256	hand	1
//	dutc1256	water	?
func ReadTSV(r io.Reader) (*Data, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(strings.TrimSpace(h))
		fields[h] = i
	}
	for _, h := range []string{"taxon", "feature", "value"} {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	d := New()
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "taxon"
		tax := strings.TrimSpace(row[fields[f]])
		if tax == "" {
			continue
		}

		f = "feature"
		feat := row[fields[f]]

		f = "value"
		d.Add(tax, feat, row[fields[f]])
	}
	return d, nil
}

// taxonColumns are the accepted names
// for the taxon column
// of a data matrix.
var taxonColumns = []string{
	"language_id",
	"language",
	"glottocode",
	"iso",
	"taxon",
}

// ReadCSV reads a data matrix from a comma-delimited file.
//
// The file must have a column with the taxon identifiers
// (named "Language_ID", "language", "glottocode", "iso", or "taxon"),
// all other columns are features.
//
// Here is an example file:
//
//	Language_ID,hand,water
//	stan1293,1,2
//	dutc1256,1,?
func ReadCSV(r io.Reader) (*Data, error) {
	tab := csv.NewReader(r)
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}

	col := -1
	for i, h := range head {
		h = strings.ToLower(strings.TrimSpace(h))
		if slices.Contains(taxonColumns, h) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("expecting a taxon field")
	}

	d := New()
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		tax := strings.TrimSpace(row[col])
		if tax == "" {
			continue
		}
		for i, v := range row {
			if i == col {
				continue
			}
			d.Add(tax, head[i], v)
		}
	}
	return d, nil
}

// TSV writes the feature observations as a TSV file.
func (d *Data) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	// header
	header := []string{"taxon", "feature", "value"}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	features := d.Features()
	for _, tx := range d.Taxa() {
		for _, f := range features {
			v, ok := d.Value(tx, f)
			if !ok {
				v = Missing
			}
			row := []string{
				tx,
				f,
				v,
			}
			if err := tab.Write(row); err != nil {
				return fmt.Errorf("when writing data: %v", err)
			}
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}
