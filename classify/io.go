// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package classify

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var header = []string{
	"taxon",
	"depth",
	"name",
	"code",
}

// ReadTSV reads a classification from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - taxon, the identifier of the classified taxon
//   - depth, the depth of the ancestor (0 is the most general)
//   - name, the name of the ancestor
//   - code, the identifier of the ancestor
//
// A taxon without ancestors
// (e.g., a language isolate)
// is defined by a row with an empty depth.
//
// Here is an example file:
//
//	taxon	depth	name	code
//	stan1293	0	Indo-European	indo1319
//	stan1293	1	Classical Indo-European	clas1257
//	stan1293	2	Germanic	germ1287
//	basq1248
func ReadTSV(r io.Reader) (*Classification, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'
	tab.FieldsPerRecord = -1

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(strings.TrimSpace(h))
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	anc := make(map[string]map[int]Ancestor)
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
		tax := key(field(row, fields[f]))
		if tax == "" {
			continue
		}
		lineage, ok := anc[tax]
		if !ok {
			lineage = make(map[int]Ancestor)
			anc[tax] = lineage
		}

		f = "depth"
		ds := strings.TrimSpace(field(row, fields[f]))
		if ds == "" {
			continue
		}
		d, err := strconv.Atoi(ds)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("on row %d: field %q: invalid depth %d", ln, f, d)
		}
		if _, dup := lineage[d]; dup {
			return nil, fmt.Errorf("on row %d: taxon %q: depth %d already defined", ln, tax, d)
		}

		f = "name"
		name := strings.Join(strings.Fields(field(row, fields[f])), " ")
		if name == "" {
			return nil, fmt.Errorf("on row %d: field %q: empty ancestor name", ln, f)
		}

		f = "code"
		lineage[d] = Ancestor{
			Name: name,
			Code: strings.TrimSpace(field(row, fields[f])),
		}
	}

	c := New()
	for tax, lineage := range anc {
		chain := make([]Ancestor, len(lineage))
		for d, a := range lineage {
			if d >= len(chain) {
				return nil, fmt.Errorf("taxon %q: missing ancestors before depth %d", tax, d)
			}
			chain[d] = a
		}
		c.taxa[tax] = chain
	}
	return c, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// TSV writes a classification as a TSV file.
func (c *Classification) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, tax := range c.Taxa() {
		lineage := c.taxa[tax]
		if len(lineage) == 0 {
			if err := tab.Write([]string{tax, "", "", ""}); err != nil {
				return fmt.Errorf("when writing data: %v", err)
			}
			continue
		}
		for d, a := range lineage {
			row := []string{
				tax,
				strconv.Itoa(d),
				a.Name,
				a.Code,
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

var glottologLabel = regexp.MustCompile(`^([^\[]+)\[([a-z0-9]{8})\](?:\[([a-z]{3})\])?`)

// ReadNewick reads a classification
// from one or more Glottolog trees
// in newick format.
//
// Node labels must be in the form
// 'Name [glottocode]' or 'Name [glottocode][iso]'.
// Every node of the trees is classified
// by its glottocode,
// and by its ISO code if defined.
// Quotes inside a quoted label
// are escaped with a backslash (\')
// or doubled ('').
func ReadNewick(r io.Reader) (*Classification, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	c := New()
	p := &newickParser{src: string(data)}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			break
		}
		if err := p.tree(c); err != nil {
			return nil, fmt.Errorf("on tree %d: %v", p.trees+1, err)
		}
		p.trees++
	}
	return c, nil
}

type newickParser struct {
	src   string
	pos   int
	trees int
}

// node is a parsed newick node.
type node struct {
	anc      Ancestor
	iso      string
	children []*node
}

func (p *newickParser) tree(c *Classification) error {
	n, err := p.node()
	if err != nil {
		return err
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != ';' {
		return fmt.Errorf("at position %d: expecting ';'", p.pos)
	}
	p.pos++

	var walk func(n *node, lineage []Ancestor)
	walk = func(n *node, lineage []Ancestor) {
		c.Add(n.anc.Code, lineage)
		if n.iso != "" {
			c.Add(n.iso, lineage)
		}
		desc := append(lineage[:len(lineage):len(lineage)], n.anc)
		for _, d := range n.children {
			walk(d, desc)
		}
	}
	walk(n, nil)
	return nil
}

func (p *newickParser) node() (*node, error) {
	n := &node{}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		p.pos++
		for {
			d, err := p.node()
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, d)
			p.skipSpace()
			if p.pos >= len(p.src) {
				return nil, fmt.Errorf("unexpected end of tree")
			}
			if p.src[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.src[p.pos] == ')' {
				p.pos++
				break
			}
			return nil, fmt.Errorf("at position %d: unexpected %q", p.pos, p.src[p.pos])
		}
	}

	label, err := p.label()
	if err != nil {
		return nil, err
	}
	m := glottologLabel.FindStringSubmatch(label)
	if m == nil {
		return nil, fmt.Errorf("at position %d: invalid label %q", p.pos, label)
	}
	name := strings.Join(strings.Fields(m[1]), " ")
	if name == "" {
		return nil, fmt.Errorf("at position %d: label %q: empty ancestor name", p.pos, label)
	}
	n.anc = Ancestor{
		Name: name,
		Code: m[2],
	}
	n.iso = m[3]

	// branch length is ignored
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ':' {
		p.pos++
		for p.pos < len(p.src) && !strings.ContainsRune(",();", rune(p.src[p.pos])) {
			p.pos++
		}
	}
	return n, nil
}

func (p *newickParser) label() (string, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return "", fmt.Errorf("unexpected end of tree")
	}
	if p.src[p.pos] != '\'' {
		start := p.pos
		for p.pos < len(p.src) && !strings.ContainsRune(",():;", rune(p.src[p.pos])) {
			p.pos++
		}
		return strings.TrimSpace(p.src[start:p.pos]), nil
	}

	var b strings.Builder
	p.pos++
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		p.pos++
		if r == '\\' && p.pos < len(p.src) && p.src[p.pos] == '\'' {
			b.WriteByte('\'')
			p.pos++
			continue
		}
		if r != '\'' {
			b.WriteByte(r)
			continue
		}
		// a doubled quote is an escaped quote
		if p.pos < len(p.src) && p.src[p.pos] == '\'' {
			b.WriteByte('\'')
			p.pos++
			continue
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("unterminated quoted label")
}

func (p *newickParser) skipSpace() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}
