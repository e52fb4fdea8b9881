// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package beastxml

import (
	"encoding/xml"
	"strings"
)

// An Element is a node of a BEAST XML document.
// Attributes keep the order in which they were set.
type Element struct {
	name     string
	attrs    []xml.Attr
	text     string
	comment  bool
	children []*Element
}

// NewElement creates a new element
// with a list of attribute key-value pairs.
func NewElement(name string, attrs ...string) *Element {
	e := &Element{name: name}
	for i := 0; i+1 < len(attrs); i += 2 {
		e.Set(attrs[i], attrs[i+1])
	}
	return e
}

// Add adds a new child element
// and returns it.
func (e *Element) Add(name string, attrs ...string) *Element {
	c := NewElement(name, attrs...)
	e.children = append(e.children, c)
	return c
}

// AddComment adds a comment as a child of the element.
func (e *Element) AddComment(text string) {
	// a comment can not contain a double hyphen
	for strings.Contains(text, "--") {
		text = strings.ReplaceAll(text, "--", "- -")
	}
	if strings.HasSuffix(text, "-") {
		text += " "
	}
	e.children = append(e.children, &Element{
		text:    text,
		comment: true,
	})
}

// Attr returns the value of an attribute.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Local == key {
			return a.Value, true
		}
	}
	return "", false
}

// Children returns the child elements.
// Comments are not included.
func (e *Element) Children() []*Element {
	var ch []*Element
	for _, c := range e.children {
		if c.comment {
			continue
		}
		ch = append(ch, c)
	}
	return ch
}

// Find returns the first element,
// in depth first order,
// with the given id.
func (e *Element) Find(id string) *Element {
	if e.comment {
		return nil
	}
	if v, ok := e.Attr("id"); ok && v == id {
		return e
	}
	for _, c := range e.children {
		if f := c.Find(id); f != nil {
			return f
		}
	}
	return nil
}

// Name returns the tag name of the element.
func (e *Element) Name() string {
	return e.name
}

// Set sets the value of an attribute.
func (e *Element) Set(key, value string) *Element {
	for i, a := range e.attrs {
		if a.Name.Local == key {
			e.attrs[i].Value = value
			return e
		}
	}
	e.attrs = append(e.attrs, xml.Attr{
		Name:  xml.Name{Local: key},
		Value: value,
	})
	return e
}

// SetText sets the character data of the element.
func (e *Element) SetText(text string) *Element {
	e.text = text
	return e
}

// Text returns the character data of the element.
func (e *Element) Text() string {
	return e.text
}

// MarshalXML implements the xml.Marshaler interface.
func (e *Element) MarshalXML(enc *xml.Encoder, _ xml.StartElement) error {
	if e.comment {
		return enc.EncodeToken(xml.Comment(e.text))
	}

	start := xml.StartElement{
		Name: xml.Name{Local: e.name},
		Attr: e.attrs,
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.text != "" {
		if err := enc.EncodeToken(xml.CharData(e.text)); err != nil {
			return err
		}
	}
	for _, c := range e.children {
		if err := c.MarshalXML(enc, xml.StartElement{}); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
