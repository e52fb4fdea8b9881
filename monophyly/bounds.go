// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package monophyly

import (
	"fmt"
	"math"
	"strings"
)

// Bounds is the inclusive window of classification depths
// used to build a monophyly structure.
type Bounds struct {
	Start int
	End   int
}

// InvalidDepthBoundsError is returned when the start depth
// is after the end depth,
// or the start depth is negative.
type InvalidDepthBoundsError struct {
	Start int
	End   int
}

func (e *InvalidDepthBoundsError) Error() string {
	return fmt.Sprintf("monophyly: invalid depth bounds: start %d, end %d", e.Start, e.End)
}

// Validate returns an error
// if the bounds are invalid.
func (b Bounds) Validate() error {
	if b.Start < 0 || b.Start > b.End {
		return &InvalidDepthBoundsError{Start: b.Start, End: b.End}
	}
	return nil
}

// Direction is the way in which depth bounds
// are derived.
type Direction string

// Valid directions.
const (
	// Explicit uses the start and end depths
	// as given.
	Explicit Direction = "explicit"

	// TopDown counts levels
	// from the start depth towards the terminals.
	TopDown Direction = "top_down"

	// BottomUp counts levels
	// from the deepest classification
	// towards the root.
	BottomUp Direction = "bottom_up"
)

// ParseDirection returns the direction
// named by a string.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	switch d := Direction(s); d {
	case Explicit, TopDown, BottomUp:
		return d, nil
	case "":
		return TopDown, nil
	}
	return "", fmt.Errorf("monophyly: unknown direction %q", s)
}

// Unlimited is the level count
// that does not limit the number of levels.
const Unlimited = -1

// Policy defines how the depth bounds
// of a monophyly structure are derived.
type Policy struct {
	Direction Direction

	// Start is the first depth of the classification
	// used to split the taxa.
	// In a bottom-up policy
	// it is the number of levels ignored
	// from the deepest classification.
	Start int

	// End is the last depth used
	// in an explicit policy.
	End int

	// Levels is the number of classification levels
	// used by top-down and bottom-up policies.
	// A negative value means no limit.
	Levels int
}

// Bounds returns the depth bounds
// defined by the policy
// for a given set of taxa.
func (p Policy) Bounds(r Resolver, taxa []string) (Bounds, error) {
	var b Bounds
	switch p.Direction {
	case Explicit:
		b = Bounds{Start: p.Start, End: p.End}
	case TopDown, "":
		b = Bounds{Start: p.Start, End: addLevels(p.Start, p.Levels)}
	case BottomUp:
		if len(taxa) == 0 {
			return Bounds{}, ErrEmptyTaxa
		}
		max := 0
		for _, tx := range taxa {
			ln, ok := r.Lineage(tx)
			if !ok {
				return Bounds{}, &UnresolvedTaxonError{Taxon: tx}
			}
			if len(ln) > max {
				max = len(ln)
			}
		}
		b.End = max - p.Start
		if p.Levels >= 0 && b.End-p.Levels > 0 {
			b.Start = b.End - p.Levels
		}
	default:
		return Bounds{}, fmt.Errorf("monophyly: unknown direction %q", p.Direction)
	}

	if err := b.Validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}

// addLevels adds levels to a depth,
// saturating at the maximum int value.
func addLevels(start, levels int) int {
	if levels < 0 || levels > math.MaxInt-start {
		return math.MaxInt
	}
	return start + levels
}
