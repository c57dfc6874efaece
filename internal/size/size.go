// Package size computes the layout hint a card reports to the host grid.
//
// Two strategies share the Estimator interface: Static returns a fixed row
// count, Measured derives rows from the rendered fragment's estimated pixel
// height. Both return at least one row for every input.
package size

import (
	"math"
	"unicode/utf8"

	"github.com/conneroisu/lmscards/internal/fragment"
)

// DefaultRowHeight is the pixel height of one grid row.
const DefaultRowHeight = 50

// Estimator computes a layout weight for a rendered fragment.
type Estimator interface {
	Estimate(n fragment.Node) int
}

// MeasureFunc reports the pixel height of a fragment. ok is false when no
// measurement is available.
type MeasureFunc func(n fragment.Node) (px float64, ok bool)

// Static always reports Rows.
type Static struct {
	Rows int
}

// Estimate implements Estimator.
func (s Static) Estimate(fragment.Node) int {
	return atLeastOne(s.Rows)
}

// Measured divides the measured height by RowHeight, rounding up. Fallback
// is used when Measure is nil or reports no measurement.
type Measured struct {
	RowHeight int
	Measure   MeasureFunc
	Fallback  int
}

// Estimate implements Estimator.
func (m Measured) Estimate(n fragment.Node) int {
	if m.Measure == nil {
		return atLeastOne(m.Fallback)
	}

	px, ok := m.Measure(n)
	if !ok || math.IsNaN(px) || math.IsInf(px, 0) || px <= 0 {
		return atLeastOne(m.Fallback)
	}

	rowHeight := m.RowHeight
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}

	rows := math.Ceil(px / float64(rowHeight))
	if rows > math.MaxInt32 {
		return math.MaxInt32
	}
	return atLeastOne(int(rows))
}

func atLeastOne(rows int) int {
	if rows < 1 {
		return 1
	}
	return rows
}

// Pixel heights used by EstimateHeight.
const (
	headerHeight  = 56
	titleHeight   = 24
	metaHeight    = 20
	lineHeight    = 20
	imageHeight   = 40
	messageHeight = 40
	blockPadding  = 16
	charsPerLine  = 60
)

// EstimateHeight approximates the rendered pixel height of a card fragment
// from its structure. It reports false for an empty fragment, which has no
// layout to measure.
func EstimateHeight(n fragment.Node) (float64, bool) {
	if n.IsZero() {
		return 0, false
	}

	var px float64
	n.Walk(func(c fragment.Node) bool {
		switch {
		case c.HasClass("card-header"):
			px += headerHeight
			return false
		case c.HasClass("item"), c.HasClass("comment"):
			px += blockPadding
		case c.HasClass("item-title"), c.HasClass("comment-author"):
			px += titleHeight
			return false
		case c.HasClass("item-meta"), c.HasClass("likes"), c.HasClass("created"):
			px += metaHeight
			return false
		case c.HasClass("content"), c.HasClass("comment-content"):
			px += textHeight(c.TextContent())
			return false
		case c.HasClass("empty"), c.HasClass("placeholder"):
			px += messageHeight
			return false
		case c.Tag() == "img":
			px += imageHeight
		}
		return true
	})

	return px, px > 0
}

func textHeight(s string) float64 {
	chars := utf8.RuneCountInString(s)
	lines := (chars + charsPerLine - 1) / charsPerLine
	if lines < 1 {
		lines = 1
	}
	return float64(lines * lineHeight)
}
