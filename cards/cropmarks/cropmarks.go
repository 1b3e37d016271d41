// Package cropmarks computes trim guides printed outside the bleed box.
package cropmarks

import "github.com/zeptools/gw-cardpress/cards/geometry"

// LineWidth of a crop mark stroke in document units
const LineWidth = 0.5

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment runs from the end nearer the trim corner (From) to the outer end (To)
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

func (s Segment) Horizontal() bool { return s.From.Y == s.To.Y }

// Compute returns the 8 crop marks for g, or nil when the page has no bleed.
// Order: top-left, top-right, bottom-left, bottom-right; horizontal before vertical.
func Compute(g geometry.PageGeometry) []Segment {
	if !g.HasCropMarks() {
		return nil
	}
	gap := geometry.MMToUnits(g.CropMarkOffsetMM())
	length := geometry.MMToUnits(geometry.CropMarkLengthMM)

	t := g.Trim
	left, right, top, bottom := t.X, t.Right(), t.Y, t.Bottom()

	corner := func(x, y, dx, dy float64) []Segment {
		// dx, dy point away from the card: -1 or +1
		return []Segment{
			{From: Point{X: x + dx*gap, Y: y}, To: Point{X: x + dx*(gap+length), Y: y}},
			{From: Point{X: x, Y: y + dy*gap}, To: Point{X: x, Y: y + dy*(gap+length)}},
		}
	}

	segs := make([]Segment, 0, 8)
	segs = append(segs, corner(left, top, -1, -1)...)
	segs = append(segs, corner(right, top, 1, -1)...)
	segs = append(segs, corner(left, bottom, -1, 1)...)
	segs = append(segs, corner(right, bottom, 1, 1)...)
	return segs
}
