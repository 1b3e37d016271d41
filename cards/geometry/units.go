package geometry

// UnitsPerMM is the number of document units (PDF points) in one millimeter.
const UnitsPerMM = 2.83465

// MMToUnits converts millimeters to document units.
// No rounding here. Coordinates are rounded once, when the PDF is serialized.
func MMToUnits(mm float64) float64 {
	return mm * UnitsPerMM
}

// UnitsToMM is the inverse of MMToUnits
func UnitsToMM(units float64) float64 {
	return units / UnitsPerMM
}

// Rect is an axis-aligned box in document units.
// Origin is the top-left corner of the sheet, y grows downward.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Inset shrinks the box by d on every side
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

// Contains reports whether o lies entirely within r
func (r Rect) Contains(o Rect) bool {
	const eps = 1e-9
	return o.X >= r.X-eps && o.Y >= r.Y-eps && o.Right() <= r.Right()+eps && o.Bottom() <= r.Bottom()+eps
}
