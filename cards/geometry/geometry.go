package geometry

const (
	// CropMarkGapMM is the distance between the trim corner and the start of a crop mark
	CropMarkGapMM = 3.0
	// CropMarkLengthMM is the length of a single crop mark segment
	CropMarkLengthMM = 5.0
)

// Config holds the physical constants of the card page, all in mm.
// A zero sheet size means the sheet is cut to the bleed box plus the crop mark margin.
type Config struct {
	CardWidthMM   float64 `json:"card_width_mm"`
	CardHeightMM  float64 `json:"card_height_mm"`
	BleedMM       float64 `json:"bleed_mm"`
	SafePaddingMM float64 `json:"safe_padding_mm"`
	SheetWidthMM  float64 `json:"sheet_width_mm"`
	SheetHeightMM float64 `json:"sheet_height_mm"`
}

// DefaultConfig is an A6 card with 3mm bleed and 10mm safe padding, centered on an A4 sheet
func DefaultConfig() Config {
	return Config{
		CardWidthMM:   105,
		CardHeightMM:  148,
		BleedMM:       3,
		SafePaddingMM: 10,
		SheetWidthMM:  210,
		SheetHeightMM: 297,
	}
}

// PageGeometry is derived once from Config and never mutated.
// Sizes ending in MM are physical; rectangles are in document units on the sheet.
type PageGeometry struct {
	CardWidthMM   float64
	CardHeightMM  float64
	BleedMM       float64
	SafePaddingMM float64
	FullWidthMM   float64 // CardWidthMM + 2*BleedMM
	FullHeightMM  float64 // CardHeightMM + 2*BleedMM

	Sheet Rect // whole page
	Bleed Rect // artwork box, trim + bleed
	Trim  Rect // final cut card
	Safe  Rect // trim inset by safe padding
}

// CropMarkOffsetMM is where crop marks start, measured outward from the trim line.
// Marks never start inside the bleed so they cannot overlap the artwork.
func (g PageGeometry) CropMarkOffsetMM() float64 {
	return max(CropMarkGapMM, g.BleedMM)
}

// HasCropMarks is false for borderless layouts
func (g PageGeometry) HasCropMarks() bool {
	return g.BleedMM > 0
}

// Compute validates cfg and derives the page geometry.
// Same input always yields the same output.
func Compute(cfg Config) (PageGeometry, error) {
	if cfg.CardWidthMM <= 0 {
		return PageGeometry{}, &ConfigurationError{Field: "card_width", Value: cfg.CardWidthMM, Reason: "must be positive"}
	}
	if cfg.CardHeightMM <= 0 {
		return PageGeometry{}, &ConfigurationError{Field: "card_height", Value: cfg.CardHeightMM, Reason: "must be positive"}
	}
	if cfg.BleedMM < 0 {
		return PageGeometry{}, &ConfigurationError{Field: "bleed", Value: cfg.BleedMM, Reason: "must not be negative"}
	}
	if cfg.SafePaddingMM < 0 {
		return PageGeometry{}, &ConfigurationError{Field: "safe_padding", Value: cfg.SafePaddingMM, Reason: "must not be negative"}
	}
	if cfg.SafePaddingMM >= cfg.CardWidthMM/2 {
		return PageGeometry{}, &ConfigurationError{Field: "safe_padding", Value: cfg.SafePaddingMM, Reason: "must be less than half the card width"}
	}
	if cfg.SafePaddingMM >= cfg.CardHeightMM/2 {
		return PageGeometry{}, &ConfigurationError{Field: "safe_padding", Value: cfg.SafePaddingMM, Reason: "must be less than half the card height"}
	}

	g := PageGeometry{
		CardWidthMM:   cfg.CardWidthMM,
		CardHeightMM:  cfg.CardHeightMM,
		BleedMM:       cfg.BleedMM,
		SafePaddingMM: cfg.SafePaddingMM,
		FullWidthMM:   cfg.CardWidthMM + 2*cfg.BleedMM,
		FullHeightMM:  cfg.CardHeightMM + 2*cfg.BleedMM,
	}

	// room needed around the trim box for marks
	margin := cfg.BleedMM
	if g.HasCropMarks() {
		margin = g.CropMarkOffsetMM() + CropMarkLengthMM
	}
	minSheetW := cfg.CardWidthMM + 2*margin
	minSheetH := cfg.CardHeightMM + 2*margin

	sheetW, sheetH := cfg.SheetWidthMM, cfg.SheetHeightMM
	if sheetW == 0 && sheetH == 0 {
		sheetW, sheetH = minSheetW, minSheetH
	}
	if sheetW < minSheetW {
		return PageGeometry{}, &ConfigurationError{Field: "sheet_width", Value: sheetW, Reason: "too small for the card, bleed and crop marks"}
	}
	if sheetH < minSheetH {
		return PageGeometry{}, &ConfigurationError{Field: "sheet_height", Value: sheetH, Reason: "too small for the card, bleed and crop marks"}
	}

	g.Sheet = Rect{W: MMToUnits(sheetW), H: MMToUnits(sheetH)}
	trimW, trimH := MMToUnits(cfg.CardWidthMM), MMToUnits(cfg.CardHeightMM)
	g.Trim = Rect{
		X: (g.Sheet.W - trimW) / 2,
		Y: (g.Sheet.H - trimH) / 2,
		W: trimW,
		H: trimH,
	}
	g.Bleed = g.Trim.Inset(-MMToUnits(cfg.BleedMM))
	g.Safe = g.Trim.Inset(MMToUnits(cfg.SafePaddingMM))
	return g, nil
}
