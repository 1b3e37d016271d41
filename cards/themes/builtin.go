package themes

const (
	DefaultThemeID   = "gentle_1"
	defaultTextColor = "#334155"
	cdn              = "https://res.cloudinary.com/dzbf3cpwm/image/upload/"
)

var builtinTable = []struct {
	category string
	variant  int
	path     string
	fill     string
}{
	{"gentle", 1, "v1770944121/1_naahmv.png", "#fff0f5"},
	{"gentle", 2, "v1770944120/2_edited_w7iij8.png", "#fff5f5"},
	{"gentle", 3, "v1770944121/3_sgizoy.png", "#fff5f5"},
	{"fun", 1, "v1770944219/1_ahpnjm.png", "#fef9c3"},
	{"fun", 2, "v1770944219/2_edited_zx67ff.png", "#fff8e1"},
	{"fun", 3, "v1770944218/3_edited_ejmimb.png", "#fff8e1"},
	{"fun", 4, "v1770944220/4_avhwvw.png", "#fff8e1"},
	{"minimal", 1, "v1770943983/1_rxvdse.png", "#f8fafc"},
	{"minimal", 2, "v1770943982/2_manpil.png", "#ffffff"},
	{"minimal", 3, "v1770943982/3_o0xjro.png", "#ffffff"},
	{"warm", 1, "v1770944424/1_dygtar.png", "#f0f8ff"},
	{"warm", 2, "v1770944425/2_yqzcqg.png", "#f0f8ff"},
	{"warm", 3, "v1770944424/3_ifdl3n.png", "#f0f8ff"},
	{"warm", 4, "v1770944425/4_edited_qfsn7d.png", "#f0f8ff"},
}

// Builtin returns the stock design table
func Builtin() *Registry {
	list := make([]Theme, 0, len(builtinTable))
	text := MustParseColor(defaultTextColor)
	for _, e := range builtinTable {
		list = append(list, Theme{
			ID:            MakeID(e.category, e.variant),
			Category:      e.category,
			Variant:       e.variant,
			BackgroundRef: cdn + e.path,
			TextColor:     text,
			BleedFill:     MustParseColor(e.fill),
		})
	}
	r, err := NewRegistry(DefaultThemeID, list...)
	if err != nil {
		panic(err) // static table
	}
	return r
}
