package model

// Style is the full formatting of a cell, row or column. Nil members mean
// "default".
type Style struct {
	NumFmt     string
	Font       *Font
	Alignment  *Alignment
	Protection *Protection
	Border     *Border
	Fill       *Fill
}

// IsEmpty reports whether s carries no formatting at all.
func (s *Style) IsEmpty() bool {
	return s == nil || (s.NumFmt == "" && s.Font == nil && s.Alignment == nil &&
		s.Protection == nil && s.Border == nil && s.Fill == nil)
}

// Color is an ARGB, theme or indexed color reference.
type Color struct {
	ARGB    string
	Theme   *int
	Indexed *int
	Tint    float64
	Auto    bool
}

// Font describes character formatting.
type Font struct {
	Name      string
	Size      float64
	Family    int
	Scheme    string
	Charset   int
	Color     *Color
	Bold      bool
	Italic    bool
	Underline string // "single", "double", "singleAccounting", "doubleAccounting"
	Strike    bool
	Outline   bool
	Shadow    bool
	VertAlign string // "superscript", "subscript"
}

// Alignment describes text placement inside a cell.
type Alignment struct {
	Horizontal   string
	Vertical     string
	WrapText     bool
	ShrinkToFit  bool
	Indent       int
	ReadingOrder int
	// TextRotation is 0..180 degrees, or 255 for vertical text.
	TextRotation int
}

// Protection describes cell locking.
type Protection struct {
	Locked *bool
	Hidden bool
}

// BorderEdge is one side of a cell border.
type BorderEdge struct {
	Style string
	Color *Color
}

// Border describes the four sides and the diagonal of a cell.
type Border struct {
	Left, Right, Top, Bottom, Diagonal *BorderEdge
	DiagonalUp, DiagonalDown           bool
}

// Fill kinds.
const (
	FillPattern  = "pattern"
	FillGradient = "gradient"
)

// Fill is a pattern or gradient fill.
type Fill struct {
	Type string
	// Pattern fill.
	Pattern string
	FgColor *Color
	BgColor *Color
	// Gradient fill.
	Gradient string // "linear" or "path"
	Degree   float64
	Left     float64
	Right    float64
	Top      float64
	Bottom   float64
	Stops    []GradientStop
}

// GradientStop is one color stop of a gradient fill.
type GradientStop struct {
	Position float64
	Color    Color
}
