package chart

import (
	"github.com/pkg/errors"
)

// Color is a palette token. Resolving it to a concrete colour belongs to the renderer.
type Color string

const (
	Blue   Color = "blue"
	Green  Color = "green"
	Yellow Color = "yellow"
	Red    Color = "red"
	Purple Color = "purple"
	Pink   Color = "pink"
	Indigo Color = "indigo"
	Orange Color = "orange"
	Teal   Color = "teal"
	Gray   Color = "gray"
)

// DefaultPalette is used to colour pie segments by position.
var DefaultPalette = []Color{Blue, Green, Yellow, Red, Purple, Pink, Indigo, Orange}

var knownColors = map[Color]struct{}{
	Blue: {}, Green: {}, Yellow: {}, Red: {}, Purple: {}, Pink: {}, Indigo: {}, Orange: {}, Teal: {}, Gray: {},
}

func (c Color) Valid() bool {
	_, ok := knownColors[c]
	return ok
}

func (c Color) String() string { return string(c) }

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	col := Color(text)
	if col != "" && !col.Valid() {
		return errors.Errorf("unknown color %q", string(text))
	}
	*c = col
	return nil
}

// PaletteColor returns the colour of the i-th item, cycling through palette.
func PaletteColor(palette []Color, i int) Color {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return palette[i%len(palette)]
}

// Tier is the qualitative bucket of a bar.
type Tier string

const (
	TierExcellent        Tier = "excellent"
	TierGood             Tier = "good"
	TierNeedsImprovement Tier = "needs_improvement"
)

// TierColors maps bar tiers to their palette token.
var TierColors = map[Tier]Color{
	TierExcellent:        Green,
	TierGood:             Blue,
	TierNeedsImprovement: Orange,
}
