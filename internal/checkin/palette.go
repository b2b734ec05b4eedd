package checkin

import (
	"fmt"
	"strings"
)

// Color is one entry of the mood palette.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"color"`
	R    int    `json:"r"`
	G    int    `json:"g"`
	B    int    `json:"b"`
}

// Palette is the fixed set of mood colours. The first entry is the
// default selection.
var Palette = []Color{
	{Name: "Red", Hex: "#FF0000", R: 255, G: 0, B: 0},
	{Name: "Green", Hex: "#00FF00", R: 0, G: 255, B: 0},
	{Name: "Blue", Hex: "#0000FF", R: 0, G: 0, B: 255},
	{Name: "Yellow", Hex: "#FFFF00", R: 255, G: 255, B: 0},
	{Name: "Cyan", Hex: "#00FFFF", R: 0, G: 255, B: 255},
	{Name: "Magenta", Hex: "#FF00FF", R: 255, G: 0, B: 255},
	{Name: "White", Hex: "#FFFFFF", R: 255, G: 255, B: 255},
	{Name: "Off", Hex: "#000000", R: 0, G: 0, B: 0},
}

// LookupColor finds a palette entry by hex code or name, ignoring case.
// An empty value selects the default.
func LookupColor(v string) (Color, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return Palette[0], nil
	}
	for _, c := range Palette {
		if strings.EqualFold(c.Hex, v) || strings.EqualFold(c.Name, v) {
			return c, nil
		}
	}
	return Color{}, fmt.Errorf("unknown mood color %q", v)
}
