package core

import (
	"fmt"
	"strings"
)

// Icon is the symbolic name of a subject's icon.
// Unknown names are rejected when a subject is validated.
type Icon string

const (
	IconCalculator Icon = "Calculator"
	IconAtom       Icon = "Atom"
	IconBookOpen   Icon = "BookOpen"
	IconMonitor    Icon = "Monitor"
	IconBookMarked Icon = "BookMarked"
	IconLandmark   Icon = "Landmark"
	IconBeaker     Icon = "Beaker"
	IconFlask      Icon = "Flask"
	IconMicroscope Icon = "Microscope"
	IconBrain      Icon = "Brain"
	IconCode       Icon = "Code"
	IconPalette    Icon = "Palette"
	IconMusic      Icon = "Music"
	IconTrophy     Icon = "Trophy"
	IconDumbbell   Icon = "Dumbbell"
	IconGlobe      Icon = "Globe"
	IconRocket     Icon = "Rocket"
	IconCamera     Icon = "Camera"
	IconHeart      Icon = "Heart"
	IconStar       Icon = "Star"
	IconZap        Icon = "Zap"
)

// DefaultIcon is used when a subject is created without choosing one.
const DefaultIcon = IconBookOpen

var icons = []Icon{
	IconCalculator, IconAtom, IconBookOpen, IconMonitor, IconBookMarked,
	IconLandmark, IconBeaker, IconFlask, IconMicroscope, IconBrain,
	IconCode, IconPalette, IconMusic, IconTrophy, IconDumbbell,
	IconGlobe, IconRocket, IconCamera, IconHeart, IconStar, IconZap,
}

// Icons returns every known icon in picker order.
func Icons() []Icon {
	return append([]Icon(nil), icons...)
}

// Valid reports whether i is a known icon.
func (i Icon) Valid() bool {
	for _, known := range icons {
		if i == known {
			return true
		}
	}
	return false
}

// ParseIcon returns the icon with the given name.
func ParseIcon(name string) (Icon, error) {
	i := Icon(strings.TrimSpace(name))
	if !i.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidIcon, name)
	}
	return i, nil
}

// Color is a subject's color token (a Tailwind background class).
type Color string

const (
	ColorBlue    Color = "bg-blue-500"
	ColorGreen   Color = "bg-green-500"
	ColorRed     Color = "bg-red-500"
	ColorCyan    Color = "bg-cyan-500"
	ColorAmber   Color = "bg-amber-500"
	ColorOrange  Color = "bg-orange-500"
	ColorEmerald Color = "bg-emerald-500"
	ColorTeal    Color = "bg-teal-500"
	ColorPurple  Color = "bg-purple-500"
	ColorPink    Color = "bg-pink-500"
	ColorIndigo  Color = "bg-indigo-500"
	ColorRose    Color = "bg-rose-500"
)

// DefaultColor is used when a subject is created without choosing one.
const DefaultColor = ColorBlue

var colors = []struct {
	value Color
	name  string
}{
	{ColorBlue, "Blue"},
	{ColorGreen, "Green"},
	{ColorRed, "Red"},
	{ColorCyan, "Cyan"},
	{ColorAmber, "Amber"},
	{ColorOrange, "Orange"},
	{ColorEmerald, "Emerald"},
	{ColorTeal, "Teal"},
	{ColorPurple, "Purple"},
	{ColorPink, "Pink"},
	{ColorIndigo, "Indigo"},
	{ColorRose, "Rose"},
}

// Colors returns every known color in picker order.
func Colors() []Color {
	out := make([]Color, 0, len(colors))
	for _, c := range colors {
		out = append(out, c.value)
	}
	return out
}

// Valid reports whether c is a known color.
func (c Color) Valid() bool {
	return c.Name() != ""
}

// Name returns the display name of the color, or "" if it is unknown.
func (c Color) Name() string {
	for _, known := range colors {
		if c == known.value {
			return known.name
		}
	}
	return ""
}

// ParseColor accepts either a color token ("bg-teal-500") or its display
// name ("teal", case-insensitive).
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	for _, known := range colors {
		if s == string(known.value) || strings.EqualFold(s, known.name) {
			return known.value, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
}
