package camera

import (
	"fmt"
	"strings"
)

// Preset names one of the fixed camera poses. Every preset looks at the origin.
type Preset int

const (
	// PresetFront looks along -X from the +X side.
	PresetFront Preset = iota
	// PresetBack looks along +X from the -X side.
	PresetBack
	// PresetRight looks along -Z from the +Z side.
	PresetRight
	// PresetLeft looks along +Z from the -Z side.
	PresetLeft
	// PresetTopFront looks down at the subject from above and in front.
	PresetTopFront
	// PresetIsometric views the subject from equal distances on all three axes.
	PresetIsometric
)

// Presets lists every preset in display order.
var Presets = []Preset{
	PresetFront,
	PresetBack,
	PresetRight,
	PresetLeft,
	PresetTopFront,
	PresetIsometric,
}

var presetPositions = map[Preset][3]float32{
	PresetFront:     {2, 0.5, 0},
	PresetBack:      {-2, 0.5, 0},
	PresetRight:     {0, 0.5, 2},
	PresetLeft:      {0, 0.5, -2},
	PresetTopFront:  {1.5, 2, 1.5},
	PresetIsometric: {1.5, 1.5, 1.5},
}

var presetNames = map[Preset]string{
	PresetFront:     "front",
	PresetBack:      "back",
	PresetRight:     "right",
	PresetLeft:      "left",
	PresetTopFront:  "top-front",
	PresetIsometric: "isometric",
}

// Position returns the literal camera position of the preset.
// Unknown presets return the origin.
//
// Returns:
//   - [3]float32: world-space camera position
func (p Preset) Position() [3]float32 {
	return presetPositions[p]
}

// String returns the canonical preset name, e.g. "top-front".
func (p Preset) String() string {
	if name, ok := presetNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Preset(%d)", int(p))
}

// Valid reports whether p is one of the defined presets.
func (p Preset) Valid() bool {
	_, ok := presetPositions[p]
	return ok
}

// ParsePreset looks up a preset by name. Matching ignores case, spaces, hyphens and
// underscores, so "Top-Front", "top_front" and "topfront" are equivalent.
//
// Parameters:
//   - name: the preset name
//
// Returns:
//   - Preset: the matching preset
//   - error: non-nil if no preset has that name
func ParsePreset(name string) (Preset, error) {
	key := normalizePresetName(name)
	for p, n := range presetNames {
		if normalizePresetName(n) == key {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown camera preset %q", name)
}

// PresetNames returns the canonical names of all presets in display order.
//
// Returns:
//   - []string: preset names
func PresetNames() []string {
	out := make([]string, len(Presets))
	for i, p := range Presets {
		out[i] = p.String()
	}
	return out
}

func normalizePresetName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}
