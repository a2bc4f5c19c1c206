package branding

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HSL is a color in integer degrees and percent
type HSL struct {
	H int
	S int
	L int
}

// String renders the triple in the space separated form used by CSS hsl()
func (c HSL) String() string {
	return fmt.Sprintf("%d %d%% %d%%", c.H, c.S, c.L)
}

// HexToHSL converts a 6-digit hex color (leading '#' optional) to HSL.
// Shorthand, alpha and named colors are rejected.
func HexToHSL(hex string) (HSL, bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return HSL{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return HSL{}, false
	}

	r := float64((v>>16)&0xff) / 255
	g := float64((v>>8)&0xff) / 255
	b := float64(v&0xff) / 255

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l := (maxC + minC) / 2

	var h, s float64
	if maxC != minC {
		d := maxC - minC
		if l > 0.5 {
			s = d / (2 - maxC - minC)
		} else {
			s = d / (maxC + minC)
		}
		switch maxC {
		case r:
			h = (g - b) / d
			if g < b {
				h += 6
			}
		case g:
			h = (b-r)/d + 2
		default:
			h = (r-g)/d + 4
		}
		h /= 6
	}

	deg := int(math.Round(h*360)) % 360
	return HSL{
		H: deg,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}, true
}
