package flicker

import colorful "github.com/lucasb-eyer/go-colorful"

// Blend interpolates between a and b in CIE-Lab space at t ∈ [0,1],
// producing a perceptually even gradient. Both endpoints must be RGB
// colors; non-RGB colors are returned unblended at the nearer endpoint.
// The teacher's LerpColor (tui.go) does this as a raw linear RGB
// interpolation, which produces a visible muddy band through the
// middle of most gradients; go-colorful's Lab blend is the standard fix
// the wider ecosystem reaches for, so it replaces LerpColor rather than
// sitting alongside it.
func Blend(a, b Color, t float64) Color {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	if a.Mode != ColorRGB || b.Mode != ColorRGB {
		if t < 0.5 {
			return a
		}
		return b
	}

	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	blended := ca.BlendLab(cb, t)
	r, g, b8 := blended.Clamped().RGB255()
	return RGB(r, g, b8)
}
