package planet

import (
	"github.com/chewxy/math32"
)

// NormalizeAngle reduces any angle to [0, 2π). Non-finite input maps to 0.
func NormalizeAngle(angle float32) float32 {
	if math32.IsNaN(angle) || math32.IsInf(angle, 0) {
		return 0
	}

	a := math32.Mod(angle, twoPi)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		a = 0
	}
	return a
}

// RadiansToRadii returns the surface point at angle, raised by originOffset
// along the radius, and the direction of the surface tangent there.
//
// The radius is interpolated linearly between the two bracketing samples. The
// tangent blends the previous-to-current and current-to-next segment
// directions by the same fraction, so orientation turns smoothly across sample
// boundaries.
func (p *Planet) RadiansToRadii(angle, originOffset float32) (Vec2, float32) {
	a := NormalizeAngle(angle)
	n := len(p.heightfield)
	sampleStep := twoPi / float32(n)

	i := int(a / sampleStep)
	if i >= n {
		i = n - 1
	}
	next := (i + 1) % n
	prev := (i - 1 + n) % n

	t := (a - float32(i)*sampleStep) / sampleStep
	t = math32.Max(0, math32.Min(1, t))

	h0 := p.heightfield[i].Height
	h1 := p.heightfield[next].Height
	r := h0 + (h1-h0)*t + originOffset

	position := Vec2{X: math32.Cos(a) * r, Y: math32.Sin(a) * r}

	backward := p.samplePoint(i).Sub(p.samplePoint(prev)).Normalize()
	forward := p.samplePoint(next).Sub(p.samplePoint(i)).Normalize()
	dir := backward.Scale(1 - t).Add(forward.Scale(t))

	var tangent float32
	if dir.Length() < 1e-6 {
		tangent = a + math32.Pi/2
	} else {
		tangent = math32.Atan2(dir.Y, dir.X)
	}

	return position, NormalizeAngle(tangent)
}

// RadiansToTransform places an object at angle. The orientation turns the
// object's up axis away from the planet centre.
func (p *Planet) RadiansToTransform(angle, originOffset, depth float32) Placement {
	position, tangent := p.RadiansToRadii(angle, originOffset)
	return Placement{
		Position:    position,
		Depth:       depth,
		Orientation: NormalizeAngle(tangent + math32.Pi),
	}
}

// IndexToRadians returns the angle an object of the given width anchored at
// index is centred on. Even widths straddle the boundary to the next slot.
// It panics with *OutOfBoundsError when index is not a slot of the planet.
func (p *Planet) IndexToRadians(index, width int) float32 {
	p.mustBeInBounds(index)

	angle := float32(index) * p.angularStep
	if width%2 == 0 {
		angle += p.angularStep / 2
	}
	return angle
}

// IndexToRadii is RadiansToRadii for a slot index.
func (p *Planet) IndexToRadii(index int, originOffset float32, width int) (Vec2, float32) {
	return p.RadiansToRadii(p.IndexToRadians(index, width), originOffset)
}

// IndexToTransform is RadiansToTransform for a slot index.
func (p *Planet) IndexToTransform(index int, originOffset, depth float32, width int) Placement {
	return p.RadiansToTransform(p.IndexToRadians(index, width), originOffset, depth)
}

// RadiansToIndex returns the slot under angle.
func (p *Planet) RadiansToIndex(angle float32) int {
	a := NormalizeAngle(angle)
	index := int(math32.Floor(a / p.angularStep))
	if index < 0 {
		return 0
	}
	if index > p.tilePlaces-1 {
		return p.tilePlaces - 1
	}
	return index
}

func (p *Planet) samplePoint(i int) Vec2 {
	s := p.heightfield[i]
	return Vec2{X: math32.Cos(s.Angle) * s.Height, Y: math32.Sin(s.Angle) * s.Height}
}

func (p *Planet) mustBeInBounds(index int) {
	if !p.InBounds(index) {
		panic(&OutOfBoundsError{Index: index, TilePlaces: p.tilePlaces})
	}
}
