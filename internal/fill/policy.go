package fill

const (
	// DefaultTolerance is the maximum per-channel difference from the seed colour.
	DefaultTolerance = 20
	// DefaultOutlineThreshold is the exclusive upper bound of a "near black" channel.
	DefaultOutlineThreshold = 50
)

// Policy decides which pixels belong to a fill region and which are line-art boundaries.
type Policy struct {
	Tolerance        int
	OutlineThreshold int
}

func DefaultPolicy() Policy {
	return Policy{Tolerance: DefaultTolerance, OutlineThreshold: DefaultOutlineThreshold}
}

// IsOutline reports whether c is an ink outline pixel: fully opaque and near black.
// Outline pixels are never repainted.
func (p Policy) IsOutline(c Color) bool {
	t := p.OutlineThreshold
	return c.A == 255 && int(c.R) < t && int(c.G) < t && int(c.B) < t
}

// Matches reports whether candidate belongs to the region seeded by seed.
// Channels are compared independently, not by Euclidean distance.
func (p Policy) Matches(candidate, seed Color) bool {
	if candidate.A < 255 {
		return false
	}
	if p.IsOutline(candidate) {
		return false
	}
	return within(candidate.R, seed.R, p.Tolerance) &&
		within(candidate.G, seed.G, p.Tolerance) &&
		within(candidate.B, seed.B, p.Tolerance)
}

func within(a, b uint8, tolerance int) bool {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
