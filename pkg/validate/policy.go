package validate

// DefaultProbeOffset is how far the orientation probe point sits from the
// anchor vertex along -x.
const DefaultProbeOffset = 0.5

// Policy selects which variant of the gate runs.
type Policy struct {
	// RequireWatertight rejects meshes with boundary edges.
	RequireWatertight bool
	// ExactSeed verifies every component with the exact seed probe. When
	// false, components are only swept for consistent winding.
	ExactSeed bool
	// CorrectPolarity flips a mesh whose signed volume is negative before
	// the structural checks.
	CorrectPolarity bool
	// ProbeOffset is the -x displacement of the probe point; <= 0 means
	// DefaultProbeOffset.
	ProbeOffset float64
}

// Strict requires closed surfaces and checks every component with the exact
// seed probe. Meshes are never modified.
func Strict() Policy {
	return Policy{
		RequireWatertight: true,
		ExactSeed:         true,
		ProbeOffset:       DefaultProbeOffset,
	}
}

// Relaxed accepts open surfaces, corrects globally inverted meshes and only
// sweeps components for consistent winding.
func Relaxed() Policy {
	return Policy{
		CorrectPolarity: true,
		ProbeOffset:     DefaultProbeOffset,
	}
}

// PolicyByName returns Strict for "strict" and Relaxed for "relaxed".
func PolicyByName(name string) (Policy, bool) {
	switch name {
	case "strict":
		return Strict(), true
	case "relaxed":
		return Relaxed(), true
	}
	return Policy{}, false
}

func (p Policy) offset() float64 {
	if p.ProbeOffset <= 0 {
		return DefaultProbeOffset
	}
	return p.ProbeOffset
}
