package config

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Draft constraints
	MaxOpsPerCommit int

	// Scalar modifier ranges
	MassModMin float64
	MassModMax float64

	// Node defaults applied when NODE_CREATE omits numeric fields
	DefaultNodeMass    float64
	DefaultNodeSigma   float64
	DefaultNodeDensity float64
	DefaultNodeType    string

	// Root node attributes
	RootNodeID   string
	RootNodeType string

	// Hashing
	// Number of fixed decimal digits floats are rounded to before they
	// enter the state hash. Changing this invalidates every recorded
	// marker chain.
	HashDecimalDigits int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxOpsPerCommit: 200,

		MassModMin: -0.5,
		MassModMax: 0.5,

		DefaultNodeMass:    1.0,
		DefaultNodeSigma:   1.0,
		DefaultNodeDensity: 1.0,
		DefaultNodeType:    "standard",

		RootNodeID:   "SELF",
		RootNodeType: "self",

		HashDecimalDigits: 9,
	}
}
