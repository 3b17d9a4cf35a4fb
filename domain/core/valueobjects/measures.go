package valueobjects

// Measures are the aggregate scalars derived from a committed graph.
// They are recomputed on every commit by folding over the id-sorted
// node set and feed both the API state view and the state hash.
type Measures struct {
	NodeCount     int     `json:"node_count"`
	EdgeCount     int     `json:"edge_count"`
	TotalMass     float64 `json:"total_mass"`
	EffectiveMass float64 `json:"effective_mass"`
	Dispersion    float64 `json:"dispersion"`
	MeanDensity   float64 `json:"mean_density"`
	FlowTotal     float64 `json:"flow_total"`
	Volume        float64 `json:"volume"`
}
