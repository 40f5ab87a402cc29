package mlgraph

// StoredEdgeData is a plain EdgeData implementation carrying independent
// weight, duration and distance channels plus explicit direction flags. It
// is what the archive package reconstructs from a persisted edge array,
// and is a reasonable EdgeData for any caller whose extractor already
// computes the three channels separately (unlike SimpleEdgeData, which
// derives all three from one value).
type StoredEdgeData struct {
	W        EdgeWeight
	Dur      EdgeDuration
	Dist     EdgeDistance
	Fwd, Bwd bool
}

// Weight implements EdgeData.
func (d StoredEdgeData) Weight() EdgeWeight { return d.W }

// Duration implements EdgeData.
func (d StoredEdgeData) Duration() EdgeDuration { return d.Dur }

// Distance implements EdgeData.
func (d StoredEdgeData) Distance() EdgeDistance { return d.Dist }

// Forward implements EdgeData.
func (d StoredEdgeData) Forward() bool { return d.Fwd }

// Backward implements EdgeData.
func (d StoredEdgeData) Backward() bool { return d.Bwd }
