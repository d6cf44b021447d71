package contextclust

// Sample is one retained snapshot of the assignment state, taken at the
// end of a sweep. Snapshots are deep copies and never mutated afterwards.
type Sample struct {
	// Sweep is the 1-based sweep index the snapshot was taken at.
	Sweep int

	// Global holds one global-cluster label per point.
	Global []int

	// Local holds one local-cluster label per point for every context,
	// indexed [context][point].
	Local [][]int

	// LogLikelihood is the joint log-likelihood at this sweep.
	LogLikelihood float64
}

// chainRecorder applies the burn-in and thinning policy: sweeps up to and
// including burnIn are discarded, then every lag-th sweep is retained.
type chainRecorder struct {
	burnIn  int
	lag     int
	samples []Sample
}

func newChainRecorder(burnIn, lag, maxIter int) *chainRecorder {
	n := 0
	if burnIn < maxIter {
		n = (maxIter-burnIn-1)/lag + 1
	}
	return &chainRecorder{
		burnIn:  burnIn,
		lag:     lag,
		samples: make([]Sample, 0, n),
	}
}

// record retains the current state as a Sample if the sweep falls within
// the retention policy.
func (r *chainRecorder) record(sweep int, st *runState, loglik float64) {
	if sweep <= r.burnIn || (sweep-r.burnIn-1)%r.lag != 0 {
		return
	}
	s := Sample{
		Sweep:         sweep,
		Global:        make([]int, st.nPoints),
		Local:         make([][]int, st.nContexts),
		LogLikelihood: loglik,
	}
	copy(s.Global, st.global)
	for c := 0; c < st.nContexts; c++ {
		s.Local[c] = make([]int, st.nPoints)
		copy(s.Local[c], st.local[c])
	}
	r.samples = append(r.samples, s)
}
