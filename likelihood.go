package contextclust

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// jointLogLikelihood computes the joint log-likelihood of the data under
// the current assignments and parameters: the emission log-density of every
// point in every context plus the log mass of the assignment structure
// (the point's local labels under its global slot's label distributions,
// and its global label under the mixture weights).
func (st *runState) jointLogLikelihood() float64 {
	ll := 0.0
	for i := 0; i < st.nPoints; i++ {
		g := st.global[i]
		ll += math.Log(st.weights[g])
		for c := 0; c < st.nContexts; c++ {
			k := st.local[c][i]
			ll += st.emissions[c].LogLikelihood(st.data[c][i], k)
			ll += math.Log(st.slotDist[g][c][k])
		}
	}
	return ll
}

// DIC computes the Deviance Information Criterion from a per-sweep
// log-likelihood trace. With deviance D = -2*logL, it uses the
// variance-of-deviance estimator of the effective parameter count:
//
//	DIC = mean(D) + Var(D)/2
//
// Lower values indicate a better fit after accounting for effective model
// complexity. The result is only meaningful relative to another run's DIC
// on the same data.
func DIC(logliks []float64) float64 {
	if len(logliks) == 0 {
		return math.NaN()
	}
	dev := make([]float64, len(logliks))
	for i, ll := range logliks {
		dev[i] = -2 * ll
	}
	if len(dev) == 1 {
		return dev[0]
	}
	return stat.Mean(dev, nil) + stat.Variance(dev, nil)/2
}
