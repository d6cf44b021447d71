package contextclust

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// sweep performs one full Gibbs sweep in fixed order: local resampling
// (context by context, points in index order), global resampling (points
// in index order), then parameter resampling. The fixed order makes the
// whole run reproducible for a fixed seed.
func (st *runState) sweep() {
	for c := 0; c < st.nContexts; c++ {
		for i := 0; i < st.nPoints; i++ {
			st.resampleLocal(c, i)
		}
	}
	for i := 0; i < st.nPoints; i++ {
		st.detachGlobal(i)
		st.assignGlobal(i)
	}
	st.resampleParameters()
}

// resampleLocal redraws point i's local label in context c from its full
// conditional: the count of other members of i's global cluster already
// using each slot (plus a small residual mass for unused slots) times the
// emission likelihood under the slot's current parameters.
func (st *runState) resampleLocal(c, i int) {
	g := st.global[i]
	k := st.local[c][i]
	st.labelCount[g][c][k]--

	x := st.data[c][i]
	kc := st.caps[c]
	residual := st.alpha / float64(kc)
	logw := st.logwBuf[:kc]
	for s := 0; s < kc; s++ {
		logw[s] = math.Log(float64(st.labelCount[g][c][s])+residual) +
			st.emissions[c].LogLikelihood(x, s)
	}

	k = drawCategorical(st.rng, logw)
	st.local[c][i] = k
	st.labelCount[g][c][k]++
}

// assignGlobal gives detached point i a global label consistent with its
// current local-label combination: if an occupied slot already represents
// that combination the point must join it (global labels are a function of
// the combination), otherwise the free slots compete for the new
// combination, weighted by the residual prior mass and each slot's latent
// label distributions.
func (st *runState) assignGlobal(i int) {
	t := st.tuple(i)

	for g := 0; g < st.globalCap; g++ {
		if st.slotCount[g] > 0 && tuplesEqual(st.slotTuple[g], t) {
			st.attachGlobal(i, g)
			return
		}
	}

	residual := st.gamma / float64(st.globalCap)
	logw := st.logwBuf[:st.globalCap]
	nFree := 0
	for g := 0; g < st.globalCap; g++ {
		if st.slotCount[g] > 0 {
			logw[g] = math.Inf(-1)
			continue
		}
		nFree++
		w := math.Log(residual)
		for c := 0; c < st.nContexts; c++ {
			w += math.Log(st.slotDist[g][c][t[c]])
		}
		logw[g] = w
	}

	if nFree > 0 {
		g := drawCategorical(st.rng, logw)
		copy(st.slotTuple[g], t)
		st.attachGlobal(i, g)
		return
	}

	// Every slot already represents a different combination. Fold the
	// point into the best-fitting occupied slot and rewrite its local
	// labels to that slot's combination, keeping labels consistent.
	for g := 0; g < st.globalCap; g++ {
		w := math.Log(float64(st.slotCount[g]) + residual)
		for c := 0; c < st.nContexts; c++ {
			w += st.emissions[c].LogLikelihood(st.data[c][i], st.slotTuple[g][c])
		}
		logw[g] = w
	}
	g := drawCategorical(st.rng, logw)
	for c := 0; c < st.nContexts; c++ {
		st.local[c][i] = st.slotTuple[g][c]
	}
	st.attachGlobal(i, g)
}

// resampleParameters redraws every local slot's emission parameters from
// its conjugate posterior, every global slot's per-context label
// distribution from its Dirichlet posterior, and the global mixture
// weights. Empty slots draw from their priors.
func (st *runState) resampleParameters() {
	members := make([][]float64, 0, st.nPoints)
	for c := 0; c < st.nContexts; c++ {
		for k := 0; k < st.caps[c]; k++ {
			members = members[:0]
			for i := 0; i < st.nPoints; i++ {
				if st.local[c][i] == k {
					members = append(members, st.data[c][i])
				}
			}
			st.emissions[c].PosteriorDraw(k, members, st.rng)
		}
	}

	for g := 0; g < st.globalCap; g++ {
		for c := 0; c < st.nContexts; c++ {
			alpha := symmetricAlpha(st.gammaPhi, st.caps[c])
			for k := range alpha {
				alpha[k] += float64(st.labelCount[g][c][k])
			}
			st.slotDist[g][c] = drawDirichlet(alpha, st.rng)
		}
	}

	alpha := symmetricAlpha(st.gamma, st.globalCap)
	for g := range alpha {
		alpha[g] += float64(st.slotCount[g])
	}
	st.weights = drawDirichlet(alpha, st.rng)
}

// drawCategorical samples an index from the categorical distribution whose
// unnormalized log-weights are logw. Entries of -Inf carry zero mass.
func drawCategorical(rng *rand.Rand, logw []float64) int {
	total := floats.LogSumExp(logw)
	u := rng.Float64()
	cum := 0.0
	for k, lw := range logw {
		cum += math.Exp(lw - total)
		if u < cum {
			return k
		}
	}
	// Rounding left u just above the accumulated mass; return the last
	// index with nonzero weight.
	for k := len(logw) - 1; k > 0; k-- {
		if !math.IsInf(logw[k], -1) {
			return k
		}
	}
	return 0
}
