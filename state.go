package contextclust

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distmv"
)

// probFloor keeps sampled probability vectors strictly positive so their
// logs stay finite. Sparse Dirichlet draws can underflow individual entries
// to exact zero.
const probFloor = 1e-12

// runState owns every piece of mutable sampler state for a single run:
// the assignment matrices, the global-slot arena, and the per-context
// emission models. Nothing here is shared between runs, so independent
// runs never interfere.
type runState struct {
	data      [][][]float64 // [context][point][dim], read-only
	nContexts int
	nPoints   int
	caps      []int // K_c per context
	globalCap int   // G

	alpha    float64 // local concentration
	gamma    float64 // global concentration
	gammaPhi float64 // slot label-distribution concentration

	rng *rand.Rand

	// Emission parameters for every local slot, one model per context.
	emissions []EmissionModel

	// Current assignments.
	global []int   // [point]
	local  [][]int // [context][point]

	// Global-slot arena: a fixed array of globalCap slots. A slot is
	// occupied iff slotCount > 0; slotTuple is its defining local-label
	// combination, meaningful only while occupied. slotDist[g][c] is the
	// slot's latent probability vector over context c's local labels,
	// redrawn from its Dirichlet posterior every sweep.
	slotCount []int
	slotTuple [][]int
	slotDist  [][][]float64

	// labelCount[g][c][k] is the number of members of global slot g whose
	// local label in context c is k. Maintained incrementally during
	// resampling.
	labelCount [][][]int

	// Global mixture weights, redrawn each sweep from their Dirichlet
	// posterior; used in the joint log-likelihood.
	weights []float64

	// Scratch buffers reused across points to avoid per-point allocation.
	tupleBuf []int
	logwBuf  []float64
}

func newRunState(data [][][]float64, cfg Config, priors []GaussianPrior, rng *rand.Rand) *runState {
	nContexts := len(data)
	nPoints := len(data[0])
	g := cfg.GlobalClusters

	st := &runState{
		data:      data,
		nContexts: nContexts,
		nPoints:   nPoints,
		caps:      cfg.ContextClusters,
		globalCap: g,
		alpha:     cfg.Alpha,
		gamma:     cfg.Gamma,
		gammaPhi:  cfg.GammaPhi,
		rng:       rng,
		emissions: make([]EmissionModel, nContexts),
		global:    make([]int, nPoints),
		local:     make([][]int, nContexts),
		slotCount: make([]int, g),
		slotTuple: make([][]int, g),
		slotDist:  make([][][]float64, g),
		weights:   make([]float64, g),
		tupleBuf:  make([]int, nContexts),
		logwBuf:   make([]float64, maxCap(cfg)),
	}

	for c := 0; c < nContexts; c++ {
		dims := len(data[c][0])
		st.emissions[c] = newEmissionModel(cfg.Emission, st.caps[c], dims, priors[c], rng)
		st.local[c] = make([]int, nPoints)
		for i := range st.local[c] {
			st.local[c][i] = rng.IntN(st.caps[c])
		}
	}

	for s := 0; s < g; s++ {
		st.slotTuple[s] = make([]int, nContexts)
		st.slotDist[s] = make([][]float64, nContexts)
		for c := 0; c < nContexts; c++ {
			st.slotDist[s][c] = drawDirichlet(symmetricAlpha(st.gammaPhi, st.caps[c]), rng)
		}
	}
	st.weights = drawDirichlet(symmetricAlpha(st.gamma, g), rng)

	st.labelCount = make([][][]int, g)
	for s := 0; s < g; s++ {
		st.labelCount[s] = make([][]int, nContexts)
		for c := 0; c < nContexts; c++ {
			st.labelCount[s][c] = make([]int, st.caps[c])
		}
	}

	// Derive the initial global assignment from the random local labels:
	// each distinct local-label combination claims a slot.
	for i := 0; i < nPoints; i++ {
		st.global[i] = -1
	}
	for i := 0; i < nPoints; i++ {
		st.assignGlobal(i)
	}
	return st
}

// maxCap returns the largest slot count the sampler will draw over, sizing
// the shared log-weight scratch buffer.
func maxCap(cfg Config) int {
	m := cfg.GlobalClusters
	for _, k := range cfg.ContextClusters {
		if k > m {
			m = k
		}
	}
	return m
}

// symmetricAlpha builds a symmetric Dirichlet concentration vector whose
// entries sum to conc.
func symmetricAlpha(conc float64, k int) []float64 {
	a := make([]float64, k)
	for i := range a {
		a[i] = conc / float64(k)
	}
	return a
}

// drawDirichlet samples a probability vector, clamping entries away from
// exact zero.
func drawDirichlet(alpha []float64, rng *rand.Rand) []float64 {
	p := distmv.NewDirichlet(alpha, rng).Rand(nil)
	for i, v := range p {
		if v < probFloor {
			p[i] = probFloor
		}
	}
	return p
}

// tuple copies point i's local-label combination into the shared buffer.
func (st *runState) tuple(i int) []int {
	for c := 0; c < st.nContexts; c++ {
		st.tupleBuf[c] = st.local[c][i]
	}
	return st.tupleBuf
}

func tuplesEqual(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// detachGlobal removes point i from its current global slot, if any.
func (st *runState) detachGlobal(i int) {
	g := st.global[i]
	if g < 0 {
		return
	}
	st.slotCount[g]--
	for c := 0; c < st.nContexts; c++ {
		st.labelCount[g][c][st.local[c][i]]--
	}
	st.global[i] = -1
}

// attachGlobal adds point i to slot g, which adopts i's current local
// labels in its member counts.
func (st *runState) attachGlobal(i, g int) {
	st.global[i] = g
	st.slotCount[g]++
	for c := 0; c < st.nContexts; c++ {
		st.labelCount[g][c][st.local[c][i]]++
	}
}
