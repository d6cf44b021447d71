package contextclust

import (
	"math/rand/v2"
	"testing"
)

func TestEdgeCase_SinglePoint(t *testing.T) {
	data := [][][]float64{{{1.0, 2.0}}}
	cfg := DefaultConfig()
	cfg.ContextClusters = []int{3}
	cfg.MaxIter, cfg.BurnIn, cfg.Lag = 10, 2, 1

	result, err := Run(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Samples) != 8 {
		t.Fatalf("got %d samples, want 8", len(result.Samples))
	}
	for _, s := range result.Samples {
		if len(s.Global) != 1 {
			t.Fatalf("got %d global labels, want 1", len(s.Global))
		}
	}
	for _, n := range result.OccupiedClusters() {
		if n != 1 {
			t.Errorf("occupied clusters: got %d, want 1", n)
		}
	}
}

func TestEdgeCase_CapsLargerThanData(t *testing.T) {
	rng := rand.New(rand.NewPCG(17, 17))
	ctx := make([][]float64, 5)
	for i := range ctx {
		ctx[i] = []float64{rng.NormFloat64()}
	}

	cfg := DefaultConfig()
	cfg.GlobalClusters = 20
	cfg.ContextClusters = []int{8}
	cfg.MaxIter, cfg.BurnIn, cfg.Lag = 20, 5, 1
	cfg.Seed = 17

	result, err := Run([][][]float64{ctx}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Occupied clusters can never exceed the number of points.
	for s, n := range result.OccupiedClusters() {
		if n > 5 {
			t.Errorf("sample %d: %d occupied clusters for 5 points", s, n)
		}
	}
}

// More possible local-label combinations than global slots: the sampler
// has to fold surplus combinations into existing clusters rather than
// violate the label consistency between levels.
func TestEdgeCase_MoreCombinationsThanSlots(t *testing.T) {
	rng := rand.New(rand.NewPCG(19, 19))
	n := 30
	ctx1 := make([][]float64, n)
	ctx2 := make([][]float64, n)
	for i := range ctx1 {
		ctx1[i] = []float64{rng.NormFloat64() * 3}
		ctx2[i] = []float64{rng.NormFloat64() * 3}
	}

	cfg := DefaultConfig()
	cfg.GlobalClusters = 2
	cfg.ContextClusters = []int{4, 4} // 16 combinations, 2 slots
	cfg.MaxIter, cfg.BurnIn, cfg.Lag = 30, 0, 1
	cfg.Seed = 19

	result, err := Run([][][]float64{ctx1, ctx2}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range result.Samples {
		checkConsistent(t, s)
	}
	for s, n := range result.OccupiedClusters() {
		if n > 2 {
			t.Errorf("sample %d: %d occupied clusters, cap is 2", s, n)
		}
	}
}

func TestEdgeCase_ManyContexts(t *testing.T) {
	rng := rand.New(rand.NewPCG(23, 23))
	nContexts, n := 4, 12
	data := make([][][]float64, nContexts)
	for c := range data {
		data[c] = make([][]float64, n)
		for i := range data[c] {
			data[c][i] = []float64{rng.NormFloat64()}
		}
	}

	cfg := DefaultConfig()
	cfg.GlobalClusters = 5
	cfg.ContextClusters = []int{2, 2, 2, 2}
	cfg.MaxIter, cfg.BurnIn, cfg.Lag = 25, 5, 2
	cfg.Seed = 23

	result, err := Run(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range result.Samples {
		if len(s.Local) != nContexts {
			t.Fatalf("got %d local contexts, want %d", len(s.Local), nContexts)
		}
		checkConsistent(t, s)
	}
}

func TestEdgeCase_ExplicitPrior(t *testing.T) {
	data := smallData(15)
	cfg := DefaultConfig()
	cfg.ContextClusters = []int{3}
	cfg.MaxIter, cfg.BurnIn, cfg.Lag = 20, 5, 1
	cfg.Prior = &GaussianPrior{Mu0: 0, Kappa0: 1, Alpha0: 3, Beta0: 2}

	if _, err := Run(data, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
