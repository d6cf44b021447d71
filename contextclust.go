package contextclust

import (
	"fmt"
	"log"
	"math/rand/v2"
)

// Config controls the Gibbs sampler.
// Start with [DefaultConfig] and override the fields you need; at minimum
// set ContextClusters to one cap per context.
type Config struct {
	// GlobalClusters is the upper bound on the number of global clusters
	// (an upper bound, not a target; unused slots stay empty).
	// Must be >= 1. Default: 10.
	GlobalClusters int

	// ContextClusters holds the upper bound on the number of local
	// clusters for each context, in context order. Each must be >= 1.
	// If nil, every context defaults to 10.
	ContextClusters []int

	// MaxIter is the total number of Gibbs sweeps. Must be >= 1.
	// Default: 1000.
	MaxIter int

	// BurnIn is the number of initial sweeps discarded before samples are
	// retained. Must satisfy 0 <= BurnIn < MaxIter. Default: 500.
	BurnIn int

	// Lag retains every Lag-th sweep after burn-in (thinning). Must be
	// >= 1. Default: 2.
	Lag int

	// Emission selects the per-context likelihood family.
	// Only EmissionGaussian is currently supported. Default: EmissionGaussian.
	Emission EmissionFamily

	// Alpha is the concentration of the local-cluster prior within a
	// global cluster. Smaller values concentrate a global cluster's
	// members on fewer local slots. Must be > 0. Default: 1.0.
	Alpha float64

	// Gamma is the concentration of the global-cluster prior. Must be > 0.
	// Default: 1.0.
	Gamma float64

	// GammaPhi is the concentration of each global slot's per-context
	// label distribution. Must be > 0. Default: 1.0.
	GammaPhi float64

	// Prior overrides the Normal-Gamma emission prior for every context.
	// If nil, a weakly informative prior is derived per context from the
	// data itself.
	Prior *GaussianPrior

	// Seed initializes the run's random source. The same seed, data and
	// config reproduce the run bit for bit.
	Seed uint64

	// Verbose logs sweep progress and the final DIC. Default: false.
	Verbose bool
}

// Result contains the output of a sampling run.
type Result struct {
	// Samples is the retained chain: assignment snapshots after burn-in
	// and thinning, in sweep order.
	Samples []Sample

	// LogLikelihoods is the joint log-likelihood recorded at every sweep,
	// of length MaxIter (the full trace, not just retained sweeps).
	LogLikelihoods []float64

	// DIC is the Deviance Information Criterion of the run, computed from
	// every post-burn-in sweep (thinning does not apply); lower is
	// better. See [DIC] for the estimator used.
	DIC float64
}

// GlobalLabelMatrix extracts the samples-by-points matrix of global labels
// from the retained chain, the input shape consumed by [NumberOfClusters]
// and [CoclusteringMatrix].
func (r *Result) GlobalLabelMatrix() [][]int {
	m := make([][]int, len(r.Samples))
	for s, sample := range r.Samples {
		m[s] = sample.Global
	}
	return m
}

// OccupiedClusters returns the number of occupied global clusters in each
// retained sample.
func (r *Result) OccupiedClusters() []int {
	return NumberOfClusters(r.GlobalLabelMatrix())
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		GlobalClusters: 10,
		MaxIter:        1000,
		BurnIn:         500,
		Lag:            2,
		Emission:       EmissionGaussian,
		Alpha:          1.0,
		Gamma:          1.0,
		GammaPhi:       1.0,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config, nContexts int) {
	if cfg.GlobalClusters == 0 {
		cfg.GlobalClusters = 10
	}
	if cfg.ContextClusters == nil {
		cfg.ContextClusters = make([]int, nContexts)
		for c := range cfg.ContextClusters {
			cfg.ContextClusters[c] = 10
		}
	}
	if cfg.MaxIter == 0 {
		cfg.MaxIter = 1000
	}
	if cfg.Lag == 0 {
		cfg.Lag = 2
	}
	if cfg.Emission == "" {
		cfg.Emission = EmissionGaussian
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = 1.0
	}
	if cfg.Gamma == 0 {
		cfg.Gamma = 1.0
	}
	if cfg.GammaPhi == 0 {
		cfg.GammaPhi = 1.0
	}
}

// validate checks the data shape and config and returns a descriptive
// error if anything is invalid. All validation happens before sampling
// starts; a failed run records nothing.
func validate(data [][][]float64, cfg *Config) error {
	if len(data) == 0 {
		return fmt.Errorf("contextclust: no contexts supplied")
	}
	n := len(data[0])
	for c, ctx := range data {
		if len(ctx) == 0 {
			return fmt.Errorf("contextclust: context %d has no points", c)
		}
		if len(ctx) != n {
			return fmt.Errorf("contextclust: context %d has %d points, context 0 has %d; all contexts must describe the same points", c, len(ctx), n)
		}
		dims := len(ctx[0])
		if dims == 0 {
			return fmt.Errorf("contextclust: context %d has zero-dimensional points", c)
		}
		for i, x := range ctx {
			if len(x) != dims {
				return fmt.Errorf("contextclust: context %d point %d has %d features, expected %d", c, i, len(x), dims)
			}
		}
	}

	if cfg.GlobalClusters < 1 {
		return fmt.Errorf("contextclust: GlobalClusters must be >= 1, got %d", cfg.GlobalClusters)
	}
	if len(cfg.ContextClusters) != len(data) {
		return fmt.Errorf("contextclust: got %d context cluster caps for %d contexts", len(cfg.ContextClusters), len(data))
	}
	for c, k := range cfg.ContextClusters {
		if k < 1 {
			return fmt.Errorf("contextclust: ContextClusters[%d] must be >= 1, got %d", c, k)
		}
	}
	if cfg.MaxIter < 1 {
		return fmt.Errorf("contextclust: MaxIter must be >= 1, got %d", cfg.MaxIter)
	}
	if cfg.BurnIn < 0 || cfg.BurnIn >= cfg.MaxIter {
		return fmt.Errorf("contextclust: BurnIn must satisfy 0 <= BurnIn < MaxIter, got BurnIn=%d MaxIter=%d", cfg.BurnIn, cfg.MaxIter)
	}
	if cfg.Lag < 1 {
		return fmt.Errorf("contextclust: Lag must be >= 1, got %d", cfg.Lag)
	}
	if cfg.Emission != EmissionGaussian {
		return fmt.Errorf("contextclust: unsupported emission family %q", cfg.Emission)
	}
	if cfg.Alpha <= 0 || cfg.Gamma <= 0 || cfg.GammaPhi <= 0 {
		return fmt.Errorf("contextclust: concentration parameters must be > 0, got Alpha=%g Gamma=%g GammaPhi=%g", cfg.Alpha, cfg.Gamma, cfg.GammaPhi)
	}
	if p := cfg.Prior; p != nil {
		if p.Kappa0 <= 0 || p.Alpha0 <= 0 || p.Beta0 <= 0 {
			return fmt.Errorf("contextclust: Prior hyperparameters Kappa0, Alpha0, Beta0 must be > 0, got %+v", *p)
		}
	}
	return nil
}

// Run performs context-dependent Bayesian clustering on the given data,
// indexed [context][point][feature]. It runs the Gibbs sampler for
// cfg.MaxIter sweeps and returns the retained chain, the full
// log-likelihood trace and the run's DIC. The data is treated as read-only
// for the duration of the run.
func Run(data [][][]float64, cfg Config) (*Result, error) {
	applyDefaults(&cfg, len(data))
	if err := validate(data, &cfg); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	priors := make([]GaussianPrior, len(data))
	for c := range data {
		if cfg.Prior != nil {
			priors[c] = *cfg.Prior
		} else {
			priors[c] = dataDrivenPrior(data[c])
		}
	}

	st := newRunState(data, cfg, priors, rng)
	rec := newChainRecorder(cfg.BurnIn, cfg.Lag, cfg.MaxIter)
	trace := make([]float64, 0, cfg.MaxIter)

	for sweep := 1; sweep <= cfg.MaxIter; sweep++ {
		st.sweep()
		ll := st.jointLogLikelihood()
		trace = append(trace, ll)
		rec.record(sweep, st, ll)
		if cfg.Verbose {
			log.Printf("contextclust: sweep %d/%d loglik=%.4f", sweep, cfg.MaxIter, ll)
		}
	}

	// DIC is computed over every post-burn-in sweep, thinned or not; the
	// pre-stationary transient would otherwise dominate the deviance
	// variance.
	dic := DIC(trace[cfg.BurnIn:])
	if cfg.Verbose {
		log.Printf("contextclust: done, %d samples retained, DIC=%.4f", len(rec.samples), dic)
	}
	return &Result{
		Samples:        rec.samples,
		LogLikelihoods: trace,
		DIC:            dic,
	}, nil
}
