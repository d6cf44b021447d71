package contextclust

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// EmissionFamily selects the per-context likelihood family for cluster
// parameters.
type EmissionFamily string

const (
	// EmissionGaussian is a Gaussian with diagonal covariance: independent
	// mean and variance per feature, with a conjugate Normal-Gamma prior.
	EmissionGaussian EmissionFamily = "gaussian"
)

// varianceFloor is the smallest variance a cluster slot may carry. Posterior
// draws below it are clamped so that a slot holding zero or one points can
// never collapse to a degenerate spike.
const varianceFloor = 1e-8

// GaussianPrior is the Normal-Gamma prior shared by every dimension of a
// context's diagonal-Gaussian emission model. The precision lambda of each
// dimension follows Gamma(Alpha0, rate Beta0) and the mean follows
// Normal(Mu0, 1/(Kappa0*lambda)).
type GaussianPrior struct {
	// Mu0 is the prior mean.
	Mu0 float64

	// Kappa0 is the number of pseudo-observations backing Mu0. Must be > 0.
	Kappa0 float64

	// Alpha0 is the shape of the Gamma prior on the precision. Must be > 0.
	Alpha0 float64

	// Beta0 is the rate of the Gamma prior on the precision. Must be > 0.
	Beta0 float64
}

// DefaultGaussianPrior returns a weakly informative prior suitable for data
// that has been centered and scaled to roughly unit variance.
func DefaultGaussianPrior() GaussianPrior {
	return GaussianPrior{Mu0: 0, Kappa0: 0.1, Alpha0: 2, Beta0: 1}
}

// dataDrivenPrior derives prior hyperparameters from one context's data:
// the prior mean is the grand mean over all features and the precision
// prior is scaled so its mean matches the inverse of the pooled variance.
func dataDrivenPrior(points [][]float64) GaussianPrior {
	n := 0
	sum := 0.0
	for _, x := range points {
		for _, v := range x {
			sum += v
			n++
		}
	}
	mean := sum / float64(n)
	ss := 0.0
	for _, x := range points {
		for _, v := range x {
			d := v - mean
			ss += d * d
		}
	}
	variance := ss / float64(n)
	if variance < varianceFloor {
		variance = 1
	}
	// Gamma(alpha, rate beta) has mean alpha/beta; pick beta so the prior
	// precision centers on 1/variance.
	return GaussianPrior{Mu0: mean, Kappa0: 0.1, Alpha0: 2, Beta0: 2 * variance}
}

// EmissionModel holds the cluster-slot parameters of a single context and
// provides the two operations the Gibbs sampler needs. Additional emission
// families plug into the sampler by implementing the same two operations.
type EmissionModel interface {
	// LogLikelihood returns the log-density of feature vector x under the
	// parameters currently held by the given cluster slot.
	LogLikelihood(x []float64, slot int) float64

	// PosteriorDraw replaces the given slot's parameters with a draw from
	// the conjugate posterior given the points currently assigned to the
	// slot. An empty assignment yields a prior draw.
	PosteriorDraw(slot int, points [][]float64, rng *rand.Rand)
}

// newEmissionModel constructs the emission model for one context, with all
// slot parameters drawn from the prior.
func newEmissionModel(family EmissionFamily, slots, dims int, prior GaussianPrior, rng *rand.Rand) EmissionModel {
	// Validation has already rejected unknown families.
	g := &gaussianDiag{
		prior:    prior,
		mean:     make([][]float64, slots),
		variance: make([][]float64, slots),
	}
	for k := 0; k < slots; k++ {
		g.mean[k] = make([]float64, dims)
		g.variance[k] = make([]float64, dims)
		g.PosteriorDraw(k, nil, rng)
	}
	return g
}

// gaussianDiag implements the diagonal-covariance Gaussian family. Each slot
// holds a mean and a variance per dimension; dimensions are independent, so
// the Normal-Gamma posterior update is closed-form per dimension.
type gaussianDiag struct {
	prior    GaussianPrior
	mean     [][]float64 // [slot][dim]
	variance [][]float64 // [slot][dim]
}

func (g *gaussianDiag) LogLikelihood(x []float64, slot int) float64 {
	mean := g.mean[slot]
	variance := g.variance[slot]
	ll := 0.0
	for d, v := range x {
		diff := v - mean[d]
		ll += -0.5*math.Log(2*math.Pi*variance[d]) - diff*diff/(2*variance[d])
	}
	return ll
}

// nigPosterior computes the Normal-Gamma posterior hyperparameters for one
// dimension given the assigned observations xs.
func nigPosterior(prior GaussianPrior, xs []float64) (muN, kappaN, alphaN, betaN float64) {
	n := float64(len(xs))
	kappaN = prior.Kappa0 + n
	alphaN = prior.Alpha0 + n/2
	if len(xs) == 0 {
		return prior.Mu0, kappaN, alphaN, prior.Beta0
	}
	mean := 0.0
	for _, v := range xs {
		mean += v
	}
	mean /= n
	ss := 0.0
	for _, v := range xs {
		d := v - mean
		ss += d * d
	}
	muN = (prior.Kappa0*prior.Mu0 + n*mean) / kappaN
	dm := mean - prior.Mu0
	betaN = prior.Beta0 + ss/2 + prior.Kappa0*n*dm*dm/(2*kappaN)
	return muN, kappaN, alphaN, betaN
}

func (g *gaussianDiag) PosteriorDraw(slot int, points [][]float64, rng *rand.Rand) {
	dims := len(g.mean[slot])
	xs := make([]float64, len(points))
	for d := 0; d < dims; d++ {
		for i, p := range points {
			xs[i] = p[d]
		}
		muN, kappaN, alphaN, betaN := nigPosterior(g.prior, xs)

		lambda := distuv.Gamma{Alpha: alphaN, Beta: betaN, Src: rng}.Rand()
		if lambda <= 0 || math.IsInf(lambda, 0) || math.IsNaN(lambda) {
			// Degenerate draw; fall back to the prior mean precision.
			lambda = g.prior.Alpha0 / g.prior.Beta0
		}
		variance := 1 / lambda
		if variance < varianceFloor {
			variance = varianceFloor
		}
		mean := distuv.Normal{Mu: muN, Sigma: math.Sqrt(variance / kappaN), Src: rng}.Rand()
		if math.IsNaN(mean) || math.IsInf(mean, 0) {
			mean = muN
		}

		g.mean[slot][d] = mean
		g.variance[slot][d] = variance
	}
}
