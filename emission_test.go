package contextclust

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestNIGPosterior(t *testing.T) {
	prior := GaussianPrior{Mu0: 0, Kappa0: 1, Alpha0: 2, Beta0: 1}
	xs := []float64{1, 2, 3}

	muN, kappaN, alphaN, betaN := nigPosterior(prior, xs)

	// n=3, sample mean 2, sum of squared deviations 2.
	if kappaN != 4 {
		t.Errorf("kappaN: got %v, want 4", kappaN)
	}
	if muN != 1.5 {
		t.Errorf("muN: got %v, want 1.5", muN)
	}
	if alphaN != 3.5 {
		t.Errorf("alphaN: got %v, want 3.5", alphaN)
	}
	// betaN = 1 + 2/2 + 1*3*(2-0)^2 / (2*4) = 3.5
	if math.Abs(betaN-3.5) > 1e-12 {
		t.Errorf("betaN: got %v, want 3.5", betaN)
	}
}

func TestNIGPosteriorEmpty(t *testing.T) {
	prior := GaussianPrior{Mu0: 1.5, Kappa0: 0.5, Alpha0: 2, Beta0: 3}
	muN, kappaN, alphaN, betaN := nigPosterior(prior, nil)
	if muN != prior.Mu0 || kappaN != prior.Kappa0 || alphaN != prior.Alpha0 || betaN != prior.Beta0 {
		t.Errorf("empty posterior should equal the prior, got %v/%v/%v/%v", muN, kappaN, alphaN, betaN)
	}
}

func TestGaussianLogLikelihood(t *testing.T) {
	g := &gaussianDiag{
		prior:    DefaultGaussianPrior(),
		mean:     [][]float64{{0, 1}},
		variance: [][]float64{{1, 4}},
	}

	// Standard normal at its mean: -0.5*log(2*pi) per unit-variance dim.
	got := g.LogLikelihood([]float64{0, 1}, 0)
	want := -0.5*math.Log(2*math.Pi) - 0.5*math.Log(2*math.Pi*4)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("log-likelihood at mean: got %v, want %v", got, want)
	}

	// One unit away in a unit-variance dimension costs exactly 0.5.
	away := g.LogLikelihood([]float64{1, 1}, 0)
	if math.Abs((got-away)-0.5) > 1e-12 {
		t.Errorf("unit offset penalty: got %v, want 0.5", got-away)
	}
}

// PosteriorDraw must never produce a degenerate slot, no matter how few
// points back the update.
func TestPosteriorDrawNeverDegenerate(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	prior := DefaultGaussianPrior()
	model := newEmissionModel(EmissionGaussian, 1, 2, prior, rng).(*gaussianDiag)

	assignments := [][][]float64{
		nil,
		{{1, 1}},
		{{1, 1}, {1, 1}}, // identical points: zero sample variance
	}
	for _, points := range assignments {
		for trial := 0; trial < 100; trial++ {
			model.PosteriorDraw(0, points, rng)
			for d := 0; d < 2; d++ {
				v := model.variance[0][d]
				if math.IsNaN(v) || math.IsInf(v, 0) || v < varianceFloor {
					t.Fatalf("n=%d: degenerate variance %v", len(points), v)
				}
				m := model.mean[0][d]
				if math.IsNaN(m) || math.IsInf(m, 0) {
					t.Fatalf("n=%d: degenerate mean %v", len(points), m)
				}
			}
		}
	}
}

// With many observations the posterior draw concentrates near the sample
// statistics.
func TestPosteriorDrawConcentrates(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 11))
	prior := DefaultGaussianPrior()
	model := newEmissionModel(EmissionGaussian, 1, 1, prior, rng).(*gaussianDiag)

	points := make([][]float64, 2000)
	for i := range points {
		points[i] = []float64{5 + rng.NormFloat64()}
	}

	model.PosteriorDraw(0, points, rng)
	if m := model.mean[0][0]; math.Abs(m-5) > 0.5 {
		t.Errorf("posterior mean: got %v, want ~5", m)
	}
	if v := model.variance[0][0]; v < 0.5 || v > 2 {
		t.Errorf("posterior variance: got %v, want ~1", v)
	}
}

func TestDataDrivenPrior(t *testing.T) {
	points := [][]float64{{0, 2}, {4, 2}}
	p := dataDrivenPrior(points)
	if p.Mu0 != 2 {
		t.Errorf("Mu0: got %v, want 2", p.Mu0)
	}
	if p.Kappa0 <= 0 || p.Alpha0 <= 0 || p.Beta0 <= 0 {
		t.Errorf("hyperparameters must be positive, got %+v", p)
	}

	// Constant data must not yield a zero-variance prior.
	flat := dataDrivenPrior([][]float64{{3}, {3}, {3}})
	if flat.Beta0 <= 0 {
		t.Errorf("constant data: Beta0 %v, want > 0", flat.Beta0)
	}
}
