package nn

import (
	"math"
	"math/rand/v2"
)

// DefaultEpsilon is the default half-width of the uniform weight initialization
// of linear models.
const DefaultEpsilon = 0.12

// AutoencoderInitBound returns the half-width of the uniform initialization of a
// tied autoencoder's flat parameter vector: 4 / sqrt(6 / (hidden + input)).
func AutoencoderInitBound(hiddenUnits, inputDim int) float64 {
	return 4 / math.Sqrt(6.0/float64(hiddenUnits+inputDim))
}

// newRand returns rng, or a freshly seeded generator if rng is nil.
func newRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	//nolint:gosec // Using math/rand for weight initialization (not security-critical)
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
