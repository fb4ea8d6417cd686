package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, WeightSum, 1e-9, "engine weights must sum to exactly 1.00")
}

func TestGlitchWeightsSumToOnePointTwo(t *testing.T) {
	assert.InDelta(t, 1.20, GlitchWeightSum, 1e-9)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-5, 0, 10))
	assert.Equal(t, 10.0, Clamp(50, 0, 10))
	assert.Equal(t, 5.0, Clamp(5, 0, 10))
}

func TestTierThresholdsAreOrdered(t *testing.T) {
	assert.Less(t, SilverFinalMin, GoldStarFinalMin, "silver threshold must sit below gold")
	assert.LessOrEqual(t, GoldStarFinalMin, TitaniumEngineThreshold)
}

func TestMSRFExternalLockedIsZero(t *testing.T) {
	assert.Equal(t, 0.0, MSRFExternalLocked, "msrf_external must never double-count Jarvis's internal MSRF")
}
