package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greenbier/bestbets-engine/internal/contract"
)

func TestHurstExponent_BelowMinSnapshotsIsNoData(t *testing.T) {
	snaps := make([]float64, contract.HurstMinSnapshots-1)
	h, reason := hurstExponent(snaps)
	assert.Equal(t, 0.0, h)
	assert.Contains(t, reason, "NO_DATA")
}

func TestHurstExponent_AtMinSnapshotsComputes(t *testing.T) {
	snaps := make([]float64, contract.HurstMinSnapshots)
	for i := range snaps {
		snaps[i] = float64(i%3) - 1
	}
	h, reason := hurstExponent(snaps)
	assert.GreaterOrEqual(t, h, 0.0)
	assert.LessOrEqual(t, h, 1.0)
	assert.NotContains(t, reason, "NO_DATA")
}

func TestHurstExponent_ZeroVarianceIsNeutral(t *testing.T) {
	snaps := make([]float64, contract.HurstMinSnapshots)
	for i := range snaps {
		snaps[i] = 3.0
	}
	h, _ := hurstExponent(snaps)
	assert.Equal(t, 0.5, h)
}

func TestBenfordAnomaly_BelowMinUniqueIsNoData(t *testing.T) {
	lines := make([]float64, contract.BenfordMinUniqueVals-1)
	for i := range lines {
		lines[i] = float64(i + 1)
	}
	anomaly, reason := benfordAnomaly(lines)
	assert.Equal(t, 0.0, anomaly)
	assert.Contains(t, reason, "NO_DATA")
}

func TestBenfordAnomaly_AtMinUniqueComputes(t *testing.T) {
	lines := make([]float64, contract.BenfordMinUniqueVals)
	for i := range lines {
		lines[i] = float64(i + 1)
	}
	anomaly, reason := benfordAnomaly(lines)
	assert.GreaterOrEqual(t, anomaly, 0.0)
	assert.LessOrEqual(t, anomaly, 1.0)
	assert.NotContains(t, reason, "NO_DATA")
}

func TestLeadingDigit(t *testing.T) {
	assert.Equal(t, 3, leadingDigit(345.6))
	assert.Equal(t, 3, leadingDigit(0.0345))
	assert.Equal(t, 0, leadingDigit(0))
}

func TestGlitch_NeverExceedsEngineBounds(t *testing.T) {
	in := GlitchInputs{
		PlayerBirthMonthDay: "03-10", GameDateMonthDay: "03-10",
		MoonIsVoidOfCourse: true, SearchVelocityIndex: 1.0,
		LineSnapshots:  []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
		KpIndex:        9,
		MultiBookLines: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	}
	got := Glitch(in)
	assert.LessOrEqual(t, got.Value, contract.EngineScoreMax)
	assert.GreaterOrEqual(t, got.Value, contract.EngineScoreMin)
}

func TestGlitch_NoInputsStillSucceedsAtZero(t *testing.T) {
	got := Glitch(GlitchInputs{})
	assert.Equal(t, 0.0, got.Value)
	assert.False(t, got.Triggered)
}
