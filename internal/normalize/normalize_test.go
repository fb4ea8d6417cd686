package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbier/bestbets-engine/internal/models"
)

func TestPick_AssemblesPublicFieldsFromCandidate(t *testing.T) {
	line := -3.5
	p := models.ScoredPick{
		PickID: "pick-abc-123",
		Candidate: models.Candidate{
			Sport: "NCAAM", HomeTeam: "Duke", AwayTeam: "UNC",
			PickType: models.PickSpread, Selection: "Duke -3.5", Line: &line,
			SelectionHomeAway: "home",
			GameStartUTC:      time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC),
		},
		Engines:    models.EngineScores{AI: 7.1, Research: 6.2, Esoteric: 5.0, Jarvis: 6.8},
		FinalScore: 8.2,
		Tier:       "GOLD_STAR",
	}

	got := Pick(p)
	assert.Equal(t, "pick-abc-123", got.PickID)
	assert.Equal(t, "NCAAM", got.Sport)
	assert.Equal(t, "UNC @ Duke", got.Matchup)
	assert.Equal(t, "home", got.SelectionHomeAway)
	assert.Equal(t, "Duke", got.HomeTeam)
	assert.Equal(t, "SPREAD", got.Market)
	require.NotNil(t, got.Line)
	assert.Equal(t, -3.5, *got.Line)
	assert.Equal(t, 8.2, got.FinalScore)
	assert.Equal(t, "GOLD_STAR", got.Tier)
}

func TestPick_PropUsesStatTypeAsMarket(t *testing.T) {
	p := models.ScoredPick{
		Candidate: models.Candidate{PickType: models.PickProp, StatType: "points", PlayerName: "J. Player"},
	}
	got := Pick(p)
	assert.Equal(t, "points", got.Market)
	assert.Equal(t, "J. Player", got.PlayerName)
}

func TestPick_CarriesPerSignalProvenanceAndReasonsByEngine(t *testing.T) {
	p := models.ScoredPick{
		PerSignalProvenance: map[string]models.Provenance{"sharp": {}},
		ReasonsByEngine: map[string][]string{
			"ai":       {"prop trend positive"},
			"research": {"sharp money on same side"},
		},
	}
	got := Pick(p)
	assert.Contains(t, got.PerSignalProvenance, "sharp")
	assert.Equal(t, []string{"prop trend positive"}, got.ReasonsByEngine["ai"])
	assert.Equal(t, []string{"sharp money on same side"}, got.ReasonsByEngine["research"])
}

func TestPicks_EmptyInputReturnsEmptySliceNotNil(t *testing.T) {
	got := Picks(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPicks_PassesThroughEachScoredPicksExistingID(t *testing.T) {
	scored := []models.ScoredPick{
		{PickID: "pick-1"},
		{PickID: "pick-2"},
	}
	got := Picks(scored)
	require.Len(t, got, 2)
	assert.Equal(t, "pick-1", got[0].PickID)
	assert.Equal(t, "pick-2", got[1].PickID)
	assert.NotEqual(t, got[0].PickID, got[1].PickID)
}

func TestSplit_PartitionsGamePicksFromProps(t *testing.T) {
	scored := []models.ScoredPick{
		{Candidate: models.Candidate{PickType: models.PickSpread, HomeTeam: "Duke", AwayTeam: "UNC"}},
		{Candidate: models.Candidate{PickType: models.PickMoneyline, HomeTeam: "Duke", AwayTeam: "UNC"}},
		{Candidate: models.Candidate{PickType: models.PickProp, PlayerName: "J. Player", StatType: "points"}},
	}

	gamePicks, props := Split(scored)
	assert.Equal(t, 2, gamePicks.Count)
	assert.Len(t, gamePicks.Picks, 2)
	assert.Equal(t, 1, props.Count)
	require.Len(t, props.Picks, 1)
	assert.Equal(t, "points", props.Picks[0].Market)
}

func TestSplit_EmptyInputReturnsZeroedGroupsNotNilSlices(t *testing.T) {
	gamePicks, props := Split(nil)
	assert.Equal(t, 0, gamePicks.Count)
	assert.Empty(t, gamePicks.Picks)
	assert.Equal(t, 0, props.Count)
	assert.Empty(t, props.Picks)
}
