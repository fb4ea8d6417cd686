package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenbier/bestbets-engine/internal/aggregator"
	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
	"github.com/greenbier/bestbets-engine/internal/persistence"
	"github.com/greenbier/bestbets-engine/internal/providers"
	"github.com/greenbier/bestbets-engine/internal/signals"
	"github.com/greenbier/bestbets-engine/internal/timeauthority"
)

// oddsLineValues extracts the raw line values from a tuple's fetched
// odds, used by both the candidate's displayed line and the
// Research/GLITCH line-variance inputs.
func oddsLineValues(lines []providers.OddsLine) []float64 {
	out := make([]float64, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Line)
	}
	return out
}

func minMax(vals []float64) (min, max float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	min, max = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// withLine returns a copy of c with Line and OddsQuotes populated from
// the tuple's fetched odds, when available.
func withLine(c models.Candidate, td tupleData) models.Candidate {
	if td.OddsOut.Status != models.StatusSuccess || len(td.Odds) == 0 {
		return c
	}
	lines := oddsLineValues(td.Odds)
	avg := 0.0
	for _, v := range lines {
		avg += v
	}
	avg /= float64(len(lines))
	c.Line = &avg
	for _, l := range td.Odds {
		c.OddsQuotes = append(c.OddsQuotes, models.OddsQuote{
			Sportsbook:    l.Sportsbook,
			AmericanOdds:  l.Price,
			Line:          l.Line,
			ObservedAtUTC: time.Now().UTC(),
		})
	}
	return c
}

// scoreCandidate runs the full signal-and-aggregation pipeline for one candidate and
// returns a ready-to-select ScoredPick. lineHistory is this candidate's
// event's chronological line-snapshot log (may be empty/nil — recorded
// by the scheduler's periodic snapshot job, not fetched per-request).
func (e *Engine) scoreCandidate(c models.Candidate, td tupleData, sbEntry providers.ScoreboardEntry, lineHistory []persistence.LineSnapshot) models.ScoredPick {
	c = withLine(c, td)
	isProp := c.PickType == models.PickProp

	gameDateET := timeauthority.DateET(c.GameStartUTC)

	splitSelection := providers.TicketMoneySplit{}
	for _, s := range td.Splits {
		if s.Selection == c.Selection {
			splitSelection = s
			break
		}
	}
	lineMin, lineMax := minMax(oddsLineValues(td.Odds))

	aiResult := signals.AI(signals.AIInputs{
		IsProp: isProp,
		Line:   c.Line,
	})

	rlmMoved, rlmPct := detectReverseLineMovement(lineHistory, splitSelection.TicketPct)
	researchIn := signals.ResearchInputs{
		SharpStatus: td.SplitsOut.Status,
		TicketPct:   splitSelection.TicketPct,
		MoneyPct:    splitSelection.MoneyPct,
		LineStatus:  td.OddsOut.Status,
		MaxLine:     lineMax,
		MinLine:     lineMin,

		PublicFadeEligible:     td.SplitsOut.Status == models.StatusSuccess,
		ESPNAgrees:             espnAgreement(td.News),
		LineMovedAgainstPublic: rlmMoved,
		RLMThresholdPct:        rlmPct,
	}
	researchResult := signals.Research(researchIn)
	sharpResult := signals.SharpSignalResult(researchIn)
	lineResult := signals.LineSignalResult(researchIn)

	velocity := 0.0
	if td.TrendOut.Status == models.StatusSuccess {
		velocity = contract.Clamp(td.Trend.VelocityIdx/100.0, 0, 1)
	}

	glitchIn := signals.GlitchInputs{
		GameDateMonthDay:    c.GameStartUTC.In(timeauthority.Eastern).Format("01-02"),
		MoonIsVoidOfCourse:  td.MoonOut.Status == models.StatusSuccess && td.Moon.VoidOfCourse,
		SearchVelocityIndex: velocity,
		LineSnapshots:       chronoLineValues(lineHistory),
		KpIndex:             td.Kp.KpIndex,
		MultiBookLines:      oddsLineValues(td.Odds),
	}
	jarvisName := c.HomeTeam
	phase8TeamName := c.HomeTeam
	if isProp {
		jarvisName = c.PlayerName
		phase8TeamName = c.PlayerName
	}
	phase8In := signals.Phase8Inputs{
		IsProp:            isProp,
		GameDate:          gameDateET,
		TeamName:          phase8TeamName,
		HomeTeam:          c.HomeTeam,
		AwayTeam:          c.AwayTeam,
		MoonIllumination:  td.Moon.Illumination,
		SolarFlareClass:   flareClassFromKp(td.Kp.KpIndex),
		MercuryRetrograde: mercuryRetrograde(c.GameStartUTC.In(timeauthority.Eastern).YearDay()),
	}
	esotericResult := signals.Esoteric(signals.EsotericInputs{Glitch: glitchIn, Phase8: phase8In})

	jarvisSignal, jarvisOut := signals.Jarvis(signals.JarvisInputs{
		TeamOrPlayerName: jarvisName,
		SacredNumberSets: [][]int{{3, 6, 9}, {7, 11, 22}},
		GameDate:         gameDateET,
	})

	officialsKnown := td.OfficialsOut.Status == models.StatusSuccess
	venueAdj := 0.0
	if officialsKnown {
		venueAdj = venueSurfaceAdjustment(td.Officials)
	}
	contextResult := signals.Context(signals.ContextInputs{
		VenueSurfaceAdj: venueAdj,
		GameStatus:      c.GameStatus,
		LiveScoreDelta:  sbEntry.HomeScore - sbEntry.AwayScore,
	})

	ensembleSignal := 0
	if aiResult.Value > researchResult.Value {
		ensembleSignal = 1
	} else if aiResult.Value < researchResult.Value {
		ensembleSignal = -1
	}

	isTotal := c.PickType == models.PickTotal
	totalsRaw := 0.0
	if isTotal && td.WeatherOut.Status == models.StatusSuccess {
		totalsRaw = weatherTotalsAdjustment(td.Weather)
	}

	adj, postReasons := signals.Compute(signals.PostBaseInputs{
		ResearchScore:             researchResult.Value,
		EsotericScore:             esotericResult.Value,
		EnsembleSignal:            ensembleSignal,
		GameStatus:                c.GameStatus,
		ExpertConsensusRaw:        expertConsensusRaw(td.News),
		ExpertConsensusShadowMode: true,
		IsProp:                    isProp,
		IsTotal:                   isTotal,
		TotalsCalibrationRaw:      totalsRaw,
	})

	engines := models.EngineScores{
		AI:       aiResult.Value,
		Research: researchResult.Value,
		Esoteric: esotericResult.Value,
		Jarvis:   jarvisSignal.Value,
	}
	base4, final := aggregator.Aggregate(engines, contextResult.Value, adj)
	reconDelta := aggregator.Reconcile(engines, contextResult.Value, adj, final)

	reasonsByEngine := map[string][]string{
		"ai":               aiResult.Reasons,
		"research":         researchResult.Reasons,
		"research.sharp":   sharpResult.Reasons,
		"research.line":    lineResult.Reasons,
		"esoteric":         esotericResult.Reasons,
		"jarvis":           append(append([]string{}, jarvisOut.Reasons...), jarvisOut.FailReasons...),
		"context_modifier": contextResult.Reasons,
		"post_base":        postReasons,
	}

	provenance := map[string]models.Provenance{
		"ai":               aiResult.Provenance,
		"research":         researchResult.Provenance,
		"research.sharp":   sharpResult.Provenance,
		"research.line":    lineResult.Provenance,
		"esoteric":         esotericResult.Provenance,
		"jarvis":           jarvisSignal.Provenance,
		"context_modifier": contextResult.Provenance,
	}

	return models.ScoredPick{
		Candidate:           c,
		PickID:              uuid.New().String(),
		Engines:             engines,
		ContextModifier:     contextResult.Value,
		Adjustments:         adj,
		Base4Score:          base4,
		FinalScore:          final,
		Reconciled:          reconDelta,
		ReasonsByEngine:      reasonsByEngine,
		PerSignalProvenance: provenance,
		IntegrationsUsed:    integrationsUsed(td),
	}
}

// flareClassFromKp maps the planetary Kp-index onto the coarse
// solar-flare classification Phase8's solarFlareClassification expects
// — the two providers describe related but distinct space-weather
// phenomena, so this is a deliberate approximation, not a lookup.
func flareClassFromKp(kp float64) string {
	switch {
	case kp >= 8:
		return "X"
	case kp >= 6:
		return "M"
	case kp >= 4:
		return "C"
	case kp >= 2:
		return "B"
	default:
		return "A"
	}
}

func integrationsUsed(td tupleData) []string {
	var out []string
	add := func(name string, status models.SignalStatus) {
		if status == models.StatusSuccess {
			out = append(out, name)
		}
	}
	add("odds_api", td.OddsOut.Status)
	add("playbook", td.SplitsOut.Status)
	add("officials_api", td.OfficialsOut.Status)
	add("weather_api", td.WeatherOut.Status)
	add("space_weather_api", td.KpOut.Status)
	add("astronomy_api", td.MoonOut.Status)
	add("trends_api", td.TrendOut.Status)
	add("news_api", td.NewsOut.Status)
	return out
}

// toPredictionRecord flattens a ScoredPick into its durable form.
func toPredictionRecord(p models.ScoredPick, now time.Time) models.PredictionRecord {
	contribs := map[string]float64{
		"ai":                 p.Engines.AI,
		"research":           p.Engines.Research,
		"esoteric":           p.Engines.Esoteric,
		"jarvis":             p.Engines.Jarvis,
		"context_modifier":   p.ContextModifier,
		"confluence":         p.Adjustments.Confluence,
		"jason_sim":          p.Adjustments.JasonSim,
		"serp_total":         p.Adjustments.SERPTotal,
		"ensemble":           p.Adjustments.EnsembleAdjustment,
		"live_adjustment":    p.Adjustments.LiveAdjustment,
		"hook_penalty":       p.Adjustments.HookPenalty,
		"expert_consensus":   p.Adjustments.ExpertConsensus,
		"prop_correlation":   p.Adjustments.PropCorrelation,
		"totals_calibration": p.Adjustments.TotalsCalibration,
	}

	return models.PredictionRecord{
		SchemaVersion:        1,
		PickID:               p.PickID,
		DateET:               timeauthority.DateET(p.Candidate.GameStartUTC),
		Sport:                p.Candidate.Sport,
		Selection:            p.Candidate.Selection,
		Line:                 p.Candidate.Line,
		OddsAmerican:         p.Candidate.RepresentativeOddsAmerican(),
		PickType:             p.Candidate.PickType,
		StatTypeOrMarket:     p.Candidate.Target(),
		Engines:              p.Engines,
		Adjustments:          p.Adjustments,
		ContextModifier:      p.ContextModifier,
		FinalScore:           p.FinalScore,
		Tier:                 p.Tier,
		SignalContributions:  contribs,
		CreatedAtUTC:         now.UTC(),
		ActualOutcome:        models.OutcomePending,
	}
}
