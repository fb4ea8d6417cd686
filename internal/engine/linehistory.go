package engine

import (
	"math"
	"sort"

	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/persistence"
	"github.com/greenbier/bestbets-engine/internal/providers"
)

// groupLineHistoryByEvent buckets a sport's full line-history log by
// event ID and sorts each bucket chronologically, so per-candidate
// lookups are a cheap map access instead of a per-candidate linear
// scan over the whole log.
func groupLineHistoryByEvent(snapshots []persistence.LineSnapshot) map[string][]persistence.LineSnapshot {
	out := make(map[string][]persistence.LineSnapshot)
	for _, s := range snapshots {
		out[s.EventID] = append(out[s.EventID], s)
	}
	for _, bucket := range out {
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].ObservedAtUTC < bucket[j].ObservedAtUTC })
	}
	return out
}

// avgLine averages one snapshot's per-sportsbook lines into a single
// representative value.
func avgLine(s persistence.LineSnapshot) float64 {
	if len(s.Lines) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Lines {
		sum += v
	}
	return sum / float64(len(s.Lines))
}

// chronoLineValues renders a snapshot history into the chronological
// scalar series GLITCH's Hurst component expects — distinct from a
// single request's cross-book snapshot, which is a point-in-time
// spread across books rather than a time series of the same book
// average.
func chronoLineValues(history []persistence.LineSnapshot) []float64 {
	out := make([]float64, 0, len(history))
	for _, s := range history {
		out = append(out, avgLine(s))
	}
	return out
}

// detectReverseLineMovement reports whether the line has moved a
// material amount while ticket volume stays lopsidedly concentrated on
// one side — the classic reverse-line-movement signature of sharp
// money working against the public. Returns false/0 when there isn't
// enough history or the public isn't concentrated enough to make a
// move meaningful.
func detectReverseLineMovement(history []persistence.LineSnapshot, ticketPct float64) (moved bool, pctMoved float64) {
	if len(history) < 2 || ticketPct < contract.RLMTicketConcentrationFloor {
		return false, 0
	}
	open := avgLine(history[0])
	recent := avgLine(history[len(history)-1])
	if open == 0 {
		return false, 0
	}
	pctMoved = math.Abs(recent-open) / math.Abs(open) * 100
	return pctMoved > 0, pctMoved
}

// venueSurfaceAdjustment derives the context modifier's small fixed
// surface/altitude delta from the fetched officials/venue payload.
func venueSurfaceAdjustment(off providers.EventOfficials) float64 {
	adj := 0.0
	switch off.Surface {
	case "turf":
		adj += 0.05
	case "grass":
		adj -= 0.02
	}
	if off.AltitudeFt > 4000 {
		adj += 0.08
	}
	return adj
}

// weatherTotalsAdjustment derives the totals-calibration post-base
// term from fetched outdoor-game conditions: wind and precipitation
// both suppress scoring relative to a dome/fair-weather baseline.
func weatherTotalsAdjustment(w providers.WeatherReading) float64 {
	adj := 0.0
	if w.WindMPH >= 15 {
		adj -= 0.2
	}
	if w.Precip != "" && w.Precip != "none" {
		adj -= 0.15
	}
	return adj
}

// espnAgreement scans fetched news for an ESPN article and maps its
// sentiment onto Research's cross-validation input. Returns nil when
// no ESPN article was returned or its sentiment is neither positive
// nor negative.
func espnAgreement(articles []providers.NewsArticle) *bool {
	for _, a := range articles {
		if a.Source != "ESPN" {
			continue
		}
		switch a.Sentiment {
		case "positive":
			agree := true
			return &agree
		case "negative":
			disagree := false
			return &disagree
		}
	}
	return nil
}

// expertConsensusRaw aggregates sentiment across every fetched article
// into the unbounded expert-consensus input — a broader signal than
// espnAgreement's single-source check, averaged rather than gated on
// one outlet.
func expertConsensusRaw(articles []providers.NewsArticle) float64 {
	if len(articles) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range articles {
		switch a.Sentiment {
		case "positive":
			sum++
		case "negative":
			sum--
		}
	}
	return (sum / float64(len(articles))) * contract.ExpertConsensusBoostCap
}

// mercuryRetrograde is a deterministic periodic approximation (roughly
// three ~3-week windows per year), in the same calendar-trick family as
// Phase8's other date-derived terms — not a live ephemeris lookup.
func mercuryRetrograde(dayOfYear int) bool {
	if dayOfYear <= 0 {
		return false
	}
	return dayOfYear%116 < 21
}
