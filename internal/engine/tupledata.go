package engine

import "github.com/greenbier/bestbets-engine/internal/providers"

// tupleData is everything the pre-fetch phase gathers for one
// (home, away, target) tuple, cached request-locally and read back by
// every candidate that shares the tuple.
type tupleData struct {
	Odds     []providers.OddsLine
	OddsOut  providers.Outcome
	Splits   []providers.TicketMoneySplit
	SplitsOut providers.Outcome

	Officials    providers.EventOfficials
	OfficialsOut providers.Outcome

	Weather    providers.WeatherReading
	WeatherOut providers.Outcome

	Kp    providers.KpIndexReading
	KpOut providers.Outcome

	Moon    providers.MoonPhase
	MoonOut providers.Outcome

	Trend    providers.TrendReading
	TrendOut providers.Outcome

	News    []providers.NewsArticle
	NewsOut providers.Outcome
}
