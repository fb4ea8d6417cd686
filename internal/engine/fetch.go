package engine

import (
	"context"

	"github.com/greenbier/bestbets-engine/internal/models"
	"github.com/greenbier/bestbets-engine/internal/prefetch"
	"github.com/greenbier/bestbets-engine/internal/providers"
	"github.com/greenbier/bestbets-engine/internal/registry"
	"github.com/greenbier/bestbets-engine/internal/telemetry"
	"github.com/greenbier/bestbets-engine/internal/timeauthority"
)

// tupleFetcher builds the prefetch.Fetcher closure that populates
// reqCache with one tupleData entry per unique (home, away, target)
// tuple. games maps gameKey(home, away) to that game's Candidate,
// recovering the event ID and start time the Tuple itself does not
// carry.
func (e *Engine) tupleFetcher(bundle *telemetry.Bundle, games map[string]models.Candidate, reqCache *prefetch.Cache, sport string) prefetch.Fetcher {
	return func(ctx context.Context, t prefetch.Tuple) error {
		game, ok := games[gameKey(t.Home, t.Away)]
		if !ok {
			return nil
		}

		var td tupleData

		td.Odds, td.OddsOut = e.providers.Odds.GetGameOdds(ctx, game.ProviderEventID)
		bundle.RecordCall("odds_api", td.OddsOut, 0)

		td.Splits, td.SplitsOut = e.providers.Splits.GetSplits(ctx, game.ProviderEventID)
		bundle.RecordCall("playbook", td.SplitsOut, 0)

		td.Officials, td.OfficialsOut = e.providers.Officials.GetEventOfficials(ctx, game.ProviderEventID)
		bundle.RecordCall("officials_api", td.OfficialsOut, 0)

		if registry.WeatherRelevant(sport) {
			td.Weather, td.WeatherOut = e.providers.Weather.GetWeather(ctx, 0, 0, game.GameStartUTC)
			bundle.RecordCall("weather_api", td.WeatherOut, 0)
		} else {
			td.WeatherOut = providers.Outcome{Status: models.StatusSkippedQuota}
		}

		td.Kp, td.KpOut = e.providers.SpaceWeather.GetKpIndex(ctx)
		bundle.RecordCall("space_weather_api", td.KpOut, 0)

		td.Moon, td.MoonOut = e.providers.Astronomy.GetMoonPhase(ctx, timeauthority.DateET(game.GameStartUTC))
		bundle.RecordCall("astronomy_api", td.MoonOut, 0)

		td.Trend, td.TrendOut = e.providers.Trends.GetTrend(ctx, t.Home+" vs "+t.Away)
		bundle.RecordCall("trends_api", td.TrendOut, 0)

		td.News, td.NewsOut = e.providers.News.GetNews(ctx, t.Home+" "+t.Away)
		bundle.RecordCall("news_api", td.NewsOut, 0)

		reqCache.Put(t, "data", td)
		return nil
	}
}
