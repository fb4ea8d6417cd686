package registry

// DefaultDefinitions returns the engine's full integration catalog.
// Probes are wired in by cmd/engine once concrete provider clients
// exist; at registry-construction time they may be nil, which Status
// treats as "configured, unverified".
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Name:         "odds_api",
			EnvVar:       "ODDS_API_KEY",
			Required:     true,
			SourceModule: "providers.OddsClient",
			Engine:       EngineResearch,
			Auth:         AuthAPIKey,
		},
		{
			Name:         "playbook",
			EnvVar:       "PLAYBOOK_API_KEY",
			EnvAliases:   []string{"SHARP_SPLITS_API_KEY"},
			Required:     true,
			SourceModule: "providers.SplitsClient",
			Engine:       EngineResearch,
			Auth:         AuthAPIKey,
		},
		{
			Name:         "player_stats",
			EnvVar:       "PLAYER_STATS_API_KEY",
			Required:     true,
			SourceModule: "providers.PlayerStatsClient",
			Engine:       EngineAI,
			Auth:         AuthAPIKey,
		},
		{
			Name:         "scoreboard",
			EnvVar:       "SCOREBOARD_API_KEY",
			EnvAliases:   []string{"ESPN_API_KEY"},
			Required:     true,
			SourceModule: "providers.ScoreboardClient",
			Engine:       EngineContext,
			Auth:         AuthAPIKey,
		},
		{
			Name:         "officials_venue",
			EnvVar:       "OFFICIALS_VENUE_API_KEY",
			Required:     false,
			SourceModule: "providers.OfficialsClient",
			Engine:       EngineContext,
			Auth:         AuthAPIKey,
		},
		{
			Name:         "weather",
			EnvVar:       "WEATHER_API_KEY",
			Required:     false,
			SourceModule: "providers.WeatherClient",
			Engine:       EngineContext,
			Auth:         AuthAPIKey,
			Relevant:     WeatherRelevant,
		},
		{
			Name:         "space_weather",
			EnvVar:       "NOAA_SWPC_BASE_URL",
			Required:     false,
			SourceModule: "providers.SpaceWeatherClient",
			Engine:       EngineEsoteric,
			Auth:         AuthNone,
		},
		{
			Name:         "astronomy",
			EnvVar:       "ASTRONOMY_API_KEY",
			Required:     false,
			SourceModule: "providers.AstronomyClient",
			Engine:       EngineEsoteric,
			Auth:         AuthAPIKey,
		},
		{
			Name:         "search_trends",
			EnvVar:       "SEARCH_TRENDS_API_KEY",
			EnvAliases:   []string{"SERPAPI_KEY"},
			Required:     false,
			SourceModule: "providers.TrendsClient",
			Engine:       EngineEsoteric,
			Auth:         AuthAPIKey,
		},
		{
			Name:         "news",
			EnvVar:       "NEWS_API_KEY",
			Required:     false,
			SourceModule: "providers.NewsClient",
			Engine:       EngineResearch,
			Auth:         AuthAPIKey,
		},
		{
			Name:         "financial_quote",
			EnvVar:       "FINANCIAL_QUOTE_API_KEY",
			EnvAliases:   []string{"ALPHA_VANTAGE_KEY"},
			Required:     false,
			SourceModule: "providers.QuoteClient",
			Engine:       EngineEsoteric,
			Auth:         AuthAPIKey,
		},
	}
}
