// Package signals implements the signal computers: pure functions
// over already-fetched provider data that return a bounded numeric
// contribution plus full provenance. None of these functions holds
// cross-request state or calls a provider client directly — inputs
// arrive already resolved from the pre-fetch cache.
package signals

import (
	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
)

// result builds a SignalResult, clamping Value to [lo, hi] so every
// computer's output range is enforced at one place.
func result(name string, value, lo, hi float64, triggered bool, reasons []string, prov models.Provenance) models.SignalResult {
	return models.SignalResult{
		Name:       name,
		Value:      contract.Clamp(value, lo, hi),
		Triggered:  triggered,
		Reasons:    reasons,
		Provenance: prov,
	}
}

// noData returns the standard NO_DATA result for a computer that
// could not get enough input to produce a value.
func noData(name, sourceAPI string, sourceType models.SourceType, reason string) models.SignalResult {
	return models.SignalResult{
		Name:      name,
		Value:     0.0,
		Triggered: false,
		Reasons:   []string{reason},
		Provenance: models.Provenance{
			SourceAPI:  sourceAPI,
			SourceType: sourceType,
			Status:     models.StatusNoData,
		},
	}
}

func internalProv(status models.SignalStatus) models.Provenance {
	return models.Provenance{SourceType: models.SourceInternal, Status: status}
}

func externalProv(sourceAPI string, status models.SignalStatus, cacheHit bool) models.Provenance {
	p := models.Provenance{SourceAPI: sourceAPI, SourceType: models.SourceExternal, Status: status}
	if status == models.StatusSuccess {
		p.CallProof = &models.CallProof{Kind: "cache_hit", CacheHit: cacheHit}
	}
	return p
}
