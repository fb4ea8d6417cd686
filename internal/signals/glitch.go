package signals

import (
	"fmt"
	"math"

	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
)

// GlitchInputs bundles the six physics-flavored GLITCH components.
type GlitchInputs struct {
	PlayerBirthMonthDay string // "MM-DD"
	GameDateMonthDay    string // "MM-DD"

	MoonIsVoidOfCourse bool

	SearchVelocityIndex float64 // 0..1 normalized

	LineSnapshots []float64 // chronological line values; needs >= HurstMinSnapshots

	KpIndex float64 // 0..9 planetary index

	MultiBookLines []float64 // needs >= BenfordMinUniqueVals unique values
}

// Glitch computes the weighted-sum GLITCH aggregate. Each component
// that lacks sufficient data contributes 0.0 and is flagged NO_DATA in
// its reason, rather than failing the whole aggregate.
func Glitch(in GlitchInputs) models.SignalResult {
	var reasons []string
	total := 0.0

	chrome := chromeResonance(in.PlayerBirthMonthDay, in.GameDateMonthDay)
	total += chrome * contract.GlitchWeightChromeResonance
	reasons = append(reasons, fmt.Sprintf("chrome resonance %.2f", chrome))

	void := 0.0
	if in.MoonIsVoidOfCourse {
		void = 1.0
		reasons = append(reasons, "void-of-course moon active")
	}
	total += void * contract.GlitchWeightVoidOfCourse

	noosphere := contract.Clamp(in.SearchVelocityIndex, 0, 1)
	total += noosphere * contract.GlitchWeightNoosphere

	hurst, hurstReason := hurstExponent(in.LineSnapshots)
	total += hurst * contract.GlitchWeightHurst
	reasons = append(reasons, hurstReason)

	kp := contract.Clamp(in.KpIndex/9.0, 0, 1)
	total += kp * contract.GlitchWeightKpIndex
	reasons = append(reasons, fmt.Sprintf("Kp-index normalized %.2f", kp))

	benford, benfordReason := benfordAnomaly(in.MultiBookLines)
	total += benford * contract.GlitchWeightBenford
	reasons = append(reasons, benfordReason)

	// Raw output scaled onto the 0-10 esoteric range; GlitchWeightSum
	// (1.20) is the weighted-sum normalizer, not 1.00 — a weighted
	// average would understate the aggregate's intended sensitivity.
	score := (total / contract.GlitchWeightSum) * 10.0

	return result("glitch", score, contract.EngineScoreMin, contract.EngineScoreMax, total > 0, reasons, internalProv(models.StatusSuccess))
}

func chromeResonance(birth, gameDate string) float64 {
	if birth == "" || gameDate == "" {
		return 0.0
	}
	if birth == gameDate {
		return 1.0
	}
	return 0.0
}

// hurstExponent returns a [0,1] persistence measure from a simplified
// rescaled-range calculation, or 0.0 with a NO_DATA reason when there
// are fewer than contract.HurstMinSnapshots points.
func hurstExponent(snapshots []float64) (float64, string) {
	if len(snapshots) < contract.HurstMinSnapshots {
		return 0.0, "hurst: insufficient line snapshots, NO_DATA"
	}
	mean := 0.0
	for _, v := range snapshots {
		mean += v
	}
	mean /= float64(len(snapshots))

	var cum, maxC, minC, variance float64
	for _, v := range snapshots {
		dev := v - mean
		cum += dev
		if cum > maxC {
			maxC = cum
		}
		if cum < minC {
			minC = cum
		}
		variance += dev * dev
	}
	variance /= float64(len(snapshots))
	stddev := math.Sqrt(variance)
	if stddev == 0 {
		return 0.5, "hurst: zero variance, neutral"
	}
	rs := (maxC - minC) / stddev
	n := float64(len(snapshots))
	h := math.Log(rs) / math.Log(n)
	return contract.Clamp(h, 0, 1), fmt.Sprintf("hurst exponent %.2f over %d snapshots", h, len(snapshots))
}

// benfordAnomaly scores how far the leading-digit distribution of
// multi-book line values deviates from Benford's law, or returns 0.0
// with NO_DATA when fewer than contract.BenfordMinUniqueVals unique
// values are present.
func benfordAnomaly(lines []float64) (float64, string) {
	unique := make(map[float64]bool)
	for _, v := range lines {
		unique[v] = true
	}
	if len(unique) < contract.BenfordMinUniqueVals {
		return 0.0, "benford: insufficient unique line values, NO_DATA"
	}

	var counts [10]int
	total := 0
	for v := range unique {
		d := leadingDigit(v)
		if d >= 1 && d <= 9 {
			counts[d]++
			total++
		}
	}
	if total == 0 {
		return 0.0, "benford: no usable leading digits, NO_DATA"
	}

	chiSq := 0.0
	for d := 1; d <= 9; d++ {
		expected := benfordExpected[d] * float64(total)
		observed := float64(counts[d])
		if expected > 0 {
			diff := observed - expected
			chiSq += (diff * diff) / expected
		}
	}
	anomaly := contract.Clamp(chiSq/20.0, 0, 1)
	return anomaly, fmt.Sprintf("benford chi-sq anomaly %.2f over %d unique values", anomaly, total)
}

var benfordExpected = map[int]float64{
	1: 0.301, 2: 0.176, 3: 0.125, 4: 0.097, 5: 0.079,
	6: 0.067, 7: 0.058, 8: 0.051, 9: 0.046,
}

func leadingDigit(v float64) int {
	v = math.Abs(v)
	if v == 0 {
		return 0
	}
	for v >= 10 {
		v /= 10
	}
	for v < 1 {
		v *= 10
	}
	return int(v)
}
