package signals

import (
	"fmt"
	"strings"

	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
)

// Phase8Inputs bundles the thirteen Phase-8 esoteric micro-signals.
// Biorhythm only applies to props; Gann square only to games —
// callers pass IsProp to gate those two.
type Phase8Inputs struct {
	IsProp bool

	BirthDate     string // "YYYY-MM-DD", for numerology/biorhythm/gematria
	GameDate      string // "YYYY-MM-DD"
	TeamName      string // for founder's-echo gematria
	HomeTeam      string
	AwayTeam      string
	MoonIllumination float64 // 0..1
	MercuryRetrograde bool
	RivalryScore    float64 // 0..1, pre-computed rivalry intensity
	WinStreak       int     // positive = win streak, negative = loss streak
	SolarFlareClass string  // "", "A", "B", "C", "M", "X"
}

// Phase8 sums thirteen small bounded-delta signals into a raw
// accumulator, then clamps to [0, 10].
func Phase8(in Phase8Inputs) models.SignalResult {
	var reasons []string
	acc := 0.0

	if d := numerology(in.BirthDate, in.GameDate); d != 0 {
		acc += d
		reasons = append(reasons, fmt.Sprintf("numerology delta %.2f", d))
	}
	if d := siderealAlignment(in.GameDate); d != 0 {
		acc += d
		reasons = append(reasons, fmt.Sprintf("sidereal/vedic alignment delta %.2f", d))
	}
	if d := fibonacciAlignment(in.GameDate); d != 0 {
		acc += d
		reasons = append(reasons, fmt.Sprintf("fibonacci alignment delta %.2f", d))
	}
	if d := teslaVortex(in.GameDate); d != 0 {
		acc += d
		reasons = append(reasons, fmt.Sprintf("Tesla 3-6-9 vortex delta %.2f", d))
	}
	if d := dailyEnergy(in.GameDate); d != 0 {
		acc += d
		reasons = append(reasons, fmt.Sprintf("daily energy delta %.2f", d))
	}
	if in.IsProp {
		if d := biorhythm(in.BirthDate, in.GameDate); d != 0 {
			acc += d
			reasons = append(reasons, fmt.Sprintf("biorhythm delta %.2f", d))
		}
	} else {
		if d := gannSquare(in.GameDate); d != 0 {
			acc += d
			reasons = append(reasons, fmt.Sprintf("Gann square delta %.2f", d))
		}
	}
	if d := foundersEchoGematria(in.TeamName); d != 0 {
		acc += d
		reasons = append(reasons, fmt.Sprintf("founder's-echo gematria delta %.2f", d))
	}
	if d := lunarIntensity(in.MoonIllumination); d != 0 {
		acc += d
		reasons = append(reasons, fmt.Sprintf("lunar phase intensity delta %.2f", d))
	}
	if in.MercuryRetrograde {
		acc -= 0.3
		reasons = append(reasons, "mercury retrograde adjustment -0.3")
	}
	if in.RivalryScore > 0 {
		d := contract.Clamp(in.RivalryScore, 0, 1) * 0.4
		acc += d
		reasons = append(reasons, fmt.Sprintf("rivalry intensity delta %.2f", d))
	}
	if in.WinStreak != 0 {
		d := streakMomentum(in.WinStreak)
		acc += d
		reasons = append(reasons, fmt.Sprintf("streak momentum delta %.2f", d))
	}
	if d := solarFlareClassification(in.SolarFlareClass); d != 0 {
		acc += d
		reasons = append(reasons, fmt.Sprintf("solar-flare classification delta %.2f", d))
	}

	score := contract.Clamp(acc+contract.AIBaselineScore, contract.EngineScoreMin, contract.EngineScoreMax)
	return result("phase8", score, contract.EngineScoreMin, contract.EngineScoreMax, acc != 0, reasons, internalProv(models.StatusSuccess))
}

func digitSum(s string) int {
	sum := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sum += int(r - '0')
		}
	}
	for sum >= 10 {
		next := 0
		for sum > 0 {
			next += sum % 10
			sum /= 10
		}
		sum = next
	}
	return sum
}

func numerology(birth, gameDate string) float64 {
	if birth == "" || gameDate == "" {
		return 0
	}
	bd := digitSum(strings.ReplaceAll(birth, "-", ""))
	gd := digitSum(strings.ReplaceAll(gameDate, "-", ""))
	if bd == gd {
		return 0.3
	}
	return 0
}

func siderealAlignment(gameDate string) float64 {
	if gameDate == "" {
		return 0
	}
	if digitSum(strings.ReplaceAll(gameDate, "-", "")) == 9 {
		return 0.2
	}
	return 0
}

func fibonacciAlignment(gameDate string) float64 {
	fib := map[int]bool{1: true, 2: true, 3: true, 5: true, 8: true, 13: true, 21: true}
	if gameDate == "" || len(gameDate) < 10 {
		return 0
	}
	day := 0
	fmt.Sscanf(gameDate[8:10], "%d", &day)
	if fib[day] {
		return 0.25
	}
	return 0
}

func teslaVortex(gameDate string) float64 {
	if gameDate == "" {
		return 0
	}
	d := digitSum(strings.ReplaceAll(gameDate, "-", ""))
	if d == 3 || d == 6 || d == 9 {
		return 0.3
	}
	return 0
}

func dailyEnergy(gameDate string) float64 {
	if gameDate == "" {
		return 0
	}
	d := digitSum(strings.ReplaceAll(gameDate, "-", ""))
	return float64(d) / 90.0 // small bounded contribution
}

func biorhythm(birth, gameDate string) float64 {
	if birth == "" || gameDate == "" {
		return 0
	}
	// Simplified physical-cycle phase: returns a small positive delta
	// on an up-phase day, derived from a 23-day cycle offset.
	offset := (digitSum(birth) + digitSum(gameDate)) % 23
	if offset < 11 {
		return 0.2
	}
	return -0.1
}

func gannSquare(gameDate string) float64 {
	if gameDate == "" {
		return 0
	}
	d := digitSum(strings.ReplaceAll(gameDate, "-", ""))
	if d%9 == 0 {
		return 0.25
	}
	return 0
}

func foundersEchoGematria(teamName string) float64 {
	if teamName == "" {
		return 0
	}
	sum := 0
	for _, r := range strings.ToUpper(teamName) {
		if r >= 'A' && r <= 'Z' {
			sum += int(r-'A') + 1
		}
	}
	if sum%33 == 0 {
		return 0.3
	}
	return 0
}

func lunarIntensity(illumination float64) float64 {
	// Peaks near new moon (0) and full moon (1).
	dist := illumination
	if dist > 0.5 {
		dist = 1 - dist
	}
	return contract.Clamp(0.3-dist*0.6, 0, 0.3)
}

func streakMomentum(streak int) float64 {
	d := float64(streak) * 0.05
	return contract.Clamp(d, -0.4, 0.4)
}

func solarFlareClassification(class string) float64 {
	switch class {
	case "X":
		return 0.4
	case "M":
		return 0.25
	case "C":
		return 0.1
	case "B", "A":
		return 0.02
	default:
		return 0
	}
}
