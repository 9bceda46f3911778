package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/HaGotHem/optines/internal/models"
)

// MaxPackageCount and MaxTeamSize bound the inputs so the seconds
// arithmetic cannot overflow. Larger values saturate.
const (
	MaxPackageCount = 1_000_000_000
	MaxTeamSize     = 1_000_000
)

const (
	SecondsPerPackage     = 40
	BadPalettePenalty     = 20 * 60
	ExtraMemberCredit     = 30 * 60
	excellentLoadCeilingH = 2
	goodLoadCeilingH      = 4
	warningLoadCeilingH   = 6
)

// ParsePackageCount reads the leading integer of free text input. Anything
// unparsable counts as zero packages, and so does a negative count.
func ParsePackageCount(text string) int {
	s := strings.TrimLeftFunc(text, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// CalculateDuration estimates the work time of a handling task. Each member
// beyond the first earns a fixed credit; a team of zero is charged one
// credit instead, so callers must require at least one member.
func CalculateDuration(packageCount int, paletteGood bool, teamSize int) models.TimeCalculation {
	packageCount = min(max(packageCount, 0), MaxPackageCount)
	teamSize = min(max(teamSize, 0), MaxTeamSize)

	base := packageCount * SecondsPerPackage
	penalty := 0
	if !paletteGood {
		penalty = BadPalettePenalty
	}
	bonus := (teamSize - 1) * ExtraMemberCredit
	total := max(0, base+penalty-bonus)

	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	return models.TimeCalculation{
		BaseTime:       base,
		PalettePenalty: penalty,
		TeamBonus:      bonus,
		TotalTime:      total,
		Hours:          hours,
		Minutes:        minutes,
		Seconds:        seconds,
		FormattedTime:  FormatDuration(total),
		Load:           LoadFor(total),
	}
}

// FormatDuration renders seconds as "1h 05min 00s".
func FormatDuration(totalSeconds int) string {
	return fmt.Sprintf("%dh %02dmin %02ds", totalSeconds/3600, (totalSeconds%3600)/60, totalSeconds%60)
}

// LoadFor grades a total duration: up to 2h excellent, 4h good, 6h warning,
// critical beyond.
func LoadFor(totalSeconds int) models.LoadLevel {
	switch {
	case totalSeconds <= excellentLoadCeilingH*3600:
		return models.LoadExcellent
	case totalSeconds <= goodLoadCeilingH*3600:
		return models.LoadGood
	case totalSeconds <= warningLoadCeilingH*3600:
		return models.LoadWarning
	default:
		return models.LoadCritical
	}
}
