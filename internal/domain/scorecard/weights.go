package scorecard

import (
	"strconv"
	"strings"
	"time"
)

// ComputeTotals partitions the department's active weight rows by
// perspective type and sums each partition. The row whose id equals
// excludeID is skipped so a row under edit never counts its old value
// against its own new value. Rows whose perspective cannot be resolved
// contribute to neither total.
func ComputeTotals(weights []DepartmentWeight, perspectives []StrategicPerspective, excludeID string) Totals {
	types := perspectiveTypes(perspectives)

	var totals Totals
	for _, row := range weights {
		if excludeID != "" && row.ID == excludeID {
			continue
		}
		switch types[row.StrategyPerspectiveID] {
		case PerspectiveQuantitative:
			totals.Quantitative += row.Weight
		case PerspectiveQualitative:
			totals.Qualitative += row.Weight
		}
	}
	return totals
}

// Validate checks a candidate weight assignment against the supplied
// snapshot. It returns a field-keyed message map; an empty map means the
// form is valid. An unresolvable perspective type skips the ceiling check
// rather than failing: the caller logs that as a data-integrity warning.
func Validate(form WeightForm, totals Totals, perspectives []StrategicPerspective, existing []DepartmentWeight) map[string]string {
	issues := map[string]string{}

	if strings.TrimSpace(form.DepartmentID) == "" {
		issues["departmentId"] = "Department is required"
	}
	if strings.TrimSpace(form.StrategyPerspectiveID) == "" {
		issues["strategyPerspectiveId"] = "Strategic perspective is required"
	}

	weight, ok := parseWeight(form.Weight)
	if strings.TrimSpace(form.Weight) == "" {
		issues["weight"] = "Weight is required"
	} else if !ok {
		issues["weight"] = "Weight must be a number"
	} else if weight <= 0 {
		issues["weight"] = "Weight must be greater than zero"
	}

	if len(issues) > 0 {
		return issues
	}

	switch perspectiveTypes(perspectives)[form.StrategyPerspectiveID] {
	case PerspectiveQuantitative:
		if weight+totals.Quantitative > QuantitativeCeiling {
			issues["weight"] = "Total quantitative weight cannot exceed " +
				formatPercent(QuantitativeCeiling) + ". Current total: " + formatPercent(totals.Quantitative)
		}
	case PerspectiveQualitative:
		if weight+totals.Qualitative > QualitativeCeiling {
			issues["weight"] = "Total qualitative weight cannot exceed " +
				formatPercent(QualitativeCeiling) + ". Current total: " + formatPercent(totals.Qualitative)
		}
	}

	for _, row := range existing {
		if form.ID != "" && row.ID == form.ID {
			continue
		}
		if row.DepartmentID == form.DepartmentID && row.StrategyPerspectiveID == form.StrategyPerspectiveID {
			issues["strategyPerspectiveId"] = "This perspective is already assigned to the department"
			break
		}
	}

	return issues
}

// RemainingCapacity computes the live headroom for one perspective type
// given the current totals. Unknown types get a zero ceiling with zero
// usage, which renders as "no headroom information" rather than a bogus
// number.
func RemainingCapacity(perspectiveType string, totals Totals) Capacity {
	switch strings.ToLower(strings.TrimSpace(perspectiveType)) {
	case PerspectiveQuantitative:
		return Capacity{
			Type:      PerspectiveQuantitative,
			Ceiling:   QuantitativeCeiling,
			Used:      totals.Quantitative,
			Remaining: QuantitativeCeiling - totals.Quantitative,
		}
	case PerspectiveQualitative:
		return Capacity{
			Type:      PerspectiveQualitative,
			Ceiling:   QualitativeCeiling,
			Used:      totals.Qualitative,
			Remaining: QualitativeCeiling - totals.Qualitative,
		}
	}
	return Capacity{Type: strings.ToLower(strings.TrimSpace(perspectiveType))}
}

// TotalsStale reports whether a caller-provided snapshot timestamp is too
// old to trust for ceiling validation. A zero snapshot time means the
// caller did not supply freshness information, which is not stale: the
// validator then works best-effort against the given snapshot.
func TotalsStale(snapshotAt, now time.Time, maxAge time.Duration) bool {
	if snapshotAt.IsZero() || maxAge <= 0 {
		return false
	}
	return now.Sub(snapshotAt) > maxAge
}

func perspectiveTypes(perspectives []StrategicPerspective) map[string]string {
	types := make(map[string]string, len(perspectives))
	for _, p := range perspectives {
		types[p.ID] = strings.ToLower(strings.TrimSpace(p.Type))
	}
	return types
}

func parseWeight(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func formatPercent(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + "%"
}
