package stats

import (
	"sort"
	"time"
)

// AgeBands lists the demographic bands in display order.
var AgeBands = []string{"Under 18", "18-29", "30-49", "50-64", "65+"}

// AgeBand assigns an age to its band. The first matching band wins, so
// boundary ages (18, 30, 50, 65) land in the older band's lower edge.
func AgeBand(age int) string {
	switch {
	case age < 18:
		return "Under 18"
	case age <= 29:
		return "18-29"
	case age <= 49:
		return "30-49"
	case age <= 64:
		return "50-64"
	default:
		return "65+"
	}
}

type BandCount struct {
	Band  string `json:"band"`
	Count int    `json:"count"`
}

type GenderCount struct {
	Gender string `json:"gender"`
	Count  int    `json:"count"`
}

// Demographics folds patient facts into gender and age breakdowns. Age
// bands appear in fixed order with zero counts preserved; genders
// appear only when present.
func Demographics(facts []PatientFact) ([]GenderCount, []BandCount) {
	byGender := make(map[string]int)
	byBand := make(map[string]int)
	for _, f := range facts {
		byGender[f.Gender]++
		byBand[AgeBand(f.Age)]++
	}

	genders := make([]GenderCount, 0, len(byGender))
	for _, g := range []string{"Male", "Female", "Other"} {
		if n, ok := byGender[g]; ok {
			genders = append(genders, GenderCount{Gender: g, Count: n})
		}
	}

	bands := make([]BandCount, 0, len(AgeBands))
	for _, b := range AgeBands {
		bands = append(bands, BandCount{Band: b, Count: byBand[b]})
	}
	return genders, bands
}

// TopDoctors returns the busiest doctors by appointment count, ties
// broken by name so the ranking is stable.
func TopDoctors(counts []DoctorCount, limit int) []DoctorCount {
	out := make([]DoctorCount, len(counts))
	copy(out, counts)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FillMonths expands sparse month counts into a contiguous series of n
// months ending at the month of now, zero-filling months with no
// appointments.
func FillMonths(counts []MonthCount, now time.Time, n int) []MonthCount {
	byKey := make(map[[2]int]int, len(counts))
	for _, c := range counts {
		byKey[[2]int{c.Year, c.Month}] = c.Count
	}

	out := make([]MonthCount, 0, n)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0)
	for i := 0; i < n; i++ {
		m := start.AddDate(0, i, 0)
		out = append(out, MonthCount{
			Year:  m.Year(),
			Month: int(m.Month()),
			Count: byKey[[2]int{m.Year(), int(m.Month())}],
		})
	}
	return out
}
