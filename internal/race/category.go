package race

// Age buckets in race order. Each category is the gender prefix (M/F)
// followed by the bucket suffix, e.g. MU6, F14.
var ageBuckets = []struct {
	Suffix string
	MinAge int
	Range  string
}{
	{"U6", 0, "< 6"},
	{"6", 6, "6-9"},
	{"10", 10, "10-13"},
	{"14", 14, "14-17"},
	{"18", 18, "18-30"},
	{"31", 31, "31-44"},
	{"45", 45, "45+"},
}

// CategoryFor derives a category from age and gender the same way the
// store computes it. It returns "" when either input is missing.
func CategoryFor(age int, gender string) string {
	if age <= 0 || gender == "" {
		return ""
	}
	prefix := "F"
	if gender == "male" {
		prefix = "M"
	}
	suffix := ageBuckets[0].Suffix
	for _, b := range ageBuckets {
		if age >= b.MinAge {
			suffix = b.Suffix
		}
	}
	return prefix + suffix
}

// AgeRange returns the human label for a category's bucket, e.g. "10-13".
func AgeRange(category string) string {
	if len(category) < 2 {
		return ""
	}
	suffix := category[1:]
	for _, b := range ageBuckets {
		if b.Suffix == suffix {
			return b.Range
		}
	}
	return ""
}

// CategoryPairs lists male/female categories side by side in race order.
func CategoryPairs() [][2]string {
	pairs := make([][2]string, 0, len(ageBuckets))
	for _, b := range ageBuckets {
		pairs = append(pairs, [2]string{"M" + b.Suffix, "F" + b.Suffix})
	}
	return pairs
}
