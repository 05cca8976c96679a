// Package leaderboard groups classified racers into the dashboard layout:
// the overall podium and the fastest three of every category, with male and
// female categories of the same age bucket side by side.
package leaderboard

import "github.com/five82/trackside/internal/race"

const podiumSize = 3

// Entry is one classified racer. OverallRank is 1-3 for the overall podium
// and zero otherwise.
type Entry struct {
	Racer       race.Racer
	Category    string
	OverallRank int
}

// Category holds the fastest racers of one category, at most three.
type Category struct {
	Name     string
	AgeRange string
	Entries  []Entry
}

// Pair shows the male and female categories of one age bucket.
type Pair struct {
	Male   Category
	Female Category
}

// Board is the full dashboard.
type Board struct {
	Overall []Entry
	Pairs   []Pair
}

// Empty reports whether nobody is classified yet.
func (b Board) Empty() bool {
	return len(b.Overall) == 0
}

// Build lays out racers, which must already be ordered fastest first. A
// racer without a stored category is placed by age and gender. Pairs where
// neither side has a racer are omitted.
func Build(racers []race.Racer) Board {
	var board Board
	groups := make(map[string][]Entry)

	for i, r := range racers {
		entry := Entry{Racer: r, Category: categoryOf(r)}
		if i < podiumSize {
			entry.OverallRank = i + 1
			board.Overall = append(board.Overall, entry)
		}
		if entry.Category == "" {
			continue
		}
		if len(groups[entry.Category]) < podiumSize {
			groups[entry.Category] = append(groups[entry.Category], entry)
		}
	}

	for _, names := range race.CategoryPairs() {
		male, female := groups[names[0]], groups[names[1]]
		if len(male) == 0 && len(female) == 0 {
			continue
		}
		board.Pairs = append(board.Pairs, Pair{
			Male:   Category{Name: names[0], AgeRange: race.AgeRange(names[0]), Entries: male},
			Female: Category{Name: names[1], AgeRange: race.AgeRange(names[1]), Entries: female},
		})
	}
	return board
}

func categoryOf(r race.Racer) string {
	if c := string(r.Category); c != "" {
		return c
	}
	return race.CategoryFor(r.Age, string(r.Gender))
}
