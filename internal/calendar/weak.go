package calendar

import (
	"sort"

	"statree-backend/internal/models"
)

const (
	weakTopicMaxSolved = 2
	weakTopicLimit     = 5
)

// WeakTopics lists up to five tags with at most two solved problems, fewest
// first. Ties keep fundamental, intermediate, advanced order.
func WeakTopics(counts models.TagSolveCounts) []string {
	var all []models.TagCount
	all = append(all, counts.Fundamental...)
	all = append(all, counts.Intermediate...)
	all = append(all, counts.Advanced...)

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].ProblemsSolved < all[j].ProblemsSolved
	})

	topics := []string{}
	for _, tc := range all {
		if tc.ProblemsSolved > weakTopicMaxSolved {
			break
		}
		topics = append(topics, tc.TagName)
		if len(topics) == weakTopicLimit {
			break
		}
	}
	return topics
}
