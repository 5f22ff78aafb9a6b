package models

import "time"

type Contest struct {
	Title     string `json:"title"`
	TitleSlug string `json:"titleSlug"`
	StartTime int64  `json:"startTime"`
	Duration  int64  `json:"duration"`
}

func (c Contest) StartsAt() time.Time {
	return time.Unix(c.StartTime, 0)
}

type UpcomingContest struct {
	Contest
	ReminderAt time.Time `json:"reminder_at"`
}

type ContestRanking struct {
	Rating        float64 `json:"rating"`
	GlobalRanking int     `json:"global_ranking"`
	TopPercentage float64 `json:"top_percentage"`
}

type ContestHistoryEntry struct {
	Attended         bool    `json:"attended"`
	Rating           float64 `json:"rating"`
	Ranking          int     `json:"ranking"`
	ProblemsSolved   int     `json:"problems_solved"`
	ContestTitle     string  `json:"contest_title"`
	ContestStartTime int64   `json:"contest_start_time"`
}

type ContestHistory struct {
	Ranking ContestRanking        `json:"ranking"`
	Entries []ContestHistoryEntry `json:"entries"`
}

type ContestOverview struct {
	Upcoming []UpcomingContest `json:"upcoming"`
	History  *ContestHistory   `json:"history,omitempty"`
}
