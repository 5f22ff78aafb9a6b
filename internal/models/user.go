package models

import "time"

type UserProfile struct {
	Username           string       `json:"username"`
	Profile            *Profile     `json:"profile"`
	SubmitStats        *SubmitStats `json:"submitStats"`
	SubmissionCalendar *string      `json:"submissionCalendar"`
}

type Profile struct {
	Ranking    *int    `json:"ranking"`
	UserAvatar *string `json:"userAvatar"`
	RealName   *string `json:"realName"`
}

type SubmitStats struct {
	AcSubmissionNum []SubmissionCount `json:"acSubmissionNum"`
}

type SubmissionCount struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

type TagCount struct {
	TagName        string `json:"tagName"`
	ProblemsSolved int    `json:"problemsSolved"`
}

// TagSolveCounts groups solved counts per topic into the three tiers the
// platform reports.
type TagSolveCounts struct {
	Advanced     []TagCount `json:"advanced"`
	Intermediate []TagCount `json:"intermediate"`
	Fundamental  []TagCount `json:"fundamental"`
}

type StreakStats struct {
	Current         int `json:"current"`
	Best            int `json:"best"`
	TotalActiveDays int `json:"total_active_days"`
}

type DayActivity struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// ProfileView is the denormalized profile screen model.
type ProfileView struct {
	Username           string          `json:"username"`
	RealName           string          `json:"real_name"`
	AvatarURL          string          `json:"avatar_url"`
	Ranking            int             `json:"ranking"`
	SolvedByDifficulty map[string]int  `json:"solved_by_difficulty"`
	Stats              StreakStats     `json:"stats"`
	Activity           []DayActivity   `json:"activity"`
	TagCounts          *TagSolveCounts `json:"tag_counts,omitempty"`
	WeakTopics         []string        `json:"weak_topics"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// Settings is the locally persisted state: the stored username and the set
// of bookmarked problem slugs.
type Settings struct {
	Username  string    `json:"username"`
	Bookmarks []string  `json:"bookmarks"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SetUsernameRequest struct {
	Username string `json:"username"`
}
