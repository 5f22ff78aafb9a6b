package leetcode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"statree-backend/internal/models"
)

const (
	DefaultPageSize  = 50
	DefaultBatchSize = 100
)

func requireUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return &ValidationError{Field: "username", Message: "must not be empty"}
	}
	return nil
}

func requireSlug(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return &ValidationError{Field: "slug", Message: "must not be empty"}
	}
	return nil
}

type userProfileResponse struct {
	MatchedUser *models.UserProfile `json:"matchedUser"`
}

func (r *userProfileResponse) validate() error {
	if r.MatchedUser == nil {
		return errors.New("matchedUser is missing")
	}
	if r.MatchedUser.Username == "" {
		return errors.New("matchedUser.username is empty")
	}
	return nil
}

func (c *Client) UserProfile(ctx context.Context, username string) (*models.UserProfile, error) {
	if err := requireUsername(username); err != nil {
		return nil, err
	}
	var resp userProfileResponse
	err := c.Execute(ctx, Operation{
		Name:          "userProfile",
		Query:         userProfileQuery,
		Variables:     map[string]any{"username": username},
		NotFoundField: "matchedUser",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.MatchedUser, nil
}

type tagCountsResponse struct {
	MatchedUser *struct {
		TagProblemCounts *models.TagSolveCounts `json:"tagProblemCounts"`
	} `json:"matchedUser"`
}

func (r *tagCountsResponse) validate() error {
	if r.MatchedUser == nil || r.MatchedUser.TagProblemCounts == nil {
		return errors.New("matchedUser.tagProblemCounts is missing")
	}
	return nil
}

func (c *Client) TagProblemCounts(ctx context.Context, username string) (*models.TagSolveCounts, error) {
	if err := requireUsername(username); err != nil {
		return nil, err
	}
	var resp tagCountsResponse
	err := c.Execute(ctx, Operation{
		Name:          "skillStats",
		Query:         tagProblemCountsQuery,
		Variables:     map[string]any{"username": username},
		NotFoundField: "matchedUser",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.MatchedUser.TagProblemCounts, nil
}

type solvedSlugsResponse struct {
	MatchedUser *struct {
		SolvedProblems []struct {
			TitleSlug string `json:"titleSlug"`
		} `json:"solvedProblems"`
	} `json:"matchedUser"`
}

// SolvedSlugs returns the slugs of every problem the user has accepted.
func (c *Client) SolvedSlugs(ctx context.Context, username string) ([]string, error) {
	if err := requireUsername(username); err != nil {
		return nil, err
	}
	var resp solvedSlugsResponse
	err := c.Execute(ctx, Operation{
		Name:          "solvedProblems",
		Query:         solvedSlugsQuery,
		Variables:     map[string]any{"username": username},
		NotFoundField: "matchedUser",
	}, &resp)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(resp.MatchedUser.SolvedProblems))
	for _, p := range resp.MatchedUser.SolvedProblems {
		if p.TitleSlug != "" {
			slugs = append(slugs, p.TitleSlug)
		}
	}
	return slugs, nil
}

type dailyResponse struct {
	Active *models.DailyChallenge `json:"activeDailyCodingChallengeQuestion"`
}

func (r *dailyResponse) validate() error {
	if r.Active == nil {
		return errors.New("activeDailyCodingChallengeQuestion is missing")
	}
	if err := r.Active.Question.Validate(); err != nil {
		return fmt.Errorf("question: %w", err)
	}
	return nil
}

func (c *Client) DailyChallenge(ctx context.Context) (*models.DailyChallenge, error) {
	var resp dailyResponse
	err := c.Execute(ctx, Operation{
		Name:          "questionOfToday",
		Query:         dailyChallengeQuery,
		NotFoundField: "activeDailyCodingChallengeQuestion",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Active, nil
}

// ProblemPage is one slice of the catalog plus the size of the whole
// filtered result set.
type ProblemPage struct {
	Records []models.ProblemRecord `json:"questions"`
	Total   int                    `json:"total"`
}

type problemsetResponse struct {
	List *ProblemPage `json:"problemsetQuestionList"`
}

func (r *problemsetResponse) validate() error {
	if r.List == nil {
		return errors.New("problemsetQuestionList is missing")
	}
	for i, rec := range r.List.Records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("questions[%d]: %w", i, err)
		}
	}
	return nil
}

// CatalogFilters converts q to the remote filters variable.
func CatalogFilters(q models.CatalogQuery) map[string]any {
	filters := map[string]any{}
	if q.Difficulty != nil && *q.Difficulty != "" {
		filters["difficulty"] = strings.ToUpper(*q.Difficulty)
	}
	if q.Tag != nil && *q.Tag != "" {
		filters["tags"] = []string{*q.Tag}
	}
	if search := strings.TrimSpace(q.SearchText); search != "" {
		filters["searchKeywords"] = search
	}
	return filters
}

func (c *Client) Problems(ctx context.Context, filters map[string]any, limit, skip int) (*ProblemPage, error) {
	if limit <= 0 {
		return nil, &ValidationError{Field: "limit", Message: "must be positive"}
	}
	if skip < 0 {
		return nil, &ValidationError{Field: "skip", Message: "must not be negative"}
	}
	if filters == nil {
		filters = map[string]any{}
	}
	var resp problemsetResponse
	err := c.Execute(ctx, Operation{
		Name:  "problemsetQuestionList",
		Query: problemsetQuery,
		Variables: map[string]any{
			"categorySlug": "",
			"limit":        limit,
			"skip":         skip,
			"filters":      filters,
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.List.Records == nil {
		resp.List.Records = []models.ProblemRecord{}
	}
	return resp.List, nil
}

// FetchPage fetches one page of the catalog narrowed by q.
func (c *Client) FetchPage(ctx context.Context, q models.CatalogQuery, limit, skip int) ([]models.ProblemRecord, error) {
	page, err := c.Problems(ctx, CatalogFilters(q), limit, skip)
	if err != nil {
		return nil, err
	}
	return page.Records, nil
}

type totalResponse struct {
	List *struct {
		Total *int `json:"total"`
	} `json:"problemsetQuestionList"`
}

func (r *totalResponse) validate() error {
	if r.List == nil || r.List.Total == nil {
		return errors.New("problemsetQuestionList.total is missing")
	}
	return nil
}

func (c *Client) TotalProblemCount(ctx context.Context) (int, error) {
	var resp totalResponse
	err := c.Execute(ctx, Operation{
		Name:  "problemsetTotal",
		Query: totalProblemsQuery,
		Variables: map[string]any{
			"categorySlug": "",
			"limit":        1,
			"skip":         0,
			"filters":      map[string]any{},
		},
	}, &resp)
	if err != nil {
		return 0, err
	}
	return *resp.List.Total, nil
}

// AllProblems walks the unfiltered catalog in batches until a short page.
// progress, when set, is called with the running record count after each
// batch.
func (c *Client) AllProblems(ctx context.Context, batchSize int, progress func(fetched int)) ([]models.ProblemRecord, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	var all []models.ProblemRecord
	skip := 0
	for {
		page, err := c.Problems(ctx, nil, batchSize, skip)
		if err != nil {
			return all, fmt.Errorf("fetch batch at %d: %w", skip, err)
		}
		all = append(all, page.Records...)
		skip += len(page.Records)
		if progress != nil {
			progress(len(all))
		}
		if len(page.Records) < batchSize {
			return all, nil
		}
	}
}

type detailResponse struct {
	Question *models.ProblemDetail `json:"question"`
}

func (r *detailResponse) validate() error {
	if r.Question == nil {
		return errors.New("question is missing")
	}
	if r.Question.TitleSlug == "" {
		return errors.New("question.titleSlug is empty")
	}
	return nil
}

func (c *Client) ProblemDetail(ctx context.Context, slug string) (*models.ProblemDetail, error) {
	if err := requireSlug(slug); err != nil {
		return nil, err
	}
	var resp detailResponse
	err := c.Execute(ctx, Operation{
		Name:          "questionData",
		Query:         problemDetailQuery,
		Variables:     map[string]any{"titleSlug": slug},
		NotFoundField: "question",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Question, nil
}

type contestsResponse struct {
	AllContests []models.Contest `json:"allContests"`
}

func (r *contestsResponse) validate() error {
	for i, ct := range r.AllContests {
		if ct.TitleSlug == "" {
			return fmt.Errorf("allContests[%d].titleSlug is empty", i)
		}
	}
	return nil
}

func (c *Client) Contests(ctx context.Context) ([]models.Contest, error) {
	var resp contestsResponse
	err := c.Execute(ctx, Operation{Name: "allContests", Query: contestsQuery}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.AllContests, nil
}

type contestHistoryResponse struct {
	Ranking *struct {
		Rating        float64  `json:"rating"`
		GlobalRanking int      `json:"globalRanking"`
		TopPercentage *float64 `json:"topPercentage"`
	} `json:"userContestRanking"`
	History []struct {
		Attended       bool    `json:"attended"`
		Rating         float64 `json:"rating"`
		Ranking        int     `json:"ranking"`
		ProblemsSolved int     `json:"problemsSolved"`
		Contest        struct {
			Title     string `json:"title"`
			StartTime int64  `json:"startTime"`
		} `json:"contest"`
	} `json:"userContestRankingHistory"`
}

// ContestHistory returns the user's rating summary and per-contest results.
// A user who never competed gets a zero ranking and no entries.
func (c *Client) ContestHistory(ctx context.Context, username string) (*models.ContestHistory, error) {
	if err := requireUsername(username); err != nil {
		return nil, err
	}
	var resp contestHistoryResponse
	err := c.Execute(ctx, Operation{
		Name:          "userContestRankingInfo",
		Query:         contestHistoryQuery,
		Variables:     map[string]any{"username": username},
		PartialDataOK: true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	history := &models.ContestHistory{Entries: make([]models.ContestHistoryEntry, 0, len(resp.History))}
	if resp.Ranking != nil {
		history.Ranking = models.ContestRanking{
			Rating:        resp.Ranking.Rating,
			GlobalRanking: resp.Ranking.GlobalRanking,
		}
		if resp.Ranking.TopPercentage != nil {
			history.Ranking.TopPercentage = *resp.Ranking.TopPercentage
		}
	}
	for _, h := range resp.History {
		history.Entries = append(history.Entries, models.ContestHistoryEntry{
			Attended:         h.Attended,
			Rating:           h.Rating,
			Ranking:          h.Ranking,
			ProblemsSolved:   h.ProblemsSolved,
			ContestTitle:     h.Contest.Title,
			ContestStartTime: h.Contest.StartTime,
		})
	}
	return history, nil
}
