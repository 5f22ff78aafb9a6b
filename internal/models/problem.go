package models

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

type TopicTag struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ProblemRecord is one row of the problem catalog. Field names follow the
// remote schema so a decoded page re-encodes byte-for-byte.
type ProblemRecord struct {
	Title      string     `json:"title"`
	TitleSlug  string     `json:"titleSlug"`
	Difficulty string     `json:"difficulty"`
	AcRate     float64    `json:"acRate"`
	TopicTags  []TopicTag `json:"topicTags"`
}

func (p ProblemRecord) Validate() error {
	if strings.TrimSpace(p.TitleSlug) == "" {
		return errors.New("titleSlug is empty")
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is empty for %q", p.TitleSlug)
	}
	if !ValidDifficulty(p.Difficulty) {
		return fmt.Errorf("unknown difficulty %q for %q", p.Difficulty, p.TitleSlug)
	}
	if p.AcRate < 0 || p.AcRate > 100 {
		return fmt.Errorf("acRate %v out of range for %q", p.AcRate, p.TitleSlug)
	}
	return nil
}

func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type CodeSnippet struct {
	Lang     string `json:"lang"`
	LangSlug string `json:"langSlug"`
	Code     string `json:"code"`
}

// ProblemDetail carries the long-form fields of a single question.
type ProblemDetail struct {
	Title            string        `json:"title"`
	TitleSlug        string        `json:"titleSlug"`
	Difficulty       *string       `json:"difficulty,omitempty"`
	Content          *string       `json:"content,omitempty"`
	TopicTags        []TopicTag    `json:"topicTags,omitempty"`
	ExampleTestcases *string       `json:"exampleTestcases,omitempty"`
	SampleTestCase   *string       `json:"sampleTestCase,omitempty"`
	Hints            []string      `json:"hints,omitempty"`
	SimilarQuestions *string       `json:"similarQuestions,omitempty"`
	CodeSnippets     []CodeSnippet `json:"codeSnippets,omitempty"`
}

type DailyChallenge struct {
	Date     string        `json:"date"`
	Link     string        `json:"link"`
	Question ProblemRecord `json:"question"`
}

// CatalogQuery identifies one logical catalog result set.
type CatalogQuery struct {
	SearchText string  `json:"search"`
	Difficulty *string `json:"difficulty,omitempty"`
	Tag        *string `json:"tag,omitempty"`
}

// Equal reports whether both queries select the same result set.
func (q CatalogQuery) Equal(other CatalogQuery) bool {
	return q.SearchText == other.SearchText &&
		equalOptional(q.Difficulty, other.Difficulty) &&
		equalOptional(q.Tag, other.Tag)
}

func (q CatalogQuery) Clone() CatalogQuery {
	out := CatalogQuery{SearchText: q.SearchText}
	if q.Difficulty != nil {
		d := *q.Difficulty
		out.Difficulty = &d
	}
	if q.Tag != nil {
		t := *q.Tag
		out.Tag = &t
	}
	return out
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
