package calendar

import (
	"reflect"
	"strconv"
	"testing"
	"time"

	"statree-backend/internal/models"
)

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func TestCurrentStreak(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, loc)
	today := now
	yesterday := now.AddDate(0, 0, -1)
	twoAgo := now.AddDate(0, 0, -2)
	threeAgo := now.AddDate(0, 0, -3)

	tests := []struct {
		name string
		raw  map[string]int
		want int
	}{
		{"today and yesterday then zero", map[string]int{dayKey(today): 3, dayKey(yesterday): 2, dayKey(twoAgo): 0}, 2},
		{"zeros only", map[string]int{dayKey(today): 0, dayKey(yesterday): 0}, 0},
		{"empty", map[string]int{}, 0},
		{"starts yesterday", map[string]int{dayKey(yesterday): 1, dayKey(twoAgo): 4}, 2},
		{"gap two days ago", map[string]int{dayKey(today): 1, dayKey(threeAgo): 1}, 1},
		{"nothing recent", map[string]int{dayKey(twoAgo): 5, dayKey(threeAgo): 5}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Parse(tc.raw, loc)
			if got := c.CurrentStreak(now); got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestBestStreak(t *testing.T) {
	raw := map[string]int{
		"2026-01-01": 1,
		"2026-01-02": 2,
		"2026-01-03": 1,
		"2026-01-05": 4,
		"2026-01-06": 1,
	}
	c := Parse(raw, time.UTC)
	if got := c.BestStreak(); got != 3 {
		t.Fatalf("expected best streak 3, got %d", got)
	}
	if got := c.TotalActiveDays(); got != 5 {
		t.Fatalf("expected 5 active days, got %d", got)
	}
}

func TestBestStreak_ZeroEntriesAreSkipped(t *testing.T) {
	raw := map[string]int{
		"2026-01-01": 1,
		"2026-01-02": 0,
		"2026-01-03": 1,
	}
	if got := Parse(raw, time.UTC).BestStreak(); got != 1 {
		t.Fatalf("expected best streak 1, got %d", got)
	}
}

func TestBestStreak_AcrossMonthAndYear(t *testing.T) {
	raw := map[string]int{
		"2025-12-30": 1,
		"2025-12-31": 1,
		"2026-01-01": 1,
		"2026-02-28": 1,
		"2026-03-01": 1,
	}
	if got := Parse(raw, time.UTC).BestStreak(); got != 3 {
		t.Fatalf("expected best streak 3, got %d", got)
	}
}

func TestParse_KeyForms(t *testing.T) {
	loc := time.UTC
	unix := time.Date(2026, 4, 2, 8, 0, 0, 0, loc).Unix()
	raw := map[string]int{
		strconv.FormatInt(unix, 10): 1,
		"2026-04-03":                2,
		"04/04/2026":                3,
		"2026/04/05":                4,
		"yesterday":                 9,
	}
	c := Parse(raw, loc)
	if c.Len() != 4 {
		t.Fatalf("expected 4 parsed days, got %d", c.Len())
	}
	for i, want := range []int{1, 2, 3, 4} {
		d := Day{Year: 2026, Month: time.April, Day: 2 + i}
		if got := c.Count(d); got != want {
			t.Errorf("%s: expected %d, got %d", d, want, got)
		}
	}
}

func TestParse_UnixKeyUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 2026-04-02 02:00 UTC is still April 1st five hours west.
	unix := time.Date(2026, 4, 2, 2, 0, 0, 0, time.UTC).Unix()
	c := Parse(map[string]int{strconv.FormatInt(unix, 10): 1}, loc)
	if c.Count(Day{Year: 2026, Month: time.April, Day: 1}) != 1 {
		t.Fatalf("expected submission on April 1st in %s", loc)
	}
}

func TestParse_CollisionLastSortedKeyWins(t *testing.T) {
	raw := map[string]int{
		"2026-04-03": 2,
		"2026/04/03": 7,
	}
	c := Parse(raw, time.UTC)
	if got := c.Count(Day{Year: 2026, Month: time.April, Day: 3}); got != 7 {
		t.Fatalf("expected 7 from the later key, got %d", got)
	}
}

func TestParseJSON(t *testing.T) {
	c, err := ParseJSON(`{"1775001600": 3, "1775088000": "x", "1775174400": 1.5}`, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 days, got %d", c.Len())
	}
	if c.TotalActiveDays() != 1 {
		t.Fatalf("expected non-integer values to count as zero, got %d active days", c.TotalActiveDays())
	}

	if _, err := ParseJSON(`not json`, time.UTC); err == nil {
		t.Fatalf("expected error for invalid json")
	}

	empty, err := ParseJSON("", time.UTC)
	if err != nil || empty.Len() != 0 {
		t.Fatalf("expected empty calendar for empty input, got %v / %d", err, empty.Len())
	}
}

func TestDayAddDays_DST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// Clocks jump forward on 2026-03-08.
	raw := map[string]int{"2026-03-07": 1, "2026-03-08": 1, "2026-03-09": 1}
	c := Parse(raw, loc)
	now := time.Date(2026, 3, 9, 0, 30, 0, 0, loc)
	if got := c.CurrentStreak(now); got != 3 {
		t.Fatalf("expected streak 3 across DST change, got %d", got)
	}
}

func TestMonth(t *testing.T) {
	c := Parse(map[string]int{"2026-02-14": 5}, time.UTC)
	cells := c.Month(2026, time.February)
	if len(cells) != 28 {
		t.Fatalf("expected 28 cells, got %d", len(cells))
	}
	if cells[13].Count != 5 || cells[13].Date.Day() != 14 {
		t.Fatalf("unexpected cell %+v", cells[13])
	}
	if cells[0].Count != 0 {
		t.Fatalf("expected zero-filled cells")
	}
}

func TestWeakTopics(t *testing.T) {
	counts := models.TagSolveCounts{
		Fundamental:  []models.TagCount{{TagName: "array", ProblemsSolved: 5}},
		Intermediate: []models.TagCount{{TagName: "dp", ProblemsSolved: 0}},
		Advanced:     []models.TagCount{{TagName: "graph", ProblemsSolved: 2}},
	}
	if got := WeakTopics(counts); !reflect.DeepEqual(got, []string{"dp", "graph"}) {
		t.Fatalf("expected [dp graph], got %v", got)
	}
}

func TestWeakTopics_StableTiesAndLimit(t *testing.T) {
	counts := models.TagSolveCounts{
		Fundamental: []models.TagCount{
			{TagName: "string", ProblemsSolved: 1},
			{TagName: "sorting", ProblemsSolved: 1},
		},
		Intermediate: []models.TagCount{
			{TagName: "trie", ProblemsSolved: 1},
			{TagName: "heap", ProblemsSolved: 0},
		},
		Advanced: []models.TagCount{
			{TagName: "segment-tree", ProblemsSolved: 1},
			{TagName: "bitmask", ProblemsSolved: 1},
			{TagName: "rolling-hash", ProblemsSolved: 3},
		},
	}
	want := []string{"heap", "string", "sorting", "trie", "segment-tree"}
	if got := WeakTopics(counts); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWeakTopics_Empty(t *testing.T) {
	got := WeakTopics(models.TagSolveCounts{})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
