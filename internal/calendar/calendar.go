package calendar

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"statree-backend/internal/models"
)

// Key layouts tried in order after the numeric (Unix seconds) form.
var keyLayouts = []string{"2006-01-02", "1/2/2006", "2006/1/2"}

// Day is a civil date, independent of any clock time or zone offset.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// AddDays steps by calendar days. Noon UTC keeps the arithmetic clear of
// DST transitions.
func (d Day) AddDays(n int) Day {
	t := time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC)
	y, m, dd := t.Date()
	return Day{Year: y, Month: m, Day: dd}
}

func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Midnight returns the start of d in loc.
func (d Day) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Calendar is a sparse day to submission-count map.
type Calendar struct {
	loc    *time.Location
	counts map[Day]int
}

// Parse normalizes raw keys to days in loc. Keys that match no known form are
// dropped. When two keys land on the same day the one sorting last wins.
func Parse(raw map[string]int, loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	c := &Calendar{loc: loc, counts: make(map[Day]int, len(raw))}
	for _, k := range keys {
		day, ok := parseKey(k, loc)
		if !ok {
			continue
		}
		count := raw[k]
		if count < 0 {
			count = 0
		}
		c.counts[day] = count
	}
	return c
}

// ParseJSON parses the platform's submissionCalendar string. Values that are
// not whole numbers count as zero.
func ParseJSON(s string, loc *time.Location) (*Calendar, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Parse(nil, loc), nil
	}
	var values map[string]any
	if err := json.Unmarshal([]byte(s), &values); err != nil {
		return Parse(nil, loc), fmt.Errorf("parse submission calendar: %w", err)
	}
	raw := make(map[string]int, len(values))
	for k, v := range values {
		n, ok := v.(float64)
		if !ok || n != math.Trunc(n) {
			raw[k] = 0
			continue
		}
		raw[k] = int(n)
	}
	return Parse(raw, loc), nil
}

func parseKey(key string, loc *time.Location) (Day, bool) {
	key = strings.TrimSpace(key)
	if secs, err := strconv.ParseFloat(key, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return Day{}, false
		}
		return DayOf(time.Unix(int64(secs), 0), loc), true
	}
	for _, layout := range keyLayouts {
		if t, err := time.ParseInLocation(layout, key, loc); err == nil {
			return DayOf(t, loc), true
		}
	}
	return Day{}, false
}

func (c *Calendar) Location() *time.Location { return c.loc }

func (c *Calendar) Len() int { return len(c.counts) }

func (c *Calendar) Count(day Day) int { return c.counts[day] }

// CurrentStreak counts consecutive active days ending today, or ending
// yesterday when nothing has been submitted yet today.
func (c *Calendar) CurrentStreak(now time.Time) int {
	today := DayOf(now, c.loc)
	start := today
	if c.counts[today] <= 0 {
		start = today.AddDays(-1)
		if c.counts[start] <= 0 {
			return 0
		}
	}
	streak := 0
	for d := start; c.counts[d] > 0; d = d.AddDays(-1) {
		streak++
	}
	return streak
}

// BestStreak is the longest run of consecutive active days anywhere in the
// calendar. Zero-count entries are ignored rather than treated as gaps.
func (c *Calendar) BestStreak() int {
	active := c.activeDays()
	best, run := 0, 0
	for i, d := range active {
		if i > 0 && active[i-1].AddDays(1) == d {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

func (c *Calendar) TotalActiveDays() int {
	total := 0
	for _, n := range c.counts {
		if n > 0 {
			total++
		}
	}
	return total
}

func (c *Calendar) Stats(now time.Time) models.StreakStats {
	return models.StreakStats{
		Current:         c.CurrentStreak(now),
		Best:            c.BestStreak(),
		TotalActiveDays: c.TotalActiveDays(),
	}
}

// Month returns one cell per day of the given month, zero-filled.
func (c *Calendar) Month(year int, month time.Month) []models.DayActivity {
	first := Day{Year: year, Month: month, Day: 1}
	var cells []models.DayActivity
	for d := first; d.Month == month; d = d.AddDays(1) {
		cells = append(cells, models.DayActivity{Date: d.Midnight(c.loc), Count: c.counts[d]})
	}
	return cells
}

func (c *Calendar) activeDays() []Day {
	days := make([]Day, 0, len(c.counts))
	for d, n := range c.counts {
		if n > 0 {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
