package dashboard

import (
	"math"
	"sort"
	"strconv"

	"github.com/trezcool/masomo-dashboard/core/series"
)

// Objective scopes
const (
	ScopeSchool  = "school"
	ScopeStudent = "student"
)

type (
	// Score is one graded result, the raw record every dashboard series aggregates.
	Score struct {
		StudentID string  `json:"student_id" db:"student_id"`
		School    string  `json:"school" db:"school"`
		Grade     string  `json:"grade" db:"grade"`
		Term      string  `json:"term" db:"term"`
		Subject   string  `json:"subject" db:"subject"`
		Value     float64 `json:"value" db:"value"`
	}

	// Objective is the target average of a school (Ref = school) or a student (Ref = student id).
	Objective struct {
		Scope string  `json:"scope" db:"scope"`
		Ref   string  `json:"ref" db:"ref"`
		Label string  `json:"label" db:"label"`
		Value float64 `json:"value" db:"value"`
	}
)

// Match reports whether sc passes the set fields of f.
func (f Filter) Match(sc Score) bool {
	return (f.School == "" || f.School == sc.School) &&
		(f.Grade == "" || f.Grade == sc.Grade) &&
		(f.Term == "" || f.Term == sc.Term)
}

// SortCategories orders s by category: numbers first, by value (grade 9 before 10),
// then every other category in lexical order.
func SortCategories(s series.Series) {
	sort.SliceStable(s, func(i, j int) bool {
		a, numA := numeric(s[i].Category)
		b, numB := numeric(s[j].Category)
		switch {
		case numA && numB && a != b:
			return a < b
		case numA != numB:
			return numA
		default:
			return s[i].Category < s[j].Category
		}
	})
}

// numeric parses c as a number. NaN is not one: it compares to nothing.
func numeric(c string) (float64, bool) {
	f, err := strconv.ParseFloat(c, 64)
	return f, err == nil && !math.IsNaN(f)
}

// Averages groups scores by key and returns the mean value of each group, sorted by category.
func Averages(scores []Score, key func(Score) string) series.Series {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[string]*acc)
	for _, sc := range scores {
		k := key(sc)
		g, ok := groups[k]
		if !ok {
			g = &acc{}
			groups[k] = g
		}
		g.sum += sc.Value
		g.count++
	}
	s := make(series.Series, 0, len(groups))
	for k, g := range groups {
		s = append(s, series.Sample{Category: k, Value: g.sum / float64(g.count)})
	}
	SortCategories(s)
	return s
}

// Counts groups scores by key and returns the size of each group, sorted by category.
func Counts(scores []Score, key func(Score) string) series.Series {
	counts := make(map[string]int)
	for _, sc := range scores {
		counts[key(sc)]++
	}
	s := make(series.Series, 0, len(counts))
	for k, n := range counts {
		s = append(s, series.Sample{Category: k, Value: float64(n)})
	}
	SortCategories(s)
	return s
}

func ByGrade(sc Score) string   { return sc.Grade }
func ByTerm(sc Score) string    { return sc.Term }
func BySubject(sc Score) string { return sc.Subject }
