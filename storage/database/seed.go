package database

import (
	"fmt"
	"math"
	"strconv"

	"github.com/trezcool/masomo-dashboard/core/dashboard"
)

var (
	demoSchool   = "kis"
	demoGrades   = []int{9, 10, 11, 12}
	demoTerms    = []string{"2025-T1", "2025-T2", "2025-T3", "2026-T1"}
	demoSubjects = []string{"Math", "Science", "English", "History", "Art"}
	demoStudents = 3 // per grade
)

// DemoData returns a small deterministic school: a few students per grade, one score per subject and term.
func DemoData() ([]dashboard.Score, []dashboard.Objective) {
	scores := make([]dashboard.Score, 0, len(demoGrades)*demoStudents*len(demoTerms)*len(demoSubjects))
	objectives := []dashboard.Objective{
		{Scope: dashboard.ScopeSchool, Ref: demoSchool, Label: "School average", Value: 90},
	}

	for gi, grade := range demoGrades {
		for st := 1; st <= demoStudents; st++ {
			sid := fmt.Sprintf("s-%d-%d", grade, st)
			objectives = append(objectives, dashboard.Objective{
				Scope: dashboard.ScopeStudent, Ref: sid, Label: "Term goal", Value: 85,
			})
			for ti, term := range demoTerms {
				for si, subject := range demoSubjects {
					v := 70 + float64(gi*3) + float64(ti*2) + float64((si*7+st*5)%11) - 4
					scores = append(scores, dashboard.Score{
						StudentID: sid,
						School:    demoSchool,
						Grade:     strconv.Itoa(grade),
						Term:      term,
						Subject:   subject,
						Value:     math.Min(v, 100),
					})
				}
			}
		}
	}
	return scores, objectives
}
