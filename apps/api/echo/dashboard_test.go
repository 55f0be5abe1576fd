package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-dashboard/core/dashboard"
)

func TestDashboardAPI_overview(t *testing.T) {
	env := setup(t)

	var ov dashboard.Overview
	env.decode(t, http.StatusOK, &ov, http.MethodGet, "/v1/dashboards/overview?school=kis&term=2026-T1")
	assert.Equal(t, dashboard.Filter{School: "kis", Term: "2026-T1"}, ov.Filter)
	for name, status := range map[string]dashboard.Status{
		"grade_performance": ov.GradePerformance.Status,
		"trend":             ov.Trend.Status,
		"subject_mix":       ov.SubjectMix.Status,
		"target":            ov.Target.Status,
	} {
		assert.Equal(t, dashboard.StatusOK, status, name)
	}
	require.NotNil(t, ov.GradePerformance.Chart)
	assert.Len(t, ov.GradePerformance.Chart.Bars, 4)
	require.NotNil(t, ov.Trend.Chart)
	assert.Len(t, ov.Trend.Chart.Points, 4) // the trend spans every term

	var empty dashboard.Overview
	env.decode(t, http.StatusOK, &empty, http.MethodGet, "/v1/dashboards/overview?school=nowhere")
	assert.Equal(t, dashboard.StatusNoData, empty.GradePerformance.Status)
	assert.Equal(t, dashboard.StatusNoData, empty.Target.Status)
	assert.Nil(t, empty.GradePerformance.Chart)
}

func TestDashboardAPI_cards(t *testing.T) {
	env := setup(t)

	for _, card := range []string{"grade_performance", "trend", "subject_mix", "target"} {
		t.Run(card, func(t *testing.T) {
			rec := env.do(http.MethodGet, "/v1/dashboards/overview/"+card+"?school=kis")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, mimeSVG, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "<svg")
		})
	}

	runHTTPTests(t, env, []httpTest{
		{
			name: "unknown card", method: http.MethodGet, path: "/v1/dashboards/overview/nope",
			wantCode: http.StatusNotFound, wantData: `{"error":"not found"}`,
		},
		{
			name: "no data", method: http.MethodGet, path: "/v1/dashboards/overview/trend?school=nowhere",
			wantCode: http.StatusOK, wantData: `{"status":"no_data"}`,
		},
	})
}

func TestDashboardAPI_student(t *testing.T) {
	env := setup(t)

	var rep dashboard.StudentReport
	env.decode(t, http.StatusOK, &rep, http.MethodGet, "/v1/dashboards/students/s-10-2")
	assert.Equal(t, "s-10-2", rep.StudentID)
	assert.Equal(t, dashboard.StatusOK, rep.Trend.Status)
	assert.Equal(t, "Term goal", rep.Target.Label)

	runHTTPTests(t, env, []httpTest{
		{
			name: "unknown student", method: http.MethodGet, path: "/v1/dashboards/students/ghost",
			wantCode: http.StatusNotFound, wantData: `{"error":"student not found"}`,
		},
	})
}
