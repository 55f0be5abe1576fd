package echoapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/coursework"
	"github.com/trezcool/masomo-dashboard/core/dashboard"
	"github.com/trezcool/masomo-dashboard/services/email"
	"github.com/trezcool/masomo-dashboard/services/filestore"
	"github.com/trezcool/masomo-dashboard/storage/database"
	"github.com/trezcool/masomo-dashboard/storage/database/inmem"
	"github.com/trezcool/masomo-dashboard/tests"
)

type testEnv struct {
	server *Server
	mailer *emailsvc.ConsoleServiceMock
	logger *testutil.LoggerMock
}

func setup(t *testing.T) testEnv {
	t.Helper()
	conf := core.NewTestConfig()
	logger := new(testutil.LoggerMock)

	// set up DB & repos
	db := inmemdb.Open()
	db.Seed(database.DemoData())

	// set up services
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	coursework.InitValidators(validate, translator)

	mailer := emailsvc.NewConsoleServiceMock(conf, testutil.EmailTemplates(t, conf), logger)
	files := filestore.NewMemory(conf, conf.MaxUploadSize)
	courseSvc := coursework.NewService(inmemdb.NewAssignmentRepository(db), files, mailer, validate, conf, logger)
	dashSvc := dashboard.NewService(inmemdb.NewDashboardSource(db), conf)

	// set up server
	return testEnv{
		server: NewServer(conf, logger, validate, translator, courseSvc, dashSvc, files),
		mailer: mailer,
		logger: logger,
	}
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     string
	wantCode int
	wantData string
}

func newRequest(method, path string, data ...string) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.WriteString(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}

// do serves one JSON request and returns the recorder.
func (env testEnv) do(method, path string, data ...string) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	env.server.ServeHTTP(rec, req)
	return rec
}

// decode serves one JSON request, checks its status and decodes its body into dest.
func (env testEnv) decode(t *testing.T, wantCode int, dest interface{}, method, path string, data ...string) {
	t.Helper()
	rec := env.do(method, path, data...)
	require.Equal(t, wantCode, rec.Code, rec.Body.String())
	if dest != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
	}
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code)
	diff, err := testutil.JSONDiff([]byte(tt.wantData), rec.Body.Bytes())
	require.NoError(t, err)
	assert.Empty(t, diff, "body: %s", rec.Body.String())
}

func runHTTPTests(t *testing.T, env testEnv, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.do(tt.method, tt.path, tt.body))
		})
	}
}

func multipartFile(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestHome(t *testing.T) {
	env := setup(t)
	rec := env.do(http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Masomo Dashboard API!", rec.Body.String())

	runHTTPTests(t, env, []httpTest{
		{name: "unknown route", method: http.MethodGet, path: "/v1/nope", wantCode: http.StatusNotFound, wantData: `{"error":"Not Found"}`},
	})
}
