package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/dashboard"
	appfs "github.com/trezcool/masomo-dashboard/fs"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	conf := core.NewTestConfig()
	conf.Database.InMemory = false
	out := new(bytes.Buffer)
	isTerminalFunc = func(int) bool { return false }

	return &commandLine{
		conf:   conf,
		stdout: out,
		db:     &sqlx.DB{}, // never reached: every DB access is mocked
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "render: no flags", args: []string{"render"}, wantErr: errHelp},
		{name: "render: no input", args: []string{"render", "-kind", "bar"}, wantErr: errHelp},
		{name: "render: missing input file", args: []string{"render", "-kind", "bar", "-in", "testdata.json"}, wantErrStr: `reading input: open testdata.json: no such file or directory`},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		if fsys != appfs.FS || dir != appfs.MigrationsDir {
			return fmt.Errorf("unexpected migrations source %q", dir)
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "report", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_migrate_inMemory(t *testing.T) {
	cli := &commandLine{conf: core.NewTestConfig(), stdout: new(bytes.Buffer)}
	err := cli.run([]string{"admin", "migrate", "up"})
	assert.EqualError(t, err, "opening database: this command needs a database: set DATABASE_INMEMORY=false")
}

func Test_commandLine_seed(t *testing.T) {
	cli, out := setup(t)

	var seeded []dashboard.Score
	seedFunc = func(_ context.Context, db *sqlx.DB, scores []dashboard.Score, objectives []dashboard.Objective) error {
		seeded = scores
		return nil
	}

	require.NoError(t, cli.run([]string{"admin", "seed"}))
	assert.NotEmpty(t, seeded)
	assert.Contains(t, out.String(), fmt.Sprintf("seeded %d scores", len(seeded)))

	seedFunc = func(context.Context, *sqlx.DB, []dashboard.Score, []dashboard.Objective) error {
		return fmt.Errorf("duplicate key")
	}
	assert.EqualError(t, cli.run([]string{"admin", "seed"}), "seeding database: duplicate key")
}

func Test_commandLine_render(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}
	grades := write("grades.json", `[{"category":"9","value":78},{"category":"10","value":82},{"category":"11","value":85},{"category":"12","value":88}]`)
	subjects := write("subjects.json", `[{"label":"Math","value":3},{"label":"Art","value":1}]`)
	goal := write("goal.json", `{"current":85,"target":90}`)
	empty := write("empty.json", `[]`)
	broken := write("broken.json", `{"current":`)

	type extra struct {
		terminal   bool
		out        string
		wantStdout []string
		wantFile   string
	}
	tests := []cliTest{
		{name: "unknown kind", args: []string{"render", "-kind", "radar", "-in", grades}, wantErrStr: `unknown chart kind "radar"`},
		{name: "broken input", args: []string{"render", "-kind", "progress", "-in", broken}, wantErrStr: "decoding progress: unexpected end of JSON input"},
		{name: "zero target", args: []string{"render", "-kind", "progress", "-in", write("zero.json", `{"current":1,"target":0}`)}, wantErrStr: "division by zero"},
		{
			name:  "empty series",
			args:  []string{"render", "-kind", "line", "-in", empty},
			extra: extra{wantStdout: []string{"no data to render"}},
		},
		{
			name:  "bar to stdout",
			args:  []string{"render", "-kind", "bar", "-in", grades, "-title", "Grade averages"},
			extra: extra{wantStdout: []string{"<svg", "<title>Grade averages</title>"}},
		},
		{
			name:  "bar table on a terminal",
			args:  []string{"render", "-kind", "bar", "-in", grades},
			extra: extra{terminal: true, wantStdout: []string{"CATEGORY", "needs_improvement", "excellent", "max 88"}},
		},
		{
			name:  "pie table on a terminal",
			args:  []string{"render", "-kind", "pie", "-in", subjects},
			extra: extra{terminal: true, wantStdout: []string{"SHARE", "Math", "75%"}},
		},
		{
			name:  "progress table on a terminal",
			args:  []string{"render", "-kind", "progress", "-in", goal},
			extra: extra{terminal: true, wantStdout: []string{"94%", "excellent"}},
		},
		{
			name:  "line to file",
			args:  []string{"render", "-kind", "line", "-in", grades, "-out", filepath.Join(dir, "trend.svg")},
			extra: extra{terminal: true, wantStdout: []string{"wrote " + filepath.Join(dir, "trend.svg")}, wantFile: filepath.Join(dir, "trend.svg")},
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t)
			ext, _ := tt.extra.(extra)
			isTerminalFunc = func(int) bool { return ext.terminal }

			tt.check(t, cli.run(args))
			for _, want := range ext.wantStdout {
				assert.Contains(t, out.String(), want)
			}
			if ext.terminal && ext.wantFile == "" {
				assert.NotContains(t, out.String(), "<svg")
			}
			if ext.wantFile != "" {
				doc, err := os.ReadFile(ext.wantFile)
				require.NoError(t, err)
				assert.Contains(t, string(doc), "<path")
			}
		})
	}
}
