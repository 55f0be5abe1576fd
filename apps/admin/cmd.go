package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/storage/database"
)

var (
	openDBFunc     = database.OpenX  // mockable
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf     *core.Config
	stdout   io.Writer
	stdoutFd int // checked for a terminal by render

	db *sqlx.DB // opened on first use
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.stdout, "Usage:")
	_, _ = fmt.Fprintln(cli.stdout, "  migrate COMMAND [ARGS] - run a goose command (up, down, status...) against the database")
	_, _ = fmt.Fprintln(cli.stdout, "  render -kind bar|line|pie|progress -in FILE [-out FILE] [-title TITLE] - draw a chart as SVG")
	_, _ = fmt.Fprintln(cli.stdout, "  seed - insert the demo school scores & objectives")
}

// database opens the app database the first time a command needs it.
func (cli *commandLine) database() (*sqlx.DB, error) {
	if cli.db != nil {
		return cli.db, nil
	}
	if cli.conf.Database.InMemory {
		return nil, errors.New("this command needs a database: set DATABASE_INMEMORY=false")
	}
	db, err := openDBFunc(cli.conf)
	if err != nil {
		return nil, err
	}
	cli.db = db
	return db, nil
}

func (cli *commandLine) close() error {
	if cli.db == nil {
		return nil
	}
	return cli.db.Close()
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.stdout)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "render":
		renderCmd := cli.newFlagSet("render")
		kind := renderCmd.String("kind", "", "The chart kind: bar, line, pie or progress.")
		in := renderCmd.String("in", "", "The JSON input: a series, or {\"current\", \"target\"} for progress.")
		out := renderCmd.String("out", "", "The SVG file to write. Defaults to stdout.")
		title := renderCmd.String("title", "", "The chart title.")
		if err := renderCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *kind == "" || *in == "" {
			renderCmd.Usage()
			return errHelp
		}
		return cli.render(*kind, *in, *out, *title)
	case "seed":
		return cli.seed()
	default:
		cli.printUsage()
		return errHelp
	}
}
