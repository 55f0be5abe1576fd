package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/storage/database"
	sqlxrepos "github.com/trezcool/masomo-dashboard/storage/database/sqlx"
)

var seedFunc = sqlxrepos.Seed // mockable

func (cli *commandLine) seed() error {
	db, err := cli.database()
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	scores, objectives := database.DemoData()
	if err = seedFunc(context.Background(), db, scores, objectives); err != nil {
		return errors.Wrap(err, "seeding database")
	}
	_, _ = fmt.Fprintf(cli.stdout, "seeded %d scores & %d objectives\n", len(scores), len(objectives))
	return nil
}
