package database

import (
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/trezcool/masomo-dashboard/core"
	appfs "github.com/trezcool/masomo-dashboard/fs"
)

// maintenanceDB is where the app role & database get created from.
const maintenanceDB = "postgres"

var (
	pingAttempts = 30                     // mockable
	pingBackoff  = 100 * time.Millisecond // mockable
)

// dsn builds the connection URL of dbName, with the admin credentials when asked and configured.
func dsn(conf *core.Config, dbName string, admin bool) string {
	dbc := conf.Database
	user := url.UserPassword(dbc.User, dbc.Password)
	if admin && dbc.AdminUser != "" {
		user = url.UserPassword(dbc.AdminUser, dbc.AdminPassword)
	}

	q := make(url.Values)
	q.Set("sslmode", "require")
	if dbc.DisableTLS {
		q.Set("sslmode", "disable")
	}
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   dbc.Engine,
		User:     user,
		Host:     dbc.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// connect opens dbName and waits for it to accept connections. The pool is closed if it never does.
func connect(conf *core.Config, dbName string, admin bool) (*sqlx.DB, error) {
	db, err := sqlx.Open(conf.Database.Engine, dsn(conf, dbName, admin))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenX opens the app database.
func OpenX(conf *core.Config) (*sqlx.DB, error) {
	return connect(conf, conf.Database.Name, false)
}

// ping retries with a growing backoff until the server answers.
func ping(db *sqlx.DB) error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		if attempt < pingAttempts {
			time.Sleep(time.Duration(attempt) * pingBackoff)
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

func createUserStmt(name, password string) string {
	return "CREATE USER " + pq.QuoteIdentifier(name) + " CREATEDB ENCRYPTED PASSWORD " + pq.QuoteLiteral(password)
}

func createDBStmt(name string) string {
	return "CREATE DATABASE " + pq.QuoteIdentifier(name)
}

// ensure runs create unless the exists query, given arg, finds a row.
func ensure(db *sqlx.DB, exists, arg, create string) error {
	var found bool
	if err := db.Get(&found, "SELECT EXISTS("+exists+")", arg); err != nil {
		return errors.Wrap(err, "checking existence")
	}
	if found {
		return nil
	}
	_, err := db.Exec(create)
	return err
}

func withDB(conf *core.Config, admin bool, fn func(db *sqlx.DB) error) error {
	db, err := connect(conf, maintenanceDB, admin)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return fn(db)
}

// CreateIfNotExist creates the app role (as admin) then the app database (as the app role).
func CreateIfNotExist(conf *core.Config) error {
	dbc := conf.Database
	if dbc.User != "" {
		err := withDB(conf, true, func(db *sqlx.DB) error {
			return ensure(db, "SELECT 1 FROM pg_roles WHERE rolname = $1", dbc.User, createUserStmt(dbc.User, dbc.Password))
		})
		if err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}

	err := withDB(conf, false, func(db *sqlx.DB) error {
		return ensure(db, "SELECT 1 FROM pg_database WHERE datname = $1", dbc.Name, createDBStmt(dbc.Name))
	})
	return errors.Wrap(err, "creating database")
}

func Migrate(db *sqlx.DB) error {
	if err := goose.RunFS("up", db.DB, appfs.FS, appfs.MigrationsDir); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
