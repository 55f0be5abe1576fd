package dig_container

import (
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/masomo-dashboard/apps/api/echo"
	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/coursework"
	"github.com/trezcool/masomo-dashboard/core/dashboard"
	appfs "github.com/trezcool/masomo-dashboard/fs"
	emailsvc "github.com/trezcool/masomo-dashboard/services/email"
	"github.com/trezcool/masomo-dashboard/services/filestore"
	logsvc "github.com/trezcool/masomo-dashboard/services/logger"
	"github.com/trezcool/masomo-dashboard/storage/database"
	inmemdb "github.com/trezcool/masomo-dashboard/storage/database/inmem"
	sqlxrepos "github.com/trezcool/masomo-dashboard/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Storage is the pair of repositories backing the services, in memory or in Postgres.
	Storage struct {
		dig.Out
		Assignments coursework.Repository
		Source      dashboard.Source
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

// Closer releases the database connection, a no-op for in-memory storage.
type Closer func() error

func openDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	db, err := database.OpenX(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) (Storage, Closer) {
	if conf.Database.InMemory {
		db := inmemdb.Open()
		db.Seed(database.DemoData())
		loggerParam.Logger.Info("using in-memory storage seeded with demo data")
		return Storage{
			Assignments: inmemdb.NewAssignmentRepository(db),
			Source:      inmemdb.NewDashboardSource(db),
		}, func() error { return nil }
	}

	db, err := openDB(conf)
	if err != nil {
		loggerParam.Logger.Fatal("setting up database: "+err.Error(), err)
	}
	return Storage{
		Assignments: sqlxrepos.NewAssignmentRepository(db),
		Source:      sqlxrepos.NewDashboardSource(db),
	}, db.Close
}

func newEmailTemplates(conf *core.Config) (*core.EmailTemplates, error) {
	return core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf)
}

func newEmailService(conf *core.Config, tmpls *core.EmailTemplates, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, tmpls, logger)
	}
	return emailsvc.NewSendgridService(conf, tmpls, logger)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	coursework.InitValidators(validate, translator)
	return validate
}

func newFileStore(conf *core.Config) *filestore.Memory {
	return filestore.NewMemory(conf, conf.MaxUploadSize)
}

func newCourseworkService(
	repo coursework.Repository,
	files *filestore.Memory,
	mailer core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
	logger core.Logger,
) *coursework.Service {
	return coursework.NewService(repo, files, mailer, validate, conf, logger)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newEmailTemplates))
	must(c.Provide(newEmailService))
	must(c.Provide(newFileStore))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newCourseworkService))
	must(c.Provide(dashboard.NewService))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
