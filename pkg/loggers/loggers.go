package loggers

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-vault/pkg/repo"
)

const (
	App     = "app"
	Storage = "storage"
	Ledger  = "ledger"
	Vault   = "vault"
	Keeper  = "keeper"
	API     = "api"
)

var w = &LoggerWrapper{
	loggers: map[string]*logrus.Entry{
		App:     newWithModule(App, logrus.InfoLevel, defaultFormatter()),
		Storage: newWithModule(Storage, logrus.InfoLevel, defaultFormatter()),
		Ledger:  newWithModule(Ledger, logrus.InfoLevel, defaultFormatter()),
		Vault:   newWithModule(Vault, logrus.InfoLevel, defaultFormatter()),
		Keeper:  newWithModule(Keeper, logrus.InfoLevel, defaultFormatter()),
		API:     newWithModule(API, logrus.InfoLevel, defaultFormatter()),
	},
}

type LoggerWrapper struct {
	loggers map[string]*logrus.Entry
}

func defaultFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000",
	}
}

func newWithModule(module string, level logrus.Level, formatter logrus.Formatter) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(level)
	logger.SetFormatter(formatter)
	return logger.WithField("module", module)
}

func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func Initialize(config *repo.Config) {
	formatter := &logrus.TextFormatter{
		ForceColors:      config.Log.EnableColor,
		DisableColors:    !config.Log.EnableColor,
		DisableTimestamp: config.Log.DisableTimestamp,
		FullTimestamp:    true,
		TimestampFormat:  "2006-01-02T15:04:05.000",
	}

	m := make(map[string]*logrus.Entry)
	m[App] = newWithModule(App, parseLevel(config.Log.Level), formatter)
	m[Storage] = newWithModule(Storage, parseLevel(config.Log.Module.Storage), formatter)
	m[Ledger] = newWithModule(Ledger, parseLevel(config.Log.Module.Ledger), formatter)
	m[Vault] = newWithModule(Vault, parseLevel(config.Log.Module.Vault), formatter)
	m[Keeper] = newWithModule(Keeper, parseLevel(config.Log.Module.Keeper), formatter)
	m[API] = newWithModule(API, parseLevel(config.Log.Module.API), formatter)
	for _, entry := range m {
		entry.Logger.SetReportCaller(config.Log.ReportCaller)
	}

	w = &LoggerWrapper{loggers: m}
}

func Logger(name string) logrus.FieldLogger {
	return w.loggers[name]
}
