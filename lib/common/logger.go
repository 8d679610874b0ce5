package common

import (
	"fmt"
	"github.com/lni/dragonboat/v4/logger"
	"log"
	"os"
	"strings"
	"sync"
)

// Components lists the logger names used throughout cqlbench
var Components = []string{"workload", "seed", "cql", "gocql", "stats", "cmd"}

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// benchLogger implements the ILogger interface with custom formatting
type benchLogger struct {
	name   string
	level  logger.LogLevel
	logger *log.Logger
}

func (l *benchLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *benchLogger) Debugf(format string, args ...interface{}) {
	if l.level >= logger.DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *benchLogger) Infof(format string, args ...interface{}) {
	if l.level >= logger.INFO {
		l.log("INFO", format, args...)
	}
}

func (l *benchLogger) Warningf(format string, args ...interface{}) {
	if l.level >= logger.WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *benchLogger) Errorf(format string, args ...interface{}) {
	if l.level >= logger.ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *benchLogger) Panicf(format string, args ...interface{}) {
	if l.level >= logger.CRITICAL {
		panic(fmt.Sprintf(format, args...))
	}
}

func (l *benchLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-8s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// CreateLogger implements the dragonboat logger.Factory
func CreateLogger(pkgName string) logger.ILogger {
	stdLogger := log.New(os.Stdout, "", log.Ldate|log.Ltime|log.Lmicroseconds)

	return &benchLogger{
		name:   pkgName,
		level:  logger.INFO,
		logger: stdLogger,
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.INFO, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

var factoryOnce sync.Once

// InitLoggers installs the cqlbench logger factory (once per process) and
// sets the level of every component.
func InitLoggers(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	// dragonboat only accepts a single factory per process
	factoryOnce.Do(func() {
		logger.SetLoggerFactory(CreateLogger)
	})

	for _, name := range Components {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
