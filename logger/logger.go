package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/acntech/easycontainers-sub002/common"
)

// Log is the global logger instance.
var Log *ECLog

func init() {
	// Default console logger so packages can log before InitGlobalLogger runs.
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.SetOutput(os.Stdout)
	l.SetFormatter(&Formatter{
		TimestampFormat:        "15:04:05",
		DisplayLevelName:       ShowAll,
		DisableCaller:          true,
		FieldsDisplayWithOrder: defaultFieldsOrder(),
	})
	Log = &ECLog{Logger: l}
}

// ECLog wraps logrus.Logger for application-specific logging.
type ECLog struct {
	*logrus.Logger
}

func defaultFieldsOrder() []string {
	return []string{common.HostName, common.SessionName, common.OperationName}
}

// InitGlobalLogger reconfigures the global Log variable. When outputPath is
// non-empty, log files are written there with daily rotation; otherwise logs
// go to the console.
func InitGlobalLogger(outputPath string, verbose bool, defaultLevel logrus.Level) error {
	logger := logrus.New()

	currentLogLevel := defaultLevel
	if verbose {
		currentLogLevel = logrus.DebugLevel
	}
	logger.SetLevel(currentLogLevel)
	logger.SetReportCaller(true)

	displayLevel := ShowAboveWarn
	if verbose {
		displayLevel = ShowAll
	}

	if outputPath != "" {
		if err := os.MkdirAll(outputPath, 0755); err != nil {
			return fmt.Errorf("failed to create log output directory %s: %w", outputPath, err)
		}
		logFilePath := filepath.Join(outputPath, "app.log")

		writer, err := rotatelogs.New(
			logFilePath+".%Y%m%d",
			rotatelogs.WithLinkName(logFilePath),
			rotatelogs.WithMaxAge(7*24*time.Hour),
			rotatelogs.WithRotationTime(24*time.Hour),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize rotatelogs for %s: %w", logFilePath, err)
		}

		fileFormatter := &Formatter{
			TimestampFormat:        "2006-01-02 15:04:05.000 MST",
			NoColors:               true,
			DisplayLevelName:       displayLevel,
			FieldsDisplayWithOrder: defaultFieldsOrder(),
			CustomCallerFormatter: func(frame *runtime.Frame) string {
				return fmt.Sprintf(" [%s:%d %s]", filepath.Base(frame.File), frame.Line, filepath.Base(frame.Function))
			},
		}
		logger.SetFormatter(fileFormatter)

		logWriters := lfshook.WriterMap{}
		for _, level := range logrus.AllLevels {
			if logger.IsLevelEnabled(level) {
				logWriters[level] = writer
			}
		}
		if len(logWriters) > 0 {
			logger.Hooks.Add(lfshook.NewHook(logWriters, fileFormatter))
			// The hook owns file output; drop the default stream.
			logger.SetOutput(io.Discard)
		}
	} else {
		logger.SetFormatter(&Formatter{
			TimestampFormat:        "15:04:05",
			DisplayLevelName:       displayLevel,
			DisableCaller:          true,
			FieldsDisplayWithOrder: defaultFieldsOrder(),
		})
		logger.SetOutput(os.Stdout)
	}

	Log = &ECLog{Logger: logger}
	return nil
}

func (el *ECLog) withContext(fixedFields logrus.Fields, dynamicFields ...logrus.Fields) *logrus.Entry {
	entry := el.Logger.WithFields(fixedFields)
	if len(dynamicFields) > 0 && dynamicFields[0] != nil {
		entry = entry.WithFields(dynamicFields[0])
	}
	return entry
}

// --- Host context logging ---

func (el *ECLog) DebugfHost(host string, format string, args ...interface{}) {
	el.withContext(logrus.Fields{common.HostName: host}).Debugf(format, args...)
}

func (el *ECLog) InfofHost(host string, format string, args ...interface{}) {
	el.withContext(logrus.Fields{common.HostName: host}).Infof(format, args...)
}

func (el *ECLog) WarnfHost(host string, format string, args ...interface{}) {
	el.withContext(logrus.Fields{common.HostName: host}).Warnf(format, args...)
}

func (el *ECLog) ErrorfHost(host string, err error, format string, args ...interface{}) {
	fixedFields := logrus.Fields{common.HostName: host}
	if err != nil {
		fixedFields["error"] = err
	}
	el.withContext(fixedFields).Errorf(format, args...)
}

// --- Session context logging ---

func (el *ECLog) DebugfSession(sessionID string, format string, args ...interface{}) {
	el.withContext(logrus.Fields{common.SessionName: sessionID}).Debugf(format, args...)
}

func (el *ECLog) InfofSession(sessionID string, format string, args ...interface{}) {
	el.withContext(logrus.Fields{common.SessionName: sessionID}).Infof(format, args...)
}

func (el *ECLog) WarnfSession(sessionID string, format string, args ...interface{}) {
	el.withContext(logrus.Fields{common.SessionName: sessionID}).Warnf(format, args...)
}

func (el *ECLog) ErrorfSession(sessionID string, err error, format string, args ...interface{}) {
	fixedFields := logrus.Fields{common.SessionName: sessionID}
	if err != nil {
		fixedFields["error"] = err
	}
	el.withContext(fixedFields).Errorf(format, args...)
}

// --- Operation context logging ---

func (el *ECLog) DebugfOperation(op string, format string, args ...interface{}) {
	el.withContext(logrus.Fields{common.OperationName: op}).Debugf(format, args...)
}

func (el *ECLog) InfofOperation(op string, format string, args ...interface{}) {
	el.withContext(logrus.Fields{common.OperationName: op}).Infof(format, args...)
}

func (el *ECLog) ErrorfOperation(op string, err error, format string, args ...interface{}) {
	fixedFields := logrus.Fields{common.OperationName: op}
	if err != nil {
		fixedFields["error"] = err
	}
	el.withContext(fixedFields).Errorf(format, args...)
}
