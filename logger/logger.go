// logger.go
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

	"github.com/mensylisir/xmetl/common"
)

// Log is the global logger instance of XMLog.
var Log *XMLog

func init() {
	Log, _ = New(Options{})
}

// XMLog wraps logrus.Logger for application-specific logging.
type XMLog struct {
	*logrus.Logger
}

// Options configures a new XMLog.
type Options struct {
	// Dir enables daily rotated file logging under Dir; console output is discarded then.
	Dir string
	// FileName is the base name of the log file inside Dir. Default: "xmetl.log".
	FileName string
	// Verbose forces debug level and shows every level name.
	Verbose bool
	// Level is used when Verbose is false. Nil means info.
	Level *logrus.Level
	// Output overrides the console writer. Default: os.Stdout.
	Output io.Writer
	// MaxAge of rotated files. Default: 7 days.
	MaxAge time.Duration
}

var defaultFieldsOrder = []string{
	common.PipelineName, common.RunID, common.StepName, common.HookName,
}

// New creates a logger from opts.
func New(opts Options) (*XMLog, error) {
	logger := logrus.New()

	level := logrus.InfoLevel
	if opts.Level != nil {
		level = *opts.Level
	}
	displayLevel := ShowAboveWarn
	if opts.Verbose {
		level = logrus.DebugLevel
		displayLevel = ShowAll
	}
	logger.SetLevel(level)

	if opts.Dir == "" {
		logger.SetFormatter(&Formatter{
			TimestampFormat:        "15:04:05",
			DisplayLevelName:       displayLevel,
			DisableCaller:          true,
			FieldsDisplayWithOrder: defaultFieldsOrder,
		})
		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		logger.SetOutput(out)
		return &XMLog{Logger: logger}, nil
	}

	if err := os.MkdirAll(opts.Dir, common.FileMode0755); err != nil {
		return nil, fmt.Errorf("failed to create log output directory %s: %w", opts.Dir, err)
	}
	name := opts.FileName
	if name == "" {
		name = common.AppName + ".log"
	}
	maxAge := opts.MaxAge
	if maxAge == 0 {
		maxAge = 7 * 24 * time.Hour
	}
	logFilePath := filepath.Join(opts.Dir, name)
	writer, err := rotatelogs.New(
		logFilePath+".%Y%m%d",
		rotatelogs.WithLinkName(logFilePath),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rotatelogs for %s: %w", logFilePath, err)
	}

	logger.SetReportCaller(true)
	fileFormatter := &Formatter{
		TimestampFormat:        "2006-01-02 15:04:05.000 MST",
		NoColors:               true,
		DisplayLevelName:       ShowAll,
		FieldsDisplayWithOrder: defaultFieldsOrder,
		CustomCallerFormatter: func(frame *runtime.Frame) string {
			return fmt.Sprintf("[%s:%d]", filepath.Base(frame.File), frame.Line)
		},
	}
	logger.SetFormatter(fileFormatter)

	writers := lfshook.WriterMap{}
	for _, l := range logrus.AllLevels {
		if logger.IsLevelEnabled(l) {
			writers[l] = writer
		}
	}
	logger.Hooks.Add(lfshook.NewHook(writers, fileFormatter))
	logger.SetOutput(io.Discard)

	return &XMLog{Logger: logger}, nil
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *XMLog {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &XMLog{Logger: logger}
}

// Pipeline returns an entry scoped to a pipeline.
func (xl *XMLog) Pipeline(name string) *logrus.Entry {
	return xl.WithField(common.PipelineName, name)
}

// StepEntry scopes an existing entry to a step.
func StepEntry(entry *logrus.Entry, stepName string) *logrus.Entry {
	return entry.WithField(common.StepName, stepName)
}
