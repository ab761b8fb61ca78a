package logger

import (
	"bytes"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultFieldSeparator  = " | "
	defaultTimestampFormat = time.RFC3339
)

// LevelNameDisplayMode defines how log level names are displayed.
type LevelNameDisplayMode int

const (
	// ShowAll shows all level names.
	ShowAll LevelNameDisplayMode = iota
	// ShowAboveWarn shows level names for WARN, ERROR, FATAL, PANIC.
	ShowAboveWarn
	// HideAll hides all level names.
	HideAll
)

// Formatter implements logrus.Formatter.
//
// Layout: "<time> [LEVL] [k:v | k:v] message (caller)".
type Formatter struct {
	TimestampFormat  string
	NoColors         bool
	DisplayLevelName LevelNameDisplayMode
	// FieldsDisplayWithOrder lists keys printed first; the rest follow alphabetically.
	FieldsDisplayWithOrder []string
	FieldSeparator         string
	DisableCaller          bool
	CustomCallerFormatter  func(*runtime.Frame) string
}

// Format formats the log entry.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := &bytes.Buffer{}

	tsFormat := f.TimestampFormat
	if tsFormat == "" {
		tsFormat = defaultTimestampFormat
	}
	b.WriteString(entry.Time.Format(tsFormat))
	b.WriteString(" ")

	if f.showLevel(entry.Level) {
		levelStr := strings.ToUpper(entry.Level.String())
		if len(levelStr) > 4 {
			levelStr = levelStr[:4]
		}
		if f.NoColors {
			fmt.Fprintf(b, "[%s] ", levelStr)
		} else {
			fmt.Fprintf(b, "\x1b[%dm[%s]\x1b[0m ", levelColor(entry.Level), levelStr)
		}
	}

	if len(entry.Data) > 0 {
		sep := f.FieldSeparator
		if sep == "" {
			sep = defaultFieldSeparator
		}
		b.WriteString("[")
		for i, key := range f.orderedKeys(entry.Data) {
			if i > 0 {
				b.WriteString(sep)
			}
			fmt.Fprintf(b, "%s:%v", key, entry.Data[key])
		}
		b.WriteString("] ")
	}

	b.WriteString(entry.Message)

	if !f.DisableCaller && entry.HasCaller() {
		b.WriteString(" ")
		if f.CustomCallerFormatter != nil {
			b.WriteString(f.CustomCallerFormatter(entry.Caller))
		} else {
			fmt.Fprintf(b, "(%s:%d)", filepath.Base(entry.Caller.File), entry.Caller.Line)
		}
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *Formatter) showLevel(level logrus.Level) bool {
	switch f.DisplayLevelName {
	case ShowAll:
		return true
	case ShowAboveWarn:
		return level <= logrus.WarnLevel
	default:
		return false
	}
}

func (f *Formatter) orderedKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	seen := make(map[string]bool, len(f.FieldsDisplayWithOrder))
	for _, k := range f.FieldsDisplayWithOrder {
		if _, ok := data[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(data)-len(keys))
	for k := range data {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func levelColor(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return 36
	case logrus.WarnLevel:
		return 33
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return 31
	default:
		return 37
	}
}
