package step

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Runtime is what a step body sees of the running pipeline.
type Runtime interface {
	// Context is the context given to Run or Restart.
	Context() context.Context
	// Get reads a live parameter.
	Get(key string) (interface{}, bool)
	// GetString reads a live parameter as a string; missing keys give "".
	GetString(key string) string
	// Set stores a live parameter and rewrites the workspace files.
	Set(key string, value interface{}) error
	// Save is Set plus persistence in the next checkpoint.
	Save(key string, value interface{}) error
	// Environ returns the parameters as KEY=value pairs.
	Environ() []string
	// Exit returns ErrExit; "return rt.Exit()" bails out of the run.
	Exit() error
	// Log is scoped to the pipeline, run and step.
	Log() *logrus.Entry
	// WorkDir is the project home directory.
	WorkDir() string
}
