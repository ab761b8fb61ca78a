package task

import (
	"github.com/pkg/errors"

	"github.com/mensylisir/xmetl/file"
	"github.com/mensylisir/xmetl/step"
)

// DefaultCleanupKeys are the data directories emptied when no keys are given.
var DefaultCleanupKeys = []string{"SOURCE_DIR", "ESTORE_OUT_DIR", "ESTORE_IN_DIR", "GOODDATA_DIR"}

// Cleanup empties the directories named by parameter keys.
type Cleanup struct {
	Step string
	Keys []string
}

var _ step.Body = (*Cleanup)(nil)

// NewCleanup creates a clean-up body.
func NewCleanup(stepName string, keys ...string) *Cleanup {
	if len(keys) == 0 {
		keys = DefaultCleanupKeys
	}
	return &Cleanup{Step: stepName, Keys: keys}
}

// Execute implements step.Body.
func (c *Cleanup) Execute(rt step.Runtime) error {
	for _, key := range c.Keys {
		dir := rt.GetString(key)
		if dir == "" {
			return step.NewConfigurationError(c.Step, "parameter %s is not set", key)
		}
		if dir == "/" || dir == rt.WorkDir() {
			return step.NewConfigurationError(c.Step, "refusing to empty %s (%s)", key, dir)
		}
		rt.Log().Infof("Emptying %s (%s)", key, dir)
		if err := file.EmptyDir(dir); err != nil {
			return errors.Wrapf(err, "clean %s", key)
		}
	}
	return nil
}
