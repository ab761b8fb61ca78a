package param

import (
	"github.com/pkg/errors"

	"github.com/mensylisir/xmetl/file"
	"github.com/mensylisir/xmetl/util"
)

// Workspace writes parameters to a KEY=value file and a shell-sourceable
// KEY="value" file. An empty path skips that file.
type Workspace struct {
	Path      string
	ShellPath string
}

// NewWorkspace returns a Workspace writing to path and shellPath.
func NewWorkspace(path, shellPath string) *Workspace {
	return &Workspace{Path: path, ShellPath: shellPath}
}

// Materialize implements Materializer.
func (w *Workspace) Materialize(values map[string]interface{}) error {
	keys := sortedKeys(values)
	plain := make([]string, 0, len(keys))
	shell := make([]string, 0, len(keys))
	for _, k := range keys {
		v := util.ToString(values[k])
		plain = append(plain, k+"="+v)
		shell = append(shell, k+"="+util.ShellQuote(v))
	}
	if w.Path != "" {
		if err := file.WriteLines(w.Path, plain); err != nil {
			return errors.Wrap(err, "write workspace")
		}
	}
	if w.ShellPath != "" {
		if err := file.WriteLines(w.ShellPath, shell); err != nil {
			return errors.Wrap(err, "write shell workspace")
		}
	}
	return nil
}
