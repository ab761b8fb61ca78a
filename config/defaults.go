package config

import (
	"fmt"
	"path/filepath"

	"github.com/mensylisir/xmetl/common"
	"github.com/mensylisir/xmetl/util"
)

// Define default constants
const (
	DefaultName         = common.AppName
	DefaultSFTPPort     = 22
	DefaultLogLevel     = "info"
	DefaultProjectsRoot = "/mnt/projects"
)

// Default returns a configuration rooted at homeDir with every default applied.
func Default(homeDir string) (*Config, error) {
	cfg := &Config{HomeDir: homeDir}
	if err := cfg.SetDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaults fills empty fields and resolves relative paths against HomeDir.
func (c *Config) SetDefaults() error {
	if c.HomeDir == "" {
		c.HomeDir = "."
	}
	home, err := util.ExpandHome(c.HomeDir)
	if err != nil {
		return fmt.Errorf("failed to expand home directory %s: %w", c.HomeDir, err)
	}
	if c.HomeDir, err = filepath.Abs(home); err != nil {
		return fmt.Errorf("failed to resolve home directory %s: %w", home, err)
	}

	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.ToolsRoot == "" {
		c.ToolsRoot = common.DefaultToolsRoot
	}
	if c.ProjectsRoot == "" {
		c.ProjectsRoot = DefaultProjectsRoot
	}
	paths := []struct {
		field *string
		def   string
	}{
		{&c.CheckpointFile, common.DefaultCheckpointFile},
		{&c.WorkspaceFile, common.DefaultWorkspaceFile},
		{&c.ShellWorkspaceFile, common.DefaultShellWorkspaceFile},
		{&c.LockFile, common.DefaultLockFile},
		{&c.Log.Dir, common.DefaultLogDir},
	}
	for _, p := range paths {
		resolved, err := c.resolve(util.FirstNonEmpty(*p.field, p.def))
		if err != nil {
			return err
		}
		*p.field = resolved
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if len(c.Sequence) == 0 {
		c.Sequence = common.DefaultSequence()
	}
	if c.Params == nil {
		c.Params = make(map[string]interface{})
	}

	if t := c.Transfer; t != nil {
		if t.Port == 0 {
			t.Port = DefaultSFTPPort
		}
		if t.PrivateKeyPath != "" {
			if t.PrivateKeyPath, err = util.ExpandHome(t.PrivateKeyPath); err != nil {
				return fmt.Errorf("failed to expand private key path: %w", err)
			}
		}
	}
	return nil
}

func (c *Config) resolve(p string) (string, error) {
	expanded, err := util.ExpandHome(p)
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", p, err)
	}
	if filepath.IsAbs(expanded) {
		return expanded, nil
	}
	return filepath.Join(c.HomeDir, expanded), nil
}

// DefaultParams builds the directory parameters of a project, merged with
// the configured params. Configured values win.
func DefaultParams(c *Config) map[string]interface{} {
	project := c.HomeDir
	data := filepath.Join(project, "data")
	script := filepath.Join(project, "script")

	params := map[string]interface{}{
		"PROJECTS_ROOT":  c.ProjectsRoot,
		"TOOLS_DIR":      c.ToolsRoot,
		"PROJECT_DIR":    project,
		"LOG_PATH":       c.Log.Dir,
		"CONFIG_DIR":     filepath.Join(project, "config"),
		"ESTORE_DIR":     filepath.Join(project, "estore"),
		"GRAPH_DIR":      filepath.Join(project, "graph"),
		"META_DIR":       filepath.Join(project, "meta"),
		"SCRIPT_HOME":    filepath.Join(c.ToolsRoot, "script"),
		"DATA_DIR":       data,
		"SOURCE_DIR":     filepath.Join(data, "source"),
		"ESTORE_IN_DIR":  filepath.Join(data, "estore-in"),
		"ESTORE_OUT_DIR": filepath.Join(data, "estore-out"),
		"TRANSFORM_DIR":  filepath.Join(data, "transform"),
		"GOODDATA_DIR":   filepath.Join(data, "gooddata"),
		"LOOKUP_DIR":     filepath.Join(data, "lookup"),
		"TEMP_DIR":       filepath.Join(data, "temp"),
		"SCRIPT_DIR":     script,
		"WORKSPACE_FILE": c.WorkspaceFile,
	}
	for k, v := range c.Params {
		params[k] = v
	}
	return params
}
