package config

import (
	"fmt"
	"time"

	"github.com/mensylisir/xmetl/util"
)

// Config is the top-level project configuration (xmetl.yaml).
type Config struct {
	Name               string                 `yaml:"name"`
	HomeDir            string                 `yaml:"homeDir,omitempty"`
	ToolsRoot          string                 `yaml:"toolsRoot,omitempty"`
	ProjectsRoot       string                 `yaml:"projectsRoot,omitempty"`
	CheckpointFile     string                 `yaml:"checkpointFile,omitempty"`
	WorkspaceFile      string                 `yaml:"workspaceFile,omitempty"`
	ShellWorkspaceFile string                 `yaml:"shellWorkspaceFile,omitempty"`
	LockFile           string                 `yaml:"lockFile,omitempty"`
	Sequence           []string               `yaml:"sequence,omitempty"`
	Params             map[string]interface{} `yaml:"params,omitempty"`
	Log                LogSpec                `yaml:"log,omitempty"`
	Steps              []StepSpec             `yaml:"steps,omitempty"`
	Transfer           *TransferSpec          `yaml:"transfer,omitempty"`
	AfterSuccess       []string               `yaml:"afterSuccess,omitempty"`
	AfterFailure       []string               `yaml:"afterFailure,omitempty"`
}

// LogSpec configures logging.
type LogSpec struct {
	Dir     string `yaml:"dir,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
	Level   string `yaml:"level,omitempty"` // logrus level name
}

// StepSpec binds a body to a step of the sequence. At most one of Command,
// Cleanup and Upload is set; none gives a no-op step.
type StepSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Restartable bool   `yaml:"restartable,omitempty"`
	Command     string `yaml:"command,omitempty"`
	// BailExitCode turns that exit status of Command into a voluntary exit.
	BailExitCode int         `yaml:"bailExitCode,omitempty"`
	Cleanup      []string    `yaml:"cleanup,omitempty"` // parameter keys naming directories
	Upload       *UploadSpec `yaml:"upload,omitempty"`
}

// Kind names the body type of the step.
func (s StepSpec) Kind() string {
	switch {
	case s.Command != "":
		return "command"
	case len(s.Cleanup) > 0:
		return "cleanup"
	case s.Upload != nil:
		return "upload"
	default:
		return "noop"
	}
}

// UploadSpec describes a directory shipped to the SFTP target.
// Both paths are templates rendered against the parameters.
type UploadSpec struct {
	LocalDir  string `yaml:"localDir"`
	RemoteDir string `yaml:"remoteDir"`
	Archive   bool   `yaml:"archive,omitempty"`
	// ArchiveName is a template; it defaults to the base name of LocalDir
	// plus ".tar.gz".
	ArchiveName string `yaml:"archiveName,omitempty"`
}

// TransferSpec is the SFTP endpoint for upload steps.
type TransferSpec struct {
	Address        string        `yaml:"address"`
	Port           int           `yaml:"port,omitempty"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password,omitempty"`
	PrivateKeyPath string        `yaml:"privateKeyPath,omitempty"`
	AgentSocket    string        `yaml:"agentSocket,omitempty"`
	Timeout        time.Duration `yaml:"timeout,omitempty"`
}

// Validate checks the structure after SetDefaults.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config validation failed: name is a required field")
	}
	if len(c.Sequence) == 0 {
		return fmt.Errorf("config validation failed: sequence cannot be empty")
	}
	if dup := util.Duplicates(c.Sequence); len(dup) > 0 {
		return fmt.Errorf("config validation failed: sequence lists %v more than once", dup)
	}

	seen := make(map[string]bool, len(c.Steps))
	needsTransfer := false
	for i, s := range c.Steps {
		if s.Name == "" {
			return fmt.Errorf("config validation failed: steps[%d] has no name", i)
		}
		if !util.ContainsString(c.Sequence, s.Name) {
			return fmt.Errorf("config validation failed: step %s is not part of the sequence %v", s.Name, c.Sequence)
		}
		if seen[s.Name] {
			return fmt.Errorf("config validation failed: step %s is defined more than once", s.Name)
		}
		seen[s.Name] = true

		actions := 0
		if s.Command != "" {
			actions++
		}
		if len(s.Cleanup) > 0 {
			actions++
		}
		if s.Upload != nil {
			actions++
			needsTransfer = true
			if s.Upload.LocalDir == "" || s.Upload.RemoteDir == "" {
				return fmt.Errorf("config validation failed: step %s upload needs localDir and remoteDir", s.Name)
			}
		}
		if actions > 1 {
			return fmt.Errorf("config validation failed: step %s sets more than one of command, cleanup, upload", s.Name)
		}
		if s.BailExitCode < 0 || s.BailExitCode > 255 {
			return fmt.Errorf("config validation failed: step %s bailExitCode %d out of range 1-255", s.Name, s.BailExitCode)
		}
		if s.BailExitCode != 0 && s.Command == "" {
			return fmt.Errorf("config validation failed: step %s sets bailExitCode without a command", s.Name)
		}
	}

	if needsTransfer && c.Transfer == nil {
		return fmt.Errorf("config validation failed: upload steps need a transfer section")
	}
	if t := c.Transfer; t != nil {
		if t.Address == "" || t.User == "" {
			return fmt.Errorf("config validation failed: transfer needs address and user")
		}
		if t.Port < 1 || t.Port > 65535 {
			return fmt.Errorf("config validation failed: transfer port %d is invalid", t.Port)
		}
	}
	return nil
}

// Step returns the StepSpec named name.
func (c *Config) Step(name string) (StepSpec, bool) {
	for _, s := range c.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepSpec{}, false
}
