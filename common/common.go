package common

import (
	"io/fs"
)

const (
	AppName = "xmetl"
)

// Logger field keys, in display order.
const (
	PipelineName = "Pipeline"
	StepName     = "Step"
	RunID        = "RunID"
	HookName     = "Hook"
)

const (
	// FileMode0755 represents rwxr-xr-x
	FileMode0755 fs.FileMode = 0755
	// FileMode0644 represents rw-r--r--
	FileMode0644 fs.FileMode = 0644
	// FileMode0600 represents rw-------
	FileMode0600 fs.FileMode = 0600
)

// Default file names, resolved against the project home directory.
const (
	DefaultConfigFile         = "xmetl.yaml"
	DefaultCheckpointFile     = "setup.json"
	DefaultWorkspaceFile      = "workspace.prm"
	DefaultShellWorkspaceFile = "workspace.sh"
	DefaultLockFile           = "running.pid"
	DefaultLogDir             = "log"
	DefaultToolsRoot          = "/mnt/ms/tools"
)

// Step names of the default ETL sequence.
const (
	StepCleanUp        = "clean_up"
	StepDownload       = "download"
	StepPreformat      = "preformat"
	StepPreESTransform = "pre_es_transform"
	StepESLoad         = "es_load"
	StepESExtract      = "es_extract"
	StepTransform      = "transform"
	StepUpload         = "upload"
	StepSyncUsers      = "sync_users"
	StepValidation     = "validation"
)

// DefaultSequence returns a fresh copy of the canonical step order.
func DefaultSequence() []string {
	return []string{
		StepCleanUp,
		StepDownload,
		StepPreformat,
		StepPreESTransform,
		StepESLoad,
		StepESExtract,
		StepTransform,
		StepUpload,
		StepSyncUsers,
		StepValidation,
	}
}

// Parameters published from the checkpoint on restore.
const (
	ParamLastAttempt          = "LAST_ATTEMPT"
	ParamLastSuccessfulStart  = "LAST_SUCCESSFUL_START"
	ParamLastSuccessfulFinish = "LAST_SUCCESSFUL_FINISH"
	ParamLastFullRunStart     = "LAST_FULL_RUN_START"
	ParamCurrentFullRunStart  = "CURRENT_FULL_RUN_START"
)
