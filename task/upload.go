package task

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmetl/file"
	"github.com/mensylisir/xmetl/step"
	"github.com/mensylisir/xmetl/transfer"
	"github.com/mensylisir/xmetl/util"
)

// ParamLastUpload records the remote path of the last upload.
const ParamLastUpload = "LAST_UPLOAD"

// Upload ships a local directory, optionally as a tarball, to a remote
// directory. LocalDir, RemoteDir and ArchiveName are parameter templates.
type Upload struct {
	Step        string
	LocalDir    string
	RemoteDir   string
	Archive     bool
	ArchiveName string
	Dial        transfer.Dialer
}

var _ step.Body = (*Upload)(nil)

// Execute implements step.Body.
func (u *Upload) Execute(rt step.Runtime) error {
	if u.Dial == nil {
		return step.NewConfigurationError(u.Step, "no transfer configured")
	}
	data := paramData(rt)
	localDir, err := util.RenderString(u.LocalDir, data)
	if err != nil {
		return step.NewConfigurationError(u.Step, "cannot render localDir: %v", err)
	}
	remoteDir, err := util.RenderString(u.RemoteDir, data)
	if err != nil {
		return step.NewConfigurationError(u.Step, "cannot render remoteDir: %v", err)
	}

	source := localDir
	if u.Archive {
		name := filepath.Base(localDir) + ".tar.gz"
		if u.ArchiveName != "" {
			if name, err = util.RenderString(u.ArchiveName, data); err != nil {
				return step.NewConfigurationError(u.Step, "cannot render archiveName: %v", err)
			}
		}
		tmp := util.FirstNonEmpty(rt.GetString("TEMP_DIR"), os.TempDir())
		source = filepath.Join(tmp, name)
		rt.Log().Infof("Archiving %s to %s", localDir, source)
		if err := file.Tar(localDir, source); err != nil {
			return errors.Wrapf(err, "archive %s", localDir)
		}
	}

	uploader, err := u.Dial()
	if err != nil {
		return errors.Wrap(err, "connect to transfer target")
	}
	defer func() {
		if cerr := uploader.Close(); cerr != nil {
			rt.Log().Warnf("Failed to close transfer connection: %v", cerr)
		}
	}()

	rt.Log().Infof("Uploading %s to %s", source, remoteDir)
	if err := uploader.Upload(rt.Context(), source, remoteDir); err != nil {
		return errors.Wrapf(err, "upload %s", source)
	}
	return rt.Set(ParamLastUpload, filepath.ToSlash(filepath.Join(remoteDir, filepath.Base(source))))
}
