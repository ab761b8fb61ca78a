package transfer

import (
	"context"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/mensylisir/xmetl/logger"
)

// Config describes the SFTP endpoint.
type Config struct {
	Username    string
	Password    string
	Address     string
	Port        int
	PrivateKey  string
	KeyFile     string
	AgentSocket string // a path, or "env:NAME" to read the path from $NAME
	Timeout     time.Duration
}

const (
	socketEnvPrefix = "env:"
	defaultPort     = 22
	defaultTimeout  = 30 * time.Second
)

// Uploader ships local files to a remote directory.
type Uploader interface {
	Upload(ctx context.Context, localPath, remoteDir string) error
	Close() error
}

// Dialer opens an Uploader on demand.
type Dialer func() (Uploader, error)

// SFTP is an Uploader over an SFTP session.
type SFTP struct {
	mu        sync.Mutex
	client    *sftp.Client
	sshClient *ssh.Client
	agentConn net.Conn
}

var _ Uploader = (*SFTP)(nil)

// NewSFTP wraps an established sftp client.
func NewSFTP(client *sftp.Client) *SFTP {
	return &SFTP{client: client}
}

// Dial connects with cfg.
func Dial(cfg Config) (*SFTP, error) {
	cfg, err := validateConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate sftp connection parameters")
	}

	s := &SFTP{}
	authMethods := make([]ssh.AuthMethod, 0)
	if len(cfg.Password) > 0 {
		authMethods = append(authMethods, ssh.Password(cfg.Password))
	}
	if len(cfg.PrivateKey) > 0 {
		signer, parseErr := ssh.ParsePrivateKey([]byte(cfg.PrivateKey))
		if parseErr != nil {
			return nil, errors.Wrap(parseErr, "the given SSH key could not be parsed")
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}
	if len(cfg.AgentSocket) > 0 {
		addr := cfg.AgentSocket
		if strings.HasPrefix(addr, socketEnvPrefix) {
			envName := strings.TrimPrefix(addr, socketEnvPrefix)
			if envAddr := os.Getenv(envName); len(envAddr) > 0 {
				addr = envAddr
			} else {
				logger.Log.Warnf("SSH Agent environment variable %s not found, using original socket string %s", envName, addr)
			}
		}
		var dialErr error
		s.agentConn, dialErr = net.Dial("unix", addr)
		if dialErr != nil {
			return nil, errors.Wrapf(dialErr, "could not open SSH agent socket %q", addr)
		}
		signers, signersErr := agent.NewClient(s.agentConn).Signers()
		if signersErr != nil {
			s.closeAgent()
			return nil, errors.Wrap(signersErr, "error when creating signer for SSH agent")
		}
		authMethods = append(authMethods, ssh.PublicKeys(signers...))
	}

	endpoint := net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port))
	client, err := ssh.Dial("tcp", endpoint, &ssh.ClientConfig{
		User:            cfg.Username,
		Timeout:         cfg.Timeout,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	})
	if err != nil {
		s.closeAgent()
		return nil, errors.Wrapf(err, "could not establish connection to %s", endpoint)
	}

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		_ = client.Close()
		s.closeAgent()
		return nil, errors.Wrap(err, "failed to create SFTP client")
	}
	s.sshClient = client
	s.client = sftpClient
	return s, nil
}

func validateConfig(cfg Config) (Config, error) {
	if len(cfg.Username) == 0 {
		return cfg, errors.New("no username specified for SFTP connection")
	}
	if len(cfg.Address) == 0 {
		return cfg, errors.New("no address specified for SFTP connection")
	}
	if len(cfg.Password) == 0 && len(cfg.PrivateKey) == 0 && len(cfg.KeyFile) == 0 && len(cfg.AgentSocket) == 0 {
		return cfg, errors.New("must specify at least one of password, private key, keyfile or agent socket")
	}
	if len(cfg.PrivateKey) == 0 && len(cfg.KeyFile) > 0 {
		content, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return cfg, errors.Wrapf(err, "failed to read keyfile %q", cfg.KeyFile)
		}
		cfg.PrivateKey = string(content)
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg, nil
}

// Upload copies localPath into remoteDir, keeping its base name. Directories
// are copied recursively.
func (s *SFTP) Upload(ctx context.Context, localPath, remoteDir string) error {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client == nil {
		return errors.New("sftp client is not initialized or connection is closed")
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return errors.Wrapf(err, "failed to stat local path %s", localPath)
	}
	if err := client.MkdirAll(remoteDir); err != nil {
		return errors.Wrapf(err, "sftp: failed to create remote directory %s", remoteDir)
	}
	target := path.Join(remoteDir, filepath.Base(localPath))
	if info.IsDir() {
		return s.uploadDir(ctx, client, localPath, target)
	}
	return copyFile(ctx, client, localPath, target)
}

func (s *SFTP) uploadDir(ctx context.Context, client *sftp.Client, localDir, remoteDir string) error {
	if err := client.MkdirAll(remoteDir); err != nil {
		return errors.Wrapf(err, "sftp: failed to create remote directory %s", remoteDir)
	}
	entries, err := os.ReadDir(localDir)
	if err != nil {
		return errors.Wrapf(err, "failed to read local directory %s", localDir)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		localEntryPath := filepath.Join(localDir, entry.Name())
		remoteEntryPath := path.Join(remoteDir, entry.Name())
		if entry.IsDir() {
			if err := s.uploadDir(ctx, client, localEntryPath, remoteEntryPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(ctx, client, localEntryPath, remoteEntryPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(ctx context.Context, client *sftp.Client, localPath, remotePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	srcFile, err := os.Open(localPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open local file %s", localPath)
	}
	defer srcFile.Close()

	dstFile, err := client.Create(remotePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create remote file %s via sftp", remotePath)
	}
	defer dstFile.Close()

	if srcFi, statErr := srcFile.Stat(); statErr == nil {
		if err := dstFile.Chmod(srcFi.Mode().Perm()); err != nil {
			logger.Log.Warnf("Failed to chmod remote file %s: %v", remotePath, err)
		}
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return errors.Wrapf(err, "sftp copy from %s to %s failed", localPath, remotePath)
	}
	logger.Log.Debugf("Uploaded %s to %s", localPath, remotePath)
	return nil
}

// Close ends the sftp session and the underlying ssh connection.
func (s *SFTP) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []string
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			errs = append(errs, "sftp close error: "+err.Error())
		}
		s.client = nil
	}
	if s.sshClient != nil {
		if err := s.sshClient.Close(); err != nil {
			errs = append(errs, "ssh close error: "+err.Error())
		}
		s.sshClient = nil
	}
	s.closeAgent()
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (s *SFTP) closeAgent() {
	if s.agentConn != nil {
		_ = s.agentConn.Close()
		s.agentConn = nil
	}
}
