package transfer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newInMemory connects a client to an in-memory sftp server.
func newInMemory(t *testing.T) (*SFTP, *sftp.Client) {
	t.Helper()
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()
	server := sftp.NewRequestServer(struct {
		io.Reader
		io.WriteCloser
	}{sr, sw}, sftp.InMemHandler())
	go server.Serve() //nolint:errcheck

	client, err := sftp.NewClientPipe(cr, cw)
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })
	return NewSFTP(client), client
}

func readRemote(t *testing.T, c *sftp.Client, p string) string {
	t.Helper()
	f, err := c.Open(p)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return string(data)
}

func TestUploadFile(t *testing.T) {
	up, client := newInMemory(t)
	local := filepath.Join(t.TempDir(), "data.tar.gz")
	require.NoError(t, os.WriteFile(local, []byte("payload"), 0644))

	require.NoError(t, up.Upload(context.Background(), local, "/incoming/crm"))
	assert.Equal(t, "payload", readRemote(t, client, "/incoming/crm/data.tar.gz"))
	require.NoError(t, up.Close())
	assert.Error(t, up.Upload(context.Background(), local, "/incoming"), "closed uploader")
}

func TestUploadDirectory(t *testing.T) {
	up, client := newInMemory(t)
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.csv"), []byte("b"), 0644))

	require.NoError(t, up.Upload(context.Background(), dir, "/incoming"))
	assert.Equal(t, "a", readRemote(t, client, "/incoming/out/a.csv"))
	assert.Equal(t, "b", readRemote(t, client, "/incoming/out/nested/b.csv"))
}

func TestUploadMissingLocal(t *testing.T) {
	up, _ := newInMemory(t)
	assert.Error(t, up.Upload(context.Background(), filepath.Join(t.TempDir(), "nope"), "/x"))
}

func TestUploadCancelled(t *testing.T) {
	up, _ := newInMemory(t)
	local := filepath.Join(t.TempDir(), "f.csv")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, up.Upload(ctx, local, "/x"), context.Canceled)
}

func TestValidateConfig(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "id_rsa")
	require.NoError(t, os.WriteFile(keyFile, []byte("KEY"), 0600))

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"no user", Config{Address: "h", Password: "p"}, true},
		{"no address", Config{Username: "u", Password: "p"}, true},
		{"no auth", Config{Username: "u", Address: "h"}, true},
		{"missing key file", Config{Username: "u", Address: "h", KeyFile: keyFile + ".missing"}, true},
		{"password", Config{Username: "u", Address: "h", Password: "p"}, false},
		{"key file", Config{Username: "u", Address: "h", KeyFile: keyFile}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := validateConfig(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, defaultPort, cfg.Port)
			assert.Equal(t, defaultTimeout, cfg.Timeout)
			if tt.cfg.KeyFile != "" {
				assert.Equal(t, "KEY", cfg.PrivateKey)
			}
		})
	}
}

func TestDialRejectsBadKey(t *testing.T) {
	_, err := Dial(Config{Username: "u", Address: "127.0.0.1", PrivateKey: "not a key"})
	assert.Error(t, err)
}
