// file_test.go
package file

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/mensylisir/xmetl/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	filePath := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), common.FileMode0755))
	require.NoError(t, os.WriteFile(filePath, content, common.FileMode0644))
	return filePath
}

func TestPathExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := createTestFile(t, tmpDir, "exists.txt", []byte("hello"))

	tests := []struct {
		name      string
		path      string
		wantExist bool
	}{
		{"existing file", existingFile, true},
		{"existing dir", tmpDir, true},
		{"non-existing path", filepath.Join(tmpDir, "nope.txt"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := PathExists(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantExist, exists)
		})
	}
}

func TestCreateDir(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b", "c")
	require.NoError(t, CreateDir(nested))
	require.NoError(t, CreateDir(nested), "creating an existing dir is a no-op")

	file := createTestFile(t, tmpDir, "plain.txt", nil)
	assert.Error(t, CreateDir(file), "a regular file is not a directory")
}

func TestWriteFileCreatesParents(t *testing.T) {
	target := filepath.Join(t.TempDir(), "x", "y", "out.json")
	require.NoError(t, WriteFile(target, []byte(`{}`)))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	require.NoError(t, WriteFile(target, []byte(`{"a":1}`)))
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data), "second write overwrites")
}

func TestWriteLines(t *testing.T) {
	target := filepath.Join(t.TempDir(), "workspace.prm")
	require.NoError(t, WriteLines(target, []string{"A=1", "B=2"}))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "A=1\nB=2\n", string(data))

	require.NoError(t, WriteLines(target, nil))
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestEmptyDir(t *testing.T) {
	tmpDir := t.TempDir()
	createTestFile(t, tmpDir, "a.csv", []byte("1"))
	createTestFile(t, tmpDir, filepath.Join("sub", "b.csv"), []byte("2"))

	require.NoError(t, EmptyDir(tmpDir))
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	exists, err := PathExists(tmpDir)
	require.NoError(t, err)
	assert.True(t, exists, "the directory itself is kept")

	assert.NoError(t, EmptyDir(filepath.Join(tmpDir, "missing")))
}

func TestTar(t *testing.T) {
	src := t.TempDir()
	createTestFile(t, src, "a.csv", []byte("alpha"))
	createTestFile(t, src, filepath.Join("nested", "b.csv"), []byte("beta"))

	tarball := filepath.Join(t.TempDir(), "out", "data.tar.gz")
	require.NoError(t, Tar(src, tarball))

	f, err := os.Open(tarball)
	require.NoError(t, err)
	defer f.Close()
	gr, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gr)

	var names []string
	contents := map[string]string{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
		if hdr.Typeflag == tar.TypeReg {
			b, err := io.ReadAll(tr)
			require.NoError(t, err)
			contents[hdr.Name] = string(b)
		}
	}
	sort.Strings(names)
	assert.Equal(t, []string{"a.csv", "nested/", "nested/b.csv"}, names)
	assert.Equal(t, "alpha", contents["a.csv"])
	assert.Equal(t, "beta", contents["nested/b.csv"])
}
