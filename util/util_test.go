package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderString(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		data    Data
		want    string
		wantErr bool
	}{
		{"plain", "echo hi", nil, "echo hi", false},
		{"param", "ls {{.SOURCE_DIR}}", Data{"SOURCE_DIR": "/data/source"}, "ls /data/source", false},
		{"missing key", "ls {{.NOPE}}", Data{}, "", true},
		{"bad syntax", "ls {{.X", Data{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderString(tt.tmpl, tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := Home()
	require.NoError(t, err)

	got, err := ExpandHome("~/.ssh/id_rsa")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".ssh/id_rsa"), got)

	got, err = ExpandHome("/etc/hosts")
	require.NoError(t, err)
	assert.Equal(t, "/etc/hosts", got)
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, `"plain"`, ShellQuote("plain"))
	assert.Equal(t, `"say \"hi\""`, ShellQuote(`say "hi"`))
	assert.Equal(t, `""`, ShellQuote(""))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "42", ToString(42))
	assert.Equal(t, "true", ToString(true))
}

func TestContainsAndDuplicates(t *testing.T) {
	seq := []string{"download", "transform", "upload", "transform", "download", "transform"}
	assert.True(t, ContainsString(seq, "upload"))
	assert.False(t, ContainsString(seq, "validation"))
	assert.Equal(t, []string{"transform", "download"}, Duplicates(seq))
	assert.Empty(t, Duplicates([]string{"a", "b"}))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty("", ""))
}
