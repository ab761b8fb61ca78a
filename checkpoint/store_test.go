package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "setup.json"))
	attempt := time.Unix(1700000000, 0)

	in := &Snapshot{
		Ran:                 true,
		Error:               true,
		LastAttempt:         attempt,
		CurrentFullRunStart: attempt,
		Steps: []StepRecord{
			{Name: "download", Ran: true, Finished: true},
			{Name: "transform", Ran: true},
			{Name: "upload"},
		},
		Params: map[string]interface{}{"LOGIN": "bob", "BATCH": 42},
	}
	require.NoError(t, store.Save(in))

	out, err := store.Load()
	require.NoError(t, err)
	assert.True(t, out.Ran)
	assert.True(t, out.Error)
	assert.False(t, out.Bail)
	assert.True(t, out.LastAttempt.Equal(attempt))
	assert.True(t, out.LastSuccessfulStart.IsZero())
	assert.True(t, out.LastFullRunStart.IsZero())
	assert.Equal(t, in.Steps, out.Steps)
	assert.Equal(t, "bob", out.Params["LOGIN"])
	assert.Equal(t, json.Number("42"), out.Params["BATCH"])

	rec, ok := out.Step("transform")
	require.True(t, ok)
	assert.False(t, rec.Finished)
	_, ok = out.Step("nope")
	assert.False(t, ok)
}

func TestSaveWritesDocumentedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setup.json")
	require.NoError(t, NewFileStore(path).Save(&Snapshot{LastAttempt: time.Unix(10, 0)}))

	raw := map[string]map[string]interface{}{}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))

	app := raw["application"]
	assert.Equal(t, float64(10), app["last_attempt"])
	assert.Nil(t, app["last_successful_start"])
	assert.Contains(t, app, "last_successful_finish")
	assert.Equal(t, []interface{}{}, app["steps"])
	assert.Equal(t, map[string]interface{}{}, raw["params"])
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) *FileStore {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		return NewFileStore(p)
	}

	tests := []struct {
		name  string
		store *FileStore
		want  error
	}{
		{"missing", NewFileStore(filepath.Join(dir, "absent.json")), ErrNotFound},
		{"empty", write("empty.json", ""), ErrEmpty},
		{"whitespace", write("blank.json", "  \n"), ErrEmpty},
		{"no application", write("noapp.json", `{"params":{}}`), ErrEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.store.Load()
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := write("bad.json", "{not json").Load()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmpty))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestLoadWithoutBailField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setup.json")
	legacy := `{"application":{"ran":true,"error":false,"last_attempt":5,"last_successful_start":5,
"last_successful_finish":6,"last_full_run_start":null,"current_full_run_start":null,
"steps":[{"name":"download","ran":true,"finished":true}]},"params":{"X":"1"}}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	s, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.False(t, s.Bail)
	assert.Equal(t, int64(6), s.LastSuccessfulFinish.Unix())
	assert.True(t, s.CurrentFullRunStart.IsZero())
	assert.Len(t, s.Steps, 1)
}

func TestSaveNil(t *testing.T) {
	assert.Error(t, NewFileStore(filepath.Join(t.TempDir(), "x.json")).Save(nil))
}
