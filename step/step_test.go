package step

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuntime struct {
	params map[string]interface{}
}

func (f *fakeRuntime) Context() context.Context { return context.Background() }
func (f *fakeRuntime) Get(key string) (interface{}, bool) {
	v, ok := f.params[key]
	return v, ok
}
func (f *fakeRuntime) GetString(key string) string {
	v := f.params[key]
	return fmt.Sprint(v)
}
func (f *fakeRuntime) Set(key string, value interface{}) error {
	f.params[key] = value
	return nil
}
func (f *fakeRuntime) Save(key string, value interface{}) error { return f.Set(key, value) }
func (f *fakeRuntime) Environ() []string                        { return nil }
func (f *fakeRuntime) Exit() error                              { return ErrExit }
func (f *fakeRuntime) Log() *logrus.Entry                       { return logrus.NewEntry(logrus.New()) }
func (f *fakeRuntime) WorkDir() string                          { return "." }

func TestNewWithOptions(t *testing.T) {
	body := BodyFunc(func(rt Runtime) error { return nil })
	s := New("transform", WithRestartable(true), WithDescription("map rows"), WithBody(body))

	assert.Equal(t, "transform", s.Name)
	assert.True(t, s.Restartable)
	assert.Equal(t, "map rows", s.Description)
	assert.NotNil(t, s.Body)
	assert.False(t, s.Ran)
	assert.False(t, s.Finished)

	plain := New("download")
	assert.False(t, plain.Restartable)
	assert.Nil(t, plain.Body)
}

func TestReset(t *testing.T) {
	s := New("upload")
	s.Ran, s.Finished = true, true
	s.Reset()
	assert.False(t, s.Ran)
	assert.False(t, s.Finished)
}

func TestExecute(t *testing.T) {
	rt := &fakeRuntime{params: map[string]interface{}{}}
	boom := errors.New("boom")

	tests := []struct {
		name    string
		body    Body
		wantErr error
	}{
		{name: "nil body is a no-op"},
		{name: "success", body: BodyFunc(func(rt Runtime) error { return rt.Set("K", 1) })},
		{name: "failure", body: BodyFunc(func(rt Runtime) error { return boom }), wantErr: boom},
		{name: "voluntary exit", body: BodyFunc(func(rt Runtime) error { return rt.Exit() }), wantErr: ErrExit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New("s", WithBody(tt.body)).Execute(rt)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestExecuteRecoversPanic(t *testing.T) {
	s := New("es_load", WithBody(BodyFunc(func(rt Runtime) error {
		panic("index missing")
	})))
	err := s.Execute(&fakeRuntime{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index missing")
	assert.Contains(t, err.Error(), "es_load")
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("bogus", "not part of the sequence %v", []string{"a"})
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Equal(t, "configuration error in step bogus: not part of the sequence [a]", err.Error())

	wrapped := errors.Wrap(err, "register")
	assert.True(t, errors.Is(wrapped, ErrConfiguration))
	var ce *ConfigurationError
	require.True(t, errors.As(wrapped, &ce))
	assert.Equal(t, "bogus", ce.Step)

	assert.Equal(t, "configuration error: no steps", (&ConfigurationError{Reason: "no steps"}).Error())
	assert.False(t, errors.Is(ErrExit, ErrConfiguration))
}
