package task

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/mensylisir/xmetl/param"
	"github.com/mensylisir/xmetl/step"
)

// testRuntime is a step.Runtime over a plain param.Store.
type testRuntime struct {
	ctx     context.Context
	params  *param.Store
	log     *logrus.Entry
	logHook *test.Hook
	workDir string
}

func newTestRuntime(t *testing.T, params map[string]interface{}) *testRuntime {
	t.Helper()
	log, hook := test.NewNullLogger()
	entry := logrus.NewEntry(log)
	store := param.NewStore(entry, nil)
	if err := store.SetAll(params); err != nil {
		t.Fatal(err)
	}
	return &testRuntime{ctx: context.Background(), params: store, log: entry, logHook: hook, workDir: t.TempDir()}
}

func (r *testRuntime) Context() context.Context             { return r.ctx }
func (r *testRuntime) Get(key string) (interface{}, bool)   { return r.params.Get(key) }
func (r *testRuntime) GetString(key string) string          { return r.params.GetString(key) }
func (r *testRuntime) Set(key string, v interface{}) error  { return r.params.Set(key, v, param.Silent()) }
func (r *testRuntime) Save(key string, v interface{}) error { return r.params.Save(key, v, param.Silent()) }
func (r *testRuntime) Environ() []string                    { return r.params.Environ() }
func (r *testRuntime) Exit() error                          { return step.ErrExit }
func (r *testRuntime) Log() *logrus.Entry                   { return r.log }
func (r *testRuntime) WorkDir() string                      { return r.workDir }
