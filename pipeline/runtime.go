package pipeline

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmetl/step"
)

// stepRuntime is the step.Runtime handed to a body.
type stepRuntime struct {
	ctx context.Context
	o   *Orchestrator
	log *logrus.Entry
}

var _ step.Runtime = (*stepRuntime)(nil)

func (r *stepRuntime) Context() context.Context { return r.ctx }

func (r *stepRuntime) Get(key string) (interface{}, bool) { return r.o.params.Get(key) }

func (r *stepRuntime) GetString(key string) string { return r.o.params.GetString(key) }

func (r *stepRuntime) Set(key string, value interface{}) error { return r.o.params.Set(key, value) }

func (r *stepRuntime) Save(key string, value interface{}) error { return r.o.params.Save(key, value) }

func (r *stepRuntime) Environ() []string { return r.o.params.Environ() }

func (r *stepRuntime) Exit() error { return step.ErrExit }

func (r *stepRuntime) Log() *logrus.Entry { return r.log }

func (r *stepRuntime) WorkDir() string { return r.o.workDir }
