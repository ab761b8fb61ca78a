package param

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmetl/util"
)

// Materializer writes the current parameters somewhere external tools can
// read them.
type Materializer interface {
	Materialize(values map[string]interface{}) error
}

// SetOption tunes a single Set call.
type SetOption func(*setOptions)

type setOptions struct {
	silent bool
}

// Silent suppresses the info log line of a Set.
func Silent() SetOption {
	return func(o *setOptions) {
		o.silent = true
	}
}

// Store holds the live parameters and the subset saved into checkpoints.
// It is not safe for concurrent use; the pipeline is single threaded.
type Store struct {
	values       map[string]interface{}
	saved        map[string]interface{}
	materializer Materializer
	log          *logrus.Entry
}

// NewStore creates an empty store. m may be nil.
func NewStore(log *logrus.Entry, m Materializer) *Store {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Store{
		values:       make(map[string]interface{}),
		saved:        make(map[string]interface{}),
		materializer: m,
		log:          log,
	}
}

// Get returns the live value of key.
func (s *Store) Get(key string) (interface{}, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetString returns the live value of key rendered as a string.
func (s *Store) GetString(key string) string {
	return util.ToString(s.values[key])
}

// Set stores a live value and re-materializes the workspace.
func (s *Store) Set(key string, value interface{}, opts ...SetOption) error {
	if key == "" {
		return errors.New("parameter key cannot be empty")
	}
	o := setOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	s.values[key] = value
	if !o.silent {
		s.log.Infof("Setting %s to %s", key, util.ToString(value))
	}
	return s.Materialize()
}

// Save stores value both live and in the saved subset.
func (s *Store) Save(key string, value interface{}, opts ...SetOption) error {
	if key == "" {
		return errors.New("parameter key cannot be empty")
	}
	s.saved[key] = value
	return s.Set(key, value, opts...)
}

// SetAll stores every entry silently and materializes once.
func (s *Store) SetAll(values map[string]interface{}) error {
	for k, v := range values {
		s.values[k] = v
	}
	return s.Materialize()
}

// Attach sets the materializer used by Set and Materialize.
func (s *Store) Attach(m Materializer) {
	s.materializer = m
}

// Detach stops materialization and returns the materializer that was attached.
func (s *Store) Detach() Materializer {
	m := s.materializer
	s.materializer = nil
	return m
}

// Saved returns a copy of the saved subset.
func (s *Store) Saved() map[string]interface{} {
	return copyMap(s.saved)
}

// All returns a copy of the live values.
func (s *Store) All() map[string]interface{} {
	return copyMap(s.values)
}

// Keys returns the live keys sorted.
func (s *Store) Keys() []string {
	return sortedKeys(s.values)
}

// Environ returns KEY=value pairs sorted by key.
func (s *Store) Environ() []string {
	env := make([]string, 0, len(s.values))
	for _, k := range s.Keys() {
		env = append(env, k+"="+util.ToString(s.values[k]))
	}
	return env
}

// Materialize rewrites the workspace files from the live values.
func (s *Store) Materialize() error {
	if s.materializer == nil {
		return nil
	}
	if err := s.materializer.Materialize(s.values); err != nil {
		return errors.Wrap(err, "failed to materialize workspace")
	}
	return nil
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
