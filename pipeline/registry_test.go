package pipeline

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/xmetl/step"
)

func names(steps []*step.Step) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Name)
	}
	return out
}

func TestRegistryOrdersBySequence(t *testing.T) {
	r := NewRegistry([]string{"a", "b", "c", "d"}, nil)
	for _, n := range []string{"d", "b", "a"} {
		_, err := r.Register(step.New(n))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "d"}, names(r.Ordered()))
	assert.Equal(t, 3, r.Len())

	b, ok := r.Find("b")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "d"}, names(r.From(b)))
	assert.Empty(t, r.From(step.New("b")), "From matches by identity")
	_, ok = r.Find("c")
	assert.False(t, ok)
}

func TestRegistryRejectsUnknownNames(t *testing.T) {
	r := NewRegistry([]string{"a"}, nil)
	_, err := r.Register(step.New("zzz"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, step.ErrConfiguration))

	_, err = r.Register(nil)
	assert.True(t, errors.Is(err, step.ErrConfiguration))
	_, err = r.Register(step.New(""))
	assert.True(t, errors.Is(err, step.ErrConfiguration))
	assert.Zero(t, r.Len())
}

func TestRegistryReplacesDuplicates(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := NewRegistry([]string{"a", "b"}, logrus.NewEntry(log))

	first, err := r.Register(step.New("a"))
	require.NoError(t, err)
	second, err := r.Register(step.New("a", step.WithRestartable(true)))
	require.NoError(t, err)

	got, _ := r.Find("a")
	assert.Same(t, second, got)
	assert.NotSame(t, first, got)
	assert.Len(t, r.Ordered(), 1)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRegistrySetSequence(t *testing.T) {
	r := NewRegistry([]string{"a", "b", "c"}, nil)
	for _, n := range []string{"a", "b", "c"} {
		_, err := r.Register(step.New(n))
		require.NoError(t, err)
	}
	r.SetSequence([]string{"c", "a", "x"})
	assert.Equal(t, []string{"c", "a"}, names(r.Ordered()))
	assert.Equal(t, []string{"c", "a", "x"}, r.Sequence())
	_, ok := r.Find("b")
	assert.False(t, ok)

	seq := r.Sequence()
	seq[0] = "mutated"
	assert.Equal(t, "c", r.Sequence()[0])
}

func TestRegistryIgnoresRepeatedSequenceNames(t *testing.T) {
	r := NewRegistry([]string{"a", "a", "b"}, nil)
	_, err := r.Register(step.New("a"))
	require.NoError(t, err)
	assert.Len(t, r.Ordered(), 1)
}
