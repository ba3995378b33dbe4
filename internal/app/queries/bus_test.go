package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoQuery struct{ Text string }

func (echoQuery) Key() string { return "test.echo" }

type otherQuery struct{}

func (otherQuery) Key() string { return "test.other" }

func TestAskRoutesByKey(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[echoQuery, string](bus, "test.echo", HandlerFunc[echoQuery, string](func(_ context.Context, q echoQuery) (string, error) {
		return q.Text, nil
	}))

	got, err := Ask[echoQuery, string](context.Background(), bus, echoQuery{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
	assert.Equal(t, []string{"test.echo"}, bus.Keys())

	_, err = bus.Ask(context.Background(), otherQuery{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
	assert.Contains(t, err.Error(), "test.other")

	_, err = Ask[echoQuery, int](context.Background(), bus, echoQuery{})
	assert.ErrorIs(t, err, ErrResultType)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[echoQuery, string](func(context.Context, echoQuery) (string, error) { return "", nil })
	RegisterHandler[echoQuery, string](bus, "test.echo", h)
	assert.Panics(t, func() { RegisterHandler[echoQuery, string](bus, "test.echo", h) })
}

func TestRegisterUsesQueryKey(t *testing.T) {
	bus := NewInMemoryBus()
	Register[otherQuery, int](bus, HandlerFunc[otherQuery, int](func(context.Context, otherQuery) (int, error) { return 7, nil }))

	got, err := Ask[otherQuery, int](context.Background(), bus, otherQuery{})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, []string{"test.other"}, bus.Keys())
}
