package llm

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/symptomcheck/internal/config"
)

type closingClient struct {
	stubClient
	closed bool
}

func (c *closingClient) Close() error {
	c.closed = true
	return nil
}

type stubClient struct {
	reply string
	err   error
	block bool
	calls int
}

func (s *stubClient) Generate(ctx context.Context, _ string) (string, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.reply, s.err
}

func TestNewWithoutKeyReturnsNil(t *testing.T) {
	logger, _ := test.NewNullLogger()
	client, err := New(context.Background(), config.LLMConfig{Provider: "gemini"}, logger)
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewUnsupportedProvider(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := New(context.Background(), config.LLMConfig{Provider: "parrot", APIKey: "k"}, logger)
	assert.Error(t, err)
}

func TestNewBuildsGuardedClients(t *testing.T) {
	logger, _ := test.NewNullLogger()
	for _, provider := range []string{"openai", "claude"} {
		t.Run(provider, func(t *testing.T) {
			client, err := New(context.Background(), config.LLMConfig{Provider: provider, APIKey: "k", Model: "m"}, logger)
			require.NoError(t, err)
			assert.IsType(t, &Guarded{}, client)
		})
	}
}

func TestGuardedPassesThrough(t *testing.T) {
	logger, _ := test.NewNullLogger()
	g := NewGuarded("test", &stubClient{reply: "hello"}, time.Second, logger)

	out, err := g.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestGuardedTripsAfterRepeatedFailures(t *testing.T) {
	logger, hook := test.NewNullLogger()
	stub := &stubClient{err: errors.New("quota exceeded")}
	g := NewGuarded("test", stub, time.Second, logger)

	for i := 0; i < 3; i++ {
		_, err := g.Generate(context.Background(), "hi")
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, g.State())

	_, err := g.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, stub.calls)
	assert.NotEmpty(t, hook.Entries)
}

func TestGuardedAppliesTimeout(t *testing.T) {
	logger, _ := test.NewNullLogger()
	g := NewGuarded("test", &stubClient{block: true}, 20*time.Millisecond, logger)

	start := time.Now()
	_, err := g.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGuardedCloseReleasesWrappedClient(t *testing.T) {
	logger, _ := test.NewNullLogger()
	inner := &closingClient{}
	g := NewGuarded("test", inner, time.Second, logger)

	var client Client = g
	closer, ok := client.(io.Closer)
	require.True(t, ok)
	require.NoError(t, closer.Close())
	assert.True(t, inner.closed)

	assert.NoError(t, NewGuarded("test", &stubClient{}, time.Second, logger).Close())
}
