package db

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TFMV/bikeshare/trip"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, name)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

const washingtonCSV = `Start Time,End Time,Trip Duration,Start Station,End Station,User Type
2017-06-21 08:36:34,2017-06-21 08:44:43,489,A,B,Subscriber
`

func TestDirSourceNotFound(t *testing.T) {
	_, err := DirSource{Dir: "testdata"}.Open(context.Background(), "missing.csv")
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestDirSourceCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DirSource{Dir: "testdata"}.Open(ctx, "chicago.csv")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStoreUsesSource(t *testing.T) {
	src := new(mockSource)
	src.On("Open", mock.Anything, "washington.csv").
		Return(io.NopCloser(strings.NewReader(washingtonCSV)), nil).Once()

	store := NewStore(src, Options{})
	table, err := store.Load(context.Background(), "washington")
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	src.AssertExpectations(t)
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	src := new(mockSource)
	src.On("Open", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	breaker := WithBreaker(src, 0, zap.NewNop())
	store := NewStore(breaker, Options{})
	ctx := context.Background()

	// gobreaker trips after more than five consecutive failures.
	for i := 0; i < 6; i++ {
		_, err := store.Load(ctx, string(trip.Chicago))
		require.ErrorIs(t, err, ErrSourceUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, breaker.State())

	_, err := store.Load(ctx, string(trip.Chicago))
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	src.AssertNumberOfCalls(t, "Open", 6)
}

func TestBreakerIgnoresMissingSources(t *testing.T) {
	src := new(mockSource)
	src.On("Open", mock.Anything, mock.Anything).Return(nil, ErrSourceNotFound)

	breaker := WithBreaker(src, 0, nil)
	for i := 0; i < 10; i++ {
		_, err := breaker.Open(context.Background(), "chicago.csv")
		require.ErrorIs(t, err, ErrSourceNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, breaker.State())
	src.AssertNumberOfCalls(t, "Open", 10)
}
