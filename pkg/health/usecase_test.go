package health_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/taskmanager/pkg/health"
	"github.com/artem13815/taskmanager/pkg/health/checkers"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReady_AllHealthy(t *testing.T) {
	pg := checkers.NewPostgresChecker(pingFunc(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok, "ping must be bounded")
		return nil
	}))

	assert.NoError(t, health.NewService(pg).Ready(context.Background()))
}

func TestReady_NamesFailingDependency(t *testing.T) {
	down := errors.New("connection refused")
	pg := checkers.NewPostgresChecker(pingFunc(func(context.Context) error { return down }))

	err := health.NewService(pg).Ready(context.Background())
	require.Error(t, err)

	var de *health.DependencyError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "postgres", de.Name)
	assert.ErrorIs(t, err, down)
}

func TestReady_NoCheckers(t *testing.T) {
	assert.NoError(t, health.NewService().Ready(context.Background()))
}
