package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	down := errors.New("connection refused")

	r.Register("database", NewPingProvider("sqlite", pingFunc(func(context.Context) error { return nil })))
	r.Register("cache", NewPingProvider("redis", pingFunc(func(context.Context) error { return down })))

	assert.Equal(t, []string{"cache", "database"}, r.List())
	require.NotNil(t, r.Get("database"))
	assert.Equal(t, "sqlite", r.Get("database").Type())

	results := r.HealthCheckAll(context.Background())
	require.Len(t, results, 2)
	assert.NoError(t, results["database"])
	assert.ErrorIs(t, results["cache"], down)

	r.Unregister("cache")
	assert.Nil(t, r.Get("cache"))
	assert.Len(t, r.HealthCheckAll(context.Background()), 1)
}
