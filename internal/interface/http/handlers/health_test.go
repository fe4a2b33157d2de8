package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeHealthChecker_NoChecks(t *testing.T) {
	checker := NewCompositeHealthChecker("v1")

	status := checker.Check(context.Background())

	assert.True(t, status.Healthy)
	assert.True(t, status.Ready)
	assert.Equal(t, "No health checks registered", status.Message)
	assert.Equal(t, "v1", status.Version)
}

func TestCompositeHealthChecker_AllHealthy(t *testing.T) {
	checker := NewCompositeHealthChecker("v1")
	checker.AddCheck("database", func(ctx context.Context) error { return nil })
	checker.AddCheck("cache", func(ctx context.Context) error { return nil })

	status := checker.Check(context.Background())

	assert.True(t, status.Healthy)
	assert.True(t, status.Ready)
	assert.Equal(t, "All checks passed", status.Message)
	require.Len(t, status.Checks, 2)
	assert.True(t, status.Checks["database"].Healthy)
	assert.Equal(t, "OK", status.Checks["database"].Message)
}

func TestCompositeHealthChecker_OneFailing(t *testing.T) {
	checker := NewCompositeHealthChecker("v1")
	checker.AddCheck("database", func(ctx context.Context) error { return nil })
	checker.AddCheck("cache", func(ctx context.Context) error { return errors.New("connection refused") })

	status := checker.Check(context.Background())

	assert.False(t, status.Healthy)
	assert.False(t, status.Ready)
	assert.Contains(t, status.Message, "cache")
	assert.True(t, status.Checks["database"].Healthy)
	assert.False(t, status.Checks["cache"].Healthy)
	assert.Equal(t, "connection refused", status.Checks["cache"].Message)
}

func TestCompositeHealthChecker_RemoveCheck(t *testing.T) {
	checker := NewCompositeHealthChecker("v1")
	checker.AddCheck("flaky", func(ctx context.Context) error { return errors.New("down") })

	assert.False(t, checker.Check(context.Background()).Healthy)

	checker.RemoveCheck("flaky")
	assert.True(t, checker.Check(context.Background()).Healthy)
}

func TestCompositeHealthChecker_Timeout(t *testing.T) {
	checker := NewCompositeHealthChecker("v1")
	checker.SetTimeout(10 * time.Millisecond)
	checker.AddCheck("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	start := time.Now()
	status := checker.Check(context.Background())

	assert.False(t, status.Healthy)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(_ context.Context) error { return p.err }

func TestPingerChecks(t *testing.T) {
	assert.NoError(t, NewDatabaseCheck(stubPinger{})(context.Background()))
	assert.NoError(t, NewCacheCheck(stubPinger{})(context.Background()))

	failing := stubPinger{err: errors.New("no route to host")}
	assert.Error(t, NewDatabaseCheck(failing)(context.Background()))
}

func TestNoopHealthChecker(t *testing.T) {
	checker := NewNoopHealthChecker()
	checker.AddCheck("ignored", func(ctx context.Context) error { return errors.New("down") })

	status := checker.Check(context.Background())
	assert.True(t, status.Healthy)
	assert.True(t, status.Ready)
}
