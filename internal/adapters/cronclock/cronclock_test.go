package cronclock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immo-parser-service/internal/contextkeys"
)

func TestCronAddFunc(t *testing.T) {
	c := NewCron(contextkeys.LoggerFromContext(context.Background()))

	require.NoError(t, c.AddFunc("@every 5m0s", func() {}))
	require.NoError(t, c.AddFunc("*/15 * * * *", func() {}))
	assert.Error(t, c.AddFunc("every five minutes", func() {}))
	assert.Equal(t, 2, c.Entries())
}

func TestCronRuns(t *testing.T) {
	c := NewCron(contextkeys.LoggerFromContext(context.Background()))
	fired := make(chan struct{}, 1)
	require.NoError(t, c.AddFunc("@every 1s", func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}))
	c.Start()
	defer c.Stop()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("cron job did not fire")
	}
}

func TestClockSleep(t *testing.T) {
	var clock Clock
	require.NoError(t, clock.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := clock.Sleep(ctx, time.Hour)
	assert.True(t, errors.Is(err, context.Canceled))

	assert.WithinDuration(t, time.Now(), clock.Now(), time.Second)
}
