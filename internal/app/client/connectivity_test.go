package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

func TestMonitor_Transitions(t *testing.T) {
	log := slog.Default()
	errOffline := errors.New("unreachable")

	t.Run("publishes only on state flips", func(t *testing.T) {
		var healthy bool
		probe := ProbeFunc(func(ctx context.Context) error {
			if healthy {
				return nil
			}
			return errOffline
		})
		m := NewMonitor(probe, log, time.Second)

		m.check(context.Background())
		assert.False(t, m.IsConnected())
		select {
		case <-m.Transitions():
			t.Fatal("initial offline state is not a transition")
		default:
		}

		healthy = true
		m.check(context.Background())
		assert.True(t, m.IsConnected())
		select {
		case state := <-m.Transitions():
			assert.True(t, state)
		default:
			t.Fatal("offline to online flip must notify")
		}

		// Staying online produces no further notifications.
		m.check(context.Background())
		select {
		case <-m.Transitions():
			t.Fatal("repeated online polls must not notify")
		default:
		}
	})

	t.Run("latest state wins for a slow consumer", func(t *testing.T) {
		m := NewMonitor(ProbeFunc(func(context.Context) error { return nil }), log, time.Second)

		m.setState(true)
		m.setState(false)
		m.setState(true)

		state := <-m.Transitions()
		assert.True(t, state, "consumer sees the most recent flip")
	})
}
