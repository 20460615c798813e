package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	t.Run("TerminalStatesAreFinal", func(t *testing.T) {
		tr := NewTracker(time.Hour)
		tr.Begin("a.png")

		tr.SetPercent("a.png", 40)
		tr.Fail("a.png", "network")
		tr.Complete("a.png", "/a")
		tr.SetPercent("a.png", 90)

		p := tr.Snapshot()["a.png"]
		assert.Equal(t, StatusError, p.Status)
		assert.Equal(t, 40, p.Percent)
		assert.Equal(t, "network", p.Error)
		assert.Empty(t, p.URL)
	})

	t.Run("PercentNeverGoesBack", func(t *testing.T) {
		tr := NewTracker(time.Hour)
		tr.Begin("a.png")
		tr.SetPercent("a.png", 60)
		tr.SetPercent("a.png", 30)
		assert.Equal(t, 60, tr.Snapshot()["a.png"].Percent)
	})

	t.Run("UnknownFileIgnored", func(t *testing.T) {
		tr := NewTracker(time.Hour)
		tr.Complete("ghost.png", "/x")
		assert.Empty(t, tr.Snapshot())
		assert.False(t, tr.Done())
	})

	t.Run("ClearsAfterRetention", func(t *testing.T) {
		tr := NewTracker(20 * time.Millisecond)
		tr.Begin("a.png", "b.png")

		tr.Complete("a.png", "/a")
		assert.False(t, tr.Done())
		time.Sleep(40 * time.Millisecond)
		assert.Len(t, tr.Snapshot(), 2, "batch still running")

		tr.Fail("b.png", "too big")
		assert.True(t, tr.Done())
		assert.Len(t, tr.Snapshot(), 2, "retained for feedback")

		assert.Eventually(t, func() bool { return len(tr.Snapshot()) == 0 }, time.Second, 5*time.Millisecond)
	})

	t.Run("NewBatchCancelsPendingClear", func(t *testing.T) {
		tr := NewTracker(30 * time.Millisecond)
		tr.Begin("a.png")
		tr.Complete("a.png", "/a")

		tr.Begin("b.png")
		time.Sleep(60 * time.Millisecond)

		snap := tr.Snapshot()
		require.Len(t, snap, 1)
		assert.Equal(t, StatusUploading, snap["b.png"].Status)
	})

	t.Run("SubscribersSeeEachTransition", func(t *testing.T) {
		tr := NewTracker(time.Hour)
		var statuses []Status
		cancel := tr.Subscribe(func(m map[string]Progress) {
			if p, ok := m["a.png"]; ok {
				statuses = append(statuses, p.Status)
			}
		})
		defer cancel()

		tr.Begin("a.png")
		tr.SetPercent("a.png", 10)
		tr.Complete("a.png", "/a")

		assert.Equal(t, []Status{StatusUploading, StatusUploading, StatusCompleted}, statuses)
	})
}
