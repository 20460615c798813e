package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingDSN", func(t *testing.T) {
		err := run(ctx, "", "up")
		assert.ErrorContains(t, err, "SESSION_STORE not set")
	})

	t.Run("NotPostgres", func(t *testing.T) {
		err := run(ctx, "/tmp/session.json", "up")
		assert.ErrorContains(t, err, "must be a postgres:// DSN")
	})
}
