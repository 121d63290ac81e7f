package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_StaysInRange(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	gen := newGenerator(from, to, 3, 42)

	users := map[string]bool{}
	for i := 0; i < 500; i++ {
		msg := gen.next()
		assert.False(t, msg.CreatedAt.Before(from))
		assert.True(t, msg.CreatedAt.Before(to))
		assert.NotEmpty(t, msg.Question)
		users[msg.UserId] = true
	}
	assert.LessOrEqual(t, len(users), 3)
}
