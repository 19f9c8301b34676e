package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWriteTimeout_CoversFirstLeaderboardRequest(t *testing.T) {
	upstream := 10 * time.Second

	// Initialize (health, challenges, leaderboard) followed by the handler's load.
	worst := 4 * upstream

	assert.Greater(t, writeTimeout(upstream), worst)
	assert.Equal(t, 45*time.Second, writeTimeout(upstream))
}
