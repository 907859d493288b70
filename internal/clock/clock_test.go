package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClockNow(t *testing.T) {
	t.Parallel()

	before := time.Now()
	got := RealClock{}.Now()
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestFixedNow(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	c := Fixed{Time: anchor}

	assert.Equal(t, anchor, c.Now())
	// Repeated calls never advance.
	assert.Equal(t, anchor, c.Now())
}
