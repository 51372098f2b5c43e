package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallTracker_CancelAllCancelsEveryTrackedCall(t *testing.T) {
	tracker := newCallTracker()

	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	tracker.track("1", cancel1)
	tracker.track("2", cancel2)

	tracker.cancelAll()

	assert.Error(t, ctx1.Err())
	assert.Error(t, ctx2.Err())
}

func TestCallTracker_ReleaseRemovesEntry(t *testing.T) {
	tracker := newCallTracker()
	_, cancel := context.WithCancel(context.Background())
	release := tracker.track("1", cancel)
	release()

	assert.Len(t, tracker.cancels, 0)
}
