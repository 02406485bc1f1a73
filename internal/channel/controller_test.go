package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jaeholee/decotree/internal/stats"
	"github.com/jaeholee/decotree/internal/testutil"
)

func Test_CreateChannel(t *testing.T) {
	t.Run("registers and returns a new channel", func(t *testing.T) {
		su := &stats.MockStatsUpdater{}
		defer su.AssertExpectations(t)
		su.On("Incr", stats.ActiveChannels).Once()

		cc := NewController(testutil.TestLogger(t), defaultTestPolicy(), su)

		ch := cc.CreateChannel("tree")
		assert.NotNil(t, ch)
		assert.Equal(t, "tree", ch.Id())
		assert.Equal(t, defaultTestPolicy(), ch.policy, "channel must carry the controller's policy")

		got, ok := cc.GetChannel("tree")
		assert.True(t, ok)
		assert.Same(t, ch, got, "lookup must return the registered instance")
	})

	t.Run("create is get-or-create", func(t *testing.T) {
		cc := newTestController(t, defaultTestPolicy())

		first := cc.CreateChannel("tree")
		second := cc.CreateChannel("tree")
		assert.Same(t, first, second, "repeated create must return the same channel")
	})
}

func Test_GetChannel_absent(t *testing.T) {
	cc := newTestController(t, defaultTestPolicy())

	ch, ok := cc.GetChannel("missing")
	assert.False(t, ok)
	assert.Nil(t, ch)
}

func Test_CloseChannel(t *testing.T) {
	t.Run("removes the channel from the registry", func(t *testing.T) {
		su := &stats.MockStatsUpdater{}
		defer su.AssertExpectations(t)
		su.On("Incr", stats.ActiveChannels).Once()
		su.On("Decr", stats.ActiveChannels).Once()

		cc := NewController(testutil.TestLogger(t), Policy{MaxObjects: 1, MaxCCU: 1, LockTimeout: time.Second}, su)
		cc.CreateChannel("tree")

		cc.CloseChannel("tree")
		_, ok := cc.GetChannel("tree")
		assert.False(t, ok)
	})

	t.Run("panics on unknown id", func(t *testing.T) {
		cc := newTestController(t, defaultTestPolicy())

		assert.Panics(t, func() {
			cc.CloseChannel("never-created")
		}, "closing an unregistered channel is a caller bug")
	})
}
