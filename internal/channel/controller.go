package channel

import (
	"log"
	"sync"

	"github.com/jaeholee/decotree/internal/stats"
)

// Controller owns the id→channel registry and the channel lifecycle.
// Channels never destroy themselves; the last leaving member makes the
// channel ask its controller to close it.
type Controller struct {
	log    *log.Logger
	stats  stats.StatsProvider
	policy Policy

	mu       sync.Mutex
	channels map[string]*Channel
}

func NewController(logger *log.Logger, policy Policy, st stats.StatsProvider) *Controller {
	return &Controller{
		log:      logger,
		stats:    st,
		policy:   policy,
		channels: make(map[string]*Channel),
	}
}

// GetChannel looks up a channel without creating it.
func (cc *Controller) GetChannel(id string) (*Channel, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	ch, ok := cc.channels[id]
	return ch, ok
}

// CreateChannel returns the channel registered under id, creating it
// with the controller's policy on first access. Concurrent creates for
// the same id resolve to the same channel.
func (cc *Controller) CreateChannel(id string) *Channel {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if ch, ok := cc.channels[id]; ok {
		return ch
	}

	cc.log.Printf("creating channel %q", id)
	ch := newChannel(id, cc, cc.policy, cc.stats, cc.log)
	cc.channels[id] = ch
	cc.stats.Incr(stats.ActiveChannels)
	return ch
}

// CloseChannel removes the channel from the registry. Closing an id
// that was never registered is a caller bug and panics.
func (cc *Controller) CloseChannel(id string) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if _, ok := cc.channels[id]; !ok {
		panic("channel: close of unknown channel " + id)
	}

	cc.log.Printf("closing channel %q", id)
	delete(cc.channels, id)
	cc.stats.Decr(stats.ActiveChannels)
}
