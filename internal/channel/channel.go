package channel

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jaeholee/decotree/internal/stats"
	"github.com/jaeholee/decotree/internal/types"
)

// ErrGuardTimeout is returned by Snapshot when the channel guard could
// not be taken within the policy's lock timeout.
var ErrGuardTimeout = errors.New("channel: guard acquisition timed out")

// Connection is the one capability the core needs from a transport:
// accept a single outbound event. A failed delivery is reported as an
// error; the channel never retries it.
type Connection interface {
	Send(ev Event) error
}

// User is a connected participant, bound to exactly one channel's
// roster for the duration of membership.
type User struct {
	types.UserInfo
	Session string
	Conn    Connection
}

// Channel is the unit of shared state: a roster of users and a bounded
// object store, serialized by a single guard. Channels are constructed
// by a Controller, which fixes the policy and back-reference up front.
type Channel struct {
	id     string
	ctrl   *Controller
	policy Policy
	stats  stats.StatsProvider
	log    *log.Logger

	// guard is a one-slot semaphore. It is held for the whole of a
	// mutation including the broadcast derived from it, so concurrent
	// operations cannot interleave their fan-outs.
	guard chan struct{}

	users    map[string]*User
	objects  map[string]types.Object
	objOrder []string
	lastPush map[string]time.Time
}

func newChannel(id string, ctrl *Controller, policy Policy, st stats.StatsProvider, logger *log.Logger) *Channel {
	return &Channel{
		id:       id,
		ctrl:     ctrl,
		policy:   policy,
		stats:    st,
		log:      logger,
		guard:    make(chan struct{}, 1),
		users:    make(map[string]*User),
		objects:  make(map[string]types.Object),
		lastPush: make(map[string]time.Time),
	}
}

func (c *Channel) Id() string { return c.id }

// acquire takes the guard within the policy's lock timeout. On timeout
// the publisher, if any, is sent a timeout error and no state is
// touched.
func (c *Channel) acquire(publisher *User) bool {
	timer := time.NewTimer(c.policy.LockTimeout)
	defer timer.Stop()

	select {
	case c.guard <- struct{}{}:
		return true
	case <-timer.C:
		if publisher != nil {
			c.deliver(publisher, errTimeout())
		}
		return false
	}
}

// release drops the guard. The non-blocking receive makes release safe
// to call even if the guard was never taken.
func (c *Channel) release() {
	select {
	case <-c.guard:
	default:
	}
}

// Join adds the user to the roster and announces it to the other
// members. A duplicate join is a no-op; a join past MaxCCU delivers a
// "full" error to the joiner only.
func (c *Channel) Join(user *User) {
	if !c.acquire(user) {
		return
	}
	defer c.release()

	if _, ok := c.users[user.Id]; ok {
		return
	}

	if len(c.users) >= c.policy.MaxCCU {
		c.log.Printf("channel %q is full, rejecting %q", c.id, user.Id)
		c.deliver(user, errFull())
		return
	}

	c.users[user.Id] = user
	c.stats.Incr(stats.ConnectedUsers)
	c.broadcast(JoinEvent{User: user.UserInfo}, user.Id)
}

// PushObject inserts the object into the store and announces it,
// evicting the oldest object first when the store is at capacity.
// Pushes by non-members are rejected with an "invalid" error, pushes
// inside the cooldown window with a "cooldown" error; neither mutates
// state.
func (c *Channel) PushObject(obj types.Object, appender *User) {
	if !c.acquire(appender) {
		return
	}
	defer c.release()

	if _, ok := c.users[appender.Id]; !ok {
		c.log.Printf("push to %q by non-member %q", c.id, appender.Id)
		c.deliver(appender, errInvalid())
		return
	}

	if c.policy.Cooldown > 0 {
		if last, ok := c.lastPush[appender.Id]; ok && time.Since(last) < c.policy.Cooldown {
			c.deliver(appender, errCooldown())
			return
		}
	}

	_, overwrite := c.objects[obj.Id]

	// An overwrite does not grow the store, so nothing needs to make
	// room for it.
	var evicted string
	if !overwrite && len(c.objects) >= c.policy.MaxObjects {
		evicted = c.objOrder[0]
		c.objOrder = c.objOrder[1:]
		delete(c.objects, evicted)
		c.stats.Incr(stats.ObjectsEvicted)
	}

	if !overwrite {
		c.objOrder = append(c.objOrder, obj.Id)
	}
	c.objects[obj.Id] = obj
	c.lastPush[appender.Id] = time.Now()
	c.stats.Incr(stats.ObjectsPushed)

	c.broadcast(PushObjectEvent{Object: obj, Appender: appender.UserInfo, Evicted: evicted}, appender.Id)
}

// Leave removes the user from the roster. The remaining members get a
// leave event; when the roster empties, the channel asks its
// controller to close it. Leave runs on disconnect, so it proceeds
// even when the guard cannot be taken in time and never reports a
// timeout error.
func (c *Channel) Leave(user *User) {
	timer := time.NewTimer(c.policy.LockTimeout)
	select {
	case c.guard <- struct{}{}:
		defer c.release()
	case <-timer.C:
	}
	timer.Stop()

	_, wasMember := c.users[user.Id]
	if wasMember {
		delete(c.users, user.Id)
		c.stats.Decr(stats.ConnectedUsers)
	}

	if len(c.users) > 0 {
		c.broadcast(LeaveEvent{User: user.UserInfo}, user.Id)
		return
	}

	// Only the leave that emptied the roster tears the channel down; a
	// stray leave from a never-joined connection must not close a
	// channel twice.
	if wasMember {
		c.ctrl.CloseChannel(c.id)
	}
}

// Snapshot returns the current objects in insertion order and the
// roster identities, for transcript and history consumers. It takes
// the guard under the same deadline as every other operation so a
// wedged channel cannot hang its callers.
func (c *Channel) Snapshot() ([]types.Object, []types.UserInfo, error) {
	if !c.acquire(nil) {
		return nil, nil, ErrGuardTimeout
	}
	defer c.release()

	objects := make([]types.Object, 0, len(c.objOrder))
	for _, id := range c.objOrder {
		objects = append(objects, c.objects[id])
	}

	members := make([]types.UserInfo, 0, len(c.users))
	for _, u := range c.users {
		members = append(members, u.UserInfo)
	}

	return objects, members, nil
}

// broadcast delivers the event to every member except the publisher.
// Deliveries run concurrently and independently; a failed delivery
// never blocks the others, and the mutation that produced the event is
// never undone. If any delivery fails, the publisher gets a single
// "unknown" error as a diagnostic.
func (c *Channel) broadcast(ev Event, publisherId string) {
	var wg sync.WaitGroup
	var failed atomic.Int64

	for id, u := range c.users {
		if id == publisherId {
			continue
		}

		wg.Add(1)
		go func(u *User) {
			defer wg.Done()
			if err := u.Conn.Send(ev); err != nil {
				c.log.Printf("send %s event to %q: %v", ev.EventType(), u.Id, err)
				failed.Add(1)
			}
		}(u)
	}
	wg.Wait()

	if failed.Load() > 0 {
		c.stats.Incr(stats.DeliveryFailures)
		if pub, ok := c.users[publisherId]; ok {
			c.deliver(pub, errUnknown())
		}
	}
}

// deliver sends an event to a single connection, logging a failed
// send. Used for direct error delivery, not fan-out.
func (c *Channel) deliver(u *User, ev Event) {
	if err := u.Conn.Send(ev); err != nil {
		c.log.Printf("deliver %s event to %q: %v", ev.EventType(), u.Id, err)
	}
}
