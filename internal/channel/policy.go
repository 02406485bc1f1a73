package channel

import "time"

// Policy is the capacity and timing configuration bound to a channel
// when the controller creates it. It is never mutated afterward.
type Policy struct {
	// MaxObjects bounds the object store; pushing past it evicts the
	// oldest object first.
	MaxObjects int
	// MaxCCU bounds the roster; joins past it are rejected.
	MaxCCU int
	// LockTimeout bounds how long an operation waits for the channel
	// guard before giving up.
	LockTimeout time.Duration
	// Cooldown is the minimum interval between two pushes by the same
	// user. Zero disables the check.
	Cooldown time.Duration
}

// DefaultPolicy mirrors the limits the service shipped with.
func DefaultPolicy() Policy {
	return Policy{
		MaxObjects:  30,
		MaxCCU:      10,
		LockTimeout: time.Second,
	}
}
