// Package lock serializes work on a single key, such as one event's ledger.
package lock

import "context"

// Locker grants exclusive access to a key. Lock blocks until the key is free
// or ctx is done. The returned unlock func is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
