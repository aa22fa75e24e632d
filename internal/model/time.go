package model

import "time"

// Timestamp is a moment in epoch milliseconds.
//
// Milliseconds are what the store's deadline documents carry on the wire,
// so the whole engine computes in them rather than converting at every
// boundary.
type Timestamp int64

// TimestampFromParts decodes the store's server-assigned timestamp
// encoding: millis = seconds*1000 + nanoseconds/1e6.
func TimestampFromParts(seconds, nanoseconds int64) Timestamp {
	return Timestamp(seconds*1000 + nanoseconds/1_000_000)
}

// TimestampOf converts a wall-clock time.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// Time converts back to wall-clock time.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t))
}

// Before reports whether t is strictly earlier than u, treating a nil
// pointer as the maximum possible time. The discussed-history sort relies
// on this so entries that finished without a timestamp surface first.
func Before(t, u *Timestamp) bool {
	switch {
	case t == nil:
		return false
	case u == nil:
		return true
	default:
		return *t < *u
	}
}
