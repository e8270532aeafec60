package types

import (
	"sync/atomic"
	"time"
)

var lastNanos atomic.Int64

// UniqueNanos returns the current Unix time in nanoseconds, bumped so that
// every call in the process returns a strictly larger value than the last.
func UniqueNanos() int64 {
	now := time.Now().UnixNano()
	for {
		last := lastNanos.Load()
		if now <= last {
			now = last + 1
		}
		if lastNanos.CompareAndSwap(last, now) {
			return now
		}
	}
}
