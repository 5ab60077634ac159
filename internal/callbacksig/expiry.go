package callbacksig

import "time"

// isFuture reports whether the millisecond epoch timestamp is strictly
// after now. A timestamp equal to now is treated as expired ("must still
// be valid" semantics). Negative and zero timestamps are simply not
// future.
func isFuture(epochMillis int64, now time.Time) bool {
	return epochMillis > now.UnixMilli()
}
