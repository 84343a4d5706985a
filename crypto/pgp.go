// Package crypto provides the OpenPGP message and key primitives that the
// high-level pipelines are built on.
package crypto

import "time"

// Clock is a function that returns a timestamp.
type Clock func() time.Time

// pgpClock keeps track of the time skew between server and client.
type pgpClock struct {
	latestServerTime int64
	latestClientTime time.Time
}

var pgp = pgpClock{}

// UpdateTime updates the cached time.
func UpdateTime(newTime int64) {
	pgp.latestServerTime = newTime
	pgp.latestClientTime = time.Now()
}

// GetUnixTime gets the latest cached time, in unix seconds.
func GetUnixTime() int64 {
	return getNow().Unix()
}

// GetTime gets the latest cached time.
func GetTime() time.Time {
	return getNow()
}

func getNow() time.Time {
	if pgp.latestServerTime > 0 && !pgp.latestClientTime.IsZero() {
		// Until is monotonic, it uses a monotonic clock in this case instead of the wall clock
		extrapolate := int64(time.Until(pgp.latestClientTime).Seconds())
		return time.Unix(pgp.latestServerTime+extrapolate, 0)
	}

	return time.Now()
}

// NewConstantClock returns a Clock that always reads the given unix time.
func NewConstantClock(unixTime int64) Clock {
	return func() time.Time {
		return time.Unix(unixTime, 0)
	}
}

func clone(input []byte) []byte {
	data := make([]byte, len(input))
	copy(data, input)
	return data
}
