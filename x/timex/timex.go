package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// processStart anchors NowUs; time.Since reads Go's monotonic clock.
var processStart = time.Now()

// NowUs returns a monotonic microsecond timestamp (time since process
// start), used by the ladder timer elements (TON/TOF) to accumulate
// elapsed time across scans.
func NowUs() uint64 { return uint64(time.Since(processStart).Microseconds()) }

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}
