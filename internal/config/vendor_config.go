package config

import (
	"strconv"
	"time"
)

type Vendor struct{}

var _ VendorConfig = Vendor{}

// GetVendorTimeout bounds each vendor HTTP round-trip.
func (Vendor) GetVendorTimeout() time.Duration {
	raw := GetEnv("VENDOR_TIMEOUT_SECONDS", "30")
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}

// GetStreamBuffer sets the per-subscriber credit stream buffer.
func (Vendor) GetStreamBuffer() int {
	raw := GetEnv("STREAM_BUFFER", "8")
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		n = 8
	}
	return n
}
