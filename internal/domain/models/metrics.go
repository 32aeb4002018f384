package models

import "time"

// APIMetric is one observed API call, aggregated per endpoint, status and environment.
type APIMetric struct {
	Method       string
	EndpointName string
	StatusCode   int
	DurationMs   float64
	CalledAt     time.Time
	Env          string
}

// Passed reports whether the call ended with a 2xx status.
func (m APIMetric) Passed() bool {
	return m.StatusCode >= 200 && m.StatusCode < 300
}
