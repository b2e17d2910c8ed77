package repository

import "time"

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithMaxEntries bounds the reserve. When full, the lowest-scored entry is
// dropped to admit a better one.
func WithMaxEntries(n int) Option {
	return func(s *TreapStore) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *TreapStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}
