package core

import "log/slog"

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used by the service. A nil logger is silent.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithErrorHandler registers a callback receiving soft load failures.
// Loads never fail hard; this is how callers learn that a collection was
// unreadable and reported as empty.
func WithErrorHandler(fn func(error)) ServiceOption {
	return func(s *Service) {
		s.onError = fn
	}
}

// WithStrictLoad makes mutations abort when the current collection cannot
// be loaded, instead of treating it as empty and overwriting it.
func WithStrictLoad(strict bool) ServiceOption {
	return func(s *Service) {
		s.strictLoad = strict
	}
}

// WithSampleNotes makes EnsureSeeded also store DefaultNotes when the
// notes collection has never been written.
func WithSampleNotes(enabled bool) ServiceOption {
	return func(s *Service) {
		s.sampleNotes = enabled
	}
}
