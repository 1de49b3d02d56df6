package faultline

import "go.uber.org/zap"

type options struct {
	log       *zap.Logger
	maxIssues int
}

// Option configures one analysis run.
type Option func(*options)

// WithLogger routes the analyzer's diagnostic logging to the given
// logger. By default logging is disabled.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithMaxIssues sets how many record-level parse failures are retained
// verbatim in Diagnostics.Issues. Failures beyond the cap are still
// counted. Default: 10.
func WithMaxIssues(n int) Option {
	return func(o *options) {
		o.maxIssues = n
	}
}

func defaultOptions() options {
	return options{maxIssues: 10}
}
