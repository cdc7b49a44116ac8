package sphmodel

import (
	"fmt"
	"os"
	"sync/atomic"
)

// WarningSink receives non-fatal diagnostics emitted during model
// construction, such as asymptotic fallbacks at grid boundaries.
type WarningSink interface {
	Warn(format string, args ...interface{})
}

// StderrSink writes warnings to standard error.
type StderrSink struct{}

func (StderrSink) Warn(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "WARNING: "+format+"\n", args...)
}

// CountingSink counts warnings and forwards them to an optional next sink.
// Safe for concurrent use.
type CountingSink struct {
	Next  WarningSink
	count int64
}

func (s *CountingSink) Warn(format string, args ...interface{}) {
	atomic.AddInt64(&s.count, 1)
	if s.Next != nil {
		s.Next.Warn(format, args...)
	}
}

// Count reports the number of warnings received so far.
func (s *CountingSink) Count() int64 {
	return atomic.LoadInt64(&s.count)
}
