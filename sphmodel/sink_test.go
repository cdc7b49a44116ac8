package sphmodel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSink struct {
	messages []string
}

func (s *recordingSink) Warn(format string, args ...interface{}) {
	s.messages = append(s.messages, fmt.Sprintf(format, args...))
}

func TestCountingSinkForwards(t *testing.T) {
	rec := &recordingSink{}
	sink := &CountingSink{Next: rec}
	sink.Warn("first %d", 1)
	sink.Warn("second %d", 2)
	assert.Equal(t, int64(2), sink.Count())
	assert.Equal(t, []string{"first 1", "second 2"}, rec.messages)
}

func TestCountingSinkWithoutNext(t *testing.T) {
	sink := &CountingSink{}
	sink.Warn("dropped")
	assert.Equal(t, int64(1), sink.Count())
}
