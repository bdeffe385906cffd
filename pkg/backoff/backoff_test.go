package backoff_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/enclavekit/pkg/backoff"
)

func TestExponential_NextInterval(t *testing.T) {
	t.Parallel()

	e := backoff.Exponential{
		InitialInterval: time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      2,
	}

	assert.Equal(t, time.Duration(0), e.NextInterval(0))
	assert.Equal(t, time.Second, e.NextInterval(1))
	assert.Equal(t, 2*time.Second, e.NextInterval(2))
	assert.Equal(t, 4*time.Second, e.NextInterval(3))
	// Capped at MaxInterval.
	assert.Equal(t, 10*time.Second, e.NextInterval(10))
}

func TestExponential_Jitter(t *testing.T) {
	t.Parallel()

	e := backoff.Exponential{
		InitialInterval: time.Second,
		MaxInterval:     time.Minute,
		Multiplier:      2,
		JitterFactor:    0.5,
	}

	for attempt := 1; attempt <= 5; attempt++ {
		base := time.Duration(float64(time.Second) * float64(int(1)<<uint(attempt-1)))
		got := e.NextInterval(attempt)
		assert.GreaterOrEqual(t, got, base/2)
		assert.LessOrEqual(t, got, base*3/2)
	}
}

func TestFixed_NextInterval(t *testing.T) {
	t.Parallel()

	f := backoff.Fixed{Interval: 5 * time.Second}
	assert.Equal(t, time.Duration(0), f.NextInterval(0))
	assert.Equal(t, 5*time.Second, f.NextInterval(1))
	assert.Equal(t, 5*time.Second, f.NextInterval(100))
}

func TestDefault_Bounded(t *testing.T) {
	t.Parallel()

	s := backoff.Default()
	for attempt := 1; attempt <= 20; attempt++ {
		got := s.NextInterval(attempt)
		assert.Greater(t, got, time.Duration(0))
		assert.LessOrEqual(t, got, 33*time.Second)
	}
}
