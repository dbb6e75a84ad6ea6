package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"shareit/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNextDelay(t *testing.T) {
	p := Policy{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}

	assert.Equal(t, 100*time.Millisecond, p.NextDelay(0))
	assert.Equal(t, 100*time.Millisecond, p.NextDelay(1))
	assert.Equal(t, 200*time.Millisecond, p.NextDelay(2))
	assert.Equal(t, 800*time.Millisecond, p.NextDelay(4))
	assert.Equal(t, time.Second, p.NextDelay(10))

	assert.Equal(t, time.Second, Policy{}.NextDelay(1))
	assert.Equal(t, 2*time.Second, Policy{}.NextDelay(2))
}

func TestFromConfig(t *testing.T) {
	p := FromConfig(config.RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: time.Second, BackoffFactor: 1.5})
	assert.Equal(t, Policy{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: time.Second, BackoffFactor: 1.5}, p)
}

func TestDo(t *testing.T) {
	p := Policy{MaxRetries: 2, InitialDelay: time.Millisecond, BackoffFactor: 1}
	boom := errors.New("boom")

	t.Run("SucceedsAfterRetry", func(t *testing.T) {
		calls := 0
		err := p.Do(context.Background(), func(attempt int) (bool, error) {
			calls++
			if attempt == 0 {
				return true, boom
			}
			return false, nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("GivesUp", func(t *testing.T) {
		calls := 0
		err := p.Do(context.Background(), func(int) (bool, error) {
			calls++
			return true, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, calls)
	})

	t.Run("NoRetryRequested", func(t *testing.T) {
		calls := 0
		err := p.Do(context.Background(), func(int) (bool, error) {
			calls++
			return false, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("ContextCanceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		slow := Policy{MaxRetries: 5, InitialDelay: time.Hour}
		calls := 0
		err := slow.Do(ctx, func(int) (bool, error) {
			calls++
			return true, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}
