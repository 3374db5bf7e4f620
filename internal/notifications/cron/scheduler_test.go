package cronjob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	windows []time.Duration
	err     error
}

func (f *fakePurger) PurgeRead(_ context.Context, olderThan time.Duration) (int64, error) {
	f.windows = append(f.windows, olderThan)
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

func TestScheduler_RunOnce(t *testing.T) {
	p := &fakePurger{}
	s := NewScheduler(p, "0 0 3 * * *", 48*time.Hour)

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, []time.Duration{48 * time.Hour}, p.windows)

	p.err = errors.New("db down")
	_, err = s.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestScheduler_Start(t *testing.T) {
	t.Run("rejects bad schedule", func(t *testing.T) {
		s := NewScheduler(&fakePurger{}, "every day", time.Hour)
		assert.Error(t, s.Start())
	})

	t.Run("starts and stops", func(t *testing.T) {
		s := NewScheduler(&fakePurger{}, "0 0 3 * * *", time.Hour)
		require.NoError(t, s.Start())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	})
}
