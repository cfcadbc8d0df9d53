package subwkr

import (
	"context"
	"testing"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/pkg/middlewares"
)

type fakeMutex struct {
	locker *fakeLocker
}

func (m *fakeMutex) Lock() error {
	if m.locker.held {
		return redsync.ErrFailed
	}
	m.locker.held = true
	return nil
}

func (m *fakeMutex) Unlock() (bool, error) {
	m.locker.held = false
	m.locker.released++
	return true, nil
}

type fakeLocker struct {
	held     bool
	released int
	names    []string
}

func (l *fakeLocker) NewMutex(name string, options ...redsync.Option) middlewares.Mutex {
	l.names = append(l.names, name)
	return &fakeMutex{locker: l}
}

type fakeSweeper struct {
	calls int
	err   error
}

func (s *fakeSweeper) Sweep(ctx context.Context) (int64, int64, error) {
	s.calls++
	return 2, 1, s.err
}

func TestSweepTakesTheLock(t *testing.T) {
	locker := &fakeLocker{}
	sweeper := &fakeSweeper{}
	w := &Worker{interval: time.Minute, locker: locker, sweeper: sweeper}

	require.NoError(t, w.sweep(context.Background()))
	assert.Equal(t, 1, sweeper.calls)
	assert.Equal(t, 1, w.count)
	assert.Equal(t, []string{constant.SweeperMutexName}, locker.names)
	assert.False(t, locker.held)
	assert.Equal(t, 1, locker.released)
}

func TestSweepSkipsWhenLocked(t *testing.T) {
	locker := &fakeLocker{held: true}
	sweeper := &fakeSweeper{}
	w := &Worker{interval: time.Minute, locker: locker, sweeper: sweeper}

	require.NoError(t, w.sweep(context.Background()))
	assert.Zero(t, sweeper.calls)
	assert.Zero(t, w.count)
	assert.True(t, locker.held)
}

func TestSweepReportsFailure(t *testing.T) {
	locker := &fakeLocker{}
	sweeper := &fakeSweeper{err: errors.New("db down")}
	w := &Worker{interval: time.Minute, locker: locker, sweeper: sweeper}

	assert.Error(t, w.sweep(context.Background()))
	assert.Zero(t, w.count)
	assert.False(t, locker.held)
}
