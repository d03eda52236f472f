package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virginiacakes/storefront-backend/internal/app/service"
)

type fakeDigest struct {
	calls []time.Time
	err   error
}

func (f *fakeDigest) SendStalePending(now time.Time) (*service.DigestResult, error) {
	f.calls = append(f.calls, now)
	if f.err != nil {
		return nil, f.err
	}
	return &service.DigestResult{Orders: 2, Transfers: 1}, nil
}

type fakeResets struct {
	service.PasswordResetService
	purged int
}

func (f *fakeResets) PurgeExpired() (int64, error) {
	f.purged++
	return 0, nil
}

func TestPendingDigestScheduler_RunDigest(t *testing.T) {
	digest := &fakeDigest{}
	s := NewPendingDigestScheduler(digest, nil, "")
	fixed := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.RunDigest()
	require.Len(t, digest.calls, 1)
	assert.Equal(t, fixed, digest.calls[0])
	assert.Equal(t, "0 8 * * *", s.digestSpec)

	digest.err = errors.New("db down")
	assert.NotPanics(t, s.RunDigest)
}

func TestPendingDigestScheduler_StartStop(t *testing.T) {
	resets := &fakeResets{}
	s := NewPendingDigestScheduler(&fakeDigest{}, resets, "30 7 * * *")

	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()

	s.RunPurge()
	assert.Equal(t, 1, resets.purged)
}

func TestPendingDigestScheduler_BadSpec(t *testing.T) {
	s := NewPendingDigestScheduler(&fakeDigest{}, nil, "not a cron line")
	assert.Error(t, s.Start())
}
