package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/virginiacakes/storefront-backend/internal/app/service"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
)

const resetPurgeSpec = "@hourly"

// PendingDigestScheduler mails the admin a digest of stale pending work and
// purges expired password reset links.
type PendingDigestScheduler struct {
	cron       *cron.Cron
	digest     service.DigestService
	resets     service.PasswordResetService
	digestSpec string
	now        func() time.Time
}

func NewPendingDigestScheduler(digest service.DigestService, resets service.PasswordResetService, digestSpec string) *PendingDigestScheduler {
	if digestSpec == "" {
		digestSpec = "0 8 * * *"
	}
	return &PendingDigestScheduler{
		cron:       cron.New(),
		digest:     digest,
		resets:     resets,
		digestSpec: digestSpec,
		now:        time.Now,
	}
}

// Start registers both jobs and starts the cron runner.
func (s *PendingDigestScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.digestSpec, s.RunDigest); err != nil {
		logger.Error("Failed to add cron job for pending digest", err, map[string]interface{}{
			"spec": s.digestSpec,
		})
		return err
	}

	if s.resets != nil {
		if _, err := s.cron.AddFunc(resetPurgeSpec, s.RunPurge); err != nil {
			logger.Error("Failed to add cron job for reset purge", err)
			return err
		}
	}

	s.cron.Start()
	logger.Info("Pending digest scheduler started", map[string]interface{}{
		"digest_spec": s.digestSpec,
		"jobs":        len(s.cron.Entries()),
	})
	return nil
}

func (s *PendingDigestScheduler) RunDigest() {
	logger.Info("Starting scheduled pending digest", nil)

	result, err := s.digest.SendStalePending(s.now())
	if err != nil {
		logger.Error("Failed to send pending digest from scheduler", err)
		return
	}

	logger.Info("Finished scheduled pending digest", map[string]interface{}{
		"orders":    result.Orders,
		"transfers": result.Transfers,
	})
}

func (s *PendingDigestScheduler) RunPurge() {
	if _, err := s.resets.PurgeExpired(); err != nil {
		logger.Error("Failed to purge expired password resets", err)
	}
}

// Stop waits for running jobs to finish.
func (s *PendingDigestScheduler) Stop() {
	logger.Info("Stopping pending digest scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Pending digest scheduler stopped", nil)
}
