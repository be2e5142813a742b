package mockapi

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/placeboard/placeboard/internal/models"
)

// StartScheduler registers the job-closing sweep on the configured schedule.
// An empty schedule disables it.
func (s *Server) StartScheduler() error {
	if s.config.CloseSchedule == "" {
		s.logger.Debug().Msg("No close schedule configured")
		return nil
	}

	// Standard 5-field format plus descriptors such as "@every 1m"
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser))

	_, err := c.AddFunc(s.config.CloseSchedule, func() {
		closed, err := s.CloseExpiredJobs(s.now())
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to close expired jobs")
			return
		}
		if closed > 0 {
			s.logger.Info().Int64("closed", closed).Msg("Closed expired jobs")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid close schedule %q: %w", s.config.CloseSchedule, err)
	}

	s.cron = c
	s.cron.Start()
	s.logger.Info().Str("schedule", s.config.CloseSchedule).Msg("Job-closing scheduler started")
	return nil
}

// StopScheduler stops the sweep and waits for a running one to finish
func (s *Server) StopScheduler() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}

// CloseExpiredJobs closes every open job whose deadline is before now and
// tells the job's watchers. It returns the number of jobs closed.
func (s *Server) CloseExpiredJobs(now time.Time) (int64, error) {
	var closed int64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var jobs []models.Job
		if err := tx.Where("status = ? AND deadline IS NOT NULL AND deadline < ?", models.JobOpen, now).
			Find(&jobs).Error; err != nil {
			return err
		}

		for i := range jobs {
			job := &jobs[i]
			if err := tx.Model(job).Update("status", models.JobClosed).Error; err != nil {
				return err
			}
			if err := notifyJobWatchers(tx, job, "job",
				"Job closed",
				fmt.Sprintf("%s passed its deadline and was closed", job.Title)); err != nil {
				return err
			}
			closed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return closed, nil
}
