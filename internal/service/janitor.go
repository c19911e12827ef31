package service

import (
	"time"

	"github.com/lshigami/Kestrel/internal/model"
	"github.com/lshigami/Kestrel/internal/repository"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// overdueSlack is added on top of an exam's duration before an abandoned
// attempt is force-closed, comfortably past the 2-minute start grace.
const overdueSlack = 5 * time.Minute

// Janitor force-closes IN_PROGRESS attempts whose exam timer ran out long
// ago, using the same COMPLETED path a teacher/admin force-close takes.
// Best-effort: failures are logged and retried on the next tick.
type Janitor struct {
	attemptRepo repository.AttemptRepository
	notifier    Notifier
	cron        *cron.Cron
}

func NewJanitor(attemptRepo repository.AttemptRepository, notifier Notifier) *Janitor {
	return &Janitor{attemptRepo: attemptRepo, notifier: notifier, cron: cron.New()}
}

func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc("* * * * *", j.Sweep); err != nil {
		return err
	}
	j.cron.Start()
	log.Info().Msg("Attempt janitor started")
	return nil
}

func (j *Janitor) Stop() {
	j.cron.Stop()
}

// Sweep closes every overdue in-progress attempt. Exams without a duration
// are never force-closed.
func (j *Janitor) Sweep() {
	attempts, err := j.attemptRepo.FindByStatusWithExam(model.StatusInProgress)
	if err != nil {
		log.Error().Err(err).Msg("Janitor: failed to list in-progress attempts")
		return
	}

	now := time.Now()
	for i := range attempts {
		attempt := &attempts[i]
		if attempt.Exam.Duration <= 0 {
			continue
		}
		deadline := attempt.StartTime.Add(time.Duration(attempt.Exam.Duration)*time.Minute + overdueSlack)
		if now.Before(deadline) {
			continue
		}
		if !model.CanTransition(attempt.Status, model.StatusCompleted, model.RoleAdmin) {
			continue
		}

		attempt.Status = model.StatusCompleted
		end := now
		attempt.EndTime = &end
		if err := j.attemptRepo.Save(attempt); err != nil {
			log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("Janitor: failed to force-close attempt")
			continue
		}
		log.Info().Uint("attemptID", attempt.ID).Uint("examID", attempt.ExamID).Msg("Janitor: force-closed overdue attempt")
		j.notifier.AttemptEvent(EventAttemptCompleted, attempt)
	}
}
