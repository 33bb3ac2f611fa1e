package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushq/coordination-api/pkg/config"
	"github.com/campushq/coordination-api/pkg/jobs"
	"github.com/campushq/coordination-api/pkg/mailer"
)

// EmailSender delivers a single message to an SMTP relay.
type EmailSender interface {
	Send(ctx context.Context, email mailer.Email) error
}

type emailJob struct {
	To      string
	Subject string
	Message string
}

// NotificationService dispatches review and submission emails through a
// background worker queue. Delivery is best effort: a failed email never
// fails the request that triggered it.
type NotificationService struct {
	sender  EmailSender
	metrics *MetricsService
	queue   *jobs.Queue
	logger  *zap.Logger
	enabled bool
}

// NewNotificationService constructs the dispatcher and its queue.
func NewNotificationService(sender EmailSender, metrics *MetricsService, cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		sender:  sender,
		metrics: metrics,
		logger:  logger,
		enabled: cfg.Enabled && sender != nil,
	}
	s.queue = jobs.NewQueue("notifications", s.handleJob, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool.
func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the queue and stops the workers.
func (s *NotificationService) Stop() {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Stop()
}

// Dispatch enqueues an email. Recipients without an address are skipped
// silently; enqueue failures are logged and swallowed.
func (s *NotificationService) Dispatch(to, subject, message string) {
	if s == nil || !s.enabled {
		return
	}
	if to == "" {
		s.logger.Debug("notification skipped, recipient has no email", zap.String("subject", subject))
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "email",
		Payload: emailJob{To: to, Subject: subject, Message: message},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("to", to), zap.Error(err))
	}
}

func (s *NotificationService) handleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(emailJob)
	if !ok {
		s.logger.Error("notification job carried unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	email := mailer.BuildNotificationEmail(payload.To, payload.Subject, payload.Message)
	err := s.sender.Send(ctx, email)
	if s.metrics != nil {
		s.metrics.RecordEmailDelivery(err == nil)
	}
	return err
}
