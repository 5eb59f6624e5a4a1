package services

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
)

// Topic for category-trigger email jobs.
const emailTopic = "notifications.email"

// EmailJob is the outbound message a worker delivers with retry. The
// producer's contract is enqueue-never-await: correctness of the mutation
// that produced the job does not depend on delivery.
type EmailJob struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	SurveyID string `json:"surveyId"`
}

// Outbox publishes jobs to the in-process queue.
type Outbox struct {
	publisher message.Publisher
}

// NewPubSub creates the gochannel Pub/Sub both sides share. Persistent:
// messages published before the worker subscribes are not lost.
func NewPubSub(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
		Persistent:          true,
	}, logger)
}

// NewOutbox wraps a publisher.
func NewOutbox(publisher message.Publisher) *Outbox {
	return &Outbox{publisher: publisher}
}

// EnqueueEmail publishes one email job. Errors are returned for logging
// only; callers must not fail their own operation on them.
func (o *Outbox) EnqueueEmail(job EmailJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return o.publisher.Publish(emailTopic, msg)
}

// Mailer delivers one email. Implementations must tolerate duplicate
// delivery: the worker retries at-least-once.
type Mailer interface {
	Send(to, subject, body string) error
}

// NewEmailWorker builds a router consuming email jobs with bounded retries
// and exponential backoff. Run it with router.Run(ctx); it stops when the
// context is cancelled.
func NewEmailWorker(subscriber message.Subscriber, mailer Mailer, maxRetries int, logger watermill.LoggerAdapter) (*message.Router, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, err
	}
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      maxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     30 * time.Second,
			Multiplier:      2,
			Logger:          logger,
		}.Middleware,
	)
	router.AddNoPublisherHandler(
		"email_sender",
		emailTopic,
		subscriber,
		func(msg *message.Message) error {
			var job EmailJob
			if err := json.Unmarshal(msg.Payload, &job); err != nil {
				// Malformed payloads are dropped; retrying cannot fix them.
				return nil
			}
			return mailer.Send(job.To, job.Subject, job.Body)
		},
	)
	return router, nil
}

// RunEmailWorker starts the worker and blocks until ctx is cancelled.
func RunEmailWorker(ctx context.Context, router *message.Router) error {
	return router.Run(ctx)
}
