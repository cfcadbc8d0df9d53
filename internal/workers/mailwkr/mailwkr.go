package mailwkr

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"properly.homes/backend/internal/app/appconfig"
	"properly.homes/backend/internal/app/appcontext"
	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/jetstream"
	"properly.homes/backend/internal/pkg/mailer"
	"properly.homes/backend/internal/pkg/observability"
)

const (
	taskTimeout   = 30 * time.Second
	sendAttempts  = 3
	firstRetryGap = 500 * time.Millisecond
)

type WorkerDeps struct {
	fx.In

	JetStream nats.JetStreamContext
	Mailer    mailer.Mailer
	Renderer  *mailer.Renderer
}

type Worker struct {
	// count is the number of consumers
	count int

	// retryDelay is the base delay of the exponential backoff between send attempts
	retryDelay time.Duration

	WorkerDeps
}

func Start(lc fx.Lifecycle, conf *appconfig.Config, deps WorkerDeps) {
	if conf.AppContext.Env != appcontext.EnvServer || !conf.WorkerEnabled {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{WorkerDeps: deps, retryDelay: firstRetryGap}

	ch := make(chan error, 16)
	// handle & dump errors from consumers
	go func() {
		for {
			select {
			case err := <-ch:
				log.Error().Err(err).Str("evt.name", "mailwkr.error").Msg("mail worker error")
			case <-ctx.Done():
				return
			}
		}
	}()

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for i := 0; i < conf.MailWorkerCount; i++ {
				go func() {
					if err := w.Consumer(ctx, ch); err != nil && !errors.Is(err, context.Canceled) {
						ch <- err
					}
				}()
				w.count++
			}
			log.Info().Int("consumers", w.count).Msg("mail worker started")
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func (w *Worker) Consumer(ctx context.Context, ch chan error) error {
	msgChan := make(chan *nats.Msg, 16)

	sub, err := w.JetStream.ChanQueueSubscribe(jetstream.MailSubject("*"), constant.MailQueueGroup, msgChan,
		nats.AckWait(taskTimeout+10*time.Second), nats.MaxAckPending(64), nats.ManualAck())
	if err != nil {
		log.Err(err).Msg("failed to subscribe to mail subjects")
		return err
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			log.Warn().Err(err).Msg("failed to unsubscribe mail consumer")
		}
	}()

	for {
		select {
		case msg := <-msgChan:
			if meta, err := msg.Metadata(); err == nil {
				observability.MailConsumeMessagingLatency.WithLabelValues().Observe(time.Since(meta.Timestamp).Seconds())
			}

			func() {
				taskCtx, cancelTask := context.WithTimeout(ctx, taskTimeout)
				defer func() {
					cancelTask()
					// failures are not redelivered: the retries already happened in Handle
					if err := msg.Ack(); err != nil {
						log.Error().Err(err).Msg("failed to ack")
					}
				}()

				if err := w.Handle(taskCtx, msg.Data); err != nil {
					ch <- err
				}
			}()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Handle renders and delivers a single mail job.
func (w *Worker) Handle(ctx context.Context, data []byte) error {
	job := &types.MailJob{}
	if err := json.Unmarshal(data, job); err != nil {
		observability.MailDelivery.WithLabelValues("unknown", "malformed").Inc()
		return errors.Wrap(err, "decode mail job")
	}

	subject, body, err := w.Renderer.Render(job.Kind, job.Language, job.Data)
	if err != nil {
		observability.MailDelivery.WithLabelValues(job.Kind, "render_failed").Inc()
		log.Error().
			Err(err).
			Str("evt.name", "mailwkr.render.failed").
			Str("job", spew.Sdump(job)).
			Msg("failed to render mail")
		return err
	}

	msg := &mailer.Message{
		To:      job.To,
		Subject: subject,
		Body:    body,
	}
	if job.Kind == types.MailKindContact {
		msg.ReplyTo = job.Data["email"]
	}

	start := time.Now()
	err = retry.Do(
		func() error {
			return w.Mailer.Send(ctx, msg)
		},
		retry.Context(ctx),
		retry.Attempts(sendAttempts),
		retry.Delay(w.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Str("kind", job.Kind).Msg("mail delivery failed, retrying")
		}),
	)
	observability.MailDeliveryDuration.WithLabelValues(job.Kind).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.MailDelivery.WithLabelValues(job.Kind, "failed").Inc()
		log.Error().
			Err(err).
			Str("evt.name", "mailwkr.send.failed").
			Str("job", spew.Sdump(job)).
			Msg("failed to deliver mail")
		return err
	}

	observability.MailDelivery.WithLabelValues(job.Kind, "sent").Inc()
	log.Info().Str("evt.name", "mailwkr.sent").Str("kind", job.Kind).Str("dedupeId", job.DedupeID).Msg("mail delivered")
	return nil
}
