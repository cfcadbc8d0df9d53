package service

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/jetstream"
)

var ErrMailPublishTimeout = errors.New("timeout waiting for NATS acknowledgement")

// MailPublisher queues mail jobs on the mail stream.
type MailPublisher struct {
	JS nats.JetStreamContext
}

func NewMailPublisher(js nats.JetStreamContext) *MailPublisher {
	return &MailPublisher{
		JS: js,
	}
}

func (s *MailPublisher) Enqueue(ctx context.Context, job *types.MailJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}

	opts := []nats.PubOpt{}
	if id := jetstream.MailMsgID(job.Kind, job.DedupeID); id != "" {
		opts = append(opts, nats.MsgId(id))
	}

	pub, err := s.JS.PublishAsync(jetstream.MailSubject(job.Kind), b, opts...)
	if err != nil {
		return errors.Wrap(err, "publish mail job")
	}

	select {
	case err := <-pub.Err():
		return errors.Wrap(err, "publish mail job")
	case <-pub.Ok():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second * 2):
		return ErrMailPublishTimeout
	}
}
