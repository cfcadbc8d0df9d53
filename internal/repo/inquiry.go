package repo

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo/selector"
)

type Inquiry struct {
	db  *bun.DB
	sel selector.S[model.Inquiry]
}

func NewInquiry(db *bun.DB) *Inquiry {
	return &Inquiry{
		db:  db,
		sel: selector.New[model.Inquiry](db),
	}
}

func (r *Inquiry) Create(ctx context.Context, inq *model.Inquiry) error {
	_, err := r.db.NewInsert().Model(inq).Returning("*").Exec(ctx)
	return err
}

func (r *Inquiry) ListByAgent(ctx context.Context, agentID int64, status string, offset, limit int) ([]*model.Inquiry, int, error) {
	return r.sel.SelectPage(ctx, offset, limit, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Relation("Property", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Column("reference", "title")
		}).Where("iq.agent_id = ?", agentID)
		if status != "" {
			q = q.Where("iq.status = ?", status)
		}
		return q.Order("iq.created_at DESC")
	})
}

// SetStatus only touches inquiries addressed to agentID.
func (r *Inquiry) SetStatus(ctx context.Context, agentID, inquiryID int64, status string) error {
	res, err := r.db.NewUpdate().
		Model((*model.Inquiry)(nil)).
		Set("status = ?", status).
		Where("inquiry_id = ?", inquiryID).
		Where("agent_id = ?", agentID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return prerr.ErrNotFound
	}
	return nil
}

type Message struct {
	db  *bun.DB
	sel selector.S[model.Message]
}

func NewMessage(db *bun.DB) *Message {
	return &Message{
		db:  db,
		sel: selector.New[model.Message](db),
	}
}

func (r *Message) Create(ctx context.Context, msg *model.Message) error {
	_, err := r.db.NewInsert().Model(msg).Returning("*").Exec(ctx)
	return err
}

func (r *Message) Inbox(ctx context.Context, recipientID int64, offset, limit int) ([]*model.Message, int, error) {
	return r.sel.SelectPage(ctx, offset, limit, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("m.recipient_id = ?", recipientID).Order("m.created_at DESC")
	})
}

func (r *Message) MarkRead(ctx context.Context, recipientID, messageID int64, at time.Time) error {
	res, err := r.db.NewUpdate().
		Model((*model.Message)(nil)).
		Set("read_at = COALESCE(read_at, ?)", at).
		Where("message_id = ?", messageID).
		Where("recipient_id = ?", recipientID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return prerr.ErrNotFound
	}
	return nil
}
