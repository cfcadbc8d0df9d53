package service

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/guregu/null.v3"

	"properly.homes/backend/internal/app/appconfig"
	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/authn"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo"
)

// Inquiry handles the messages exchanged between visitors, agents and the site team.
type Inquiry struct {
	Inquiries  InquiryStore
	Messages   MessageStore
	Properties PropertyStore
	Users      UserStore
	Mail       MailQueue

	SupportEmail    string
	FrontendBaseURL string
}

func NewInquiry(conf *appconfig.Config, inquiries *repo.Inquiry, messages *repo.Message, properties *repo.Property, users *repo.User, mail *MailPublisher) *Inquiry {
	return &Inquiry{
		Inquiries:       inquiries,
		Messages:        messages,
		Properties:      properties,
		Users:           users,
		Mail:            mail,
		SupportEmail:    conf.SupportEmail,
		FrontendBaseURL: conf.FrontendBaseURL,
	}
}

// Inquire records a visitor's request about an active listing and notifies its agent.
func (s *Inquiry) Inquire(ctx context.Context, ref string, principal *authn.Principal, req *types.InquiryRequest) (*model.Inquiry, error) {
	p, err := s.Properties.GetByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if p.Status != constant.PropertyStatusActive {
		return nil, prerr.ErrNotFound
	}

	inq := &model.Inquiry{
		PropertyID: p.PropertyID,
		AgentID:    p.AgentID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      null.NewString(req.Phone, req.Phone != ""),
		Message:    req.Message,
		Status:     constant.InquiryStatusNew,
	}
	if principal != nil && principal.UserID != 0 {
		inq.UserID = null.IntFrom(principal.UserID)
	}
	if err := s.Inquiries.Create(ctx, inq); err != nil {
		return nil, err
	}

	agent, err := s.Users.GetByID(ctx, p.AgentID)
	if err != nil {
		log.Error().Err(err).Str("evt.name", "inquiry.notify.failed").Int64("inquiryId", inq.InquiryID).Msg("failed to load agent")
		return inq, nil
	}
	err = s.Mail.Enqueue(ctx, &types.MailJob{
		Kind:     types.MailKindInquiry,
		To:       agent.Email,
		Language: agent.Language,
		Data: map[string]string{
			"agentName":     agent.FirstName,
			"name":          req.Name,
			"email":         req.Email,
			"phone":         req.Phone,
			"propertyTitle": p.Title,
			"reference":     p.Reference,
			"message":       req.Message,
			"baseUrl":       s.FrontendBaseURL,
		},
		DedupeID: "inquiry:" + strconv.FormatInt(inq.InquiryID, 10),
	})
	if err != nil {
		log.Error().Err(err).Str("evt.name", "inquiry.notify.failed").Int64("inquiryId", inq.InquiryID).Msg("failed to queue inquiry mail")
	}
	return inq, nil
}

func (s *Inquiry) ListForAgent(ctx context.Context, agentID int64, query *types.InquiryQuery) (*types.Page[*model.Inquiry], error) {
	offset, limit := query.Normalize()
	items, total, err := s.Inquiries.ListByAgent(ctx, agentID, query.Status, offset, limit)
	if err != nil {
		return nil, err
	}
	return types.NewPage(items, total, query.Pagination), nil
}

func (s *Inquiry) SetStatus(ctx context.Context, agentID, inquiryID int64, status string) error {
	return s.Inquiries.SetStatus(ctx, agentID, inquiryID, status)
}

// Contact stores a contact form submission for the site team.
func (s *Inquiry) Contact(ctx context.Context, req *types.ContactRequest, lang string) (*model.Message, error) {
	msg := &model.Message{
		Name:    null.StringFrom(req.Name),
		Email:   null.StringFrom(req.Email),
		Subject: req.Subject,
		Body:    req.Message,
	}
	if err := s.Messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	err := s.Mail.Enqueue(ctx, &types.MailJob{
		Kind:     types.MailKindContact,
		To:       s.SupportEmail,
		Language: lang,
		Data: map[string]string{
			"name":    req.Name,
			"email":   req.Email,
			"subject": req.Subject,
			"message": req.Message,
		},
		DedupeID: "contact:" + strconv.FormatInt(msg.MessageID, 10),
	})
	if err != nil {
		log.Error().Err(err).Str("evt.name", "contact.notify.failed").Int64("messageId", msg.MessageID).Msg("failed to queue contact mail")
	}
	return msg, nil
}

func (s *Inquiry) Send(ctx context.Context, senderID int64, req *types.SendMessageRequest) (*model.Message, error) {
	if req.RecipientID == senderID {
		return nil, prerr.ErrInvalidReq.Msg("you cannot message yourself")
	}
	if _, err := s.Users.GetByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, prerr.ErrNotFound) {
			return nil, prerr.ErrInvalidReq.Msg("recipient does not exist")
		}
		return nil, err
	}

	msg := &model.Message{
		SenderID:    null.IntFrom(senderID),
		RecipientID: null.IntFrom(req.RecipientID),
		Subject:     req.Subject,
		Body:        req.Body,
	}
	if req.PropertyRef != "" {
		p, err := s.Properties.GetByReference(ctx, req.PropertyRef)
		if err != nil {
			return nil, err
		}
		msg.PropertyID = null.IntFrom(p.PropertyID)
	}
	if err := s.Messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Inquiry) Inbox(ctx context.Context, userID int64, page *types.Pagination) (*types.Page[*model.Message], error) {
	offset, limit := page.Normalize()
	items, total, err := s.Messages.Inbox(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return types.NewPage(items, total, *page), nil
}

func (s *Inquiry) MarkRead(ctx context.Context, userID, messageID int64) error {
	return s.Messages.MarkRead(ctx, userID, messageID, time.Now())
}
