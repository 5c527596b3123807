package services

import (
	"context"
	"sort"
	"strings"

	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// maxThreadDepth bounds the walk from a reply up to its root.
const maxThreadDepth = 1000

type Messages struct {
	base
}

type NewMessage struct {
	RecipientID *uuid.UUID
	Subject     string
	Body        string
	ReplyOfID   *uuid.UUID
}

// Send delivers a message. A reply must come from one of the parent's
// participants and goes to the other one unless a recipient is given.
func (s *Messages) Send(ctx context.Context, actor models.Actor, in NewMessage) (*models.Message, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, utils.WithField(utils.ErrInvalid, "body")
	}
	msg := models.Message{
		SenderID: actor.ID,
		Subject:  strings.TrimSpace(in.Subject),
		Body:     body,
	}
	err := s.transact(ctx, func(tx *gorm.DB) error {
		if in.ReplyOfID != nil {
			var parent models.Message
			if err := tx.First(&parent, "id = ?", *in.ReplyOfID).Error; err != nil {
				return lookupErr(err, "reply_of")
			}
			if !participant(actor, parent) {
				return utils.ErrNotAuthorized
			}
			msg.ReplyOfID = &parent.ID
			msg.RecipientID = parent.SenderID
			if parent.SenderID == actor.ID {
				msg.RecipientID = parent.RecipientID
			}
			if msg.Subject == "" {
				msg.Subject = "Re: " + strings.TrimPrefix(parent.Subject, "Re: ")
			}
		}
		if in.RecipientID != nil {
			msg.RecipientID = *in.RecipientID
		}
		if msg.RecipientID == uuid.Nil {
			return utils.WithField(utils.ErrInvalid, "recipient_id")
		}
		if msg.Subject == "" {
			return utils.WithField(utils.ErrInvalid, "subject")
		}
		var recipient models.User
		if err := tx.First(&recipient, "id = ?", msg.RecipientID).Error; err != nil {
			return lookupErr(err, "recipient")
		}
		return tx.Create(&msg).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"message_id":   msg.ID,
		"sender_id":    msg.SenderID,
		"recipient_id": msg.RecipientID,
	}).Info("message sent")
	return &msg, nil
}

func participant(actor models.Actor, m models.Message) bool {
	return m.SenderID == actor.ID || m.RecipientID == actor.ID
}

// Inbox lists messages received by the caller, newest first.
func (s *Messages) Inbox(ctx context.Context, actor models.Actor) ([]models.Message, error) {
	var msgs []models.Message
	err := s.read(ctx).Where("recipient_id = ?", actor.ID).Order("created_at DESC").Find(&msgs).Error
	if err != nil {
		return nil, errors.Wrap(err, "load inbox")
	}
	return msgs, nil
}

func (s *Messages) Sent(ctx context.Context, actor models.Actor) ([]models.Message, error) {
	var msgs []models.Message
	err := s.read(ctx).Where("sender_id = ?", actor.ID).Order("created_at DESC").Find(&msgs).Error
	if err != nil {
		return nil, errors.Wrap(err, "load sent messages")
	}
	return msgs, nil
}

// Thread returns the whole conversation containing id, root first and
// then in sending order. Replies are found through reply_of_id.
func (s *Messages) Thread(ctx context.Context, actor models.Actor, id uuid.UUID) ([]models.Message, error) {
	db := s.read(ctx)
	var start models.Message
	if err := db.First(&start, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "message")
	}
	if !actor.IsAdmin() && !participant(actor, start) {
		return nil, utils.ErrNotAuthorized
	}

	root := start
	seen := map[uuid.UUID]bool{root.ID: true}
	for depth := 0; root.ReplyOfID != nil && depth < maxThreadDepth; depth++ {
		if seen[*root.ReplyOfID] {
			break
		}
		var parent models.Message
		err := db.First(&parent, "id = ?", *root.ReplyOfID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "load parent message")
		}
		seen[parent.ID] = true
		root = parent
	}

	thread := []models.Message{root}
	visited := map[uuid.UUID]bool{root.ID: true}
	frontier := []uuid.UUID{root.ID}
	for len(frontier) > 0 {
		var replies []models.Message
		if err := db.Where("reply_of_id IN ?", frontier).Find(&replies).Error; err != nil {
			return nil, errors.Wrap(err, "load replies")
		}
		frontier = frontier[:0]
		for _, r := range replies {
			if visited[r.ID] {
				continue
			}
			visited[r.ID] = true
			thread = append(thread, r)
			frontier = append(frontier, r.ID)
		}
	}
	rest := thread[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].CreatedAt.Before(rest[j].CreatedAt)
	})
	return thread, nil
}

// MarkRead stamps a received message as read.
func (s *Messages) MarkRead(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	return s.transact(ctx, func(tx *gorm.DB) error {
		var msg models.Message
		if err := tx.First(&msg, "id = ?", id).Error; err != nil {
			return lookupErr(err, "message")
		}
		if msg.RecipientID != actor.ID {
			return utils.ErrNotOwned
		}
		if msg.ReadAt != nil {
			return nil
		}
		return tx.Model(&msg).Update("read_at", s.cfg.now()).Error
	})
}
