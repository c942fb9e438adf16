package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
	"github.com/cerajamme/myPUPQC-chatbot/internal/repository"
)

var (
	ErrChatNotFound = errors.New("direct chat not found")
	ErrChatClosed   = errors.New("direct chat is closed")
	ErrEmptyMessage = errors.New("message text is empty")
)

const defaultCloseReason = "The chat was closed."

// DirectChatStore is the relay's view of chat rows.
type DirectChatStore interface {
	Create(chat *model.DirectChat) error
	GetBySessionID(sessionID string) (*model.DirectChat, error)
	GetByID(id uint) (*model.DirectChat, error)
	List(status string) ([]model.DirectChat, error)
	UpdateStatus(id uint, status string, activity time.Time) error
	TouchActivity(id uint, activity time.Time) error
}

// DirectMessageStore is the relay's view of message rows.
type DirectMessageStore interface {
	Create(msg *model.DirectMessage) error
	ListAfter(chatID uint, afterID uint) ([]model.DirectMessage, error)
}

// MessagePollCache caches the full message list per chat so both sides'
// fixed-interval polling does not hammer the database. Optional; cache
// failures degrade to store reads.
type MessagePollCache interface {
	GetMessages(ctx context.Context, chatID uint) ([]model.DirectMessage, bool, error)
	SetMessages(ctx context.Context, chatID uint, messages []model.DirectMessage) error
	Invalidate(ctx context.Context, chatID uint) error
	MarkDirty(ctx context.Context, chatID uint) error
	IsDirty(ctx context.Context, chatID uint) (bool, error)
}

// RelayService manages human-handoff sessions: waiting -> active on the
// first admin reply, waiting|active -> closed terminally. Message ids are
// the polling watermark; delivery is at-least-once, pull-based.
type RelayService struct {
	chats    DirectChatStore
	messages DirectMessageStore
	cache    MessagePollCache
	log      *logrus.Logger
}

func NewRelayService(chats DirectChatStore, messages DirectMessageStore, cache MessagePollCache, log *logrus.Logger) *RelayService {
	return &RelayService{chats: chats, messages: messages, cache: cache, log: log}
}

// PostUserMessage finds or creates the chat for the session token and
// appends a user message. Creation is race-safe: a duplicate-key conflict
// from a concurrent first message resolves by re-reading the winner's row.
func (s *RelayService) PostUserMessage(ctx context.Context, sessionID, text, userIP string) (*model.DirectChat, *model.DirectMessage, error) {
	sessionID = strings.TrimSpace(sessionID)
	text = strings.TrimSpace(text)
	if sessionID == "" {
		return nil, nil, ErrInvalidInput
	}
	if text == "" {
		return nil, nil, ErrEmptyMessage
	}

	chat, err := s.chats.GetBySessionID(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if chat == nil {
		now := time.Now()
		chat = &model.DirectChat{
			SessionID:    sessionID,
			UserIP:       userIP,
			Status:       model.DirectChatStatusWaiting,
			CreatedAt:    now,
			LastActivity: now,
		}
		if err := s.chats.Create(chat); err != nil {
			if !errors.Is(err, repository.ErrDuplicateSession) {
				return nil, nil, err
			}
			chat, err = s.chats.GetBySessionID(sessionID)
			if err != nil {
				return nil, nil, err
			}
			if chat == nil {
				return nil, nil, ErrChatNotFound
			}
		}
	}

	msg, err := s.append(ctx, chat, model.SenderUser, text)
	if err != nil {
		return nil, nil, err
	}
	return chat, msg, nil
}

// PostAdminMessage appends an admin message and activates the chat.
// Unknown chats are a not-found error; closed chats are rejected.
func (s *RelayService) PostAdminMessage(ctx context.Context, chatID uint, text string) (*model.DirectMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	chat, err := s.chats.GetByID(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	if chat.Status == model.DirectChatStatusClosed {
		return nil, ErrChatClosed
	}

	msg := &model.DirectMessage{
		ChatID:     chat.ID,
		SenderType: model.SenderAdmin,
		Message:    text,
		SentAt:     time.Now(),
	}
	if err := s.messages.Create(msg); err != nil {
		return nil, err
	}
	// Any admin reply activates a waiting chat.
	if err := s.chats.UpdateStatus(chat.ID, model.DirectChatStatusActive, msg.SentAt); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, chat.ID)
	return msg, nil
}

// PollNewMessages returns messages with id strictly greater than
// lastSeenID, oldest first. An unknown session is a normal condition
// (client polling before any chat exists) and yields an empty list.
func (s *RelayService) PollNewMessages(ctx context.Context, sessionID string, lastSeenID uint) ([]model.DirectMessage, error) {
	chat, err := s.chats.GetBySessionID(strings.TrimSpace(sessionID))
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return []model.DirectMessage{}, nil
	}
	return s.listAfter(ctx, chat.ID, lastSeenID)
}

// ListMessages is the admin-side poll, addressed by chat id.
func (s *RelayService) ListMessages(ctx context.Context, chatID uint, lastSeenID uint) ([]model.DirectMessage, error) {
	chat, err := s.chats.GetByID(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	return s.listAfter(ctx, chat.ID, lastSeenID)
}

// CloseSession terminally closes the chat for a session token and records
// the reason as a system message. A missing chat is a no-op, as is a chat
// that is already closed.
func (s *RelayService) CloseSession(ctx context.Context, sessionID, reason string) error {
	chat, err := s.chats.GetBySessionID(strings.TrimSpace(sessionID))
	if err != nil {
		return err
	}
	if chat == nil {
		return nil
	}
	return s.close(ctx, chat, reason)
}

// CloseChat is the admin-side close, addressed by chat id.
func (s *RelayService) CloseChat(ctx context.Context, chatID uint, reason string) error {
	chat, err := s.chats.GetByID(chatID)
	if err != nil {
		return err
	}
	if chat == nil {
		return ErrChatNotFound
	}
	return s.close(ctx, chat, reason)
}

// ListChats returns chats for the admin dashboard, most recent activity
// first; status filters when non-empty.
func (s *RelayService) ListChats(status string) ([]model.DirectChat, error) {
	return s.chats.List(status)
}

func (s *RelayService) close(ctx context.Context, chat *model.DirectChat, reason string) error {
	if chat.Status == model.DirectChatStatusClosed {
		return nil
	}
	if strings.TrimSpace(reason) == "" {
		reason = defaultCloseReason
	}

	now := time.Now()
	msg := &model.DirectMessage{
		ChatID:     chat.ID,
		SenderType: model.SenderSystem,
		Message:    reason,
		SentAt:     now,
	}
	if err := s.messages.Create(msg); err != nil {
		return err
	}
	if err := s.chats.UpdateStatus(chat.ID, model.DirectChatStatusClosed, now); err != nil {
		return err
	}
	s.invalidateCache(ctx, chat.ID)
	return nil
}

func (s *RelayService) append(ctx context.Context, chat *model.DirectChat, sender, text string) (*model.DirectMessage, error) {
	msg := &model.DirectMessage{
		ChatID:     chat.ID,
		SenderType: sender,
		Message:    text,
		SentAt:     time.Now(),
	}
	if err := s.messages.Create(msg); err != nil {
		return nil, err
	}
	if err := s.chats.TouchActivity(chat.ID, msg.SentAt); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, chat.ID)
	return msg, nil
}

// listAfter serves a poll, preferring the cached full message list and
// filtering by the caller's watermark in memory.
func (s *RelayService) listAfter(ctx context.Context, chatID uint, lastSeenID uint) ([]model.DirectMessage, error) {
	if s.cache != nil {
		if dirty, err := s.cache.IsDirty(ctx, chatID); err == nil && !dirty {
			if cached, hit, err := s.cache.GetMessages(ctx, chatID); err == nil && hit {
				return filterAfter(cached, lastSeenID), nil
			}
		}
	}

	all, err := s.messages.ListAfter(chatID, 0)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if dirty, err := s.cache.IsDirty(ctx, chatID); err == nil && !dirty {
			if err := s.cache.SetMessages(ctx, chatID, all); err != nil {
				s.log.WithError(err).Debug("poll cache set failed")
			}
		}
	}
	return filterAfter(all, lastSeenID), nil
}

func (s *RelayService) invalidateCache(ctx context.Context, chatID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.MarkDirty(ctx, chatID); err != nil {
		s.log.WithError(err).Debug("poll cache mark dirty failed")
	}
	if err := s.cache.Invalidate(ctx, chatID); err != nil {
		s.log.WithError(err).Debug("poll cache invalidate failed")
	}
}

func filterAfter(messages []model.DirectMessage, lastSeenID uint) []model.DirectMessage {
	out := make([]model.DirectMessage, 0, len(messages))
	for _, m := range messages {
		if m.ID > lastSeenID {
			out = append(out, m)
		}
	}
	return out
}
