package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
)

// ErrDuplicateSession signals a unique-constraint violation on the chat
// session token; callers resolve the race by re-reading.
var ErrDuplicateSession = errors.New("direct chat session already exists")

type DirectChatRepository struct {
	db *gorm.DB
}

func NewDirectChatRepository(db *gorm.DB) *DirectChatRepository {
	return &DirectChatRepository{db: db}
}

func (r *DirectChatRepository) Create(chat *model.DirectChat) error {
	if err := r.db.Create(chat).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateSession
		}
		return fmt.Errorf("create direct chat failed: %w", err)
	}
	return nil
}

func (r *DirectChatRepository) GetBySessionID(sessionID string) (*model.DirectChat, error) {
	var chat model.DirectChat
	if err := r.db.Where("session_id = ?", sessionID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get direct chat by session failed: %w", err)
	}
	return &chat, nil
}

func (r *DirectChatRepository) GetByID(id uint) (*model.DirectChat, error) {
	var chat model.DirectChat
	if err := r.db.First(&chat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get direct chat failed: %w", err)
	}
	return &chat, nil
}

// List returns chats newest-activity first; status filters when non-empty.
func (r *DirectChatRepository) List(status string) ([]model.DirectChat, error) {
	q := r.db.Order("last_activity DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var chats []model.DirectChat
	if err := q.Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list direct chats failed: %w", err)
	}
	return chats, nil
}

func (r *DirectChatRepository) UpdateStatus(id uint, status string, activity time.Time) error {
	updates := map[string]interface{}{
		"status":        status,
		"last_activity": activity,
	}
	if err := r.db.Model(&model.DirectChat{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("update direct chat status failed: %w", err)
	}
	return nil
}

func (r *DirectChatRepository) TouchActivity(id uint, activity time.Time) error {
	if err := r.db.Model(&model.DirectChat{}).Where("id = ?", id).
		Update("last_activity", activity).Error; err != nil {
		return fmt.Errorf("touch direct chat activity failed: %w", err)
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// MySQL error 1062 surfaces as a plain error through the driver.
	return strings.Contains(err.Error(), "Duplicate entry")
}
