package events

import (
	"time"

	"github.com/dom/tickify/internal/domain"
)

type ChangeType string

const (
	ItemCreated ChangeType = "item.created"
	ItemUpdated ChangeType = "item.updated"
	ItemDeleted ChangeType = "item.deleted"
)

// Message is the frame pushed to every connection of the item's owner.
type Message struct {
	Type      ChangeType            `json:"type"`
	Item      *domain.ChecklistItem `json:"item"`
	Timestamp int64                 `json:"timestamp"`
}

func NewMessage(changeType ChangeType, item *domain.ChecklistItem) *Message {
	return &Message{
		Type:      changeType,
		Item:      item,
		Timestamp: time.Now().UnixMilli(),
	}
}
