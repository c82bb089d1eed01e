package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority maps an empty string to the default priority.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityLow, nil
	}
	p := Priority(strings.ToLower(s))
	if !p.IsValid() {
		return "", NewValidationError("priority", "Priority must be 'low', 'medium', or 'high'")
	}
	return p, nil
}

type ChecklistItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key" db:"id"`
	Text      string    `json:"text" gorm:"not null" db:"text"`
	Completed bool      `json:"completed" gorm:"not null;default:false" db:"completed"`
	Priority  Priority  `json:"priority" gorm:"type:varchar(10);not null;default:'low'" db:"priority"`
	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null;index" db:"created_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ItemPatch holds the fields of a partial update. Nil fields are left alone.
type ItemPatch struct {
	Text      *string
	Completed *bool
	Priority  *Priority
}

func (p ItemPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil && p.Priority == nil
}

// Validate normalizes the text in place and rejects empty text or an
// unknown priority.
func (p *ItemPatch) Validate() error {
	if p.Text != nil {
		text := strings.TrimSpace(*p.Text)
		if text == "" {
			return NewValidationError("text", "Text field is required!")
		}
		p.Text = &text
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return NewValidationError("priority", "Priority must be 'low', 'medium', or 'high'")
	}
	return nil
}

// Apply merges the patch into item.
func (p ItemPatch) Apply(item *ChecklistItem) {
	if p.Text != nil {
		item.Text = *p.Text
	}
	if p.Completed != nil {
		item.Completed = *p.Completed
	}
	if p.Priority != nil {
		item.Priority = *p.Priority
	}
}

// ChecklistStats summarises an owner's items.
type ChecklistStats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Active         int `json:"active"`
	CompletionRate int `json:"completionRate"`
}

// ComputeStats derives ChecklistStats from total and completed counts.
func ComputeStats(total, completed int) ChecklistStats {
	stats := ChecklistStats{Total: total, Completed: completed, Active: total - completed}
	if total > 0 {
		stats.CompletionRate = (completed*100 + total/2) / total
	}
	return stats
}
