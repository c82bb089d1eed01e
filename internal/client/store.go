package client

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dom/tickify/internal/domain"
)

const guestDBFile = "guest.db"

// ChecklistStore is where the client keeps checklist items: the server for
// a signed-in session, a local file for guests.
type ChecklistStore interface {
	List(ctx context.Context) ([]Item, error)
	Add(ctx context.Context, item NewItem) (*Item, error)
	Update(ctx context.Context, id string, patch domain.ItemPatch) (*Item, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewChecklistStore picks the store for session: remote when it is
// authenticated at now, otherwise the guest store in stateDir. Guest items
// are never copied to an account.
func NewChecklistStore(ctx context.Context, session *Session, api *APIClient, stateDir string, now time.Time) (ChecklistStore, error) {
	if session.Authenticated(now) {
		return NewRemoteStore(api, session.Token), nil
	}
	return OpenLocalStore(ctx, filepath.Join(stateDir, guestDBFile))
}

// FindItem resolves ref against items as listed: a 1-based position, a full
// id, or a unique id prefix.
func FindItem(items []Item, ref string) (*Item, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.NewValidationError("item", "Item reference is required")
	}

	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(items) {
		return &items[n-1], nil
	}

	var match *Item
	for i := range items {
		if items[i].ID == ref {
			return &items[i], nil
		}
		if strings.HasPrefix(items[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("%w: %q matches more than one item", domain.ErrBadRequest, ref)
			}
			match = &items[i]
		}
	}
	if match == nil {
		return nil, domain.ErrItemNotFound
	}
	return match, nil
}

// HighPriority keeps the items marked high, in order.
func HighPriority(items []Item) []Item {
	out := []Item{}
	for _, item := range items {
		if item.Priority == domain.PriorityHigh {
			out = append(out, item)
		}
	}
	return out
}

// Search keeps the items whose text contains query, ignoring case. An empty
// query keeps everything.
func Search(items []Item, query string) []Item {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}
	out := []Item{}
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Text), query) {
			out = append(out, item)
		}
	}
	return out
}

// Stats summarises items the way the server does for an account.
func Stats(items []Item) domain.ChecklistStats {
	completed := 0
	for _, item := range items {
		if item.Completed {
			completed++
		}
	}
	return domain.ComputeStats(len(items), completed)
}
