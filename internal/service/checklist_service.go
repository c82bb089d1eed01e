package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dom/tickify/internal/domain"
	"github.com/dom/tickify/internal/events"
	"github.com/dom/tickify/internal/repository"
	"github.com/google/uuid"
)

// ChangePublisher receives every successful checklist mutation.
type ChangePublisher interface {
	Publish(accountID uuid.UUID, changeType events.ChangeType, item *domain.ChecklistItem)
}

type ChecklistService struct {
	items     repository.ChecklistRepository
	accounts  repository.AccountRepository
	publisher ChangePublisher
}

func NewChecklistService(items repository.ChecklistRepository, accounts repository.AccountRepository, publisher ChangePublisher) *ChecklistService {
	return &ChecklistService{
		items:     items,
		accounts:  accounts,
		publisher: publisher,
	}
}

type AddItemInput struct {
	Text      string
	Completed bool
	Priority  string
	// CreatedBy defaults to the caller when nil or empty.
	CreatedBy *string
}

// List returns every item in the store, newest first.
func (s *ChecklistService) List(ctx context.Context) ([]*domain.ChecklistItem, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// ListByOwner returns the items created by owner, newest first. An empty
// owner means the caller; any other owner is forbidden.
func (s *ChecklistService) ListByOwner(ctx context.Context, caller domain.Identity, owner string) ([]*domain.ChecklistItem, error) {
	ownerID := caller.AccountID
	if owner != "" {
		id, err := parseID(owner)
		if err != nil {
			return nil, err
		}
		if id != caller.AccountID {
			return nil, fmt.Errorf("%w: cannot list another account's items", domain.ErrForbidden)
		}
		ownerID = id
	}

	items, err := s.items.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *ChecklistService) Add(ctx context.Context, caller domain.Identity, input AddItemInput) (*domain.ChecklistItem, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, domain.NewValidationError("text", "Text field is required!")
	}

	priority, err := domain.ParsePriority(input.Priority)
	if err != nil {
		return nil, err
	}

	createdBy, err := s.resolveCreator(ctx, caller, input.CreatedBy)
	if err != nil {
		return nil, err
	}

	item := &domain.ChecklistItem{
		ID:        uuid.New(),
		Text:      text,
		Completed: input.Completed,
		Priority:  priority,
		CreatedBy: createdBy,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.publish(events.ItemCreated, item)
	return item, nil
}

func (s *ChecklistService) resolveCreator(ctx context.Context, caller domain.Identity, createdBy *string) (uuid.UUID, error) {
	if createdBy == nil || *createdBy == "" {
		// Tokens outlive deleted sub-accounts.
		if _, err := s.accounts.GetByID(ctx, caller.AccountID); err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return uuid.Nil, fmt.Errorf("%w: account no longer exists", domain.ErrUnauthorized)
			}
			return uuid.Nil, fmt.Errorf("get caller: %w", err)
		}
		return caller.AccountID, nil
	}

	id, err := parseID(*createdBy)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := s.accounts.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return uuid.Nil, domain.ErrUnknownCreator
		}
		return uuid.Nil, fmt.Errorf("get creator: %w", err)
	}
	if id != caller.AccountID {
		return uuid.Nil, domain.ErrForeignCreator
	}
	return id, nil
}

// Update merges patch into the caller's item. Fields absent from the patch
// keep their stored values.
func (s *ChecklistService) Update(ctx context.Context, caller domain.Identity, id string, patch domain.ItemPatch) (*domain.ChecklistItem, error) {
	item, err := s.ownedItem(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return item, nil
	}

	updated, err := s.items.Update(ctx, item.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.publish(events.ItemUpdated, updated)
	return updated, nil
}

func (s *ChecklistService) Delete(ctx context.Context, caller domain.Identity, id string) error {
	item, err := s.ownedItem(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, item.ID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.publish(events.ItemDeleted, item)
	return nil
}

// Stats summarises the caller's items.
func (s *ChecklistService) Stats(ctx context.Context, caller domain.Identity) (domain.ChecklistStats, error) {
	total, completed, err := s.items.CountByOwner(ctx, caller.AccountID)
	if err != nil {
		return domain.ChecklistStats{}, fmt.Errorf("count items: %w", err)
	}
	return domain.ComputeStats(total, completed), nil
}

func (s *ChecklistService) ownedItem(ctx context.Context, caller domain.Identity, id string) (*domain.ChecklistItem, error) {
	itemID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item.CreatedBy != caller.AccountID {
		return nil, domain.ErrNotOwner
	}
	return item, nil
}

func (s *ChecklistService) publish(changeType events.ChangeType, item *domain.ChecklistItem) {
	if s.publisher != nil {
		s.publisher.Publish(item.CreatedBy, changeType, item)
	}
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return id, nil
}
