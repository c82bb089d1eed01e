package repository

import (
	"context"

	"github.com/dom/tickify/internal/domain"
	"github.com/google/uuid"
)

// AccountRepository persists accounts. Lookups that find nothing return
// domain.ErrAccountNotFound; unique (email, name) violations return
// domain.ErrAccountExists or domain.ErrAccountNameTaken.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// GetByEmailAndName matches accountName case-insensitively; a nil name
	// selects the primary account.
	GetByEmailAndName(ctx context.Context, email string, accountName *string) (*domain.Account, error)
	ListByEmail(ctx context.Context, email string) ([]*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	// Delete removes the account together with the checklist items it owns.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChecklistRepository persists checklist items. Lookups that find nothing
// return domain.ErrItemNotFound.
type ChecklistRepository interface {
	Create(ctx context.Context, item *domain.ChecklistItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ChecklistItem, error)
	List(ctx context.Context) ([]*domain.ChecklistItem, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.ChecklistItem, error)
	// Update writes only the fields set in patch and returns the stored item.
	Update(ctx context.Context, id uuid.UUID, patch domain.ItemPatch) (*domain.ChecklistItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (total int, completed int, err error)
}

type Repositories struct {
	Account   AccountRepository
	Checklist ChecklistRepository
}
