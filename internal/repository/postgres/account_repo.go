package postgres

import (
	"context"
	"errors"

	"github.com/dom/tickify/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	err := r.db.WithContext(ctx).Create(account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return duplicateAccountError(account)
	}
	return err
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		return nil, accountLookupError(err)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmailAndName(ctx context.Context, email string, accountName *string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).
		Where("email = ? AND name_key = ?", email, domain.NameKey(accountName)).
		First(&account).Error
	if err != nil {
		return nil, accountLookupError(err)
	}
	return &account, nil
}

func (r *accountRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Account, error) {
	var accounts []*domain.Account
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("account_name IS NOT NULL, created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	err := r.db.WithContext(ctx).Save(account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return duplicateAccountError(account)
	}
	return err
}

func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.ChecklistItem{}, "created_by = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Account{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrAccountNotFound
		}
		return nil
	})
}

func accountLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrAccountNotFound
	}
	return err
}

func duplicateAccountError(account *domain.Account) error {
	if account.IsPrimary() {
		return domain.ErrAccountExists
	}
	return domain.ErrAccountNameTaken
}
