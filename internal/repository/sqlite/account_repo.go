package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dom/tickify/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var accountColumns = []string{
	"id", "email", "password_hash", "account_name", "name_key",
	"parent_account_id", "created_at", "updated_at",
}

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	query, args, err := psql.Insert("accounts").
		Columns(accountColumns...).
		Values(
			account.ID, account.Email, account.PasswordHash, account.AccountName, account.NameKey,
			account.ParentAccountID, account.CreatedAt, account.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return duplicateAccountError(account)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

func (r *accountRepository) GetByEmailAndName(ctx context.Context, email string, accountName *string) (*domain.Account, error) {
	return r.getOne(ctx, sq.Eq{"email": email, "name_key": domain.NameKey(accountName)})
}

func (r *accountRepository) getOne(ctx context.Context, where sq.Eq) (*domain.Account, error) {
	query, args, err := psql.Select(accountColumns...).From("accounts").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var account domain.Account
	if err := r.db.GetContext(ctx, &account, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Account, error) {
	query, args, err := psql.Select(accountColumns...).
		From("accounts").
		Where(sq.Eq{"email": email}).
		OrderBy("account_name IS NOT NULL", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	accounts := []*domain.Account{}
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	account.UpdatedAt = time.Now().UTC()

	query, args, err := psql.Update("accounts").
		SetMap(map[string]interface{}{
			"email":             account.Email,
			"password_hash":     account.PasswordHash,
			"account_name":      account.AccountName,
			"name_key":          account.NameKey,
			"parent_account_id": account.ParentAccountID,
			"updated_at":        account.UpdatedAt,
		}).
		Where(sq.Eq{"id": account.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateAccountError(account)
		}
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(result, domain.ErrAccountNotFound)
}

func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM checklist_items WHERE created_by = ?", id); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if err := requireRow(result, domain.ErrAccountNotFound); err != nil {
		return err
	}

	return tx.Commit()
}

func requireRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func duplicateAccountError(account *domain.Account) error {
	if account.IsPrimary() {
		return domain.ErrAccountExists
	}
	return domain.ErrAccountNameTaken
}
