package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/tickify/internal/domain"
	"github.com/dom/tickify/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AccountService struct {
	accounts   repository.AccountRepository
	tokens     *TokenIssuer
	bcryptCost int
}

func NewAccountService(accounts repository.AccountRepository, tokens *TokenIssuer, bcryptCost int) *AccountService {
	return &AccountService{
		accounts:   accounts,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Credentials identify one account: the email plus an optional account name.
// A nil or blank AccountName selects the primary account.
type Credentials struct {
	Email       string
	Password    string
	AccountName *string
}

type CreateSubAccountInput struct {
	Email       string
	Password    string
	AccountName string
}

// AccountUpdate lists the mutable fields of an account. Nil fields are left
// unchanged.
type AccountUpdate struct {
	AccountName *string
	Password    *string
}

type AuthResult struct {
	Account *domain.Account
	Token   string
}

func (s *AccountService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	return s.issue(account)
}

// Authenticate backs both signin and account switching.
func (s *AccountService) Authenticate(ctx context.Context, creds Credentials) (*AuthResult, error) {
	account, err := s.lookup(ctx, creds)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPassword(account, creds.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(account)
}

// VerifyPassword checks credentials without minting a token.
func (s *AccountService) VerifyPassword(ctx context.Context, creds Credentials) (*domain.Account, error) {
	account, err := s.lookup(ctx, creds)
	if err != nil {
		return nil, err
	}

	if !checkPassword(account, creds.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	return account, nil
}

func (s *AccountService) lookup(ctx context.Context, creds Credentials) (*domain.Account, error) {
	email := domain.NormalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, domain.NewValidationError("email", "Email and password are required")
	}

	account, err := s.accounts.GetByEmailAndName(ctx, email, domain.NormalizeAccountName(creds.AccountName))
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

// CreateSubAccount adds a named account under the primary account of the
// caller's email. It does not sign the caller into the new account.
func (s *AccountService) CreateSubAccount(ctx context.Context, caller domain.Identity, input CreateSubAccountInput) (*domain.Account, error) {
	email := domain.NormalizeEmail(input.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if email != caller.Email {
		return nil, domain.ErrEmailMismatch
	}

	name := domain.NormalizeAccountName(&input.AccountName)
	if name == nil {
		return nil, domain.ErrAccountNameRequired
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	primary, err := s.accounts.GetByEmailAndName(ctx, email, nil)
	if err != nil {
		return nil, fmt.Errorf("find primary account: %w", err)
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:              uuid.New(),
		Email:           email,
		PasswordHash:    hash,
		ParentAccountID: &primary.ID,
	}
	account.SetAccountName(name)

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create sub-account: %w", err)
	}
	return account, nil
}

// ListAccountsForEmail returns the primary account first, then sub-accounts
// in creation order.
func (s *AccountService) ListAccountsForEmail(ctx context.Context, caller domain.Identity, email string) ([]*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		email = caller.Email
	}
	if email != caller.Email {
		return nil, domain.ErrEmailMismatch
	}

	accounts, err := s.accounts.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) GetAccount(ctx context.Context, caller domain.Identity) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, caller.AccountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

func (s *AccountService) UpdateAccount(ctx context.Context, caller domain.Identity, id uuid.UUID, update AccountUpdate) (*domain.Account, error) {
	account, err := s.ownedAccount(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if update.AccountName != nil {
		name := domain.NormalizeAccountName(update.AccountName)
		switch {
		case account.IsPrimary() && name != nil:
			return nil, domain.ErrPrimaryAccountRename
		case !account.IsPrimary() && name == nil:
			return nil, domain.ErrAccountNameRequired
		}
		account.SetAccountName(name)
	}

	if update.Password != nil {
		if err := domain.ValidatePassword(*update.Password); err != nil {
			return nil, err
		}
		hash, err := s.hashPassword(*update.Password)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hash
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return account, nil
}

// ChangePassword replaces the caller's own password after checking the
// current one.
func (s *AccountService) ChangePassword(ctx context.Context, caller domain.Identity, currentPassword, newPassword string) error {
	account, err := s.accounts.GetByID(ctx, caller.AccountID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	if !checkPassword(account, currentPassword) {
		return domain.ErrInvalidCredentials
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	account.PasswordHash = hash

	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

// DeleteAccount removes a sub-account and every checklist item it owns.
func (s *AccountService) DeleteAccount(ctx context.Context, caller domain.Identity, id uuid.UUID) error {
	account, err := s.ownedAccount(ctx, caller, id)
	if err != nil {
		return err
	}
	if account.IsPrimary() {
		return domain.ErrPrimaryAccountDeletion
	}

	if err := s.accounts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// CheckAccountNameAvailability reports whether accountName is free under
// email, ignoring case.
func (s *AccountService) CheckAccountNameAvailability(ctx context.Context, email, accountName string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return false, err
	}
	name := domain.NormalizeAccountName(&accountName)
	if name == nil {
		return false, domain.ErrAccountNameRequired
	}

	_, err := s.accounts.GetByEmailAndName(ctx, email, name)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return true, nil
	case err != nil:
		return false, fmt.Errorf("find account: %w", err)
	}
	return false, nil
}

func (s *AccountService) ValidateToken(token string) (*domain.Identity, error) {
	return s.tokens.Validate(token)
}

func (s *AccountService) ownedAccount(ctx context.Context, caller domain.Identity, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account.Email != caller.Email {
		return nil, domain.ErrEmailMismatch
	}
	return account, nil
}

func (s *AccountService) issue(account *domain.Account) (*AuthResult, error) {
	token, err := s.tokens.Issue(account)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: account, Token: token}, nil
}

func (s *AccountService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.NewValidationError("password", "Password must be at most 72 bytes")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(account *domain.Account, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) == nil
}
