package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/tickify/internal/domain"
	"github.com/dom/tickify/internal/repository"
	"github.com/dom/tickify/internal/service"
	"github.com/dom/tickify/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServices(t *testing.T) (*service.Services, *repository.Repositories) {
	t.Helper()
	repos := testutil.NewSQLiteRepos(t)
	return service.NewServices(repos, testutil.TestConfig(), nil), repos
}

func strPtr(s string) *string { return &s }

func identityOf(a *domain.Account) domain.Identity {
	return domain.Identity{AccountID: a.ID, Email: a.Email, AccountName: a.AccountName}
}

func TestAccountService_Register(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	_, err := svc.Account.Register(ctx, "taken@example.com", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name      string
		email     string
		password  string
		wantErr   error
		wantEmail string
	}{
		{
			name:      "successful registration normalizes email",
			email:     "  New.User@Example.COM ",
			password:  "secret1",
			wantEmail: "new.user@example.com",
		},
		{
			name:     "duplicate primary account",
			email:    "TAKEN@example.com",
			password: "another1",
			wantErr:  domain.ErrAccountExists,
		},
		{
			name:     "invalid email",
			email:    "not-an-email",
			password: "secret1",
			wantErr:  domain.ErrValidation,
		},
		{
			name:     "short password",
			email:    "short@example.com",
			password: "12345",
			wantErr:  domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Account.Register(ctx, tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, result.Account.Email)
			assert.True(t, result.Account.IsPrimary())
			assert.NotEmpty(t, result.Token)
			assert.NotEqual(t, tt.password, result.Account.PasswordHash)
		})
	}
}

func TestAccountService_RegisterThenAuthenticate(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	credentials := []struct{ email, password string }{
		{"a@x.com", "secret1"},
		{"b@y.org", "another-password"},
		{"UPPER@case.io", "123456"},
	}

	for _, c := range credentials {
		registered, err := svc.Account.Register(ctx, c.email, c.password)
		require.NoError(t, err)

		result, err := svc.Account.Authenticate(ctx, service.Credentials{Email: c.email, Password: c.password})
		require.NoError(t, err)
		assert.Equal(t, registered.Account.ID, result.Account.ID)

		identity, err := svc.Account.ValidateToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, registered.Account.ID, identity.AccountID)
		assert.Equal(t, domain.NormalizeEmail(c.email), identity.Email)
		assert.Nil(t, identity.AccountName)
	}
}

func TestAccountService_Authenticate(t *testing.T) {
	svc, repos := newServices(t)
	ctx := context.Background()

	primary, password := testutil.NewAccountBuilder().WithEmail("ana@example.com").Build(t, repos.Account)
	work, workPassword := testutil.NewAccountBuilder().SubAccountOf(primary, "Work").WithPassword("workpass").Build(t, repos.Account)

	tests := []struct {
		name    string
		creds   service.Credentials
		wantID  uuid.UUID
		wantErr error
	}{
		{
			name:   "primary account",
			creds:  service.Credentials{Email: "ana@example.com", Password: password},
			wantID: primary.ID,
		},
		{
			name:   "switch to sub-account, name ignores case",
			creds:  service.Credentials{Email: "ana@example.com", Password: workPassword, AccountName: strPtr("work")},
			wantID: work.ID,
		},
		{
			name:   "blank account name selects primary",
			creds:  service.Credentials{Email: "ana@example.com", Password: password, AccountName: strPtr("  ")},
			wantID: primary.ID,
		},
		{
			name:    "wrong password",
			creds:   service.Credentials{Email: "ana@example.com", Password: "wrong-password"},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:    "sub-account password does not open primary",
			creds:   service.Credentials{Email: "ana@example.com", Password: workPassword},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:    "unknown account name",
			creds:   service.Credentials{Email: "ana@example.com", Password: password, AccountName: strPtr("Home")},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:    "unknown email",
			creds:   service.Credentials{Email: "nobody@example.com", Password: password},
			wantErr: domain.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Account.Authenticate(ctx, tt.creds)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, result.Account.ID)

			identity, err := svc.Account.ValidateToken(result.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, identity.AccountID)
			assert.Equal(t, result.Account.AccountName, identity.AccountName)
		})
	}
}

func TestAccountService_WrongPasswordNeverLocksOut(t *testing.T) {
	svc, repos := newServices(t)
	ctx := context.Background()

	account, password := testutil.NewAccountBuilder().Build(t, repos.Account)

	for i := 0; i < 5; i++ {
		_, err := svc.Account.Authenticate(ctx, service.Credentials{Email: account.Email, Password: "nope-nope"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}

	_, err := svc.Account.Authenticate(ctx, service.Credentials{Email: account.Email, Password: password})
	assert.NoError(t, err)
}

func TestAccountService_VerifyPassword(t *testing.T) {
	svc, repos := newServices(t)
	ctx := context.Background()

	primary, password := testutil.NewAccountBuilder().Build(t, repos.Account)

	got, err := svc.Account.VerifyPassword(ctx, service.Credentials{Email: primary.Email, Password: password})
	require.NoError(t, err)
	assert.Equal(t, primary.ID, got.ID)

	_, err = svc.Account.VerifyPassword(ctx, service.Credentials{Email: primary.Email, Password: "wrong-one"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Account.VerifyPassword(ctx, service.Credentials{Email: primary.Email, Password: password, AccountName: strPtr("Ghost")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountService_CreateSubAccount(t *testing.T) {
	svc, repos := newServices(t)
	ctx := context.Background()

	primary, _ := testutil.NewAccountBuilder().WithEmail("ana@example.com").Build(t, repos.Account)
	caller := identityOf(primary)

	created, err := svc.Account.CreateSubAccount(ctx, caller, service.CreateSubAccountInput{
		Email: "ana@example.com", Password: "workpass", AccountName: "Work",
	})
	require.NoError(t, err)
	require.NotNil(t, created.AccountName)
	assert.Equal(t, "Work", *created.AccountName)
	require.NotNil(t, created.ParentAccountID)
	assert.Equal(t, primary.ID, *created.ParentAccountID)

	tests := []struct {
		name    string
		caller  domain.Identity
		input   service.CreateSubAccountInput
		wantErr error
	}{
		{
			name:    "same name again",
			caller:  caller,
			input:   service.CreateSubAccountInput{Email: "ana@example.com", Password: "workpass", AccountName: "Work"},
			wantErr: domain.ErrAccountNameTaken,
		},
		{
			name:    "name differing only in case",
			caller:  caller,
			input:   service.CreateSubAccountInput{Email: "ana@example.com", Password: "workpass", AccountName: "work"},
			wantErr: domain.ErrConflict,
		},
		{
			name:    "different email",
			caller:  caller,
			input:   service.CreateSubAccountInput{Email: "eve@example.com", Password: "workpass", AccountName: "Eve"},
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "blank name",
			caller:  caller,
			input:   service.CreateSubAccountInput{Email: "ana@example.com", Password: "workpass", AccountName: "   "},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "short password",
			caller:  caller,
			input:   service.CreateSubAccountInput{Email: "ana@example.com", Password: "123", AccountName: "Home"},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Account.CreateSubAccount(ctx, tt.caller, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAccountService_SubAccountCreatedFromSubAccountHangsOffPrimary(t *testing.T) {
	svc, repos := newServices(t)
	ctx := context.Background()

	primary, _ := testutil.NewAccountBuilder().Build(t, repos.Account)
	work, _ := testutil.NewAccountBuilder().SubAccountOf(primary, "Work").Build(t, repos.Account)

	home, err := svc.Account.CreateSubAccount(ctx, identityOf(work), service.CreateSubAccountInput{
		Email: primary.Email, Password: "homepass", AccountName: "Home",
	})
	require.NoError(t, err)
	require.NotNil(t, home.ParentAccountID)
	assert.Equal(t, primary.ID, *home.ParentAccountID)
}

func TestAccountService_ListAccountsForEmail(t *testing.T) {
	svc, repos := newServices(t)
	ctx := context.Background()

	primary, _ := testutil.NewAccountBuilder().Build(t, repos.Account)
	work, _ := testutil.NewAccountBuilder().SubAccountOf(primary, "Work").Build(t, repos.Account)
	testutil.NewAccountBuilder().Build(t, repos.Account)

	accounts, err := svc.Account.ListAccountsForEmail(ctx, identityOf(work), primary.Email)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, primary.ID, accounts[0].ID)
	assert.Equal(t, work.ID, accounts[1].ID)

	_, err = svc.Account.ListAccountsForEmail(ctx, identityOf(work), "someone@else.com")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAccountService_UpdateAccount(t *testing.T) {
	svc, repos := newServices(t)
	ctx := context.Background()

	primary, _ := testutil.NewAccountBuilder().Build(t, repos.Account)
	work, _ := testutil.NewAccountBuilder().SubAccountOf(primary, "Work").Build(t, repos.Account)
	home, _ := testutil.NewAccountBuilder().SubAccountOf(primary, "Home").Build(t, repos.Account)
	stranger, _ := testutil.NewAccountBuilder().Build(t, repos.Account)
	caller := identityOf(primary)

	tests := []struct {
		name    string
		caller  domain.Identity
		id      uuid.UUID
		update  service.AccountUpdate
		wantErr error
		check   func(t *testing.T, got *domain.Account)
	}{
		{
			name:   "rename sub-account",
			caller: caller,
			id:     work.ID,
			update: service.AccountUpdate{AccountName: strPtr(" Office ")},
			check: func(t *testing.T, got *domain.Account) {
				require.NotNil(t, got.AccountName)
				assert.Equal(t, "Office", *got.AccountName)
			},
		},
		{
			name:    "rename onto an existing name",
			caller:  caller,
			id:      home.ID,
			update:  service.AccountUpdate{AccountName: strPtr("OFFICE")},
			wantErr: domain.ErrConflict,
		},
		{
			name:    "name the primary account",
			caller:  caller,
			id:      primary.ID,
			update:  service.AccountUpdate{AccountName: strPtr("Main")},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "blank a sub-account name",
			caller:  caller,
			id:      home.ID,
			update:  service.AccountUpdate{AccountName: strPtr("")},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "account of another email",
			caller:  caller,
			id:      stranger.ID,
			update:  service.AccountUpdate{Password: strPtr("newpass1")},
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "unknown account",
			caller:  caller,
			id:      uuid.New(),
			update:  service.AccountUpdate{Password: strPtr("newpass1")},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "short password",
			caller:  caller,
			id:      home.ID,
			update:  service.AccountUpdate{Password: strPtr("1")},
			wantErr: domain.ErrValidation,
		},
		{
			name:   "new password is rehashed",
			caller: caller,
			id:     home.ID,
			update: service.AccountUpdate{Password: strPtr("newpass1")},
			check: func(t *testing.T, got *domain.Account) {
				_, err := svc.Account.Authenticate(ctx, service.Credentials{
					Email: primary.Email, Password: "newpass1", AccountName: strPtr("Home"),
				})
				assert.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Account.UpdateAccount(ctx, tt.caller, tt.id, tt.update)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestAccountService_ChangePassword(t *testing.T) {
	svc, repos := newServices(t)
	ctx := context.Background()

	account, password := testutil.NewAccountBuilder().Build(t, repos.Account)
	caller := identityOf(account)

	err := svc.Account.ChangePassword(ctx, caller, "wrong-current", "brandnew")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	err = svc.Account.ChangePassword(ctx, caller, password, "123")
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.Account.ChangePassword(ctx, caller, password, "brandnew"))

	_, err = svc.Account.Authenticate(ctx, service.Credentials{Email: account.Email, Password: password})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Account.Authenticate(ctx, service.Credentials{Email: account.Email, Password: "brandnew"})
	assert.NoError(t, err)
}

func TestAccountService_DeleteAccount(t *testing.T) {
	svc, repos := newServices(t)
	ctx := context.Background()

	primary, _ := testutil.NewAccountBuilder().Build(t, repos.Account)
	work, _ := testutil.NewAccountBuilder().SubAccountOf(primary, "Work").Build(t, repos.Account)
	stranger, _ := testutil.NewAccountBuilder().Build(t, repos.Account)
	strangerSub, _ := testutil.NewAccountBuilder().SubAccountOf(stranger, "Theirs").Build(t, repos.Account)
	item := testutil.NewItemBuilder(work.ID).Build(t, repos.Checklist)
	caller := identityOf(work)

	assert.ErrorIs(t, svc.Account.DeleteAccount(ctx, caller, primary.ID), domain.ErrPrimaryAccountDeletion)
	assert.ErrorIs(t, svc.Account.DeleteAccount(ctx, caller, primary.ID), domain.ErrBadRequest)
	assert.ErrorIs(t, svc.Account.DeleteAccount(ctx, caller, strangerSub.ID), domain.ErrForbidden)
	assert.ErrorIs(t, svc.Account.DeleteAccount(ctx, caller, uuid.New()), domain.ErrNotFound)

	require.NoError(t, svc.Account.DeleteAccount(ctx, caller, work.ID))

	_, err := repos.Account.GetByID(ctx, work.ID)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	_, err = repos.Checklist.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrItemNotFound, "items of a deleted account are removed with it")
}

func TestAccountService_CheckAccountNameAvailability(t *testing.T) {
	svc, repos := newServices(t)
	ctx := context.Background()

	primary, _ := testutil.NewAccountBuilder().Build(t, repos.Account)
	testutil.NewAccountBuilder().SubAccountOf(primary, "Work").Build(t, repos.Account)

	tests := []struct {
		name      string
		email     string
		account   string
		available bool
		wantErr   error
	}{
		{name: "taken", email: primary.Email, account: "Work", available: false},
		{name: "taken ignoring case", email: primary.Email, account: "wORK", available: false},
		{name: "free", email: primary.Email, account: "Home", available: true},
		{name: "free under other email", email: "x@example.com", account: "Work", available: true},
		{name: "blank name", email: primary.Email, account: " ", wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			available, err := svc.Account.CheckAccountNameAvailability(ctx, tt.email, tt.account)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.available, available)
		})
	}
}

func TestTokenIssuer_Validate(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Email: "ana@example.com", AccountName: strPtr("Work")}
	issuer := service.NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Issue(account)
	require.NoError(t, err)

	identity, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, identity.AccountID)
	assert.Equal(t, "ana@example.com", identity.Email)
	require.NotNil(t, identity.AccountName)
	assert.Equal(t, "Work", *identity.AccountName)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "other secret", token: mustIssue(t, service.NewTokenIssuer("other", time.Hour), account)},
		{name: "expired", token: mustIssue(t, service.NewTokenIssuer("secret", -time.Minute), account)},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Validate(tt.token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func mustIssue(t *testing.T, issuer *service.TokenIssuer, account *domain.Account) string {
	t.Helper()
	token, err := issuer.Issue(account)
	require.NoError(t, err)
	return token
}
