package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/dom/tickify/internal/domain"
	"github.com/dom/tickify/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AccountBuilder creates test accounts with a builder pattern
type AccountBuilder struct {
	email       string
	password    string
	accountName *string
	parentID    *uuid.UUID
}

// NewAccountBuilder creates a primary account builder with a unique email
func NewAccountBuilder() *AccountBuilder {
	return &AccountBuilder{
		email:    fmt.Sprintf("user_%s@example.com", uuid.New().String()[:8]),
		password: "testpassword123",
	}
}

func (b *AccountBuilder) WithEmail(email string) *AccountBuilder {
	b.email = email
	return b
}

func (b *AccountBuilder) WithPassword(password string) *AccountBuilder {
	b.password = password
	return b
}

// SubAccountOf makes the account a named sub-account of primary.
func (b *AccountBuilder) SubAccountOf(primary *domain.Account, name string) *AccountBuilder {
	b.email = primary.Email
	b.parentID = &primary.ID
	b.accountName = &name
	return b
}

// Build stores the account and returns it with the raw password
func (b *AccountBuilder) Build(t *testing.T, repo repository.AccountRepository) (*domain.Account, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	account := &domain.Account{
		ID:              uuid.New(),
		Email:           b.email,
		PasswordHash:    string(hashedPassword),
		ParentAccountID: b.parentID,
	}
	account.SetAccountName(b.accountName)

	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	return account, b.password
}

// AuthResponse matches the signup/signin response body
type AuthResponse struct {
	Token       string  `json:"token"`
	AccountID   string  `json:"accountId"`
	Email       string  `json:"email"`
	AccountName *string `json:"accountName"`
}

// BuildAndAuthenticate signs a primary account up through the API and
// returns its id and token.
func (b *AccountBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (uuid.UUID, string) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"email":    b.email,
		"password": b.password,
	})

	resp, err := http.Post(ts.APIURL("/accounts:signup"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	accountID, err := uuid.Parse(authResp.AccountID)
	if err != nil {
		t.Fatalf("invalid account id %q: %v", authResp.AccountID, err)
	}

	return accountID, authResp.Token
}

// ItemBuilder creates checklist items with a builder pattern
type ItemBuilder struct {
	text      string
	completed bool
	priority  domain.Priority
	owner     uuid.UUID
}

func NewItemBuilder(owner uuid.UUID) *ItemBuilder {
	return &ItemBuilder{
		text:     "item " + uuid.New().String()[:8],
		priority: domain.PriorityLow,
		owner:    owner,
	}
}

func (b *ItemBuilder) WithText(text string) *ItemBuilder {
	b.text = text
	return b
}

func (b *ItemBuilder) WithPriority(priority domain.Priority) *ItemBuilder {
	b.priority = priority
	return b
}

func (b *ItemBuilder) Completed() *ItemBuilder {
	b.completed = true
	return b
}

func (b *ItemBuilder) Build(t *testing.T, repo repository.ChecklistRepository) *domain.ChecklistItem {
	t.Helper()

	item := &domain.ChecklistItem{
		ID:        uuid.New(),
		Text:      b.text,
		Completed: b.completed,
		Priority:  b.priority,
		CreatedBy: b.owner,
	}

	if err := repo.Create(context.Background(), item); err != nil {
		t.Fatalf("failed to create item: %v", err)
	}

	return item
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// Do sends req with the default client and fails the test on transport errors.
func Do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", req.Method, req.URL, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
