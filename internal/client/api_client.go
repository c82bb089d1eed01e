package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dom/tickify/internal/domain"
	"go.uber.org/zap"
)

// APIClient handles HTTP communication with the Tickify server
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAPIClient creates a new API client for the server at baseURL
func NewAPIClient(baseURL string, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Response types matching the server

type AuthResult struct {
	Token       string  `json:"token"`
	AccountID   string  `json:"accountId"`
	Email       string  `json:"email"`
	AccountName *string `json:"accountName"`
}

type AccountSummary struct {
	AccountID   string  `json:"accountId"`
	Email       string  `json:"email"`
	AccountName *string `json:"accountName"`
}

type switchResult struct {
	Token   string          `json:"token"`
	Account *domain.Account `json:"account"`
}

// Item is a checklist item as the client sees it. Guest items have
// time-derived ids and no owner.
type Item struct {
	ID        string          `json:"id" db:"id"`
	Text      string          `json:"text" db:"text"`
	Completed bool            `json:"completed" db:"completed"`
	Priority  domain.Priority `json:"priority" db:"priority"`
	CreatedBy string          `json:"created_by,omitempty" db:"-"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// NewItem is the input of ChecklistStore.Add. An empty priority means low.
type NewItem struct {
	Text      string
	Completed bool
	Priority  domain.Priority
}

type itemPatchBody struct {
	Text      *string          `json:"text,omitempty"`
	Completed *bool            `json:"completed,omitempty"`
	Priority  *domain.Priority `json:"priority,omitempty"`
}

// Account endpoints

func (c *APIClient) Signup(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/accounts:signup", body, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Signin authenticates the primary account of email, or the named
// sub-account when accountName is set.
func (c *APIClient) Signin(ctx context.Context, email, password string, accountName *string) (*AuthResult, error) {
	var result AuthResult
	body := credentials(email, password, accountName)
	if err := c.do(ctx, http.MethodPost, "/accounts:signin", body, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Switch authenticates another account under the same email and returns its
// token.
func (c *APIClient) Switch(ctx context.Context, email, password string, accountName *string) (string, *domain.Account, error) {
	var result switchResult
	body := credentials(email, password, accountName)
	if err := c.do(ctx, http.MethodPost, "/accounts:switch", body, "", &result); err != nil {
		return "", nil, err
	}
	return result.Token, result.Account, nil
}

func (c *APIClient) Verify(ctx context.Context, email, password string, accountName *string) (*AccountSummary, error) {
	var result AccountSummary
	body := credentials(email, password, accountName)
	if err := c.do(ctx, http.MethodPost, "/accounts:verify", body, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) Availability(ctx context.Context, email, accountName string) (bool, error) {
	query := url.Values{"email": {email}, "accountName": {accountName}}
	var result struct {
		Available bool `json:"available"`
	}
	if err := c.do(ctx, http.MethodGet, "/accounts:availability?"+query.Encode(), nil, "", &result); err != nil {
		return false, err
	}
	return result.Available, nil
}

func (c *APIClient) ListAccounts(ctx context.Context, token string) ([]*domain.Account, error) {
	var result struct {
		Accounts []*domain.Account `json:"accounts"`
	}
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, token, &result); err != nil {
		return nil, err
	}
	return result.Accounts, nil
}

// CreateAccount adds a named sub-account under the caller's email. It does
// not sign the new account in.
func (c *APIClient) CreateAccount(ctx context.Context, token, accountName, password string) (*AccountSummary, error) {
	var result AccountSummary
	body := map[string]string{"accountName": accountName, "password": password}
	if err := c.do(ctx, http.MethodPost, "/accounts", body, token, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) Me(ctx context.Context, token string) (*domain.Account, error) {
	var account domain.Account
	if err := c.do(ctx, http.MethodGet, "/accounts/me", nil, token, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *APIClient) RenameAccount(ctx context.Context, token, id, accountName string) (*domain.Account, error) {
	var result struct {
		Account *domain.Account `json:"account"`
	}
	body := map[string]string{"accountName": accountName}
	if err := c.do(ctx, http.MethodPatch, "/accounts/"+url.PathEscape(id), body, token, &result); err != nil {
		return nil, err
	}
	return result.Account, nil
}

func (c *APIClient) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	body := map[string]string{"currentPassword": currentPassword, "newPassword": newPassword}
	return c.do(ctx, http.MethodPost, "/accounts:change-password", body, token, nil)
}

func (c *APIClient) DeleteAccount(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/accounts/"+url.PathEscape(id), nil, token, nil)
}

// Checklist endpoints

func (c *APIClient) ListItems(ctx context.Context, token string) ([]Item, error) {
	items := []Item{}
	if err := c.do(ctx, http.MethodGet, "/checklist-items", nil, token, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *APIClient) AddItem(ctx context.Context, token string, item NewItem) (*Item, error) {
	body := map[string]interface{}{
		"text":      item.Text,
		"completed": item.Completed,
		"priority":  string(item.Priority),
	}
	var result Item
	if err := c.do(ctx, http.MethodPost, "/checklist-items", body, token, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) UpdateItem(ctx context.Context, token, id string, patch domain.ItemPatch) (*Item, error) {
	body := itemPatchBody{Text: patch.Text, Completed: patch.Completed, Priority: patch.Priority}
	var result Item
	if err := c.do(ctx, http.MethodPut, "/checklist-items/"+url.PathEscape(id), body, token, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) DeleteItem(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/checklist-items/"+url.PathEscape(id), nil, token, nil)
}

func (c *APIClient) Stats(ctx context.Context, token string) (*domain.ChecklistStats, error) {
	var stats domain.ChecklistStats
	if err := c.do(ctx, http.MethodGet, "/checklist-items:stats", nil, token, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// FeedURL is the websocket address of the live change feed for token.
func (c *APIClient) FeedURL(token string) string {
	base := c.baseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws?token=" + url.QueryEscape(token)
}

// HTTP helpers

func credentials(email, password string, accountName *string) map[string]interface{} {
	body := map[string]interface{}{"email": email, "password": password}
	if accountName != nil {
		body["accountName"] = *accountName
	}
	return body
}

// do sends one request and decodes a 2xx body into out. Any other status
// becomes an *APIError carrying the server's message.
func (c *APIClient) do(ctx context.Context, method, path string, body interface{}, token string, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)

	var body struct {
		Error string `json:"error"`
	}
	message := strings.TrimSpace(string(bodyBytes))
	if err := json.Unmarshal(bodyBytes, &body); err == nil && body.Error != "" {
		message = body.Error
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &APIError{Status: resp.StatusCode, Message: message}
}
