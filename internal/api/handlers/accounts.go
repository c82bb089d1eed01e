package handlers

import (
	"net/http"

	"github.com/dom/tickify/internal/domain"
	"github.com/dom/tickify/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AccountHandler struct {
	accountService *service.AccountService
	logger         *zap.Logger
}

func NewAccountHandler(accountService *service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accountService: accountService, logger: logger}
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CredentialsRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	AccountName *string `json:"accountName"`
}

type CreateAccountRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountName string `json:"accountName"`
}

// UpdateAccountRequest carries the mutable fields only; email and id in the
// body are ignored.
type UpdateAccountRequest struct {
	AccountName *string `json:"accountName"`
	Password    *string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type SignupResponse struct {
	Token     string `json:"token"`
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
}

type SigninResponse struct {
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

type SwitchResponse struct {
	Token   string          `json:"token"`
	Account *domain.Account `json:"account"`
}

type AccountResponse struct {
	Account *domain.Account `json:"account"`
}

type AccountsResponse struct {
	Accounts []*domain.Account `json:"accounts"`
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
}

func summarize(account *domain.Account) AccountSummary {
	return AccountSummary{
		AccountID:   account.ID.String(),
		Email:       account.Email,
		AccountName: account.AccountName,
	}
}

func (r CredentialsRequest) credentials() service.Credentials {
	return service.Credentials{Email: r.Email, Password: r.Password, AccountName: r.AccountName}
}

func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.accountService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, h.logger, "accounts.signup", err)
		return
	}

	writeJSON(w, http.StatusCreated, SignupResponse{
		Token:     result.Token,
		AccountID: result.Account.ID.String(),
		Email:     result.Account.Email,
	})
}

func (h *AccountHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.accountService.Authenticate(r.Context(), req.credentials())
	if err != nil {
		respondError(w, h.logger, "accounts.signin", err)
		return
	}

	writeJSON(w, http.StatusOK, SigninResponse{
		Token:       result.Token,
		AccountID:   result.Account.ID.String(),
		Email:       result.Account.Email,
		AccountName: result.Account.AccountName,
	})
}

func (h *AccountHandler) Switch(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.accountService.Authenticate(r.Context(), req.credentials())
	if err != nil {
		respondError(w, h.logger, "accounts.switch", err)
		return
	}

	writeJSON(w, http.StatusOK, SwitchResponse{Token: result.Token, Account: result.Account})
}

func (h *AccountHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.accountService.VerifyPassword(r.Context(), req.credentials())
	if err != nil {
		respondError(w, h.logger, "accounts.verify", err)
		return
	}

	writeJSON(w, http.StatusOK, summarize(account))
}

func (h *AccountHandler) Availability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	available, err := h.accountService.CheckAccountNameAvailability(r.Context(), query.Get("email"), query.Get("accountName"))
	if err != nil {
		respondError(w, h.logger, "accounts.availability", err)
		return
	}

	writeJSON(w, http.StatusOK, AvailabilityResponse{Available: available})
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccountsForEmail(r.Context(), caller, r.URL.Query().Get("email"))
	if err != nil {
		respondError(w, h.logger, "accounts.list", err)
		return
	}

	writeJSON(w, http.StatusOK, AccountsResponse{Accounts: accounts})
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		req.Email = caller.Email
	}

	account, err := h.accountService.CreateSubAccount(r.Context(), caller, service.CreateSubAccountInput{
		Email:       req.Email,
		Password:    req.Password,
		AccountName: req.AccountName,
	})
	if err != nil {
		respondError(w, h.logger, "accounts.create", err)
		return
	}

	writeJSON(w, http.StatusCreated, summarize(account))
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccount(r.Context(), caller)
	if err != nil {
		respondError(w, h.logger, "accounts.me", err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, "accounts.update", domain.ErrInvalidID)
		return
	}

	var req UpdateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.accountService.UpdateAccount(r.Context(), caller, id, service.AccountUpdate{
		AccountName: req.AccountName,
		Password:    req.Password,
	})
	if err != nil {
		respondError(w, h.logger, "accounts.update", err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{Account: account})
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.accountService.ChangePassword(r.Context(), caller, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, h.logger, "accounts.change_password", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated"})
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, "accounts.delete", domain.ErrInvalidID)
		return
	}

	if err := h.accountService.DeleteAccount(r.Context(), caller, id); err != nil {
		respondError(w, h.logger, "accounts.delete", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Account deleted"})
}
