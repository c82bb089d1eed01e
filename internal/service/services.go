package service

import (
	"time"

	"github.com/dom/tickify/internal/config"
	"github.com/dom/tickify/internal/repository"
)

type Services struct {
	Account   *AccountService
	Checklist *ChecklistService
}

// NewServices wires the services over repos. publisher may be nil.
func NewServices(repos *repository.Repositories, cfg *config.Config, publisher ChangePublisher) *Services {
	tokens := NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpirationHours)*time.Hour)
	return &Services{
		Account:   NewAccountService(repos.Account, tokens, cfg.BcryptCost),
		Checklist: NewChecklistService(repos.Checklist, repos.Account, publisher),
	}
}
