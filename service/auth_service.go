package service

import (
	"context"
	"strings"

	"schallwerk/apperr"
	"schallwerk/core/auth"
	"schallwerk/logger"
	"schallwerk/model"
	"schallwerk/repository"
)

// AuthService resolves credentials to identities. Internal roles (admin,
// staff, engineer) log in with email and password; teachers use the
// event-scoped access code minted when the event was created.
type AuthService struct {
	accounts repository.AccountRepository
	events   repository.EventRepository
}

// NewAuthService wires an AuthService.
func NewAuthService(accounts repository.AccountRepository, events repository.EventRepository) *AuthService {
	return &AuthService{accounts: accounts, events: events}
}

// LoginAccount checks an internal login. The same message covers unknown
// email and wrong password so accounts cannot be enumerated.
func (s *AuthService) LoginAccount(ctx context.Context, role model.Role, email, password string) (*model.Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, apperr.E(apperr.KindInvalid, "Email and password are required")
	}
	if role != model.RoleAdmin && role != model.RoleStaff && role != model.RoleEngineer {
		return nil, apperr.Ef(apperr.KindInvalid, "role %s does not use password login", role)
	}

	account, err := s.accounts.GetByEmailAndRole(ctx, email, role)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			logger.Warn("[Login] unknown account",
				logger.String("role", string(role)),
				logger.String("email", email))
			return nil, apperr.E(apperr.KindUnauthorized, "Invalid email or password")
		}
		return nil, err
	}
	if !auth.VerifyPassword(password, account.PasswordHash) {
		logger.Warn("[Login] password mismatch",
			logger.String("role", string(role)),
			logger.String("email", email))
		return nil, apperr.E(apperr.KindUnauthorized, "Invalid email or password")
	}
	return account, nil
}

// LoginTeacher resolves a teacher access code to its event.
func (s *AuthService) LoginTeacher(ctx context.Context, code string) (*model.Event, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.E(apperr.KindInvalid, "Access code is required")
	}
	event, err := s.events.GetByTeacherCode(ctx, code)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.E(apperr.KindUnauthorized, "Invalid access code")
		}
		return nil, err
	}
	return event, nil
}
