package app

import (
	"context"
	"errors"
	"fmt"

	"knowledge-check-service/internal/domain"
)

// access applies the company role rules shared by submissions and analytics.
type access struct {
	authz Authorizer
}

func (a access) role(ctx context.Context, userID, companyID int64) (domain.Role, error) {
	role, err := a.authz.Role(ctx, userID, companyID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("user %d in company %d: %w", userID, companyID, domain.ErrForbidden)
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

func (a access) requireMember(ctx context.Context, userID, companyID int64) error {
	role, err := a.role(ctx, userID, companyID)
	if err != nil {
		return err
	}
	if !role.IsMember() {
		return fmt.Errorf("user %d is not a member of company %d: %w", userID, companyID, domain.ErrForbidden)
	}
	return nil
}

func (a access) requireAdmin(ctx context.Context, userID, companyID int64) error {
	role, err := a.role(ctx, userID, companyID)
	if err != nil {
		return err
	}
	if !role.IsAdmin() {
		return fmt.Errorf("user %d is not an admin of company %d: %w", userID, companyID, domain.ErrForbidden)
	}
	return nil
}

// requireScope authorizes callerID to read attempts of userID within companyID.
// Reading your own attempts needs no role. Anything else needs a company the caller
// administers, and a foreign user must be a member of that company.
func (a access) requireScope(ctx context.Context, callerID int64, userID, companyID *int64) error {
	if userID != nil && *userID == callerID {
		return nil
	}
	if companyID == nil {
		return fmt.Errorf("company scope required: %w", domain.ErrForbidden)
	}
	if err := a.requireAdmin(ctx, callerID, *companyID); err != nil {
		return err
	}
	if userID != nil {
		return a.requireMember(ctx, *userID, *companyID)
	}
	return nil
}
