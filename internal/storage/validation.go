// Package storage provides the SQLite persistence layer for payday records.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/the-payday-must-flow/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidAccount = errors.New("invalid account")
	ErrInvalidIncome  = errors.New("invalid income")
	ErrInvalidBucket  = errors.New("invalid bucket")
	ErrInvalidPartner = errors.New("invalid partner")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateAccount(a *model.Account) error {
	if a == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if a.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidAccount)
	}
	if a.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAccount, a.Kind)
	}
	if a.LinkedAccountID == a.ID || a.FundedFromID == a.ID {
		return fmt.Errorf("%w: %s links to itself", ErrInvalidAccount, a.ID)
	}
	return nil
}

func validateIncome(in *model.Income) error {
	if in == nil {
		return fmt.Errorf("%w: income", ErrNilParameter)
	}
	if in.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidIncome)
	}
	if in.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidIncome)
	}
	if in.IsDerived {
		return fmt.Errorf("%w: derived partner incomes are never stored", ErrInvalidIncome)
	}
	if in.Amount < 0 {
		return fmt.Errorf("%w: negative amount", ErrInvalidIncome)
	}
	return nil
}

func validateBucket(b *model.Bucket) error {
	if b == nil {
		return fmt.Errorf("%w: bucket", ErrNilParameter)
	}
	if b.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidBucket)
	}
	if b.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidBucket)
	}
	if !b.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidBucket, b.Kind)
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBucket, err)
	}
	return nil
}

func validatePartner(p *model.Partner) error {
	if p == nil {
		return fmt.Errorf("%w: partner", ErrNilParameter)
	}
	if p.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidPartner)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidPartner)
	}
	return nil
}
