package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/the-payday-must-flow/internal/model"
)

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "chk"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace", input: " \t\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.input, "id")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyString)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateContext(t *testing.T) {
	assert.NoError(t, validateContext(context.Background()))
	//nolint:staticcheck // nil context is the case under test
	assert.ErrorIs(t, validateContext(nil), ErrNilContext)
}

func TestValidateRecords(t *testing.T) {
	tests := []struct {
		check   func() error
		wantErr error
		name    string
	}{
		{
			name:    "account missing id",
			check:   func() error { return validateAccount(&model.Account{Name: "x", Kind: model.AccountCash}) },
			wantErr: ErrInvalidAccount,
		},
		{
			name: "account linked to itself",
			check: func() error {
				return validateAccount(&model.Account{ID: "a", Name: "A", Kind: model.AccountCredit, LinkedAccountID: "a"})
			},
			wantErr: ErrInvalidAccount,
		},
		{
			name:    "income negative",
			check:   func() error { return validateIncome(&model.Income{ID: "i", Name: "I", Amount: -1}) },
			wantErr: ErrInvalidIncome,
		},
		{
			name:    "income nil",
			check:   func() error { return validateIncome(nil) },
			wantErr: ErrNilParameter,
		},
		{
			name:    "bucket unknown kind",
			check:   func() error { return validateBucket(&model.Bucket{ID: "b", Name: "B", Kind: "mystery"}) },
			wantErr: ErrInvalidBucket,
		},
		{
			name:    "bucket cleared but not paid",
			check:   func() error { return validateBucket(&model.Bucket{ID: "b", Name: "B", Kind: model.BucketBill, IsCleared: true}) },
			wantErr: model.ErrClearedNotPaid,
		},
		{
			name:    "partner missing name",
			check:   func() error { return validatePartner(&model.Partner{ID: "p"}) },
			wantErr: ErrInvalidPartner,
		},
		{
			name:  "valid bucket",
			check: func() error { return validateBucket(&model.Bucket{ID: "b", Name: "B", Kind: model.BucketVariable}) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
