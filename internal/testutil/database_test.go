package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/the-payday-must-flow/internal/money"
	"github.com/Veraticus/the-payday-must-flow/internal/testutil/fixtures"
)

func TestSetupTestDB(t *testing.T) {
	db := SetupTestDB(t, fixtures.NewBuilder().
		WithChecking("chk", "Checking", 300000).
		WithIncome("job", "Job", "chk", 200000, "2024-03-15").
		WithBill("rent", "Rent", "chk", 150000, "2024-03-20").
		Build())

	assert.Equal(t, money.Cents(300000), db.MustAccount("chk").CurrentBalance)
	assert.Equal(t, money.Cents(200000), db.MustIncome("job").Amount)
	assert.Equal(t, "Rent", db.MustBucket("rent").Name)

	snap := db.MustLoad()
	assert.Len(t, snap.Accounts, 1)
}
