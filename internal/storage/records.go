package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-payday-must-flow/internal/common"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
	"github.com/Veraticus/the-payday-must-flow/internal/payday"
)

// toJSON encodes optional structured columns. A nil value is stored as NULL.
func toJSON(v any, isNil bool) (sql.NullString, error) {
	if isNil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// nullCents stores an optional amount; nil is NULL.
func nullCents(c *money.Cents) sql.NullInt64 {
	if c == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*c), Valid: true}
}

func centsPtr(n sql.NullInt64) *money.Cents {
	if !n.Valid {
		return nil
	}
	c := money.Cents(n.Int64)
	return &c
}

func fromJSON(ns sql.NullString, dest any) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(ns.String), dest); err != nil {
		return fmt.Errorf("failed to unmarshal: %w", err)
	}
	return nil
}

// SaveAccount inserts or updates an account. The edit is rejected if it
// would close a loop in the funding chain.
func (s *SQLiteStorage) SaveAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		accounts, err := s.loadAccounts(ctx, tx)
		if err != nil {
			return err
		}
		if err := payday.ValidateFundingGraph(replaceAccount(accounts, *account)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidAccount, err)
		}
		return s.saveAccountTx(ctx, tx, account)
	})
	if err != nil {
		return err
	}
	slog.Info("Saved account", "id", account.ID, "name", account.Name)
	return nil
}

func replaceAccount(accounts []model.Account, a model.Account) []model.Account {
	for i := range accounts {
		if accounts[i].ID == a.ID {
			accounts[i] = a
			return accounts
		}
	}
	return append(accounts, a)
}

func (s *SQLiteStorage) saveAccountTx(ctx context.Context, q queryable, a *model.Account) error {
	auto, err := toJSON(a.AutoConfig, a.AutoConfig == nil)
	if err != nil {
		return err
	}
	var rate sql.NullFloat64
	if a.InterestRate != nil {
		rate = sql.NullFloat64{Float64: *a.InterestRate, Valid: true}
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO accounts (id, name, kind, current_balance, linked_account_id, funded_from_id,
			auto_config, interest_rate, retirement_type, deleted, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			current_balance = excluded.current_balance,
			linked_account_id = excluded.linked_account_id,
			funded_from_id = excluded.funded_from_id,
			auto_config = excluded.auto_config,
			interest_rate = excluded.interest_rate,
			retirement_type = excluded.retirement_type,
			deleted = excluded.deleted,
			updated_at = CURRENT_TIMESTAMP
	`, a.ID, a.Name, string(a.Kind), int64(a.CurrentBalance), a.LinkedAccountID, a.FundedFromID,
		auto, rate, a.RetirementType, a.Deleted)
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", a.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) loadAccounts(ctx context.Context, q queryable) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, kind, current_balance, linked_account_id, funded_from_id,
			auto_config, interest_rate, retirement_type, deleted
		FROM accounts
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var auto sql.NullString
		var rate sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.Name, &a.Kind, &a.CurrentBalance, &a.LinkedAccountID, &a.FundedFromID,
			&auto, &rate, &a.RetirementType, &a.Deleted); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if auto.Valid {
			a.AutoConfig = &model.AutoTransfer{}
			if err := fromJSON(auto, a.AutoConfig); err != nil {
				return nil, fmt.Errorf("account %s auto config: %w", a.ID, err)
			}
		}
		if rate.Valid {
			r := rate.Float64
			a.InterestRate = &r
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// SaveIncome inserts or updates an income.
func (s *SQLiteStorage) SaveIncome(ctx context.Context, income *model.Income) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateIncome(income); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.saveIncomeTx(ctx, tx, income)
	})
}

func (s *SQLiteStorage) saveIncomeTx(ctx context.Context, q queryable, in *model.Income) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO incomes (id, name, amount, frequency, next_date, account_id, is_primary, deleted, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			amount = excluded.amount,
			frequency = excluded.frequency,
			next_date = excluded.next_date,
			account_id = excluded.account_id,
			is_primary = excluded.is_primary,
			deleted = excluded.deleted,
			updated_at = CURRENT_TIMESTAMP
	`, in.ID, in.Name, int64(in.Amount), string(in.Frequency), in.NextDate, in.AccountID, in.IsPrimary, in.Deleted)
	if err != nil {
		return fmt.Errorf("failed to save income %s: %w", in.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) loadIncomes(ctx context.Context, q queryable) ([]model.Income, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, amount, frequency, next_date, account_id, is_primary, deleted
		FROM incomes
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query incomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var incomes []model.Income
	for rows.Next() {
		var in model.Income
		if err := rows.Scan(&in.ID, &in.Name, &in.Amount, &in.Frequency, &in.NextDate, &in.AccountID,
			&in.IsPrimary, &in.Deleted); err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

// SaveBucket inserts or updates a bucket.
func (s *SQLiteStorage) SaveBucket(ctx context.Context, bucket *model.Bucket) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBucket(bucket); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.saveBucketTx(ctx, tx, bucket)
	})
}

func (s *SQLiteStorage) saveBucketTx(ctx context.Context, q queryable, b *model.Bucket) error {
	split, err := toJSON(b.Split, b.Split == nil)
	if err != nil {
		return err
	}
	linked, err := toJSON(b.LinkedAccountIDs, len(b.LinkedAccountIDs) == 0)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO buckets (id, name, kind, amount, current_balance, frequency, due_date, account_id,
			is_paid, is_cleared, split_config, debt_account_id, target_balance, savings_type,
			exclude_from_payday, is_essential, is_subscription, retirement_type, is_pre_tax,
			linked_account_ids, paid_amount, deleted, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			amount = excluded.amount,
			current_balance = excluded.current_balance,
			frequency = excluded.frequency,
			due_date = excluded.due_date,
			account_id = excluded.account_id,
			is_paid = excluded.is_paid,
			is_cleared = excluded.is_cleared,
			split_config = excluded.split_config,
			debt_account_id = excluded.debt_account_id,
			target_balance = excluded.target_balance,
			savings_type = excluded.savings_type,
			exclude_from_payday = excluded.exclude_from_payday,
			is_essential = excluded.is_essential,
			is_subscription = excluded.is_subscription,
			retirement_type = excluded.retirement_type,
			is_pre_tax = excluded.is_pre_tax,
			linked_account_ids = excluded.linked_account_ids,
			paid_amount = excluded.paid_amount,
			deleted = excluded.deleted,
			updated_at = CURRENT_TIMESTAMP
	`, b.ID, b.Name, string(b.Kind), int64(b.Amount), int64(b.CurrentBalance), string(b.Frequency), b.DueDate,
		b.AccountID, b.IsPaid, b.IsCleared, split, b.DebtAccountID, nullCents(b.TargetBalance), string(b.SavingsType),
		b.ExcludeFromPayday, b.IsEssential, b.IsSubscription, b.RetirementType, b.IsPreTax, linked,
		nullCents(b.PaidAmount), b.Deleted)
	if err != nil {
		return fmt.Errorf("failed to save bucket %s: %w", b.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) loadBuckets(ctx context.Context, q queryable) ([]model.Bucket, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, kind, amount, current_balance, frequency, due_date, account_id,
			is_paid, is_cleared, split_config, debt_account_id, target_balance, savings_type,
			exclude_from_payday, is_essential, is_subscription, retirement_type, is_pre_tax,
			linked_account_ids, paid_amount, deleted
		FROM buckets
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query buckets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var buckets []model.Bucket
	for rows.Next() {
		var b model.Bucket
		var split, linked sql.NullString
		var target, paid sql.NullInt64
		if err := rows.Scan(&b.ID, &b.Name, &b.Kind, &b.Amount, &b.CurrentBalance, &b.Frequency, &b.DueDate,
			&b.AccountID, &b.IsPaid, &b.IsCleared, &split, &b.DebtAccountID, &target, &b.SavingsType,
			&b.ExcludeFromPayday, &b.IsEssential, &b.IsSubscription, &b.RetirementType, &b.IsPreTax,
			&linked, &paid, &b.Deleted); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		if split.Valid {
			b.Split = &model.SplitConfig{}
			if err := fromJSON(split, b.Split); err != nil {
				return nil, fmt.Errorf("bucket %s split config: %w", b.ID, err)
			}
		}
		if err := fromJSON(linked, &b.LinkedAccountIDs); err != nil {
			return nil, fmt.Errorf("bucket %s linked accounts: %w", b.ID, err)
		}
		b.TargetBalance = centsPtr(target)
		b.PaidAmount = centsPtr(paid)
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// SavePartner inserts or updates a partner.
func (s *SQLiteStorage) SavePartner(ctx context.Context, partner *model.Partner) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePartner(partner); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.savePartnerTx(ctx, tx, partner)
	})
}

func (s *SQLiteStorage) savePartnerTx(ctx context.Context, q queryable, p *model.Partner) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO partners (id, name, pay_frequency, next_pay_date, deposit_account_id, deleted, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			pay_frequency = excluded.pay_frequency,
			next_pay_date = excluded.next_pay_date,
			deposit_account_id = excluded.deposit_account_id,
			deleted = excluded.deleted,
			updated_at = CURRENT_TIMESTAMP
	`, p.ID, p.Name, string(p.PayFrequency), p.NextPayDate, p.DepositAccountID, p.Deleted)
	if err != nil {
		return fmt.Errorf("failed to save partner %s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) loadPartners(ctx context.Context, q queryable) ([]model.Partner, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, pay_frequency, next_pay_date, deposit_account_id, deleted
		FROM partners
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query partners: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var partners []model.Partner
	for rows.Next() {
		var p model.Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.PayFrequency, &p.NextPayDate, &p.DepositAccountID, &p.Deleted); err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		partners = append(partners, p)
	}
	return partners, rows.Err()
}

// DeleteAccount tombstones an account.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id string) error {
	return s.softDelete(ctx, "accounts", id)
}

// DeleteIncome tombstones an income.
func (s *SQLiteStorage) DeleteIncome(ctx context.Context, id string) error {
	return s.softDelete(ctx, "incomes", id)
}

// DeleteBucket tombstones a bucket.
func (s *SQLiteStorage) DeleteBucket(ctx context.Context, id string) error {
	return s.softDelete(ctx, "buckets", id)
}

// DeletePartner tombstones a partner.
func (s *SQLiteStorage) DeletePartner(ctx context.Context, id string) error {
	return s.softDelete(ctx, "partners", id)
}

// softDelete sets the tombstone flag. table is always one of our constants.
func (s *SQLiteStorage) softDelete(ctx context.Context, table, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return execOne(ctx, tx, fmt.Errorf("%s %s: %w", table, id, common.ErrNotFound),
			`UPDATE `+table+` SET deleted = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted = 0`, id)
	})
	if err != nil {
		return err
	}
	slog.Info("Deleted record", "table", table, "id", id)
	return nil
}
