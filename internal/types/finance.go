package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetPeriod is the budgeting horizon attached to profiles and budgets.
type BudgetPeriod string

const (
	PeriodDaily    BudgetPeriod = "DAILY"
	PeriodWeekly   BudgetPeriod = "WEEKLY"
	PeriodMonthly  BudgetPeriod = "MONTHLY"
	PeriodAnnually BudgetPeriod = "ANNUALLY"
)

// Valid reports whether p is one of the known periods.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAnnually:
		return true
	}
	return false
}

// TransactionType classifies a recorded movement of money.
type TransactionType string

const (
	TransactionIncome   TransactionType = "INCOME"
	TransactionExpense  TransactionType = "EXPENSE"
	TransactionTransfer TransactionType = "TRANSFER"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

// Profile is the financial-identity extension of a user: non-allocated
// balance, preferred currency and budgeting configuration. At most one
// profile exists per user, enforced by a unique constraint on user_id.
type Profile struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"user_id"`
	Balance      decimal.Decimal  `json:"balance"`
	CurrencyID   *uuid.UUID       `json:"currency_id,omitempty"`
	Budget       *decimal.Decimal `json:"budget,omitempty"`
	BudgetPeriod *BudgetPeriod    `json:"budget_period,omitempty"`
	CreatedAt    time.Time        `json:"date_created"`
	UpdatedAt    time.Time        `json:"date_updated"`
}

// Currency is a shared catalog entry. It cannot be deleted while referenced
// by any profile or fund.
type Currency struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	ISOCode string    `json:"iso_code"`
}

// Validate checks the currency catalog invariants.
func (c *Currency) Validate() *ValidationError {
	ve := NewValidationError()
	if c.Name == "" {
		ve.Add("name", "must not be empty")
	}
	if len(c.ISOCode) != 3 {
		ve.Add("iso_code", "must be a 3-letter ISO code")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Fund is a named budget bucket owned by a profile. Deleting a fund cascades
// to its transactions and budgets.
type Fund struct {
	ID          uuid.UUID        `json:"id"`
	ProfileID   uuid.UUID        `json:"profile_id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Balance     decimal.Decimal  `json:"balance"`
	Goal        *decimal.Decimal `json:"goal,omitempty"`
	Budget      decimal.Decimal  `json:"budget"`
	CreatedAt   time.Time        `json:"date_created"`
	UpdatedAt   time.Time        `json:"date_updated"`
}

// Transaction is a single recorded movement of money against a fund. The
// creation timestamp is immutable.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	Type      TransactionType `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Comment   *string         `json:"comment,omitempty"`
	FundID    uuid.UUID       `json:"fund_id"`
	ProfileID uuid.UUID       `json:"profile_id"`
	CreatedAt time.Time       `json:"date_created"`
}

// FundBudget is the budget configuration of a fund for one period. A fund
// holds at most one budget per period.
type FundBudget struct {
	ID        uuid.UUID       `json:"id"`
	FundID    uuid.UUID       `json:"fund_id"`
	Period    BudgetPeriod    `json:"period"`
	Amount    decimal.Decimal `json:"amount"`
	EndDate   time.Time       `json:"end_date"`
	AutoRenew bool            `json:"auto_renew"`
	CreatedAt time.Time       `json:"date_created"`
}

// UserBudget is the budget configuration of a profile for one period.
type UserBudget struct {
	ID        uuid.UUID       `json:"id"`
	ProfileID uuid.UUID       `json:"profile_id"`
	Period    BudgetPeriod    `json:"period"`
	Amount    decimal.Decimal `json:"amount"`
	EndDate   time.Time       `json:"end_date"`
	AutoRenew bool            `json:"auto_renew"`
	CreatedAt time.Time       `json:"date_created"`
}

// UpsertProfileParams carries the mutable profile configuration.
type UpsertProfileParams struct {
	Balance      *decimal.Decimal `json:"balance,omitempty"`
	CurrencyID   *uuid.UUID       `json:"currency_id,omitempty"`
	Budget       *decimal.Decimal `json:"budget,omitempty"`
	BudgetPeriod *BudgetPeriod    `json:"budget_period,omitempty"`
}

// CreateCurrencyParams is the admin currency-create payload.
type CreateCurrencyParams struct {
	Name    string `json:"name"`
	ISOCode string `json:"iso_code"`
}

// CreateFundParams is the fund-create payload.
type CreateFundParams struct {
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	Goal        *decimal.Decimal `json:"goal,omitempty"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
}

// UpdateFundParams allows partial fund updates.
type UpdateFundParams struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Goal        *decimal.Decimal `json:"goal,omitempty"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
}

// CreateTransactionParams is the transaction-create payload.
type CreateTransactionParams struct {
	Type    TransactionType `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
	Comment *string         `json:"comment,omitempty"`
}

// Validate checks the transaction payload invariants.
func (p *CreateTransactionParams) Validate() *ValidationError {
	ve := NewValidationError()
	if !p.Type.Valid() {
		ve.Add("type", "must be one of INCOME, EXPENSE, TRANSFER")
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		ve.Add("amount", "must be positive")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// UpsertBudgetParams configures a fund or user budget for one period.
type UpsertBudgetParams struct {
	Amount    decimal.Decimal `json:"amount"`
	EndDate   time.Time       `json:"end_date"`
	AutoRenew bool            `json:"auto_renew"`
}

// Validate checks the budget payload invariants.
func (p *UpsertBudgetParams) Validate() *ValidationError {
	ve := NewValidationError()
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		ve.Add("amount", "must be positive")
	}
	if p.EndDate.IsZero() {
		ve.Add("end_date", "must be set")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}
