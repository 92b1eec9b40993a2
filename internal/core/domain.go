package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Expense Kind = "expense"
	Income  Kind = "income"
)

// UncategorizedName is the display name used when a transaction's category
// cannot be resolved.
const UncategorizedName = "Uncategorized"

type (
	// Kind distinguishes money going out from money coming in.
	Kind string

	Money struct {
		Cents int64
	}

	// Transaction is a single income or expense entry owned by one user.
	// Date is the day the money moved; CreatedAt is when the record was entered.
	Transaction struct {
		ID           string
		Amount       Money
		Description  string
		Notes        string
		Date         time.Time
		Kind         Kind
		Currency     string // 3-letter ISO code
		CategoryID   string
		CategoryName string
		OwnerID      string
		CreatedAt    time.Time
	}

	Category struct {
		ID          string
		Name        string
		Description string
		IsDefault   bool
		OwnerID     string
		CreatedAt   time.Time
	}

	User struct {
		ID                    string
		Email                 string
		PasswordHash          string
		FirstName             string
		LastName              string
		PreferredCurrency     string
		RefreshToken          string
		RefreshTokenExpiresAt time.Time
		CreatedAt             time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrFutureDate       = errors.New("transaction date cannot be in the future")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrEmptyDescription = errors.New("empty description")
	ErrLongDescription  = errors.New("description too long (max 200 characters)")
	ErrMissingCategory  = errors.New("missing category")
	ErrMissingOwner     = errors.New("missing owner")
	ErrInvalidName      = errors.New("invalid category name")
)

func (k Kind) Valid() bool {
	return k == Expense || k == Income
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks a transaction before it is persisted. The future-date rule
// uses the supplied clock value so callers and tests stay deterministic.
func (t Transaction) Validate(now time.Time) error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.Date.After(now) {
		return ErrFutureDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrLongDescription
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if len(t.Currency) != 3 {
		return ErrInvalidCurrency
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrMissingCategory
	}
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrMissingOwner
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if len(c.Name) > 100 {
		return fmt.Errorf("%w: name too long (max 100 characters)", ErrInvalidName)
	}
	if strings.TrimSpace(c.OwnerID) == "" {
		return ErrMissingOwner
	}
	return nil
}
