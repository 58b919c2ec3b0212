package core

import (
	"errors"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	MinCategoryLen    = 2
	MaxCategoryLen    = 100
	MaxDescriptionLen = 300
)

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	// Transaction is a single income or expense record owned by a user.
	Transaction struct {
		ID          int64
		UserID      int64
		Amount      Money
		Date        time.Time
		Type        TransactionType
		Category    string
		Description string
	}

	// CategoryLimit is a per-user spending cap for one category.
	// NormalizedCategory is the dedup/match key: at most one limit exists
	// per (user, normalized category) pair.
	CategoryLimit struct {
		ID                 int64
		UserID             int64
		Category           string
		NormalizedCategory string
		Limit              Money
	}

	User struct {
		ID           int64
		Email        string
		Name         string
		PasswordHash string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidType     = errors.New("type must be income or expense")
	ErrInvalidCategory = errors.New("invalid category")
	ErrLongDescription = errors.New("description too long")
	ErrNotFound        = errors.New("not found")
	ErrDuplicateLimit  = errors.New("a limit for this category already exists")
	ErrDuplicateEmail  = errors.New("email already registered")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if n := len(SanitizeText(t.Category)); n < MinCategoryLen || n > MaxCategoryLen {
		return ErrInvalidCategory
	}
	if len(t.Description) > MaxDescriptionLen {
		return ErrLongDescription
	}
	return nil
}

func (l CategoryLimit) Validate() error {
	if err := l.Limit.Validate(); err != nil {
		return err
	}
	if n := len(SanitizeText(l.Category)); n < MinCategoryLen || n > MaxCategoryLen {
		return ErrInvalidCategory
	}
	if l.NormalizedCategory == "" {
		return ErrInvalidCategory
	}
	return nil
}
