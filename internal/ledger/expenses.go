package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ListExpenses returns all expenses, newest first.
func (s *Service) ListExpenses(ctx context.Context) ([]Expense, error) {
	var out []Expense
	if err := s.DB.WithContext(ctx).Order("created_at desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type CreateExpenseInput struct {
	Title       string
	Description string
	Amount      decimal.Decimal
	Category    string
	Date        time.Time
	CreatedBy   string // firebase uid of the recording admin
}

// CreateExpense records a group expense. CreatedBy arrives as a Firebase UID
// and is stored as the resolved user id.
func (s *Service) CreateExpense(ctx context.Context, in CreateExpenseInput) (*Expense, error) {
	creator, err := s.ResolveUser(ctx, in.CreatedBy)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnknownCreator
	}
	if err != nil {
		return nil, err
	}

	e := Expense{
		Title:       in.Title,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        in.Date,
		CreatedBy:   creator.ID,
	}
	if err := s.DB.WithContext(ctx).Create(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}
