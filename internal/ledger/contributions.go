package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateContributionInput struct {
	Title       string
	Description string
	Amount      decimal.Decimal
	DueDate     time.Time
}

// CreateContribution records a new global contribution.
func (s *Service) CreateContribution(ctx context.Context, in CreateContributionInput) (*Contribution, error) {
	c := Contribution{
		Title:       in.Title,
		Description: in.Description,
		Amount:      in.Amount,
		DueDate:     in.DueDate,
		IsActive:    true,
	}
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) GetContribution(ctx context.Context, id string) (*Contribution, error) {
	var c Contribution
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateContribution edits the definition fields. Scope and active flag are
// not touched here.
func (s *Service) UpdateContribution(ctx context.Context, id string, in CreateContributionInput) (*Contribution, error) {
	c, err := s.GetContribution(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Title = in.Title
	c.Description = in.Description
	c.Amount = in.Amount
	c.DueDate = in.DueDate
	if err := s.DB.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// SetContributionActive toggles the active flag directly, independent of the
// archival sweep.
func (s *Service) SetContributionActive(ctx context.Context, id string, active bool) (*Contribution, error) {
	c, err := s.GetContribution(ctx, id)
	if err != nil {
		return nil, err
	}
	c.IsActive = active
	if err := s.DB.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

type CashContributionInput struct {
	UserID      string
	Amount      decimal.Decimal
	Description string
}

// RecordCashContribution is the admin shortcut for cash handed over in
// person: a contribution targeted at the payer plus an already-approved
// receipt, created in one transaction. The receipt carries the cash-payment
// marker instead of an image URL.
func (s *Service) RecordCashContribution(ctx context.Context, in CashContributionInput) (*Contribution, *Receipt, error) {
	var u User
	err := s.DB.WithContext(ctx).Where("id = ?", in.UserID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	description := in.Description
	if description == "" {
		description = "Cash contribution recorded by admin"
	}

	var c Contribution
	var r Receipt
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c = Contribution{
			Title:       "Cash Contribution",
			Description: description,
			Amount:      in.Amount,
			DueDate:     time.Now(),
			IsActive:    true,
			UserID:      &u.ID,
		}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}

		r = Receipt{
			UserID:         u.ID,
			ContributionID: c.ID,
			Amount:         in.Amount,
			ImageURL:       CashPaymentMarker,
			Description:    description,
			Status:         ReceiptApproved,
			AdminNotes:     "Cash payment recorded by admin",
		}
		return tx.Create(&r).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &c, &r, nil
}
