package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReceiptFilter struct {
	UserID *string
	Status *ReceiptStatus
}

// ListReceipts returns receipts newest first with their user and contribution
// rows preloaded for display.
func (s *Service) ListReceipts(ctx context.Context, f ReceiptFilter) ([]Receipt, error) {
	q := s.DB.WithContext(ctx).
		Preload("User").
		Preload("Contribution")
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var out []Receipt
	if err := q.Order("created_at desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type CreateReceiptInput struct {
	UserID         string
	ContributionID string
	Amount         decimal.Decimal
	ImageURL       string
	Description    string
}

// CreateReceipt records a member's uploaded proof of payment. It always
// enters the queue as PENDING; only an admin review moves it on.
func (s *Service) CreateReceipt(ctx context.Context, in CreateReceiptInput) (*Receipt, error) {
	r := Receipt{
		UserID:         in.UserID,
		ContributionID: in.ContributionID,
		Amount:         in.Amount,
		ImageURL:       in.ImageURL,
		Description:    in.Description,
		Status:         ReceiptPending,
	}
	if err := s.DB.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, err
	}
	return s.getReceipt(ctx, r.ID)
}

// ReviewReceipt applies the admin decision. Only PENDING receipts can move;
// APPROVED and REJECTED are terminal.
func (s *Service) ReviewReceipt(ctx context.Context, id string, status ReceiptStatus, adminNotes string) (*Receipt, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r Receipt
		if err := tx.Where("id = ?", id).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if r.Status != ReceiptPending && r.Status != status {
			return ErrStatusSettled
		}
		r.Status = status
		r.AdminNotes = adminNotes
		return tx.Save(&r).Error
	})
	if err != nil {
		return nil, err
	}
	return s.getReceipt(ctx, id)
}

func (s *Service) getReceipt(ctx context.Context, id string) (*Receipt, error) {
	var r Receipt
	err := s.DB.WithContext(ctx).
		Preload("User").
		Preload("Contribution").
		Where("id = ?", id).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
