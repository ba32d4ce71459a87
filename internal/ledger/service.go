package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrStatusSettled  = errors.New("receipt already settled")
	ErrDuplicateUser  = errors.New("username or email already exists")
	ErrUnknownCreator = errors.New("unknown creator")
)

// Service owns all reads and writes against the ledger tables. Handlers hold
// one instance; the DB handle is constructed once in main and injected.
type Service struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

// ResolveUser maps an external Firebase UID to the user row, or ErrNotFound.
func (s *Service) ResolveUser(ctx context.Context, firebaseUID string) (*User, error) {
	var u User
	err := s.DB.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// VisibleContributions returns the active contributions the given user sees:
// every global one plus those targeted at them, newest first. A nil userID
// (no identity, or an identity that did not resolve) returns all active
// contributions without narrowing.
func (s *Service) VisibleContributions(ctx context.Context, userID *string) ([]Contribution, error) {
	q := s.DB.WithContext(ctx).Where("is_active = ?", true)
	if userID != nil {
		q = q.Where("user_id IS NULL OR user_id = ?", *userID)
	}

	var out []Contribution
	if err := q.Order("created_at desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Balance is a user's point-in-time ledger position. Amounts are decimals;
// PendingAmount is clamped at zero, so overpayment never shows as a credit.
type Balance struct {
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	TotalContributions decimal.Decimal `json:"totalContributions"`
	PendingAmount      decimal.Decimal `json:"pendingAmount"`
	ContributionCount  int             `json:"contributionCount"`
	ReceiptsSubmitted  int64           `json:"receiptsSubmitted"`
	ReceiptsApproved   int64           `json:"receiptsApproved"`
}

// UserBalance recomputes the balance aggregate for one user. Nothing here is
// stored; every read starts from the receipts and contributions tables.
func (s *Service) UserBalance(ctx context.Context, userID string) (*Balance, error) {
	db := s.DB.WithContext(ctx)

	totalPaid, err := s.sumReceipts(ctx, "user_id = ? AND status = ?", userID, ReceiptApproved)
	if err != nil {
		return nil, err
	}

	contributions, err := s.VisibleContributions(ctx, &userID)
	if err != nil {
		return nil, err
	}
	totalContributions := decimal.Zero
	for _, c := range contributions {
		totalContributions = totalContributions.Add(c.Amount)
	}

	var submitted, approved int64
	if err := db.Model(&Receipt{}).Where("user_id = ?", userID).Count(&submitted).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&Receipt{}).
		Where("user_id = ? AND status = ?", userID, ReceiptApproved).
		Count(&approved).Error; err != nil {
		return nil, err
	}

	return &Balance{
		TotalPaid:          totalPaid,
		TotalContributions: totalContributions,
		PendingAmount:      PendingAmount(totalContributions, totalPaid),
		ContributionCount:  len(contributions),
		ReceiptsSubmitted:  submitted,
		ReceiptsApproved:   approved,
	}, nil
}

// PendingAmount is the outstanding balance: contributions owed minus approved
// payments, floored at zero.
func PendingAmount(totalContributions, totalPaid decimal.Decimal) decimal.Decimal {
	pending := totalContributions.Sub(totalPaid)
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

// sumReceipts totals receipt amounts matching the condition. COALESCE keeps
// the empty set at zero instead of NULL.
func (s *Service) sumReceipts(ctx context.Context, cond string, args ...any) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.DB.WithContext(ctx).Model(&Receipt{}).
		Where(cond, args...).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
