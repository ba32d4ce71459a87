package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// AdminStats is the aggregate view behind the admin dashboard.
type AdminStats struct {
	TotalContributions decimal.Decimal `json:"totalContributions"`
	TotalExpenses      decimal.Decimal `json:"totalExpenses"`
	ActiveMembers      int64           `json:"activeMembers"`
	PendingReceipts    int64           `json:"pendingReceipts"`
}

// DashboardStats computes the admin dashboard aggregates. TotalContributions
// here is money actually collected (approved receipts), matching the admin
// UI's framing, not the sum of contribution definitions.
func (s *Service) DashboardStats(ctx context.Context) (*AdminStats, error) {
	db := s.DB.WithContext(ctx)

	totalContributions, err := s.sumReceipts(ctx, "status = ?", ReceiptApproved)
	if err != nil {
		return nil, err
	}

	var totalExpenses decimal.NullDecimal
	if err := db.Model(&Expense{}).Select("COALESCE(SUM(amount), 0)").Scan(&totalExpenses).Error; err != nil {
		return nil, err
	}
	expenses := decimal.Zero
	if totalExpenses.Valid {
		expenses = totalExpenses.Decimal
	}

	var activeMembers, pendingReceipts int64
	if err := db.Model(&User{}).Where("is_active = ?", true).Count(&activeMembers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&Receipt{}).Where("status = ?", ReceiptPending).Count(&pendingReceipts).Error; err != nil {
		return nil, err
	}

	return &AdminStats{
		TotalContributions: totalContributions,
		TotalExpenses:      expenses,
		ActiveMembers:      activeMembers,
		PendingReceipts:    pendingReceipts,
	}, nil
}

// Contributor is one member's lifetime payment summary.
type Contributor struct {
	ID               string          `json:"id"`
	Email            string          `json:"email"`
	DisplayName      string          `json:"displayName"`
	Username         string          `json:"username"`
	StateCode        string          `json:"stateCode"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	ReceiptsCount    int             `json:"receiptsCount"`
	LastContribution *time.Time      `json:"lastContribution"`
}

// Contributors lists active members with their approved-payment totals,
// biggest contributors first.
func (s *Service) Contributors(ctx context.Context) ([]Contributor, error) {
	var users []User
	err := s.DB.WithContext(ctx).
		Preload("Receipts", "status = ?", ReceiptApproved).
		Where("is_active = ?", true).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	out := make([]Contributor, 0, len(users))
	for _, u := range users {
		total := decimal.Zero
		var last *time.Time
		for i := range u.Receipts {
			r := &u.Receipts[i]
			total = total.Add(r.Amount)
			if last == nil || r.CreatedAt.After(*last) {
				t := r.CreatedAt
				last = &t
			}
		}
		out = append(out, Contributor{
			ID:               u.ID,
			Email:            u.Email,
			DisplayName:      u.DisplayName,
			Username:         u.Username,
			StateCode:        u.StateCode,
			TotalPaid:        total,
			ReceiptsCount:    len(u.Receipts),
			LastContribution: last,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalPaid.GreaterThan(out[j].TotalPaid)
	})
	return out, nil
}

// ArchivedContribution is a past-contribution snapshot joined with whoever it
// targeted, if anyone.
type ArchivedContribution struct {
	PastContribution
	User *UserSummary `json:"user"`
}

// UserSummary is the partial user shape embedded in list responses.
type UserSummary struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	StateCode   string `json:"stateCode"`
}

// PastContributions lists archive snapshots, most recently archived first.
func (s *Service) PastContributions(ctx context.Context) ([]ArchivedContribution, error) {
	var snaps []PastContribution
	err := s.DB.WithContext(ctx).Order("archived_at desc").Find(&snaps).Error
	if err != nil {
		return nil, err
	}

	// Resolve targeted users in one query.
	ids := make([]string, 0, len(snaps))
	for _, p := range snaps {
		if p.UserID != nil {
			ids = append(ids, *p.UserID)
		}
	}
	byID := map[string]*UserSummary{}
	if len(ids) > 0 {
		var users []User
		if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, err
		}
		for i := range users {
			u := users[i]
			byID[u.ID] = &UserSummary{
				ID:          u.ID,
				Email:       u.Email,
				Username:    u.Username,
				DisplayName: u.DisplayName,
				StateCode:   u.StateCode,
			}
		}
	}

	out := make([]ArchivedContribution, 0, len(snaps))
	for _, p := range snaps {
		a := ArchivedContribution{PastContribution: p}
		if p.UserID != nil {
			a.User = byID[*p.UserID]
		}
		out = append(out, a)
	}
	return out, nil
}
