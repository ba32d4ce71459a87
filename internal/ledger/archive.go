package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SweepResult partitions the processed contributions: every expired row is
// counted exactly once, so Archived+Deleted == Total.
type SweepResult struct {
	Archived int `json:"archived"`
	Deleted  int `json:"deleted"`
	Total    int `json:"total"`
}

// ArchiveExpired moves contributions whose due date has passed out of the
// active set. Each row gets a PastContribution snapshot, then is deactivated
// when receipts reference it or deleted outright when none do. Snapshot and
// mutation run in one transaction per row, and a snapshot already present for
// the same original id is not written again, so a crashed or repeated run
// cannot duplicate archive rows. The first failing row aborts the sweep;
// rows committed before it stay committed.
func (s *Service) ArchiveExpired(ctx context.Context, now time.Time) (*SweepResult, error) {
	var expired []Contribution
	err := s.DB.WithContext(ctx).
		Where("is_active = ? AND due_date < ?", true, now).
		Find(&expired).Error
	if err != nil {
		return nil, err
	}

	s.Log.WithField("count", len(expired)).Info("archiving expired contributions")

	res := &SweepResult{}
	for i := range expired {
		c := &expired[i]
		archived, err := s.archiveOne(ctx, c, now)
		if err != nil {
			return nil, err
		}
		if archived {
			res.Archived++
		} else {
			res.Deleted++
		}
		res.Total++
	}
	return res, nil
}

// archiveOne processes a single expired contribution atomically. Returns true
// when the row was kept (deactivated), false when it was deleted.
func (s *Service) archiveOne(ctx context.Context, c *Contribution, now time.Time) (bool, error) {
	var kept bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var snap PastContribution
		err := tx.Where("original_id = ?", c.ID).First(&snap).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			snap = PastContribution{
				Title:       c.Title,
				Description: c.Description,
				Amount:      c.Amount,
				DueDate:     c.DueDate,
				UserID:      c.UserID,
				OriginalID:  c.ID,
				CreatedAt:   c.CreatedAt,
				ArchivedAt:  now,
			}
			if err := tx.Create(&snap).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		var receipts int64
		if err := tx.Model(&Receipt{}).Where("contribution_id = ?", c.ID).Count(&receipts).Error; err != nil {
			return err
		}

		if receipts > 0 {
			// Receipts reference this row; keep it and its history.
			kept = true
			return tx.Model(&Contribution{}).
				Where("id = ?", c.ID).
				Update("is_active", false).Error
		}
		return tx.Where("id = ?", c.ID).Delete(&Contribution{}).Error
	})
	if err != nil {
		return false, err
	}

	s.Log.WithFields(logrus.Fields{
		"contribution": c.ID,
		"title":        c.Title,
		"dueDate":      c.DueDate,
		"kept":         kept,
	}).Info("archived contribution")
	return kept, nil
}
