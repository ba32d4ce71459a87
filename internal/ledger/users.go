package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type UserFilter struct {
	StateCode       string
	IncludeReceipts bool
}

// ListUsers returns members newest first, optionally narrowed by a
// case-insensitive state code match and optionally with receipts attached.
func (s *Service) ListUsers(ctx context.Context, f UserFilter) ([]User, error) {
	q := s.DB.WithContext(ctx)
	if f.StateCode != "" {
		q = q.Where("state_code ILIKE ?", "%"+f.StateCode+"%")
	}
	if f.IncludeReceipts {
		q = q.Preload("Receipts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc")
		}).Preload("Receipts.Contribution")
	}

	var out []User
	if err := q.Order("created_at desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser fetches one member with their receipt history.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.DB.WithContext(ctx).
		Preload("Receipts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc")
		}).
		Preload("Receipts.Contribution").
		Where("id = ?", id).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type ProfileInput struct {
	FirebaseUID string
	Email       string
	Username    string
	DisplayName string
	PhotoURL    string
	StateCode   string
}

// UpsertProfile creates the user row on first profile completion, or updates
// it when the same Firebase UID comes back. A username or email held by a
// different user surfaces as ErrDuplicateUser.
func (s *Service) UpsertProfile(ctx context.Context, in ProfileInput) (*User, error) {
	db := s.DB.WithContext(ctx)

	var existing User
	err := db.Where("firebase_uid = ?", in.FirebaseUID).First(&existing).Error
	switch {
	case err == nil:
		existing.Email = in.Email
		existing.Username = in.Username
		existing.DisplayName = in.DisplayName
		existing.PhotoURL = in.PhotoURL
		existing.StateCode = in.StateCode
		if err := db.Save(&existing).Error; err != nil {
			return nil, translateDuplicate(err)
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		u := User{
			FirebaseUID: in.FirebaseUID,
			Email:       in.Email,
			Username:    in.Username,
			DisplayName: in.DisplayName,
			PhotoURL:    in.PhotoURL,
			StateCode:   in.StateCode,
			IsAdmin:     false,
			IsActive:    true,
		}
		if err := db.Create(&u).Error; err != nil {
			return nil, translateDuplicate(err)
		}
		return &u, nil
	default:
		return nil, err
	}
}

// translateDuplicate maps a postgres unique violation to the domain error.
func translateDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateUser
	}
	return err
}
