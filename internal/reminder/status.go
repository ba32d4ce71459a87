package reminder

import (
	"context"
	"time"

	"ledgerpro/internal/ledger"
)

// Status is the scheduled-reminders health view.
type Status struct {
	TotalActiveUsers      int64     `json:"totalActiveUsers"`
	UsersNeedingReminders int64     `json:"usersNeedingReminders"`
	RecentReminders       int64     `json:"recentReminders"`
	LastCheck             time.Time `json:"lastCheck"`
}

// Status reports how many users would be picked up by the next scheduled run
// and how many reminders went out inside the current cooldown window.
func (d *Dispatcher) Status(ctx context.Context) (*Status, error) {
	cutoff := time.Now().Add(-d.Cooldown)

	var total int64
	err := d.DB.WithContext(ctx).Model(&ledger.User{}).
		Where("is_active = ? AND email <> ''", true).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	needing, err := d.activeUsersWithEmail(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	var recent int64
	err = d.DB.WithContext(ctx).Model(&ledger.EmailReminder{}).
		Where("email_type = ? AND sent_at >= ?", ledger.EmailTypeReminder, cutoff).
		Count(&recent).Error
	if err != nil {
		return nil, err
	}

	return &Status{
		TotalActiveUsers:      total,
		UsersNeedingReminders: int64(len(needing)),
		RecentReminders:       recent,
		LastCheck:             time.Now(),
	}, nil
}

// MailerStatus is the send-reminders readiness view.
type MailerStatus struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	TotalActiveUsers int64  `json:"totalActiveUsers"`
}

// MailerStatus checks the transport and counts reachable recipients.
func (d *Dispatcher) MailerStatus(ctx context.Context) (*MailerStatus, error) {
	if err := d.Mailer.Verify(ctx); err != nil {
		return nil, ErrMailerNotReady
	}

	var total int64
	err := d.DB.WithContext(ctx).Model(&ledger.User{}).
		Where("is_active = ? AND email <> ''", true).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	return &MailerStatus{
		Status:           "ready",
		Message:          "Email service is ready",
		TotalActiveUsers: total,
	}, nil
}
