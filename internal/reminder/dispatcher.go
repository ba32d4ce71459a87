package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ledgerpro/internal/ledger"
	"ledgerpro/internal/mailer"
)

// ErrMailerNotReady aborts a batch before any send when the transport
// connectivity check fails.
var ErrMailerNotReady = errors.New("email service not configured properly")

// Dispatcher runs the reminder batches. It holds no state between runs; each
// invocation reads its candidate set fresh from the database.
type Dispatcher struct {
	DB     *gorm.DB
	Ledger *ledger.Service
	Mailer mailer.Mailer
	Log    *logrus.Logger

	// Cooldown is the minimum interval between reminder emails to the same
	// user, keyed on any logged attempt regardless of outcome.
	Cooldown time.Duration
	// SendDelay is the fixed pause between consecutive sends.
	SendDelay time.Duration
	// BaseURL is the application origin used in the email call to action.
	BaseURL string
}

// RecipientResult is the per-user outcome detail returned to the caller.
type RecipientResult struct {
	Email             string `json:"email"`
	Status            string `json:"status"` // sent, failed, skipped, error
	Reason            string `json:"reason,omitempty"`
	Error             string `json:"error,omitempty"`
	PendingAmount     string `json:"pendingAmount,omitempty"`
	ContributionCount int    `json:"contributionCount,omitempty"`
}

// Report aggregates one batch run.
type Report struct {
	Sent    int               `json:"sent"`
	Failed  int               `json:"failed"`
	Skipped int               `json:"skipped"`
	Total   int               `json:"total"`
	Results []RecipientResult `json:"results"`
}

// Broadcast mails every active user with an address and an outstanding
// position. Intended for the manual admin button.
func (d *Dispatcher) Broadcast(ctx context.Context) (*Report, error) {
	if err := d.Mailer.Verify(ctx); err != nil {
		return nil, ErrMailerNotReady
	}
	users, err := d.activeUsersWithEmail(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	return d.run(ctx, users)
}

// RunScheduled is the cron entry point: same batch as Broadcast but users
// already reminded inside the cooldown window are excluded up front.
func (d *Dispatcher) RunScheduled(ctx context.Context) (*Report, error) {
	if err := d.Mailer.Verify(ctx); err != nil {
		return nil, ErrMailerNotReady
	}
	cutoff := time.Now().Add(-d.Cooldown)
	users, err := d.activeUsersWithEmail(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	return d.run(ctx, users)
}

// activeUsersWithEmail selects candidates. A non-zero cutoff additionally
// excludes users with any reminder-type log row on or after it; a failed
// attempt blocks just like a successful one.
func (d *Dispatcher) activeUsersWithEmail(ctx context.Context, cutoff time.Time) ([]ledger.User, error) {
	q := d.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Where("email <> ''")
	if !cutoff.IsZero() {
		q = q.Where(`NOT EXISTS (
			SELECT 1 FROM email_reminders er
			WHERE er.user_id = users.id
			  AND er.email_type = ?
			  AND er.sent_at >= ?
		)`, ledger.EmailTypeReminder, cutoff)
	}

	var users []ledger.User
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ShouldSkip reports whether a user has nothing to be reminded of: no pending
// amount and no visible contributions at all.
func ShouldSkip(pending decimal.Decimal, contributionCount int) bool {
	return pending.IsZero() && contributionCount == 0
}

func (d *Dispatcher) run(ctx context.Context, users []ledger.User) (*Report, error) {
	rep := &Report{Total: len(users), Results: make([]RecipientResult, 0, len(users))}

	for _, u := range users {
		bal, err := d.Ledger.UserBalance(ctx, u.ID)
		if err != nil {
			// A bad row should not take down the batch.
			d.Log.WithError(err).WithField("user", u.ID).Error("reminder: balance computation failed")
			rep.Results = append(rep.Results, RecipientResult{Email: u.Email, Status: "error", Error: err.Error()})
			continue
		}

		if ShouldSkip(bal.PendingAmount, bal.ContributionCount) {
			rep.Skipped++
			rep.Results = append(rep.Results, RecipientResult{
				Email:  u.Email,
				Status: "skipped",
				Reason: "No pending contributions",
			})
			continue
		}

		name := u.DisplayName
		if name == "" {
			name = u.Username
		}
		html, err := mailer.RenderReminder(mailer.ReminderEmail{
			UserName:          name,
			PendingAmount:     bal.PendingAmount,
			ContributionCount: bal.ContributionCount,
			DashboardURL:      d.BaseURL + "/member/dashboard",
		})
		if err != nil {
			rep.Results = append(rep.Results, RecipientResult{Email: u.Email, Status: "error", Error: err.Error()})
			continue
		}

		sendErr := d.Mailer.Send(ctx, u.Email, name, mailer.ReminderSubject, html)
		if err := d.record(ctx, u.ID, sendErr); err != nil {
			d.Log.WithError(err).WithField("user", u.ID).Error("reminder: failed to log attempt")
		}

		if sendErr != nil {
			rep.Failed++
			rep.Results = append(rep.Results, RecipientResult{Email: u.Email, Status: "failed", Error: sendErr.Error()})
			d.Log.WithError(sendErr).WithField("email", u.Email).Warn("reminder send failed")
		} else {
			rep.Sent++
			rep.Results = append(rep.Results, RecipientResult{
				Email:             u.Email,
				Status:            "sent",
				PendingAmount:     bal.PendingAmount.String(),
				ContributionCount: bal.ContributionCount,
			})
		}

		if d.SendDelay > 0 {
			select {
			case <-ctx.Done():
				return rep, ctx.Err()
			case <-time.After(d.SendDelay):
			}
		}
	}

	d.Log.WithFields(logrus.Fields{
		"sent":    rep.Sent,
		"failed":  rep.Failed,
		"skipped": rep.Skipped,
		"total":   rep.Total,
	}).Info("reminder batch finished")
	return rep, nil
}

// record appends the EmailReminder audit row for one attempt.
func (d *Dispatcher) record(ctx context.Context, userID string, sendErr error) error {
	row := ledger.EmailReminder{
		UserID:    userID,
		EmailType: ledger.EmailTypeReminder,
		SentAt:    time.Now(),
	}
	if sendErr != nil {
		row.Status = ledger.ReminderFailed
		row.ErrorMessage = sendErr.Error()
	} else {
		row.Status = ledger.ReminderSent
		next := time.Now().Add(d.Cooldown)
		row.NextReminder = &next
	}
	return d.DB.WithContext(ctx).Create(&row).Error
}
