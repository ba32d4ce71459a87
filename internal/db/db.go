package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ledgerpro/internal/ledger"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&ledger.User{},
		&ledger.Contribution{},
		&ledger.Receipt{},
		&ledger.Expense{},
		&ledger.PastContribution{},
		&ledger.EmailReminder{},
	); err != nil {
		return err
	}

	// Query-shaped indexes the tag-level ones don't cover.
	stmts := []string{
		// archival sweep candidate scan
		`create index if not exists idx_contributions_active_due on contributions(is_active, due_date);`,
		// balance calculator aggregates
		`create index if not exists idx_receipts_user_status on receipts(user_id, status);`,
		// reminder cooldown lookups
		`create index if not exists idx_email_reminders_cooldown on email_reminders(user_id, email_type, sent_at desc);`,
		// sweep idempotency guard
		`create index if not exists idx_past_contributions_original on past_contributions(original_id);`,
		// list ordering
		`create index if not exists idx_receipts_created on receipts(created_at desc);`,
		`create index if not exists idx_contributions_created on contributions(created_at desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
