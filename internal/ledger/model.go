package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReceiptStatus is the admin review state of a submitted receipt.
// PENDING may move to APPROVED or REJECTED; both are terminal.
type ReceiptStatus string

const (
	ReceiptPending  ReceiptStatus = "PENDING"
	ReceiptApproved ReceiptStatus = "APPROVED"
	ReceiptRejected ReceiptStatus = "REJECTED"
)

func (s ReceiptStatus) Valid() bool {
	switch s {
	case ReceiptPending, ReceiptApproved, ReceiptRejected:
		return true
	}
	return false
}

// ReminderStatus records the outcome of one reminder send attempt.
type ReminderStatus string

const (
	ReminderSent   ReminderStatus = "sent"
	ReminderFailed ReminderStatus = "failed"
)

// EmailTypeReminder is the only email type the dispatcher produces today.
// The column stays free-form so one-off campaign mails can log here too.
const EmailTypeReminder = "reminder"

// CashPaymentMarker is stored in Receipt.ImageURL for cash payments recorded
// by an admin, which have no uploaded proof image.
const CashPaymentMarker = "cash-payment"

// User is a member identified by an external Firebase UID. Rows are created
// on first profile completion and never hard-deleted.
type User struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	FirebaseUID string    `gorm:"column:firebase_uid;uniqueIndex;not null" json:"firebaseUid"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL"`
	StateCode   string    `gorm:"index" json:"stateCode"`
	IsAdmin     bool      `gorm:"not null;default:false" json:"isAdmin"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updatedAt"`

	Receipts []Receipt `gorm:"foreignKey:UserID" json:"receipts,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Contribution is a financial obligation. UserID nil means the contribution
// is global (every active member owes it); non-nil targets one member.
type Contribution struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	DueDate     time.Time       `gorm:"not null" json:"dueDate"`
	IsActive    bool            `gorm:"not null;default:true" json:"isActive"`
	UserID      *string         `gorm:"type:uuid;index" json:"userId"`
	CreatedAt   time.Time       `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null;default:now()" json:"updatedAt"`

	Receipts []Receipt `gorm:"foreignKey:ContributionID" json:"receipts,omitempty"`
}

func (c *Contribution) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Scope reports who a contribution applies to as a tagged value instead of
// leaning on the nullable foreign key at call sites.
func (c *Contribution) Scope() Scope {
	if c.UserID == nil {
		return Scope{Global: true}
	}
	return Scope{UserID: *c.UserID}
}

// Scope is either global or targeted at a single user.
type Scope struct {
	Global bool
	UserID string
}

// AppliesTo reports whether a contribution with this scope counts toward the
// given user's balance.
func (s Scope) AppliesTo(userID string) bool {
	return s.Global || s.UserID == userID
}

// Receipt is a member's proof of payment against a contribution. Amount is
// independent of the contribution's nominal amount; over- and under-payment
// are permitted and not reconciled.
type Receipt struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string          `gorm:"type:uuid;index;not null" json:"userId"`
	ContributionID string          `gorm:"type:uuid;index;not null" json:"contributionId"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	ImageURL       string          `gorm:"not null" json:"imageUrl"`
	Description    string          `json:"description"`
	Status         ReceiptStatus   `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	AdminNotes     string          `json:"adminNotes"`
	CreatedAt      time.Time       `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"not null;default:now()" json:"updatedAt"`

	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Contribution *Contribution `gorm:"foreignKey:ContributionID" json:"contribution,omitempty"`
}

func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Expense is money spent by the group, recorded by an admin. Never updated or
// deleted after creation.
type Expense struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Category    string          `gorm:"not null" json:"category"`
	Date        time.Time       `gorm:"not null" json:"date"`
	CreatedBy   string          `gorm:"type:uuid;not null" json:"createdBy"`
	CreatedAt   time.Time       `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null;default:now()" json:"updatedAt"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// PastContribution is an immutable snapshot of a contribution taken by the
// archival sweep when its due date has passed. OriginalID points at the
// contribution the snapshot was taken from, which may no longer exist.
type PastContribution struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	DueDate     time.Time       `gorm:"not null" json:"dueDate"`
	UserID      *string         `gorm:"type:uuid" json:"userId"`
	OriginalID  string          `gorm:"type:uuid;not null" json:"originalId"`
	CreatedAt   time.Time       `gorm:"not null" json:"createdAt"`
	ArchivedAt  time.Time       `gorm:"not null;default:now()" json:"archivedAt"`
}

func (p *PastContribution) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// EmailReminder is an append-only log row per reminder send attempt. The
// dispatcher reads it back only for cooldown checks and status reporting.
type EmailReminder struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string         `gorm:"type:uuid;index;not null" json:"userId"`
	EmailType    string         `gorm:"not null" json:"emailType"`
	Status       ReminderStatus `gorm:"type:varchar(20);not null" json:"status"`
	SentAt       time.Time      `gorm:"not null;default:now()" json:"sentAt"`
	NextReminder *time.Time     `json:"nextReminder"`
	ErrorMessage string         `json:"errorMessage"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"createdAt"`
}

func (e *EmailReminder) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
