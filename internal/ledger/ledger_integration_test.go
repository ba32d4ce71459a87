package ledger_test

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ledgerpro/internal/db"
	"ledgerpro/internal/ledger"
)

// newTestService connects to the database named by TEST_DATABASE_URL, runs
// migrations and wipes all ledger tables. Tests that use it must not run in
// parallel against the same database.
func newTestService(t *testing.T) *ledger.Service {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("set TEST_DATABASE_URL to run integration tests (requires postgres)")
	}

	gdb, err := db.Connect(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"receipts", "email_reminders", "past_contributions", "contributions", "expenses", "users"} {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("wipe %s: %v", table, err)
		}
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	return &ledger.Service{DB: gdb, Log: log}
}

func seedUser(t *testing.T, svc *ledger.Service, username string) *ledger.User {
	t.Helper()
	u := ledger.User{
		FirebaseUID: "fb-" + username,
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: strings.ToUpper(username[:1]) + username[1:],
		IsActive:    true,
	}
	if err := svc.DB.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return &u
}

func seedContribution(t *testing.T, svc *ledger.Service, title, amount string, dueDate time.Time, userID *string) *ledger.Contribution {
	t.Helper()
	c := ledger.Contribution{
		Title:    title,
		Amount:   decimal.RequireFromString(amount),
		DueDate:  dueDate,
		IsActive: true,
		UserID:   userID,
	}
	if err := svc.DB.Create(&c).Error; err != nil {
		t.Fatalf("seed contribution %s: %v", title, err)
	}
	return &c
}

func TestArchiveExpiredPartitionsRows(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	now := time.Now()
	past := now.AddDate(0, 0, -3)

	ada := seedUser(t, svc, "ada")
	orphan := seedContribution(t, svc, "Orphan Dues", "1000", past, nil)
	paid := seedContribution(t, svc, "Paid Dues", "2000", past, nil)
	current := seedContribution(t, svc, "Current Dues", "3000", now.AddDate(0, 0, 7), nil)

	if _, err := svc.CreateReceipt(ctx, ledger.CreateReceiptInput{
		UserID:         ada.ID,
		ContributionID: paid.ID,
		Amount:         decimal.RequireFromString("2000"),
		ImageURL:       "https://cdn.example/r1.jpg",
	}); err != nil {
		t.Fatalf("CreateReceipt: %v", err)
	}

	res, err := svc.ArchiveExpired(ctx, now)
	if err != nil {
		t.Fatalf("ArchiveExpired: %v", err)
	}
	if res.Total != 2 || res.Archived+res.Deleted != res.Total {
		t.Fatalf("sweep result %+v does not partition the expired set", res)
	}
	if res.Archived != 1 || res.Deleted != 1 {
		t.Fatalf("sweep result %+v, want 1 archived and 1 deleted", res)
	}

	// The contribution without receipts is gone, but its snapshot survives.
	if err := svc.DB.Where("id = ?", orphan.ID).First(&ledger.Contribution{}).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("orphan contribution still present (err=%v)", err)
	}
	var snap ledger.PastContribution
	if err := svc.DB.Where("original_id = ?", orphan.ID).First(&snap).Error; err != nil {
		t.Fatalf("snapshot for deleted contribution missing: %v", err)
	}
	if !snap.Amount.Equal(orphan.Amount) || snap.Title != orphan.Title {
		t.Fatalf("snapshot %+v does not mirror the original", snap)
	}

	// The contribution with a receipt is kept, just deactivated.
	var kept ledger.Contribution
	if err := svc.DB.Where("id = ?", paid.ID).First(&kept).Error; err != nil {
		t.Fatalf("referenced contribution was deleted: %v", err)
	}
	if kept.IsActive {
		t.Fatal("referenced contribution still active after sweep")
	}
	if err := svc.DB.Where("original_id = ?", paid.ID).First(&ledger.PastContribution{}).Error; err != nil {
		t.Fatalf("snapshot for kept contribution missing: %v", err)
	}

	// The unexpired contribution is untouched.
	var fresh ledger.Contribution
	if err := svc.DB.Where("id = ?", current.ID).First(&fresh).Error; err != nil || !fresh.IsActive {
		t.Fatalf("unexpired contribution touched (err=%v, active=%v)", err, fresh.IsActive)
	}
}

func TestArchiveExpiredIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	ada := seedUser(t, svc, "ada")
	c := seedContribution(t, svc, "Old Dues", "500", now.AddDate(0, 0, -1), nil)
	if _, err := svc.CreateReceipt(ctx, ledger.CreateReceiptInput{
		UserID:         ada.ID,
		ContributionID: c.ID,
		Amount:         decimal.RequireFromString("500"),
		ImageURL:       "https://cdn.example/r.jpg",
	}); err != nil {
		t.Fatalf("CreateReceipt: %v", err)
	}

	if _, err := svc.ArchiveExpired(ctx, now); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	res, err := svc.ArchiveExpired(ctx, now)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if res.Total != 0 {
		t.Fatalf("second sweep processed %d rows, want 0", res.Total)
	}
	var snaps int64
	if err := svc.DB.Model(&ledger.PastContribution{}).Where("original_id = ?", c.ID).Count(&snaps).Error; err != nil {
		t.Fatal(err)
	}
	if snaps != 1 {
		t.Fatalf("%d snapshots for one contribution", snaps)
	}
}

func TestVisibleContributions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	due := time.Now().AddDate(0, 1, 0)

	ada := seedUser(t, svc, "ada")
	bob := seedUser(t, svc, "bob")

	global := seedContribution(t, svc, "Monthly Dues", "1000", due, nil)
	mine := seedContribution(t, svc, "Ada Levy", "200", due, &ada.ID)
	seedContribution(t, svc, "Bob Levy", "300", due, &bob.ID)
	inactive := seedContribution(t, svc, "Retired", "400", due, nil)
	if _, err := svc.SetContributionActive(ctx, inactive.ID, false); err != nil {
		t.Fatal(err)
	}

	got, err := svc.VisibleContributions(ctx, &ada.ID)
	if err != nil {
		t.Fatal(err)
	}
	ids := map[string]bool{}
	for _, c := range got {
		ids[c.ID] = true
	}
	if len(got) != 2 || !ids[global.ID] || !ids[mine.ID] {
		t.Fatalf("ada sees %d contributions %v, want the global one and her own", len(got), ids)
	}

	// No identity: every active contribution, targeted or not.
	all, err := svc.VisibleContributions(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("anonymous view has %d contributions, want 3", len(all))
	}
}

func TestUserBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	due := time.Now().AddDate(0, 1, 0)

	ada := seedUser(t, svc, "ada")
	bob := seedUser(t, svc, "bob")

	c1 := seedContribution(t, svc, "Dues A", "6000", due, nil)
	seedContribution(t, svc, "Dues B", "4000", due, nil)
	seedContribution(t, svc, "Bob Levy", "9999", due, &bob.ID)

	r, err := svc.CreateReceipt(ctx, ledger.CreateReceiptInput{
		UserID:         ada.ID,
		ContributionID: c1.ID,
		Amount:         decimal.RequireFromString("4000"),
		ImageURL:       "https://cdn.example/r1.jpg",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ReviewReceipt(ctx, r.ID, ledger.ReceiptApproved, "ok"); err != nil {
		t.Fatal(err)
	}
	// A pending receipt must not count toward totalPaid.
	if _, err := svc.CreateReceipt(ctx, ledger.CreateReceiptInput{
		UserID:         ada.ID,
		ContributionID: c1.ID,
		Amount:         decimal.RequireFromString("1000"),
		ImageURL:       "https://cdn.example/r2.jpg",
	}); err != nil {
		t.Fatal(err)
	}

	bal, err := svc.UserBalance(ctx, ada.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !bal.TotalContributions.Equal(decimal.RequireFromString("10000")) {
		t.Fatalf("totalContributions = %s, want 10000", bal.TotalContributions)
	}
	if !bal.TotalPaid.Equal(decimal.RequireFromString("4000")) {
		t.Fatalf("totalPaid = %s, want 4000", bal.TotalPaid)
	}
	if !bal.PendingAmount.Equal(decimal.RequireFromString("6000")) {
		t.Fatalf("pendingAmount = %s, want 6000", bal.PendingAmount)
	}
	if bal.ReceiptsSubmitted != 2 || bal.ReceiptsApproved != 1 {
		t.Fatalf("receipt counts %d/%d, want 2/1", bal.ReceiptsSubmitted, bal.ReceiptsApproved)
	}
}

func TestUserBalanceOverpaymentClampsAtZero(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	due := time.Now().AddDate(0, 1, 0)

	ada := seedUser(t, svc, "ada")
	c := seedContribution(t, svc, "Dues", "1000", due, nil)

	r, err := svc.CreateReceipt(ctx, ledger.CreateReceiptInput{
		UserID:         ada.ID,
		ContributionID: c.ID,
		Amount:         decimal.RequireFromString("1500"),
		ImageURL:       "https://cdn.example/r.jpg",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ReviewReceipt(ctx, r.ID, ledger.ReceiptApproved, ""); err != nil {
		t.Fatal(err)
	}

	bal, err := svc.UserBalance(ctx, ada.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !bal.PendingAmount.IsZero() {
		t.Fatalf("pendingAmount = %s after overpayment, want 0", bal.PendingAmount)
	}
}

func TestReviewReceiptTransitions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ada := seedUser(t, svc, "ada")
	c := seedContribution(t, svc, "Dues", "1000", time.Now().AddDate(0, 1, 0), nil)
	r, err := svc.CreateReceipt(ctx, ledger.CreateReceiptInput{
		UserID:         ada.ID,
		ContributionID: c.ID,
		Amount:         decimal.RequireFromString("1000"),
		ImageURL:       "https://cdn.example/r.jpg",
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Status != ledger.ReceiptPending {
		t.Fatalf("new receipt status = %s", r.Status)
	}

	approved, err := svc.ReviewReceipt(ctx, r.ID, ledger.ReceiptApproved, "looks good")
	if err != nil {
		t.Fatal(err)
	}
	if approved.Status != ledger.ReceiptApproved || approved.AdminNotes != "looks good" {
		t.Fatalf("after review: %+v", approved)
	}

	// Terminal states do not move again.
	if _, err := svc.ReviewReceipt(ctx, r.ID, ledger.ReceiptRejected, ""); !errors.Is(err, ledger.ErrStatusSettled) {
		t.Fatalf("re-review err = %v, want ErrStatusSettled", err)
	}
	if _, err := svc.ReviewReceipt(ctx, r.ID, ledger.ReceiptStatus("MAYBE"), ""); !errors.Is(err, ledger.ErrInvalidStatus) {
		t.Fatalf("bad status err = %v, want ErrInvalidStatus", err)
	}
	if _, err := svc.ReviewReceipt(ctx, "00000000-0000-0000-0000-000000000000", ledger.ReceiptApproved, ""); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("missing receipt err = %v, want ErrNotFound", err)
	}
}

func TestRecordCashContribution(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ada := seedUser(t, svc, "ada")

	c, r, err := svc.RecordCashContribution(ctx, ledger.CashContributionInput{
		UserID: ada.ID,
		Amount: decimal.RequireFromString("2500"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.UserID == nil || *c.UserID != ada.ID {
		t.Fatalf("cash contribution not targeted at payer: %+v", c)
	}
	if r.Status != ledger.ReceiptApproved || r.ImageURL != ledger.CashPaymentMarker {
		t.Fatalf("cash receipt = %+v", r)
	}
	if r.ContributionID != c.ID {
		t.Fatal("receipt not linked to the cash contribution")
	}

	// The pair cancels out in the payer's balance.
	bal, err := svc.UserBalance(ctx, ada.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !bal.PendingAmount.IsZero() {
		t.Fatalf("pendingAmount = %s after cash payment, want 0", bal.PendingAmount)
	}

	if _, _, err := svc.RecordCashContribution(ctx, ledger.CashContributionInput{
		UserID: "00000000-0000-0000-0000-000000000000",
		Amount: decimal.RequireFromString("10"),
	}); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("unknown payer err = %v, want ErrNotFound", err)
	}
}

func TestUpsertProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.UpsertProfile(ctx, ledger.ProfileInput{
		FirebaseUID: "fb-new",
		Email:       "new@example.com",
		Username:    "newbie",
		DisplayName: "New Member",
		StateCode:   "LA/23A/1234",
	})
	if err != nil {
		t.Fatal(err)
	}
	if u.ID == "" || !u.IsActive {
		t.Fatalf("created profile %+v", u)
	}

	// Same UID updates in place.
	again, err := svc.UpsertProfile(ctx, ledger.ProfileInput{
		FirebaseUID: "fb-new",
		Email:       "new@example.com",
		Username:    "newbie",
		DisplayName: "Renamed",
		StateCode:   "LA/23A/1234",
	})
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != u.ID || again.DisplayName != "Renamed" {
		t.Fatalf("upsert created a second row or lost the edit: %+v", again)
	}

	// A different UID claiming the same username collides.
	if _, err := svc.UpsertProfile(ctx, ledger.ProfileInput{
		FirebaseUID: "fb-other",
		Email:       "other@example.com",
		Username:    "newbie",
	}); !errors.Is(err, ledger.ErrDuplicateUser) {
		t.Fatalf("duplicate username err = %v, want ErrDuplicateUser", err)
	}
}
