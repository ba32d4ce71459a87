package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"time"
)

// ExportRange is the inclusive window of receipt creation times to export.
type ExportRange struct {
	From time.Time
	To   time.Time
}

var ErrBadRange = errors.New("invalid export range")

// ResolveExportRange turns the query parameters into a concrete window.
// Explicit startDate/endDate (YYYY-MM-DD) win; otherwise period picks the
// last 7 days ("weekly") or the current calendar month ("monthly", default).
func ResolveExportRange(period, startDate, endDate string, now time.Time) (ExportRange, error) {
	if startDate != "" && endDate != "" {
		from, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return ExportRange{}, ErrBadRange
		}
		to, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return ExportRange{}, ErrBadRange
		}
		if to.Before(from) {
			return ExportRange{}, ErrBadRange
		}
		return ExportRange{From: from, To: to.Add(24*time.Hour - time.Nanosecond)}, nil
	}

	switch period {
	case "weekly":
		return ExportRange{From: now.AddDate(0, 0, -7), To: now}, nil
	case "", "monthly":
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return ExportRange{From: from, To: now}, nil
	default:
		return ExportRange{}, ErrBadRange
	}
}

// ExportRow is one receipt flattened for the CSV report.
type ExportRow struct {
	Username    string
	DisplayName string
	StateCode   string
	Amount      string
	Status      string
	Timestamp   string
	Description string
}

// ReceiptsForExport collects receipts created inside the range, newest first.
func (s *Service) ReceiptsForExport(ctx context.Context, rng ExportRange) ([]ExportRow, error) {
	var receipts []Receipt
	err := s.DB.WithContext(ctx).
		Preload("User").
		Where("created_at >= ? AND created_at <= ?", rng.From, rng.To).
		Order("created_at desc").
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}

	rows := make([]ExportRow, 0, len(receipts))
	for _, r := range receipts {
		row := ExportRow{
			Amount:      r.Amount.String(),
			Status:      string(r.Status),
			Timestamp:   r.CreatedAt.UTC().Format(time.RFC3339),
			Description: r.Description,
		}
		if r.User != nil {
			row.Username = r.User.Username
			row.DisplayName = r.User.DisplayName
			row.StateCode = r.User.StateCode
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var exportHeader = []string{"username", "displayName", "stateCode", "amount", "status", "timestamp", "description"}

// WriteReceiptsCSV streams the rows as CSV with a fixed header.
func WriteReceiptsCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.Username, r.DisplayName, r.StateCode, r.Amount, r.Status, r.Timestamp, r.Description}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
