package ledger

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestResolveExportRange(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

	t.Run("monthly defaults to calendar month start", func(t *testing.T) {
		rng, err := ResolveExportRange("monthly", "", "", now)
		if err != nil {
			t.Fatal(err)
		}
		want := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
		if !rng.From.Equal(want) {
			t.Fatalf("from = %v, want %v", rng.From, want)
		}
		if !rng.To.Equal(now) {
			t.Fatalf("to = %v, want %v", rng.To, now)
		}
	})

	t.Run("weekly is trailing seven days", func(t *testing.T) {
		rng, err := ResolveExportRange("weekly", "", "", now)
		if err != nil {
			t.Fatal(err)
		}
		if !rng.From.Equal(now.AddDate(0, 0, -7)) {
			t.Fatalf("from = %v", rng.From)
		}
	})

	t.Run("explicit range wins over period", func(t *testing.T) {
		rng, err := ResolveExportRange("weekly", "2025-01-01", "2025-01-31", now)
		if err != nil {
			t.Fatal(err)
		}
		if rng.From.Month() != time.January || rng.To.Month() != time.January {
			t.Fatalf("range = %v..%v", rng.From, rng.To)
		}
		// End date is inclusive.
		if rng.To.Day() != 31 {
			t.Fatalf("to = %v", rng.To)
		}
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		if _, err := ResolveExportRange("", "2025-02-01", "2025-01-01", now); err == nil {
			t.Fatal("expected error for inverted range")
		}
	})

	t.Run("rejects unknown period", func(t *testing.T) {
		if _, err := ResolveExportRange("yearly", "", "", now); err == nil {
			t.Fatal("expected error for unknown period")
		}
	})
}

func TestWriteReceiptsCSV(t *testing.T) {
	rows := []ExportRow{
		{Username: "ada", DisplayName: "Ada L", StateCode: "LA/23A/1234", Amount: "5000", Status: "APPROVED", Timestamp: "2025-03-01T10:00:00Z", Description: "dues"},
		{Username: "bob", Amount: "250.5", Status: "PENDING", Description: "has,comma"},
	}

	var buf bytes.Buffer
	if err := WriteReceiptsCSV(&buf, rows); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "username,displayName,stateCode,amount,status,timestamp,description" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "5000") || !strings.Contains(lines[1], "APPROVED") {
		t.Fatalf("row 1 mangled: %s", lines[1])
	}
	// Comma in a field must be quoted, not split.
	if !strings.Contains(lines[2], `"has,comma"`) {
		t.Fatalf("comma field not quoted: %s", lines[2])
	}
}

func TestWriteReceiptsCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReceiptsCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "username,displayName,stateCode,amount,status,timestamp,description" {
		t.Fatalf("empty export should still carry the header, got %q", buf.String())
	}
}
