package validators

import (
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/maajod/maajod-backend/pkg/errors"
)

func TestParseQueryIntDefaultsWhenMissing(t *testing.T) {
	req := httptest.NewRequest("GET", "/summary", nil)

	value, err := ParseQueryInt(req, "month", 7, 1, 12)
	if err != nil {
		t.Fatalf("ParseQueryInt: %v", err)
	}
	if value != 7 {
		t.Fatalf("expected default 7, got %d", value)
	}
}

func TestParseQueryIntParsesValue(t *testing.T) {
	req := httptest.NewRequest("GET", "/summary?month=3", nil)

	value, err := ParseQueryInt(req, "month", 0, 1, 12)
	if err != nil {
		t.Fatalf("ParseQueryInt: %v", err)
	}
	if value != 3 {
		t.Fatalf("expected 3, got %d", value)
	}
}

func TestParseQueryIntRejectsNonNumeric(t *testing.T) {
	req := httptest.NewRequest("GET", "/summary?month=march", nil)

	_, err := ParseQueryInt(req, "month", 0, 1, 12)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryIntRejectsOutOfRange(t *testing.T) {
	for _, raw := range []string{"0", "13"} {
		req := httptest.NewRequest("GET", "/summary?month="+raw, nil)
		if _, err := ParseQueryInt(req, "month", 0, 1, 12); err == nil {
			t.Fatalf("expected range error for %s", raw)
		}
	}
}

func TestParseQueryDateMissingIsNil(t *testing.T) {
	req := httptest.NewRequest("GET", "/summary", nil)

	value, err := ParseQueryDate(req, "date")
	if err != nil {
		t.Fatalf("ParseQueryDate: %v", err)
	}
	if value != nil {
		t.Fatalf("expected nil for missing parameter, got %v", value)
	}
}

func TestParseQueryDateParsesValue(t *testing.T) {
	req := httptest.NewRequest("GET", "/summary?date=2024-06-15", nil)

	value, err := ParseQueryDate(req, "date")
	if err != nil {
		t.Fatalf("ParseQueryDate: %v", err)
	}
	want := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	if value == nil || !value.Equal(want) {
		t.Fatalf("expected %s, got %v", want, value)
	}
}

func TestParseQueryDateRejectsBadFormat(t *testing.T) {
	req := httptest.NewRequest("GET", "/summary?date=15-06-2024", nil)

	_, err := ParseQueryDate(req, "date")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
