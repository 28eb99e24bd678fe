package civiltime

import (
	"testing"
	"time"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestResolveWithTimeOfDay(t *testing.T) {
	loc := saoPaulo(t)
	got, err := Resolve("2025-06-10", "08:30", loc)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// São Paulo is UTC-3 year round since 2019.
	want := time.Date(2025, 6, 10, 11, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got.UTC(), want)
	}
}

func TestResolveMissingTimeDefaultsToStartOfDay(t *testing.T) {
	loc := saoPaulo(t)
	got, err := Resolve("2025-06-10", "", loc)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Hour() != 0 || got.Minute() != 0 {
		t.Errorf("expected start of civil day, got %v", got)
	}
	if DateOf(got, loc) != "2025-06-10" {
		t.Errorf("start of day shifted civil date: %s", DateOf(got, loc))
	}
}

func TestResolveRejectsMalformedInput(t *testing.T) {
	loc := saoPaulo(t)
	if _, err := Resolve("10/06/2025", "", loc); err == nil {
		t.Error("expected error for malformed date")
	}
	if _, err := Resolve("2025-06-10", "8h30", loc); err == nil {
		t.Error("expected error for malformed time")
	}
}

func TestRoundTripPreservesCivilFields(t *testing.T) {
	loc := saoPaulo(t)
	instant, err := Resolve("2025-12-31", "23:45", loc)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d := DateOf(instant, loc); d != "2025-12-31" {
		t.Errorf("DateOf = %s, want 2025-12-31", d)
	}
	if tod := TimeOf(instant, loc); tod != "23:45" {
		t.Errorf("TimeOf = %s, want 23:45", tod)
	}
}

func TestValidators(t *testing.T) {
	if !ValidDate("2025-01-02") || ValidDate("2025-13-01") {
		t.Error("ValidDate misbehaving")
	}
	if !ValidTime("23:59") || ValidTime("24:00") {
		t.Error("ValidTime misbehaving")
	}
}
