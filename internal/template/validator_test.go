package template

import (
	"errors"
	"testing"
	"time"

	"github.com/forumkit/lottery-draw-backend/internal/models"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func testLimits() Limits {
	return Limits{MaxWinners: 10, MaxHorizonDays: 90, Now: testNow}
}

func validSections() map[string]string {
	return map[string]string{
		LabelName:          "Spring Giveaway",
		LabelPrize:         "A mug",
		LabelWinnerCount:   "2",
		LabelDrawType:      "by reply",
		LabelDrawCondition: "3",
	}
}

func rejectKind(t *testing.T, err error) RejectKind {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	return verr.Kind
}

func TestValidateRoundTrip(t *testing.T) {
	cfg, err := Validate(validSections(), testLimits())
	if err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if cfg.Name != "Spring Giveaway" || cfg.Prize != "A mug" {
		t.Errorf("name/prize mismatch: %+v", cfg)
	}
	if cfg.WinnerCount != 2 {
		t.Errorf("winner count = %d, want 2", cfg.WinnerCount)
	}
	if cfg.DrawType != models.DrawTypeByReply || cfg.DrawReplyCount != 3 {
		t.Errorf("trigger mismatch: %+v", cfg)
	}
	if cfg.IsFixedPosition() {
		t.Error("expected random mode without floors")
	}
	if cfg.OnInsufficient != models.InsufficientDrawAnyway {
		t.Errorf("default insufficient policy = %q, want draw_anyway", cfg.OnInsufficient)
	}
}

func TestValidateByTime(t *testing.T) {
	sections := validSections()
	sections[LabelDrawType] = "by time"
	sections[LabelDrawCondition] = "2024-07-01 20:00"

	cfg, err := Validate(sections, testLimits())
	if err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	want := time.Date(2024, 7, 1, 20, 0, 0, 0, time.UTC)
	if cfg.DrawAt == nil || !cfg.DrawAt.Equal(want) {
		t.Errorf("drawAt = %v, want %v", cfg.DrawAt, want)
	}
}

func TestValidateMissingFields(t *testing.T) {
	for _, field := range []string{LabelName, LabelPrize, LabelWinnerCount, LabelDrawType, LabelDrawCondition} {
		sections := validSections()
		delete(sections, field)
		_, err := Validate(sections, testLimits())
		if kind := rejectKind(t, err); kind != RejectMissingField {
			t.Errorf("missing %q: kind = %q, want missing_field", field, kind)
		}
	}
}

func TestValidateWinnerCount(t *testing.T) {
	tests := []struct {
		count string
		want  RejectKind
	}{
		{"0", RejectInvalidWinnerCount},
		{"-3", RejectInvalidWinnerCount},
		{"lots", RejectInvalidWinnerCount},
		{"11", RejectWinnerCountExceedsPolicy},
	}
	for _, tt := range tests {
		sections := validSections()
		sections[LabelWinnerCount] = tt.count
		_, err := Validate(sections, testLimits())
		if kind := rejectKind(t, err); kind != tt.want {
			t.Errorf("count %q: kind = %q, want %q", tt.count, kind, tt.want)
		}
	}
}

func TestValidateFixedFloorsDeduplicated(t *testing.T) {
	sections := validSections()
	delete(sections, LabelWinnerCount) // count derived from floors
	sections[LabelSpecificFloors] = "3,5,5"

	cfg, err := Validate(sections, testLimits())
	if err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if !cfg.IsFixedPosition() {
		t.Fatal("expected fixed-position mode")
	}
	if len(cfg.SpecificFloors) != 2 || cfg.SpecificFloors[0] != 3 || cfg.SpecificFloors[1] != 5 {
		t.Errorf("floors = %v, want [3 5]", cfg.SpecificFloors)
	}
	if cfg.WinnerCount != 2 {
		t.Errorf("derived winner count = %d, want 2", cfg.WinnerCount)
	}
}

func TestValidateInvalidFloors(t *testing.T) {
	for _, floors := range []string{"1,3", "0", "-2,5", "three", ",,"} {
		sections := validSections()
		sections[LabelSpecificFloors] = floors
		_, err := Validate(sections, testLimits())
		if kind := rejectKind(t, err); kind != RejectInvalidFixedPositions {
			t.Errorf("floors %q: kind = %q, want invalid_fixed_positions", floors, kind)
		}
	}
}

func TestValidateTriggerValue(t *testing.T) {
	tests := []struct {
		name      string
		drawType  string
		condition string
	}{
		{"past timestamp", "by time", "2024-01-01 10:00"},
		{"unparseable timestamp", "by time", "sometime soon"},
		{"beyond horizon", "by time", "2025-06-15 12:00"},
		{"zero replies", "by reply", "0"},
		{"negative replies", "by reply", "-1"},
		{"non-numeric replies", "by reply", "many"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := validSections()
			sections[LabelDrawType] = tt.drawType
			sections[LabelDrawCondition] = tt.condition
			_, err := Validate(sections, testLimits())
			if kind := rejectKind(t, err); kind != RejectInvalidTriggerValue {
				t.Errorf("kind = %q, want invalid_trigger_value", kind)
			}
		})
	}
}

func TestValidateMinParticipants(t *testing.T) {
	limits := testLimits()
	limits.MinParticipants = 5

	sections := validSections()
	sections[LabelMinParticipants] = "3"
	_, err := Validate(sections, limits)
	if kind := rejectKind(t, err); kind != RejectMinParticipantsBelowPolicy {
		t.Errorf("kind = %q, want min_participants_below_policy", kind)
	}

	sections[LabelMinParticipants] = "8"
	sections[LabelOnInsufficient] = "cancel"
	cfg, err := Validate(sections, limits)
	if err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if cfg.MinParticipants != 8 {
		t.Errorf("min participants = %d, want 8", cfg.MinParticipants)
	}
	if cfg.OnInsufficient != models.InsufficientCancel {
		t.Errorf("policy = %q, want cancel", cfg.OnInsufficient)
	}

	// Unset template floor inherits the configured one.
	cfg, err = Validate(validSections(), limits)
	if err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if cfg.MinParticipants != 5 {
		t.Errorf("inherited floor = %d, want 5", cfg.MinParticipants)
	}
}

func TestParseTimestampYearRollForward(t *testing.T) {
	// June 15th noon: an earlier month-day without a year should land next year.
	got, err := ParseTimestamp("03-01 18:30", testNow)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("rolled timestamp = %v, want %v", got, want)
	}

	// A later month-day stays in the current year.
	got, err = ParseTimestamp("12/24 08:00", testNow)
	if err != nil {
		t.Fatal(err)
	}
	want = time.Date(2024, 12, 24, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("same-year timestamp = %v, want %v", got, want)
	}
}

func TestParseTimestampFormats(t *testing.T) {
	for _, value := range []string{
		"2024-07-01 20:00",
		"2024-07-01 20:00:30",
		"2024/07/01 20:00",
		"2024-07-01",
		"2024/07/01",
	} {
		if _, err := ParseTimestamp(value, testNow); err != nil {
			t.Errorf("ParseTimestamp(%q) failed: %v", value, err)
		}
	}
	if _, err := ParseTimestamp("20:00 tomorrow", testNow); err == nil {
		t.Error("expected error for unsupported format")
	}
}
