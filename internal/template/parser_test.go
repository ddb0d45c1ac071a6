package template

import (
	"testing"
)

func TestParseSections(t *testing.T) {
	raw := "Intro text before any header is ignored.\n" +
		"### Lottery Name\nSpring Giveaway\n\n" +
		"### Prize\nOne year of forum\nsupporter status\n\n" +
		"### Specific Floors (optional)\n3,5,8\n\n" +
		"### Mystery Section\nkept for forward compatibility\n"

	sections := Parse(raw)

	if got := sections[LabelName]; got != "Spring Giveaway" {
		t.Errorf("name = %q, want %q", got, "Spring Giveaway")
	}
	if got := sections[LabelPrize]; got != "One year of forum\nsupporter status" {
		t.Errorf("prize = %q, want multi-line body preserved", got)
	}
	if got := sections[LabelSpecificFloors]; got != "3,5,8" {
		t.Errorf("specific floors = %q, want %q (optional qualifier stripped)", got, "3,5,8")
	}
	if got := sections["mystery section"]; got != "kept for forward compatibility" {
		t.Errorf("unknown label dropped, got %q", got)
	}
}

func TestParseRepeatedLabelLastWins(t *testing.T) {
	raw := "### Prize\nfirst\n\n### Prize\nsecond"
	sections := Parse(raw)
	if got := sections[LabelPrize]; got != "second" {
		t.Errorf("prize = %q, want last occurrence %q", got, "second")
	}
}

func TestParseNoTrailingTerminator(t *testing.T) {
	sections := Parse("### Winner Count\n3")
	if got := sections[LabelWinnerCount]; got != "3" {
		t.Errorf("winner count = %q, want %q", got, "3")
	}
}

func TestParseTolerance(t *testing.T) {
	raw := "   ### Lottery Name   \n  padded  \n\n\n### Description\n\nbody after blank line\n"
	sections := Parse(raw)
	if got := sections[LabelName]; got != "padded" {
		t.Errorf("name = %q, want trimmed %q", got, "padded")
	}
	if got := sections[LabelDescription]; got != "body after blank line" {
		t.Errorf("description = %q, want leading blank line trimmed", got)
	}
}

func TestParseEmptyInput(t *testing.T) {
	if sections := Parse(""); len(sections) != 0 {
		t.Errorf("expected empty map, got %v", sections)
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Lottery Name", "lottery name"},
		{"Specific Floors (optional)", "specific floors"},
		{"  Extra   Info  ", "extra info"},
		{"Draw Type", "draw type"},
	}
	for _, tt := range tests {
		if got := NormalizeLabel(tt.in); got != tt.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
