package template

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/forumkit/lottery-draw-backend/internal/models"
)

// RejectKind identifies which validation rule a template violated
type RejectKind string

const (
	RejectMissingField               RejectKind = "missing_field"
	RejectInvalidWinnerCount         RejectKind = "invalid_winner_count"
	RejectInvalidFixedPositions      RejectKind = "invalid_fixed_positions"
	RejectInvalidTriggerValue        RejectKind = "invalid_trigger_value"
	RejectWinnerCountExceedsPolicy   RejectKind = "winner_count_exceeds_policy"
	RejectMinParticipantsBelowPolicy RejectKind = "min_participants_below_policy"
)

// ValidationError is a structured rejection of a lottery template
type ValidationError struct {
	Kind   RejectKind
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("template rejected (%s, field %q): %s", e.Kind, e.Field, e.Detail)
	}
	return fmt.Sprintf("template rejected (%s): %s", e.Kind, e.Detail)
}

// Limits are the externally configured policy limits applied at validation
type Limits struct {
	MaxWinners      int
	MaxHorizonDays  int
	MinParticipants int
	Now             time.Time // zero value means time.Now()
}

const maxNameLength = 255

// timestamp layouts accepted from humans, with and without a year
var (
	yearLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006/01/02 15:04:05",
		"2006/01/02 15:04",
		"2006-01-02",
		"2006/01/02",
	}
	noYearLayouts = []string{
		"01-02 15:04",
		"01/02 15:04",
	}
)

// Validate consumes a parsed label map and produces a fully-typed
// LotteryConfig, or a *ValidationError naming the violated rule.
func Validate(sections map[string]string, limits Limits) (*models.LotteryConfig, error) {
	now := limits.Now
	if now.IsZero() {
		now = time.Now()
	}

	cfg := &models.LotteryConfig{
		Description: sections[LabelDescription],
		ExtraInfo:   sections[LabelExtraInfo],
	}

	name := sections[LabelName]
	if name == "" {
		return nil, &ValidationError{Kind: RejectMissingField, Field: LabelName, Detail: "section absent or empty"}
	}
	if len(name) > maxNameLength {
		return nil, &ValidationError{Kind: RejectMissingField, Field: LabelName, Detail: fmt.Sprintf("name exceeds %d characters", maxNameLength)}
	}
	cfg.Name = name

	if cfg.Prize = sections[LabelPrize]; cfg.Prize == "" {
		return nil, &ValidationError{Kind: RejectMissingField, Field: LabelPrize, Detail: "section absent or empty"}
	}

	drawType, ok := parseDrawType(sections[LabelDrawType])
	if !ok {
		return nil, &ValidationError{Kind: RejectMissingField, Field: LabelDrawType, Detail: "expected time or reply-count draw"}
	}
	cfg.DrawType = drawType

	floors, err := parseFloors(sections[LabelSpecificFloors])
	if err != nil {
		return nil, err
	}
	cfg.SpecificFloors = floors

	// Selection-mode inference: a non-empty floor list means fixed-position
	// mode, and the winner count is derived from the distinct floor count.
	if len(floors) > 0 {
		cfg.WinnerCount = len(floors)
	} else {
		countRaw := sections[LabelWinnerCount]
		if countRaw == "" {
			return nil, &ValidationError{Kind: RejectMissingField, Field: LabelWinnerCount, Detail: "section absent or empty"}
		}
		count, err := strconv.Atoi(countRaw)
		if err != nil || count <= 0 {
			return nil, &ValidationError{Kind: RejectInvalidWinnerCount, Field: LabelWinnerCount, Detail: fmt.Sprintf("not a positive integer: %q", countRaw)}
		}
		cfg.WinnerCount = count
	}
	if limits.MaxWinners > 0 && cfg.WinnerCount > limits.MaxWinners {
		return nil, &ValidationError{Kind: RejectWinnerCountExceedsPolicy, Field: LabelWinnerCount, Detail: fmt.Sprintf("%d exceeds configured maximum %d", cfg.WinnerCount, limits.MaxWinners)}
	}

	condition := sections[LabelDrawCondition]
	if condition == "" {
		return nil, &ValidationError{Kind: RejectMissingField, Field: LabelDrawCondition, Detail: "section absent or empty"}
	}
	switch drawType {
	case models.DrawTypeByTime:
		drawAt, err := ParseTimestamp(condition, now)
		if err != nil {
			return nil, &ValidationError{Kind: RejectInvalidTriggerValue, Field: LabelDrawCondition, Detail: err.Error()}
		}
		if !drawAt.After(now) {
			return nil, &ValidationError{Kind: RejectInvalidTriggerValue, Field: LabelDrawCondition, Detail: "draw time is not in the future"}
		}
		if limits.MaxHorizonDays > 0 && drawAt.After(now.AddDate(0, 0, limits.MaxHorizonDays)) {
			return nil, &ValidationError{Kind: RejectInvalidTriggerValue, Field: LabelDrawCondition, Detail: fmt.Sprintf("draw time is beyond the %d-day horizon", limits.MaxHorizonDays)}
		}
		cfg.DrawAt = &drawAt
	case models.DrawTypeByReply:
		threshold, err := strconv.Atoi(condition)
		if err != nil || threshold <= 0 {
			return nil, &ValidationError{Kind: RejectInvalidTriggerValue, Field: LabelDrawCondition, Detail: fmt.Sprintf("not a positive reply threshold: %q", condition)}
		}
		cfg.DrawReplyCount = threshold
	}

	cfg.MinParticipants = limits.MinParticipants
	if raw := sections[LabelMinParticipants]; raw != "" {
		floor, err := strconv.Atoi(raw)
		if err != nil || floor < 0 {
			return nil, &ValidationError{Kind: RejectMinParticipantsBelowPolicy, Field: LabelMinParticipants, Detail: fmt.Sprintf("not a non-negative integer: %q", raw)}
		}
		if floor < limits.MinParticipants {
			return nil, &ValidationError{Kind: RejectMinParticipantsBelowPolicy, Field: LabelMinParticipants, Detail: fmt.Sprintf("%d is below the configured floor %d", floor, limits.MinParticipants)}
		}
		cfg.MinParticipants = floor
	}

	cfg.OnInsufficient = parseInsufficientPolicy(sections[LabelOnInsufficient])

	return cfg, nil
}

// ParseTimestamp parses a human-entered timestamp. Year-omitted forms assume
// the current year, rolled forward one year when the result is already in the
// past, so "upcoming" intent survives year boundaries.
func ParseTimestamp(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range yearLayouts {
		if t, err := time.ParseInLocation(layout, value, now.Location()); err == nil {
			return t, nil
		}
	}
	for _, layout := range noYearLayouts {
		t, err := time.ParseInLocation(layout, value, now.Location())
		if err != nil {
			continue
		}
		t = time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
		if t.Before(now) {
			t = t.AddDate(1, 0, 0)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}

func parseDrawType(value string) (models.DrawType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "by time", "by_time", "time":
		return models.DrawTypeByTime, true
	case "by reply", "by_reply", "reply", "by reply count", "reply count":
		return models.DrawTypeByReply, true
	default:
		return "", false
	}
}

// parseFloors parses a comma-separated floor list into a sorted, deduplicated
// slice. Floor 1 is the originating post and is never a valid winning slot.
func parseFloors(value string) ([]int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	seen := make(map[int]bool)
	var floors []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		floor, err := strconv.Atoi(part)
		if err != nil {
			return nil, &ValidationError{Kind: RejectInvalidFixedPositions, Field: LabelSpecificFloors, Detail: fmt.Sprintf("not an integer: %q", part)}
		}
		if floor <= 1 {
			return nil, &ValidationError{Kind: RejectInvalidFixedPositions, Field: LabelSpecificFloors, Detail: fmt.Sprintf("floor %d is not greater than 1", floor)}
		}
		if !seen[floor] {
			seen[floor] = true
			floors = append(floors, floor)
		}
	}
	if len(floors) == 0 {
		return nil, &ValidationError{Kind: RejectInvalidFixedPositions, Field: LabelSpecificFloors, Detail: "no valid floors after deduplication"}
	}
	sort.Ints(floors)
	return floors, nil
}

func parseInsufficientPolicy(value string) models.InsufficientPolicy {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "cancel":
		return models.InsufficientCancel
	default:
		return models.InsufficientDrawAnyway
	}
}
