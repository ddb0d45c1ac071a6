package services

import (
	"math/rand"
	"testing"
	"time"

	"github.com/forumkit/lottery-draw-backend/internal/models"
	"github.com/forumkit/lottery-draw-backend/pkg/forum"
)

const creatorID = int64(1)

func reply(number int, authorID int64, authorName string, createdAt time.Time) *forum.Post {
	return &forum.Post{
		ID:         int64(10000 + number),
		ThreadID:   42,
		Number:     number,
		AuthorID:   authorID,
		AuthorName: authorName,
		CreatedAt:  createdAt,
	}
}

func testReplies() []*forum.Post {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return []*forum.Post{
		reply(2, 2, "alice", base.Add(1*time.Minute)),
		reply(3, 3, "bob", base.Add(2*time.Minute)),
		reply(4, creatorID, "creator", base.Add(3*time.Minute)),
		reply(5, 2, "alice", base.Add(4*time.Minute)),
		reply(6, 4, "carol", base.Add(5*time.Minute)),
		reply(7, 5, "dave", base.Add(6*time.Minute)),
	}
}

func TestEligibleParticipants(t *testing.T) {
	eligible := EligibleParticipants(testReplies(), creatorID)

	if len(eligible) != 4 {
		t.Fatalf("expected 4 eligible participants, got %d", len(eligible))
	}

	// One entry per author, earliest contribution, chronological order.
	wantNumbers := []int{2, 3, 6, 7}
	for i, post := range eligible {
		if post.Number != wantNumbers[i] {
			t.Errorf("eligible[%d].Number = %d, want %d", i, post.Number, wantNumbers[i])
		}
		if post.AuthorID == creatorID {
			t.Errorf("eligible[%d] is authored by the creator", i)
		}
	}
}

func TestEligibleParticipantsExcludesOriginatingPost(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	posts := []*forum.Post{
		reply(1, 9, "op", base),
		reply(2, 2, "alice", base.Add(time.Minute)),
	}
	eligible := EligibleParticipants(posts, creatorID)
	if len(eligible) != 1 || eligible[0].Number != 2 {
		t.Fatalf("expected only post #2, got %+v", eligible)
	}
}

func TestEligibleParticipantsUnorderedInput(t *testing.T) {
	replies := testReplies()
	// Reverse the slice; eligibility is defined over creation time, not
	// input order.
	for i, j := 0, len(replies)-1; i < j; i, j = i+1, j-1 {
		replies[i], replies[j] = replies[j], replies[i]
	}

	eligible := EligibleParticipants(replies, creatorID)
	if len(eligible) != 4 {
		t.Fatalf("expected 4 eligible participants, got %d", len(eligible))
	}
	if eligible[0].Number != 2 {
		t.Errorf("earliest contribution should win, got post #%d for alice", eligible[0].Number)
	}
}

func randomLottery(count int) *models.Lottery {
	return &models.Lottery{
		CreatedByID: creatorID,
		Status:      models.LotteryStatusRunning,
		Config: models.LotteryConfig{
			Name:        "test",
			WinnerCount: count,
			DrawType:    models.DrawTypeByReply,
		},
	}
}

func floorLottery(count int, floors []int) *models.Lottery {
	lottery := randomLottery(count)
	lottery.Config.SpecificFloors = floors
	return lottery
}

func TestSelectWinnersRandom(t *testing.T) {
	replies := testReplies()

	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		winners := SelectWinners(randomLottery(2), replies, models.FallbackVoid, rng)

		if len(winners) != 2 {
			t.Fatalf("seed %d: expected 2 winners, got %d", seed, len(winners))
		}
		seen := make(map[int64]bool)
		for _, w := range winners {
			if w.UserID == creatorID {
				t.Errorf("seed %d: creator selected as winner", seed)
			}
			if seen[w.UserID] {
				t.Errorf("seed %d: participant %d won twice", seed, w.UserID)
			}
			seen[w.UserID] = true
		}
	}
}

func TestSelectWinnersRandomCappedAtEligible(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	winners := SelectWinners(randomLottery(10), testReplies(), models.FallbackVoid, rng)
	if len(winners) != 4 {
		t.Fatalf("expected winner set capped at 4 eligible, got %d", len(winners))
	}
}

func TestSelectWinnersRandomAttributesEarliestPost(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	winners := SelectWinners(randomLottery(4), testReplies(), models.FallbackVoid, rng)
	for _, w := range winners {
		if w.UserID == 2 && w.PostNumber != 2 {
			t.Errorf("alice's winning entry should be her earliest post #2, got #%d", w.PostNumber)
		}
	}
}

func TestSelectWinnersRandomNoParticipants(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	winners := SelectWinners(randomLottery(3), nil, models.FallbackVoid, rng)
	if len(winners) != 0 {
		t.Fatalf("expected empty winner set, got %d", len(winners))
	}
}

func TestSelectWinnersByFloors(t *testing.T) {
	replies := testReplies()

	tests := []struct {
		name     string
		floors   []int
		count    int
		fallback models.FallbackPolicy
		want     []models.LotteryWinner
	}{
		{
			name:     "exact floors resolve",
			floors:   []int{2, 6},
			count:    2,
			fallback: models.FallbackVoid,
			want: []models.LotteryWinner{
				{UserID: 2, Username: "alice", PostNumber: 2},
				{UserID: 4, Username: "carol", PostNumber: 6},
			},
		},
		{
			name:     "missing floor voided",
			floors:   []int{2, 99},
			count:    2,
			fallback: models.FallbackVoid,
			want: []models.LotteryWinner{
				{UserID: 2, Username: "alice", PostNumber: 2},
			},
		},
		{
			name:     "creator floor voided",
			floors:   []int{3, 4},
			count:    2,
			fallback: models.FallbackVoid,
			want: []models.LotteryWinner{
				{UserID: 3, Username: "bob", PostNumber: 3},
			},
		},
		{
			name:     "creator floor falls through to next",
			floors:   []int{3, 4},
			count:    2,
			fallback: models.FallbackNext,
			want: []models.LotteryWinner{
				{UserID: 3, Username: "bob", PostNumber: 3},
				{UserID: 2, Username: "alice", PostNumber: 5},
			},
		},
		{
			name:     "next skips existing winners",
			floors:   []int{2, 4},
			count:    2,
			fallback: models.FallbackNext,
			want: []models.LotteryWinner{
				{UserID: 2, Username: "alice", PostNumber: 2},
				{UserID: 4, Username: "carol", PostNumber: 6},
			},
		},
		{
			name:     "duplicate participant wins once",
			floors:   []int{2, 5},
			count:    2,
			fallback: models.FallbackVoid,
			want: []models.LotteryWinner{
				{UserID: 2, Username: "alice", PostNumber: 2},
			},
		},
		{
			name:     "fallback beyond last post voided",
			floors:   []int{7, 99},
			count:    2,
			fallback: models.FallbackNext,
			want: []models.LotteryWinner{
				{UserID: 5, Username: "dave", PostNumber: 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lottery := floorLottery(tt.count, tt.floors)
			got := SelectWinners(lottery, replies, tt.fallback, rand.New(rand.NewSource(1)))

			if len(got) != len(tt.want) {
				t.Fatalf("expected %d winners, got %d: %+v", len(tt.want), len(got), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("winners[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
