package services

import (
	"math/rand"
	"sort"

	"github.com/forumkit/lottery-draw-backend/internal/models"
	"github.com/forumkit/lottery-draw-backend/pkg/forum"
)

// EligibleParticipants reduces a thread's replies to one post per distinct
// author: the earliest qualifying reply, in stable chronological order. The
// originating post and every post by the lottery's creator are excluded.
func EligibleParticipants(replies []*forum.Post, creatorID int64) []*forum.Post {
	sorted := append([]*forum.Post(nil), replies...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	seen := make(map[int64]bool)
	var eligible []*forum.Post
	for _, post := range sorted {
		if post.Number <= 1 || post.AuthorID == creatorID || seen[post.AuthorID] {
			continue
		}
		seen[post.AuthorID] = true
		eligible = append(eligible, post)
	}
	return eligible
}

// SelectWinners picks the winners for a fired lottery according to its
// selection mode. The returned list may be shorter than the configured
// winner count, or empty; the caller decides what an empty result means.
func SelectWinners(lottery *models.Lottery, replies []*forum.Post, fallback models.FallbackPolicy, rng *rand.Rand) []models.LotteryWinner {
	if lottery.Config.IsFixedPosition() {
		return selectByFloors(replies, lottery.Config.SpecificFloors, lottery.CreatedByID, lottery.Config.WinnerCount, fallback)
	}
	return selectRandom(replies, lottery.CreatedByID, lottery.Config.WinnerCount, rng)
}

// selectRandom draws a uniform sample without replacement from the
// deduplicated participant set, silently capped at the eligible count.
func selectRandom(replies []*forum.Post, creatorID int64, count int, rng *rand.Rand) []models.LotteryWinner {
	eligible := EligibleParticipants(replies, creatorID)
	if len(eligible) == 0 {
		return nil
	}
	if count > len(eligible) {
		count = len(eligible)
	}

	winners := make([]models.LotteryWinner, 0, count)
	for _, idx := range rng.Perm(len(eligible))[:count] {
		post := eligible[idx]
		winners = append(winners, models.LotteryWinner{
			UserID:     post.AuthorID,
			Username:   post.AuthorName,
			PostNumber: post.Number,
		})
	}
	return winners
}

// selectByFloors resolves each configured floor, in ascending order, to the
// post at that exact position. A missing floor, or one authored by the
// creator, is resolved by the fallback policy: void leaves the slot empty,
// next substitutes the nearest later eligible post. A participant can win at
// most once regardless of how many floors resolve to them.
func selectByFloors(replies []*forum.Post, floors []int, creatorID int64, count int, fallback models.FallbackPolicy) []models.LotteryWinner {
	byNumber := make(map[int]*forum.Post, len(replies))
	maxNumber := 0
	for _, post := range replies {
		byNumber[post.Number] = post
		if post.Number > maxNumber {
			maxNumber = post.Number
		}
	}

	won := make(map[int64]bool)
	var winners []models.LotteryWinner
	for _, floor := range floors {
		post := byNumber[floor]
		if post != nil && post.AuthorID != creatorID {
			if won[post.AuthorID] {
				continue // duplicate participant, slot is void
			}
		} else if fallback == models.FallbackNext {
			post = nextEligible(byNumber, floor+1, maxNumber, creatorID, won)
		} else {
			post = nil
		}
		if post == nil || post.AuthorID == creatorID || won[post.AuthorID] {
			continue
		}
		won[post.AuthorID] = true
		winners = append(winners, models.LotteryWinner{
			UserID:     post.AuthorID,
			Username:   post.AuthorName,
			PostNumber: post.Number,
		})
	}

	if count > 0 && len(winners) > count {
		winners = winners[:count]
	}
	return winners
}

// nextEligible searches forward for the nearest post whose author is neither
// the creator nor an existing winner
func nextEligible(byNumber map[int]*forum.Post, from, maxNumber int, creatorID int64, won map[int64]bool) *forum.Post {
	for number := from; number <= maxNumber; number++ {
		post := byNumber[number]
		if post == nil || post.AuthorID == creatorID || won[post.AuthorID] {
			continue
		}
		return post
	}
	return nil
}
