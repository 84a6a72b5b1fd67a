package businessflow

import (
	"math"
	"sort"

	"github.com/shortsintel/shorts-intel-hub/models"
)

// CalculateRankScore computes the weighted rank score of one topic.
// Metrics are clamped to the 0-100 scale before weighting; a missing metric
// counts as 0 so a topic with no signal scores low instead of failing.
// The result is rounded to 2 decimal places, half away from zero.
// Pure and safe for concurrent use.
func CalculateRankScore(velocity, creationRate, watchtime *float64, weights models.RankingWeights) float64 {
	score := clampMetric(velocity)*weights.Velocity +
		clampMetric(creationRate)*weights.CreationRate +
		clampMetric(watchtime)*weights.Watchtime

	return math.Round(score*100) / 100
}

func clampMetric(v *float64) float64 {
	if v == nil {
		return 0
	}
	return math.Min(100, math.Max(0, *v))
}

// TopicRank is the scored, positioned outcome of one topic in a
// recalculation pass.
type TopicRank struct {
	TopicID  uint    `json:"topic_id"`
	Score    float64 `json:"score"`
	Position int     `json:"position"`
}

// RankTopics scores every topic with the given weights and assigns dense
// 1-based positions by score descending. Equal scores are broken by topic ID
// ascending so the ordering is reproducible regardless of load order.
func RankTopics(topics []*models.Topic, weights models.RankingWeights) []TopicRank {
	ranks := make([]TopicRank, 0, len(topics))
	for _, t := range topics {
		ranks = append(ranks, TopicRank{
			TopicID: t.ID,
			Score:   CalculateRankScore(t.Velocity, t.CreationRate, t.Watchtime, weights),
		})
	}

	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Score != ranks[j].Score {
			return ranks[i].Score > ranks[j].Score
		}
		return ranks[i].TopicID < ranks[j].TopicID
	})

	for i := range ranks {
		ranks[i].Position = i + 1
	}

	return ranks
}
