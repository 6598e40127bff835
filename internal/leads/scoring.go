package leads

import (
	"math"
	"strings"
	"time"

	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	"github.com/google/uuid"
)

// MaxScore is the ceiling of every computed score.
const MaxScore = 100

const (
	recencyHalfLifeHours  = 24.0
	engagementThreshold   = 5
	engagementPerActivity = 4
	// Rule tables below are expressed against these reference maxima and scaled to the configured ones.
	refContact    = 15.0
	refEngagement = 25.0
	refTable      = 20.0
)

// Weights are the per-category maxima. DefaultWeights sums to exactly MaxScore.
type Weights struct {
	Contact    int
	Source     int
	Recency    int
	Engagement int
	Status     int
}

var DefaultWeights = Weights{
	Contact:    15,
	Source:     20,
	Recency:    20,
	Engagement: 25,
	Status:     20,
}

// Breakdown holds one subscore per category. Its fields always sum to the Result score.
type Breakdown struct {
	Contact    int `json:"contact"`
	Source     int `json:"source"`
	Recency    int `json:"recency"`
	Engagement int `json:"engagement"`
	Status     int `json:"status"`
}

// Sum adds up the subscores.
func (b Breakdown) Sum() int {
	return b.Contact + b.Source + b.Recency + b.Engagement + b.Status
}

// Result is the output of a scoring run.
type Result struct {
	Score     int       `json:"score"`
	Label     string    `json:"label"`
	Breakdown Breakdown `json:"breakdown"`
}

var sourcePoints = map[enums.LeadSource]float64{
	enums.LeadSourceWebsite:     20,
	enums.LeadSourceReferral:    20,
	enums.LeadSourceAutoScout24: 18,
	enums.LeadSourceMobileDe:    18,
	enums.LeadSourceMarketplace: 18,
	enums.LeadSourceWalkIn:      12,
	enums.LeadSourcePhone:       10,
	enums.LeadSourceOther:       8,
}

const unknownSourcePoints = 8.0

var statusPoints = map[enums.LeadStatus]float64{
	enums.LeadStatusNew:       5,
	enums.LeadStatusContacted: 12,
	enums.LeadStatusQualified: 20,
	enums.LeadStatusWon:       20,
	enums.LeadStatusLost:      0,
}

// Scorer computes lead scores for a fixed set of weights. The zero value is not usable; see NewScorer.
type Scorer struct {
	weights Weights
}

// NewScorer returns a scorer for w. Each maximum is clamped into [0, MaxScore].
func NewScorer(w Weights) Scorer {
	return Scorer{weights: Weights{
		Contact:    clampWeight(w.Contact),
		Source:     clampWeight(w.Source),
		Recency:    clampWeight(w.Recency),
		Engagement: clampWeight(w.Engagement),
		Status:     clampWeight(w.Status),
	}}
}

func clampWeight(w int) int {
	return min(max(w, 0), MaxScore)
}

// Score computes a lead's score with DefaultWeights.
func Score(lead models.Lead, activities []models.LeadActivity, now time.Time) Result {
	return NewScorer(DefaultWeights).Score(lead, activities, now)
}

// Score is a pure function of its inputs: activity order is irrelevant, duplicate
// activity ids count once, and now is the only clock consulted.
func (s Scorer) Score(lead models.Lead, activities []models.LeadActivity, now time.Time) Result {
	acts := dedupe(activities)
	w := s.weights

	b := Breakdown{
		Contact:    scaled(w.Contact, contactFraction(lead)),
		Source:     scaled(w.Source, sourceFraction(lead.Source)),
		Recency:    scaled(w.Recency, recencyFraction(acts, now)),
		Engagement: scaled(w.Engagement, engagementFraction(acts)),
		Status:     scaled(w.Status, statusFraction(lead.Status)),
	}
	b = trim(b)
	score := b.Sum()
	return Result{Score: score, Label: Label(score), Breakdown: b}
}

// Label buckets a score into a display tier.
func Label(score int) string {
	switch {
	case score >= 80:
		return "very_high"
	case score >= 60:
		return "high"
	case score >= 40:
		return "medium"
	case score >= 20:
		return "low"
	default:
		return "very_low"
	}
}

func contactFraction(lead models.Lead) float64 {
	points := 0.0
	if present(lead.Email) {
		points += 8
	}
	if present(lead.Phone) {
		points += 7
	}
	return points / refContact
}

func sourceFraction(src enums.LeadSource) float64 {
	points, ok := sourcePoints[src]
	if !ok {
		points = unknownSourcePoints
	}
	return points / refTable
}

func statusFraction(status enums.LeadStatus) float64 {
	return statusPoints[status] / refTable
}

// recencyFraction halves every 24h since the most recent activity.
func recencyFraction(acts []models.LeadActivity, now time.Time) float64 {
	if len(acts) == 0 {
		return 0
	}
	latest := acts[0].CreatedAt
	for _, a := range acts[1:] {
		if a.CreatedAt.After(latest) {
			latest = a.CreatedAt
		}
	}
	ageHours := now.Sub(latest).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return math.Pow(2, -ageHours/recencyHalfLifeHours)
}

// engagementFraction gives 4 points per inbound activity up to the threshold, then 1 point each.
func engagementFraction(acts []models.LeadActivity) float64 {
	inbound := 0
	for _, a := range acts {
		if a.Direction == enums.ActivityDirectionInbound {
			inbound++
		}
	}
	points := engagementPerActivity * min(inbound, engagementThreshold)
	if inbound > engagementThreshold {
		points += inbound - engagementThreshold
	}
	return math.Min(float64(points), refEngagement) / refEngagement
}

func scaled(maxPoints int, fraction float64) int {
	if maxPoints <= 0 || fraction <= 0 || math.IsNaN(fraction) {
		return 0
	}
	points := int(math.Round(float64(maxPoints) * math.Min(fraction, 1)))
	return min(max(points, 0), maxPoints)
}

// trim removes overflow above MaxScore starting from the last category.
func trim(b Breakdown) Breakdown {
	overflow := b.Sum() - MaxScore
	if overflow <= 0 {
		return b
	}
	for _, field := range []*int{&b.Status, &b.Engagement, &b.Recency, &b.Source, &b.Contact} {
		cut := min(*field, overflow)
		*field -= cut
		overflow -= cut
		if overflow == 0 {
			break
		}
	}
	return b
}

func dedupe(activities []models.LeadActivity) []models.LeadActivity {
	seen := make(map[uuid.UUID]struct{}, len(activities))
	out := make([]models.LeadActivity, 0, len(activities))
	for _, a := range activities {
		if a.ID != uuid.Nil {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
		}
		out = append(out, a)
	}
	return out
}

func present(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}
