package progress

import (
	"fmt"
	"math"

	"github.com/chaitanyashetty47/strengthos/internal/editor"
)

// Status labels derived from the completion rate.
const (
	StatusExceedingGoals = "Exceeding Goals"
	StatusOnTrack        = "On Track"
	StatusBehindSchedule = "Behind Schedule"
)

// completionRate returns round(100 * completed / total). A plan with no
// scheduled workouts rates zero rather than erroring.
func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func statusFor(rate int) string {
	switch {
	case rate >= 80:
		return StatusExceedingGoals
	case rate >= 60:
		return StatusOnTrack
	default:
		return StatusBehindSchedule
	}
}

// milestones builds the cosmetic threshold ladder plus one category-specific
// message. Nothing downstream consumes these.
func milestones(rate int, category editor.Category) []string {
	var notes []string
	if rate >= 25 {
		notes = append(notes, "Completed 25% of workouts")
	}
	if rate >= 50 {
		notes = append(notes, "Halfway through program")
	}
	if rate >= 75 {
		notes = append(notes, "75% completion milestone")
	}

	switch category {
	case editor.CategoryStrength:
		notes = append(notes, "Building maximal strength")
	case editor.CategoryHypertrophy:
		notes = append(notes, "Muscle growth phase in progress")
	case editor.CategoryEndurance:
		notes = append(notes, "Work capacity trending up")
	case editor.CategoryDeload:
		notes = append(notes, "Recovery week, keep the intensity low")
	default:
		notes = append(notes, "Keep showing up")
	}
	return notes
}

// exerciseMetrics are the three per-window numbers the improvement score
// blends: average weight per set, peak weight and total volume.
type exerciseMetrics struct {
	totalWeight float64
	totalSets   int
	peak        float64
	volume      float64
}

func (m exerciseMetrics) averageWeight() float64 {
	if m.totalSets == 0 {
		return 0
	}
	return m.totalWeight / float64(m.totalSets)
}

// groupByExercise folds one window's log entries into per-exercise metrics.
// Aggregate fields are preferred; nested sets are summed only when the entry
// lacks them.
func groupByExercise(logs []LogEntry) map[int]exerciseMetrics {
	metrics := make(map[int]exerciseMetrics)
	for _, entry := range logs {
		m := metrics[entry.ExerciseID]
		if entry.hasAggregates() {
			weight := *entry.WeightUsed
			m.totalSets += *entry.CompletedSets
			m.totalWeight += weight * float64(*entry.CompletedSets)
			m.volume += weight * float64(*entry.CompletedReps)
			m.peak = math.Max(m.peak, weight)
		} else {
			for _, set := range entry.Sets {
				m.totalSets++
				m.totalWeight += set.Weight
				m.volume += set.Weight * float64(set.Reps)
				m.peak = math.Max(m.peak, set.Weight)
			}
		}
		metrics[entry.ExerciseID] = m
	}
	return metrics
}

// pctChange is the recent-versus-previous percentage delta. A zero previous
// value yields 100 when anything happened recently and 0 otherwise, so new
// activity still registers without dividing by zero.
func pctChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// categoryWeights returns the (weight, volume, intensity) blend for a
// training category. Intensity is the peak-weight delta.
func categoryWeights(category editor.Category) (weight, volume, intensity float64) {
	switch category {
	case editor.CategoryStrength:
		return 0.4, 0.2, 0.4
	case editor.CategoryHypertrophy:
		return 0.2, 0.6, 0.2
	case editor.CategoryEndurance:
		return 0.1, 0.7, 0.2
	default:
		return 0.3, 0.4, 0.3
	}
}

// improvementScore blends the two windows into a single signed percentage.
// Only exercises logged in both windows participate; partial-window
// comparisons would reward simply switching exercises.
func improvementScore(recent, previous []LogEntry, category editor.Category) int {
	recentByExercise := groupByExercise(recent)
	previousByExercise := groupByExercise(previous)
	wWeight, wVolume, wIntensity := categoryWeights(category)

	var sum float64
	var count int
	for exerciseID, recentMetrics := range recentByExercise {
		previousMetrics, ok := previousByExercise[exerciseID]
		if !ok {
			continue
		}
		weightDelta := pctChange(recentMetrics.averageWeight(), previousMetrics.averageWeight())
		volumeDelta := pctChange(recentMetrics.volume, previousMetrics.volume)
		intensityDelta := pctChange(recentMetrics.peak, previousMetrics.peak)
		sum += weightDelta*wWeight + volumeDelta*wVolume + intensityDelta*wIntensity
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(sum / float64(count)))
}

// deloadImprovement repurposes the improvement slot as a recovery-adherence
// signal: deload weeks measure rest discipline, not load progression.
func deloadImprovement(rate int) string {
	if rate >= 80 {
		return "+5%"
	}
	return "+0%"
}

// signedLabel renders an improvement percentage with an explicit sign.
func signedLabel(pct int) string {
	return fmt.Sprintf("%+d%%", pct)
}

const neutralImprovement = "+0%"
