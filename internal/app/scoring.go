package app

import (
	"fmt"

	"live-quiz-service/internal/domain"
)

// scorePoints computes the points earned for one answer. Incorrect answers
// score zero. Correct answers earn the question's point value plus a speed
// bonus of up to 50%: the bonus ratio is the unused share of the time window,
// clamped to [0,1]. The result is truncated, never rounded, and capped at
// 150% of the point value, so an answer at exactly the time limit earns the
// base value.
func scorePoints(pointValue, timeLimitSeconds int, correct bool, responseTimeMs int) (int, error) {
	if responseTimeMs < 0 {
		return 0, fmt.Errorf("%w: response time must be non-negative, got %dms", domain.ErrInvalidArgument, responseTimeMs)
	}
	if timeLimitSeconds <= 0 {
		return 0, fmt.Errorf("%w: question time limit must be positive, got %ds", domain.ErrInvalidArgument, timeLimitSeconds)
	}
	if !correct {
		return 0, nil
	}

	timeLimitMs := timeLimitSeconds * 1000
	remaining := timeLimitMs - responseTimeMs
	if remaining < 0 {
		remaining = 0
	}
	bonusRatio := float64(remaining) / float64(timeLimitMs)

	earned := int(float64(pointValue) * (1.0 + bonusRatio*0.5))
	maxEarned := int(float64(pointValue) * 1.5)
	if earned > maxEarned {
		earned = maxEarned
	}
	return earned, nil
}
