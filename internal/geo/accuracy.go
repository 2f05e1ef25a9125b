// Package geo scores guesses by great-circle distance and builds the map overlays shown after a guess.
package geo

import (
	"math"

	"geo-quiz-service/internal/domain"
)

const (
	// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
	EarthRadiusMeters = 6371000.0
	// ZeroAccuracyMeters is the distance at which a guess stops scoring.
	ZeroAccuracyMeters = 500000.0
	// FeedbackRadiusMeters is the radius of the circle drawn around a guess.
	FeedbackRadiusMeters = 10000.0

	highThreshold   = 0.8
	mediumThreshold = 0.5
)

// Distance returns the great-circle distance in metres between two coordinates.
func Distance(a, b domain.Coordinate) float64 {
	dLat := radians(a.Lat - b.Lat)
	dLng := radians(a.Lng - b.Lng)
	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(radians(b.Lat))*math.Cos(radians(a.Lat))*sinLng*sinLng
	// rounding can push h a hair outside [0,1] for antipodal points
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// ScoreAccuracy maps a guess to [0,1]: 1 at the answer, falling linearly to 0 at 500 km.
func ScoreAccuracy(guess, answer domain.Coordinate) float64 {
	return math.Max(0, 1-Distance(guess, answer)/ZeroAccuracyMeters)
}

// Points converts an accuracy into the points awarded for a guess.
func Points(accuracy float64) int {
	return int(math.Round(accuracy * domain.PointsPerQuestion))
}

// Classify buckets an accuracy for display. Thresholds are strict.
func Classify(accuracy float64) domain.Bucket {
	switch {
	case accuracy > highThreshold:
		return domain.BucketHigh
	case accuracy > mediumThreshold:
		return domain.BucketMedium
	default:
		return domain.BucketLow
	}
}

// Feedback scores a guess against an answer.
func Feedback(guess, answer domain.Coordinate) domain.GuessFeedback {
	accuracy := ScoreAccuracy(guess, answer)
	return domain.GuessFeedback{
		Position: guess,
		Accuracy: accuracy,
		Points:   Points(accuracy),
		Bucket:   Classify(accuracy),
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
