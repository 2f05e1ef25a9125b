package geo

import (
	"fmt"

	"geo-quiz-service/internal/domain"
	"github.com/peterstace/simplefeatures/geom"
)

const answerColor = "blue"

var bucketColors = map[domain.Bucket]string{
	domain.BucketHigh:   "green",
	domain.BucketMedium: "yellow",
	domain.BucketLow:    "red",
}

// Color returns the feedback circle colour for a bucket.
func Color(b domain.Bucket) string {
	if c, ok := bucketColors[b]; ok {
		return c
	}
	return bucketColors[domain.BucketLow]
}

// AnswerCircle marks the zero-accuracy radius around the correct answer.
func AnswerCircle(answer domain.Coordinate) domain.Circle {
	return domain.Circle{Center: answer, RadiusMeters: ZeroAccuracyMeters, Color: answerColor}
}

// FeedbackCircle marks the player's guess, coloured by accuracy.
func FeedbackCircle(fb domain.GuessFeedback) domain.Circle {
	return domain.Circle{Center: fb.Position, RadiusMeters: FeedbackRadiusMeters, Color: Color(fb.Bucket)}
}

// Overlay renders the answer and guess circles as a GeoJSON FeatureCollection of points.
// Each feature carries its role, radius and colour so the widget can draw a circle layer. Nil circles are skipped.
func Overlay(answer, guess *domain.Circle) (geom.GeoJSONFeatureCollection, error) {
	fc := geom.GeoJSONFeatureCollection{}
	for _, f := range []struct {
		role   string
		circle *domain.Circle
	}{{"answer", answer}, {"guess", guess}} {
		if f.circle == nil {
			continue
		}
		pt, err := pointOf(f.circle.Center)
		if err != nil {
			return nil, fmt.Errorf("overlay %s point: %w", f.role, err)
		}
		fc = append(fc, geom.GeoJSONFeature{
			ID:       f.role,
			Geometry: pt.AsGeometry(),
			Properties: map[string]interface{}{
				"role":   f.role,
				"radius": f.circle.RadiusMeters,
				"color":  f.circle.Color,
			},
		})
	}
	return fc, nil
}

// GeoJSON uses lng,lat ordering.
func pointOf(c domain.Coordinate) (geom.Point, error) {
	return geom.XY{X: c.Lng, Y: c.Lat}.AsPoint()
}
