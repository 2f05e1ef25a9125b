package geo

import (
	"encoding/json"
	"math"
	"testing"

	"geo-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircles(t *testing.T) {
	answer := AnswerCircle(eiffelTower)
	assert.Equal(t, eiffelTower, answer.Center)
	assert.Equal(t, 500000.0, answer.RadiusMeters)
	assert.Equal(t, "blue", answer.Color)

	fb := domain.GuessFeedback{Position: domain.Coordinate{Lat: 10, Lng: 20}, Accuracy: 0.6, Bucket: domain.BucketMedium}
	guess := FeedbackCircle(fb)
	assert.Equal(t, fb.Position, guess.Center)
	assert.Equal(t, 10000.0, guess.RadiusMeters)
	assert.Equal(t, "yellow", guess.Color)

	assert.Equal(t, "green", Color(domain.BucketHigh))
	assert.Equal(t, "red", Color(domain.BucketLow))
	assert.Equal(t, "red", Color(domain.Bucket("unknown")))
}

func TestOverlayGeoJSON(t *testing.T) {
	answer := AnswerCircle(eiffelTower)
	guess := FeedbackCircle(Feedback(domain.Coordinate{Lat: 48.8566, Lng: 2.3522}, eiffelTower))

	fc, err := Overlay(&answer, &guess)
	require.NoError(t, err)
	raw, err := json.Marshal(fc)
	require.NoError(t, err)

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 2)
	assert.Equal(t, "Point", doc.Features[0].Geometry.Type)
	assert.Equal(t, []float64{2.2945, 48.8584}, doc.Features[0].Geometry.Coordinates)
	assert.Equal(t, "answer", doc.Features[0].Properties["role"])
	assert.Equal(t, "guess", doc.Features[1].Properties["role"])
	assert.Equal(t, "green", doc.Features[1].Properties["color"])
	assert.Equal(t, 10000.0, doc.Features[1].Properties["radius"])
}

func TestOverlaySkipsMissingCircles(t *testing.T) {
	fc, err := Overlay(nil, nil)
	require.NoError(t, err)
	raw, err := json.Marshal(fc)
	require.NoError(t, err)

	var doc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	assert.Empty(t, doc.Features)
}

func TestOverlayRejectsNonFiniteCenter(t *testing.T) {
	answer := AnswerCircle(eiffelTower)
	guess := domain.Circle{Center: domain.Coordinate{Lat: math.NaN(), Lng: 2}, RadiusMeters: FeedbackRadiusMeters, Color: "red"}

	fc, err := Overlay(&answer, &guess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlay guess point")
	assert.Nil(t, fc)
}
