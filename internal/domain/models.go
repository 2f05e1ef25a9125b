package domain

import (
	"fmt"
	"time"
)

// PointsPerQuestion is the score awarded for a perfect guess.
const PointsPerQuestion = 100

// Coordinate is a point on the globe in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the coordinate lies within lat [-90,90] and lng [-180,180].
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v must be between -90 and 90", ErrInvalidCoordinate, c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %v must be between -180 and 180", ErrInvalidCoordinate, c.Lng)
	}
	return nil
}

// Question asks the player to locate a landmark. Questions are never mutated after loading.
type Question struct {
	ID     string     `json:"id"`
	Text   string     `json:"text"`
	Answer Coordinate `json:"answer"`
	Hint   string     `json:"hint"`
}

// QuestionSet is the ordered list of questions played in one session.
type QuestionSet struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// MaxScore is the score of a perfect run through the set.
func (s QuestionSet) MaxScore() int {
	return PointsPerQuestion * len(s.Questions)
}

// Bucket classifies a guess for display colouring.
type Bucket string

const (
	BucketHigh   Bucket = "high"
	BucketMedium Bucket = "medium"
	BucketLow    Bucket = "low"
)

// GuessFeedback is the transient result of one guess.
type GuessFeedback struct {
	Position Coordinate `json:"position"`
	Accuracy float64    `json:"accuracy"`
	Points   int        `json:"points"`
	Bucket   Bucket     `json:"bucket"`
}

// Circle is a render hint for the map widget.
type Circle struct {
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radiusMeters"`
	Color        string     `json:"color"`
}

// Result is recorded each time a session finishes.
type Result struct {
	SessionID     string    `json:"sessionId"`
	QuestionSetID string    `json:"questionSetId"`
	Player        string    `json:"player"`
	Score         int       `json:"score"`
	MaxScore      int       `json:"maxScore"`
	FinishedAt    time.Time `json:"finishedAt"`
}

// ScoreEntry is a leaderboard row.
type ScoreEntry struct {
	SessionID string `json:"sessionId"`
	Player    string `json:"player"`
	Score     int    `json:"score"`
}
