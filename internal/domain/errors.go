package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a game session does not exist or was reaped.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrQuestionSetNotFound indicates the question content could not be loaded.
	ErrQuestionSetNotFound = errors.New("question set not found")
	// ErrEmptyQuestionSet is returned when a question set has no questions to play.
	ErrEmptyQuestionSet = errors.New("question set has no questions")
	// ErrInvalidCoordinate indicates a latitude or longitude outside its range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)
