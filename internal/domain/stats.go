package domain

import "time"

// Stats is the aggregate learning summary the server computes for a user.
// It is replaced wholesale on every refresh and never edited locally.
type Stats struct {
	Username       string    `json:"username,omitempty"`
	TotalWords     int       `json:"total_words"`
	DueToday       int       `json:"due_today"`
	Learning       int       `json:"learning"`
	Reviewing      int       `json:"reviewing"`
	Mastered       int       `json:"mastered"`
	TotalReviews   int       `json:"total_reviews"`
	CurrentStreak  int       `json:"current_streak,omitempty"`
	LastReviewDate time.Time `json:"last_review_date,omitzero"`
}
