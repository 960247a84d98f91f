package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxDefinitionsShown is the number of definitions rendered per meaning group.
// It is a display policy; WordDetail itself keeps everything the server sent.
const MaxDefinitionsShown = 2

// WordDetail is the dictionary entry for a single word.
type WordDetail struct {
	Word     string    `json:"word"`
	Phonetic string    `json:"phonetic,omitempty"`
	Meanings []Meaning `json:"meanings"`
}

// Meaning groups definitions under one part of speech.
type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
}

// Definition is one sense of a word, optionally with an example sentence.
type Definition struct {
	Definition string `json:"definition"`
	Example    string `json:"example,omitempty"`
}

// Truncated returns a copy of w with at most limit definitions per meaning.
// A non-positive limit leaves the definitions untouched.
func (w WordDetail) Truncated(limit int) WordDetail {
	out := WordDetail{Word: w.Word, Phonetic: w.Phonetic}
	if w.Meanings == nil {
		return out
	}
	out.Meanings = make([]Meaning, len(w.Meanings))
	for i, m := range w.Meanings {
		defs := m.Definitions
		if limit > 0 && len(defs) > limit {
			defs = defs[:limit]
		}
		out.Meanings[i] = Meaning{
			PartOfSpeech: m.PartOfSpeech,
			Definitions:  append([]Definition(nil), defs...),
		}
	}
	return out
}

// NormalizeWord lower-cases and trims a word before it is looked up or added.
func NormalizeWord(word string) (string, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return "", fmt.Errorf("%w: %w", ErrValidation, ErrEmptyWord)
	}
	return word, nil
}

// DueItem references one word the scheduler considers due. Scheduling
// metadata stays on the server.
type DueItem struct {
	Word string `json:"word"`
}

// WordStatus is the learning stage the server reports for a studied word.
type WordStatus string

// Known statuses. StatusAll is the empty filter.
const (
	StatusAll       WordStatus = ""
	StatusLearning  WordStatus = "learning"
	StatusReviewing WordStatus = "reviewing"
	StatusMastered  WordStatus = "mastered"
)

// ParseWordStatus validates a word list filter.
func ParseWordStatus(s string) (WordStatus, error) {
	switch st := WordStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusAll, StatusLearning, StatusReviewing, StatusMastered:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidStatus, s)
	}
}

// UserWord is a word on the user's study list together with the scheduling
// state the server computed for it.
type UserWord struct {
	ID             int64      `json:"id"`
	Word           string     `json:"word"`
	AddedAt        time.Time  `json:"added_at"`
	NextReviewDate time.Time  `json:"next_review_date"`
	IntervalDays   int        `json:"interval_days"`
	EaseFactor     float64    `json:"ease_factor"`
	Status         WordStatus `json:"status"`
}

// ReviewRecord is one past review of a word.
type ReviewRecord struct {
	ID           int64     `json:"id,omitempty"`
	Word         string    `json:"word,omitempty"`
	ReviewedAt   time.Time `json:"reviewed_at"`
	Quality      Grade     `json:"quality"`
	IntervalDays int       `json:"interval_days"`
	EaseFactor   float64   `json:"ease_factor"`
}

// CacheSnapshot is the locally persisted copy of the last fetched due queue.
type CacheSnapshot struct {
	Words    []DueItem `json:"words"`
	SyncedAt time.Time `json:"synced_at"`
}
