package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Grade is the 0-5 self-assessed recall quality of a review. The client
// forwards it verbatim; the server's scheduler gives it meaning.
type Grade int

const (
	GradeBlackout  Grade = iota // Complete failure to recall.
	GradeIncorrect              // Incorrect response; correct one remembered.
	GradeHard                   // Correct response with serious difficulty.
	GradeGood                   // Correct response with difficulty.
	GradeEasy                   // Correct response with hesitation.
	GradePerfect                // Perfect response.
)

var (
	gradeLabels = [...]string{
		GradeBlackout:  "Total blackout",
		GradeIncorrect: "Incorrect",
		GradeHard:      "Hard",
		GradeGood:      "Good",
		GradeEasy:      "Easy",
		GradePerfect:   "Perfect",
	}
	gradeDescriptions = [...]string{
		GradeBlackout:  "Complete failure to recall",
		GradeIncorrect: "Incorrect response; correct one remembered",
		GradeHard:      "Correct response with serious difficulty",
		GradeGood:      "Correct response with difficulty",
		GradeEasy:      "Correct response with hesitation",
		GradePerfect:   "Perfect response",
	}
)

var _ fmt.Stringer = Grade(0)

// Grades lists the six grades in ascending order.
func Grades() []Grade {
	return []Grade{GradeBlackout, GradeIncorrect, GradeHard, GradeGood, GradeEasy, GradePerfect}
}

// IsValid reports whether g is within 0-5.
func (g Grade) IsValid() bool {
	return g >= GradeBlackout && g <= GradePerfect
}

// Label returns the short name shown on a grade button.
func (g Grade) Label() string {
	if !g.IsValid() {
		return ""
	}
	return gradeLabels[g]
}

// Description returns the longer explanation of the grade.
func (g Grade) Description() string {
	if !g.IsValid() {
		return ""
	}
	return gradeDescriptions[g]
}

// String returns "n - Label", or "Grade(n)" for invalid values.
func (g Grade) String() string {
	if !g.IsValid() {
		return fmt.Sprintf("Grade(%d)", int(g))
	}
	return fmt.Sprintf("%d - %s", int(g), gradeLabels[g])
}

// ParseGrade converts user input into a Grade.
func ParseGrade(s string) (Grade, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidGrade, s)
	}
	g := Grade(n)
	if !g.IsValid() {
		return 0, fmt.Errorf("%w: %w: %d", ErrValidation, ErrInvalidGrade, n)
	}
	return g, nil
}
