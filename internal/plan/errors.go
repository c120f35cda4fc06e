package plan

import "errors"

// Sentinel errors for study request validation. Validate returns the first one that applies,
// in the order they are declared here.

// ErrNoChapters indicates no chapter was selected.
var ErrNoChapters = errors.New("select at least one chapter")

// ErrNoExamDate indicates the exam date was left empty.
var ErrNoExamDate = errors.New("exam date is required")

// ErrInvalidExamDate indicates the exam date is not a YYYY-MM-DD calendar date.
var ErrInvalidExamDate = errors.New("exam date must be formatted as YYYY-MM-DD")

// ErrExamDateInPast indicates the exam date is before today.
var ErrExamDateInPast = errors.New("exam date cannot be in the past")

// ErrInvalidDailyHours indicates daily hours are outside 1-16.
var ErrInvalidDailyHours = errors.New("daily study hours must be between 1 and 16")

// ErrInvalidConfidence indicates the confidence level is not low, medium or high.
var ErrInvalidConfidence = errors.New("confidence must be low, medium or high")

// ErrInvalidChapter indicates a selected chapter is missing its subject, paper or name.
var ErrInvalidChapter = errors.New("selected chapter is incomplete")

var validationErrors = []error{
	ErrNoChapters, ErrNoExamDate, ErrInvalidExamDate, ErrExamDateInPast,
	ErrInvalidDailyHours, ErrInvalidConfidence, ErrInvalidChapter,
}

// IsValidationError reports whether err is one of the errors Validate returns.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
