package plan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/karolswdev/careplan/internal/syllabus"
)

// DateLayout is the exam date format accepted everywhere (the HTML date input's value format).
const DateLayout = "2006-01-02"

// Bounds for StudyRequest.DailyHours.
const (
	MinDailyHours     = 1
	MaxDailyHours     = 16
	DefaultDailyHours = 4
)

// ConfidenceLevel is the student's self-assessment included in the prompt.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// ConfidenceLevels lists the accepted levels from least to most confident.
var ConfidenceLevels = []ConfidenceLevel{ConfidenceLow, ConfidenceMedium, ConfidenceHigh}

// ParseConfidence accepts a level case-insensitively.
func ParseConfidence(s string) (ConfidenceLevel, error) {
	switch c := ConfidenceLevel(strings.ToLower(strings.TrimSpace(s))); c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidConfidence, s)
}

// StudyRequest is everything the student submitted. It is built once at submit time and
// not modified afterwards.
type StudyRequest struct {
	SelectedChapters []syllabus.SelectedChapter `json:"selectedChapters" validate:"required,min=1,dive"`
	ExamDate         string                     `json:"examDate" validate:"required,datetime=2006-01-02"`
	DailyHours       int                        `json:"dailyHours" validate:"min=1,max=16"`
	Confidence       ConfidenceLevel            `json:"confidence" validate:"oneof=low medium high"`
}

// ExamTime parses ExamDate using DateLayout.
func (r StudyRequest) ExamTime() (time.Time, error) {
	return time.Parse(DateLayout, r.ExamDate)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks req against the submission rules and returns the first failing rule as
// one of the package's sentinel errors. today is compared by calendar date only.
func Validate(req StudyRequest, today time.Time) error {
	err := validate.Struct(req)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		failed := make(map[string]bool, len(verrs))
		for _, fe := range verrs {
			field := fe.StructField()
			if strings.HasPrefix(fe.Namespace(), "StudyRequest.SelectedChapters[") {
				field = "Chapter"
			}
			failed[field+"."+fe.Tag()] = true
			failed[field] = true
		}
		switch {
		case failed["SelectedChapters"]:
			return ErrNoChapters
		case failed["Chapter"]:
			return ErrInvalidChapter
		case failed["ExamDate.required"]:
			return ErrNoExamDate
		case failed["ExamDate"]:
			return fmt.Errorf("%w: %q", ErrInvalidExamDate, req.ExamDate)
		}
		// Date rules outrank the remaining field rules.
		if pastErr := checkNotPast(req, today); pastErr != nil {
			return pastErr
		}
		switch {
		case failed["DailyHours"]:
			return fmt.Errorf("%w: got %d", ErrInvalidDailyHours, req.DailyHours)
		case failed["Confidence"]:
			return fmt.Errorf("%w: %q", ErrInvalidConfidence, req.Confidence)
		}
		return err
	}
	return checkNotPast(req, today)
}

func checkNotPast(req StudyRequest, today time.Time) error {
	exam, err := req.ExamTime()
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidExamDate, req.ExamDate)
	}
	y, m, d := today.Date()
	if exam.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
		return fmt.Errorf("%w: %s", ErrExamDateInPast, req.ExamDate)
	}
	return nil
}

// DaysLeft is the number of calendar days from today until the exam, never negative.
func (r StudyRequest) DaysLeft(today time.Time) int {
	exam, err := r.ExamTime()
	if err != nil {
		return 0
	}
	y, m, d := today.Date()
	days := int(exam.Sub(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
