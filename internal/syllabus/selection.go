package syllabus

import "fmt"

// SelectedChapter is one chapter the student chose. The (Subject, Paper, ChapterName)
// triple is its identity.
type SelectedChapter struct {
	Subject     string `json:"subject" validate:"required"`
	Paper       string `json:"paper" validate:"required"`
	ChapterName string `json:"chapterName" validate:"required"`
}

// String renders the chapter as "Subject/Paper/Chapter", the form Catalog.Resolve accepts.
func (c SelectedChapter) String() string {
	return fmt.Sprintf("%s/%s/%s", c.Subject, c.Paper, c.ChapterName)
}

// Selection is an insertion-ordered set of chapters. The zero value is empty and ready to use.
type Selection struct {
	items []SelectedChapter
}

// NewSelection builds a selection from chapters, dropping duplicates after the first.
func NewSelection(chapters ...SelectedChapter) *Selection {
	s := &Selection{}
	for _, c := range chapters {
		if !s.Contains(c) {
			s.items = append(s.items, c)
		}
	}
	return s
}

func (s *Selection) index(c SelectedChapter) int {
	for i, it := range s.items {
		if it == c {
			return i
		}
	}
	return -1
}

// Toggle adds c when absent (at the end) and removes it when present.
// It reports whether c is selected afterwards.
func (s *Selection) Toggle(c SelectedChapter) bool {
	if i := s.index(c); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
		return false
	}
	s.items = append(s.items, c)
	return true
}

// Contains reports whether c is selected.
func (s *Selection) Contains(c SelectedChapter) bool {
	return s.index(c) >= 0
}

// Clear removes every chapter.
func (s *Selection) Clear() {
	s.items = nil
}

// Len is the number of selected chapters.
func (s *Selection) Len() int {
	return len(s.items)
}

// Items returns a copy of the selected chapters in insertion order.
func (s *Selection) Items() []SelectedChapter {
	out := make([]SelectedChapter, len(s.items))
	copy(out, s.items)
	return out
}

// CountBySubject is the number of selected chapters belonging to subject.
func (s *Selection) CountBySubject(subject string) int {
	n := 0
	for _, it := range s.items {
		if it.Subject == subject {
			n++
		}
	}
	return n
}
