package plan

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSystemPrompt is used when no system_prompt.txt override exists.
const DefaultSystemPrompt = "You are a caring student study assistant. Create a realistic exam-focused study plan."

// coreRules are always sent. %s is replaced by the confidence level.
var coreRules = []string{
	"Do NOT overload. Include buffer days for rest and catch-up.",
	"Chapters are in Bangla; use their Bengali names in the plan.",
	"Adjust difficulty/time based on the confidence level: %s.",
	"Prioritize difficult topics early when energy is high.",
	"Use simple, supportive, student-friendly English for instructions.",
}

// SubjectsText renders the selection as "[Subject - Paper: Chapter]" entries joined by ", ".
func SubjectsText(req StudyRequest) string {
	parts := make([]string, 0, len(req.SelectedChapters))
	for _, c := range req.SelectedChapters {
		parts = append(parts, fmt.Sprintf("[%s - %s: %s]", c.Subject, c.Paper, c.ChapterName))
	}
	return strings.Join(parts, ", ")
}

// ConstructPrompt builds the prompt sent to the model.
// It combines the system instructions (systemPrompt, falling back to DefaultSystemPrompt),
// the student's input, the fixed planning rules, the section format from Sections and,
// when present, the student's own notes (typically from context.md).
func ConstructPrompt(req StudyRequest, systemPrompt, notes string, today time.Time) string {
	var b strings.Builder

	// 1. System instructions
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}
	b.WriteString(strings.TrimSpace(systemPrompt))
	b.WriteString("\n\n")

	// 2. Student input
	b.WriteString("STUDENT INPUT:\n")
	fmt.Fprintf(&b, "- Selected Syllabus (Subjects/Papers/Chapters): %s\n", SubjectsText(req))
	fmt.Fprintf(&b, "- Exam Date: %s\n", req.ExamDate)
	fmt.Fprintf(&b, "- Today's Date: %s\n", today.Format(DateLayout))
	fmt.Fprintf(&b, "- Days Left Until Exam: %d\n", req.DaysLeft(today))
	fmt.Fprintf(&b, "- Daily Available Study Time: %d hours\n", req.DailyHours)
	fmt.Fprintf(&b, "- Confidence Level: %s\n", req.Confidence)
	b.WriteString("\n")

	// 3. Rules
	b.WriteString("CORE RULES:\n")
	for i, rule := range coreRules {
		if strings.Contains(rule, "%s") {
			rule = fmt.Sprintf(rule, req.Confidence)
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}
	b.WriteString("\n")

	// 4. Student notes
	if notes = strings.TrimSpace(notes); notes != "" {
		b.WriteString("STUDENT NOTES:\n")
		b.WriteString(notes)
		b.WriteString("\n\n")
	}

	// 5. Output format
	b.WriteString("Return the output ONLY in the following format:\n\n")
	for _, s := range Sections {
		fmt.Fprintf(&b, "%s %s:\n", s.Marker, s.Title)
		for _, line := range s.Instructions {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Important: NO AI mentions, NO extra explanations, keep it clear and functional.")
	return b.String()
}
