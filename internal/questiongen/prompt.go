package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/examprep/internal/exam"
)

const systemPrompt = `You write multiple-choice questions for engineers preparing for technical interviews and campus placement exams.

Rules:
- Every question has exactly four options and exactly one correct option.
- correctAnswer must be identical, character for character, to one of the options.
- Distractors should reflect common misconceptions, not obviously wrong values.
- Set topic to one of the listed syllabus topics when the question fits one.
- Keep question text under 400 characters and use plain text; code snippets are fine inline.
- Mix difficulty from fundamentals to interview-level problems.
- Never repeat a question within the batch.`

func userPrompt(info exam.Info, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Exam: %s (%s)\n", info.Name, info.Type)
	fmt.Fprintf(&b, "Syllabus topics: %s\n", strings.Join(info.Topics, ", "))
	fmt.Fprintf(&b, "Time limit: %d minutes\n", info.DurationMinutes)
	fmt.Fprintf(&b, "\nWrite %d questions. Spread them across the topics.", count)
	return b.String()
}
