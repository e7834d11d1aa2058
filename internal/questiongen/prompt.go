package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write multiple-choice practice questions for the Nigerian JAMB UTME examination.

Rules:
- Follow the current JAMB syllabus for the subject and use Nigerian context where it fits.
- Every question has exactly four options, A to D, with exactly one correct answer.
- Distractors should reflect common mistakes, not random values.
- The explanation says why the correct option is right.
- Rate difficulty 1 (easy), 2 (medium) or 3 (hard).
- Do not repeat any question from the "already generated" list.`

func topicPrompt(subj string, min, max int) string {
	return fmt.Sprintf("List %d-%d diverse, important topics for the JAMB %s examination.", min, max, subj)
}

func questionPrompt(subj, topic string, n int, prior []string, maxPrior int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", subj)
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	fmt.Fprintf(&b, "Number of questions: %d\n", n)
	b.WriteString("\nAlready generated for this set:\n")
	b.WriteString(buildDedup(prior, maxPrior))
	return b.String()
}
