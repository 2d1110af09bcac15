package counsellor

import (
	"strings"
)

const mission = `You are a study-abroad counsellor guiding one student from choosing universities to submitting applications.
Be specific, honest about fit and cost, and keep the student moving to the next concrete step.`

const actionVocabulary = `Available actions:
- shortlist_university: payload {"university_id": <ID from the candidate list>}
- lock_university: payload {"university_id": <ID from the candidate list>}; commits the student to applying
- create_task: payload {"title": "<short title>", "description": "<one sentence>"}
- none: payload {}`

const responseFormat = `Reply with one JSON object and nothing else:
{"message": "<markdown for the student>", "actions": [{"type": "...", "payload": {...}}], "reasoning": "<one sentence>"}
Rules:
- Refer to universities by name in the message. Never show numeric IDs to the student.
- Only use IDs that appear in the candidate list.
- Use an empty actions list when nothing should change.`

// Instruction renders the single instruction text sent to the provider.
// Sections appear in a fixed order with the student's message last.
func Instruction(d *Digest, userMessage string) string {
	var b strings.Builder
	section := func(title, body string) {
		if title != "" {
			b.WriteString("## ")
			b.WriteString(title)
			b.WriteString("\n")
		}
		b.WriteString(body)
		b.WriteString("\n\n")
	}

	section("", mission)
	section("Student profile", d.Profile)
	section("Current stage", string(d.Stage)+"\n"+d.Stage.guidance())
	section("Current selections", d.Selections)
	candidates := d.Candidates
	if candidates == "" {
		candidates = "(no universities available)"
	}
	section("Candidate universities", candidates)
	section("Actions", actionVocabulary)
	section("Response format", responseFormat)
	b.WriteString("## Student says\n")
	b.WriteString(userMessage)
	b.WriteString("\n")
	return b.String()
}
