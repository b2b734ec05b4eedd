package assessment

import (
	"bytes"
	"text/template"

	"github.com/blumie/wellcheck/internal/quiz"
)

const assessmentSystemPrompt = `You are a school wellness counselor with a specialization in psychology. You compare a student's self-reported mood against their answers to a 10-question screening quiz to judge whether the mood description is genuine. More importantly, you assess whether the answers suggest the student is in a dangerous state or needs immediate intervention.

Instructions:
- If the mood and answers are consistent, set truthfulness to "Genuine".
- If they contradict each other (e.g. the student reports feeling "Happy" but the answers suggest high stress), set truthfulness to "Potentially Inconsistent".
- Look for severe distress, hopelessness, isolation, self-harm ideation or a dangerous situation (answers like "I'm a failure", "Isolated", "Nothing in particular" to looking forward to something, "Non-existent" motivation).
- If a combination of answers indicates a high-risk situation that needs a caretaker now, set alertCaretaker to true. Otherwise set it to false.
- Keep reasoning to one or two sentences, framed as a professional observation.
- Give the warden one concrete next step as the recommendation. If no action is needed, use exactly "` + NoActionRecommendation + `".`

var assessmentUserTemplate = template.Must(template.New("assessment").Parse(`Student: {{.StudentName}}
Mood description: {{.Mood}}

Quiz answers:
{{range .Answers}}{{.Number}}. "{{.Question}}": {{.Answer}}
{{end}}`))

type promptAnswer struct {
	Number   int
	Question string
	Answer   string
}

func buildAssessmentMessage(in Input) (string, error) {
	data := struct {
		StudentName string
		Mood        string
		Answers     []promptAnswer
	}{
		StudentName: in.StudentName,
		Mood:        in.Mood,
	}
	for i, q := range quiz.Bank {
		data.Answers = append(data.Answers, promptAnswer{
			Number:   q.Number,
			Question: q.Text,
			Answer:   in.Answers[i],
		})
	}

	var buf bytes.Buffer
	if err := assessmentUserTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const summarySystemPrompt = `You are a school wellness counselor. Summarize a student's mood description as a single sentence about their likely state of well-being, framed as an observation (e.g. "The student seems..."). Do not offer advice.`
