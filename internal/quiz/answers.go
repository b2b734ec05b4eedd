package quiz

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AnswerSet holds one answer per quiz question, positionally: index 0
// answers question 1. On the wire it is an object keyed answer1..answer10.
type AnswerSet [Size]string

// Key returns the wire key for the 1-based question number n.
func Key(n int) string {
	return "answer" + strconv.Itoa(n)
}

// FromMap builds an AnswerSet from answerN keys. Missing keys are left
// blank and unknown keys are ignored.
func FromMap(m map[string]string) AnswerSet {
	var a AnswerSet
	for i := range a {
		a[i] = m[Key(i+1)]
	}
	return a
}

// Map returns the answers keyed answer1..answer10.
func (a AnswerSet) Map() map[string]string {
	m := make(map[string]string, Size)
	for i, v := range a {
		m[Key(i+1)] = v
	}
	return m
}

// Missing returns the 1-based question numbers whose answer is blank.
func (a AnswerSet) Missing() []int {
	var missing []int
	for i, v := range a {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, i+1)
		}
	}
	return missing
}

// Validate reports an error naming every unanswered question.
func (a AnswerSet) Validate() error {
	missing := a.Missing()
	if len(missing) == 0 {
		return nil
	}
	keys := make([]string, len(missing))
	for i, n := range missing {
		keys[i] = Key(n)
	}
	return fmt.Errorf("unanswered: %s", strings.Join(keys, ", "))
}

func (a AnswerSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Map())
}

func (a *AnswerSet) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode answers: %w", err)
	}
	*a = FromMap(m)
	return nil
}
