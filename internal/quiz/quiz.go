// Package quiz holds the fixed ten-question screening quiz a student
// answers after recording a mood.
package quiz

// Size is the number of questions in the quiz.
const Size = 10

// Question is one entry of the screening quiz.
type Question struct {
	Number int `json:"number"`

	// Text is the short canonical wording used in the risk-assessment
	// prompt.
	Text string `json:"text"`

	// Prompt is the longer conversational wording shown to students and
	// quoted by the post-quiz chatbot.
	Prompt string `json:"prompt"`

	// Options are suggested answers for clients. Free-form answers are
	// accepted as well.
	Options []string `json:"options"`
}

// Bank is the screening quiz, in answer order.
var Bank = [Size]Question{
	{
		Number: 1,
		Text:   "How do you feel about a surprise test?",
		Prompt: "You just found out a surprise test is happening in your next class. How do you feel?",
		Options: []string{
			"A little nervous, but I'll manage.",
			"Excited for the challenge!",
			"Completely overwhelmed and anxious.",
			"Indifferent, it doesn't bother me.",
		},
	},
	{
		Number: 2,
		Text:   "A friend cancels plans last minute. Your reaction?",
		Prompt: "A friend cancels plans with you last minute. What's your immediate reaction?",
		Options: []string{
			"No worries, we'll reschedule.",
			"A bit disappointed.",
			"Relieved, I wanted to stay in.",
			"Hurt. People always do this to me.",
		},
	},
	{
		Number: 3,
		Text:   "You have a free afternoon. What do you do?",
		Prompt: "You have a completely free afternoon with no obligations. What are you most likely to do?",
		Options: []string{
			"Hang out with friends.",
			"Work on a hobby.",
			"Catch up on sleep.",
			"Stay in my room alone.",
		},
	},
	{
		Number:  4,
		Text:    "How often do you feel overwhelmed by your schoolwork?",
		Prompt:  "How often have you felt overwhelmed by your schoolwork this past week?",
		Options: []string{"Rarely", "Sometimes", "Often", "All the time"},
	},
	{
		Number: 5,
		Text:   "You receive unexpected praise. How do you feel?",
		Prompt: "You receive some unexpected praise from a teacher. How does it make you feel?",
		Options: []string{
			"Proud and happy.",
			"Pleasantly surprised.",
			"Awkward.",
			"Like I don't deserve it.",
		},
	},
	{
		Number:  6,
		Text:    "How easy is it for you to fall asleep at night?",
		Prompt:  "How easy has it been for you to fall asleep at night recently?",
		Options: []string{"Very easy", "Mostly fine", "Difficult", "I barely sleep"},
	},
	{
		Number:  7,
		Text:    "What is your energy level like right now?",
		Prompt:  "Thinking about your energy levels right now, which best describes them?",
		Options: []string{"High", "Normal", "Low", "Non-existent"},
	},
	{
		Number:  8,
		Text:    "How connected do you feel to your friends and family?",
		Prompt:  "How connected do you feel to your friends and family at the moment?",
		Options: []string{"Very connected", "Somewhat connected", "Distant", "Isolated"},
	},
	{
		Number: 9,
		Text:   "You made a mistake on an assignment. Your first thought?",
		Prompt: "You make a mistake on an important assignment. What is your first thought?",
		Options: []string{
			"I'll learn from it.",
			"Annoyed, but it's fine.",
			"I should have tried harder.",
			"'I'm a failure.'",
		},
	},
	{
		Number: 10,
		Text:   "What are you most looking forward to?",
		Prompt: "Right now, what are you most looking forward to?",
		Options: []string{
			"The weekend.",
			"Seeing my friends.",
			"A hobby or event.",
			"Nothing in particular.",
		},
	},
}
