package chat

import "github.com/blumie/wellcheck/internal/llm"

// StudentChatSchema is the reply shape for the mood-only conversation.
var StudentChatSchema = &llm.Schema{
	Name:        "student-chat",
	Description: "The chatbot's next turn in a short supportive conversation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"response": map[string]any{
				"type":        "string",
				"description": "The chatbot's next conversational response to the student",
			},
			"isFinalMessage": map[string]any{
				"type":        "boolean",
				"description": "True when the conversation should conclude",
			},
			"finalMessage": map[string]any{
				"type":        "string",
				"description": "A concluding, supportive message based on the mood and the conversation",
			},
		},
		"required":             []any{"response", "isFinalMessage", "finalMessage"},
		"additionalProperties": false,
	},
}

// StoryChatSchema is the reply shape for the post-quiz conversation.
// finalThought is required so strict structured-output providers accept
// the schema; it is empty until the conversation ends.
var StoryChatSchema = &llm.Schema{
	Name:        "story-chat",
	Description: "The chatbot's next turn in a conversation about the student's quiz answers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"response": map[string]any{
				"type":        "string",
				"description": "The chatbot's next conversational response to the student",
			},
			"isFinalMessage": map[string]any{
				"type":        "boolean",
				"description": "True only when the conversation has reached a natural conclusion",
			},
			"finalThought": map[string]any{
				"type":        "string",
				"description": "A personalized, reflective closing thought. Empty unless isFinalMessage is true.",
			},
		},
		"required":             []any{"response", "isFinalMessage", "finalThought"},
		"additionalProperties": false,
	},
}
