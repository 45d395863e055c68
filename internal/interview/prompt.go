package interview

import (
	"fmt"
	"strings"

	"github.com/hiready/hiready-server/internal/model"
)

const (
	// OpeningRequest asks the LLM for the first interviewer utterance. It is
	// sent once and never stored in the conversation log.
	OpeningRequest = "Please start the interview with an opening greeting and first question."
	// FallbackOpening is used when the opening request fails.
	FallbackOpening = "Hello! Thank you for joining today's interview. Let's start with a simple question - can you tell me a bit about yourself and your background?"
	// ClosingLine ends the interview when the turn limit is reached.
	ClosingLine = "That concludes our interview. Thank you for your time!"

	defaultRole  = "Frontend Developer"
	defaultLevel = "Mid-Level"
)

var defaultFocus = []string{"Technical skills", "problem-solving", "teamwork", "and cultural fit"}

// conclusionMarkers are phrases that mark an interviewer utterance as final.
var conclusionMarkers = []string{
	"that concludes our interview",
	"this concludes our interview",
	"that concludes the interview",
	"this concludes the interview",
}

// SystemPrompt builds the interviewer persona for a role and experience level.
func SystemPrompt(jobRole, experienceLevel string, focus []string) string {
	if strings.TrimSpace(jobRole) == "" {
		jobRole = defaultRole
	}
	if strings.TrimSpace(experienceLevel) == "" {
		experienceLevel = defaultLevel
	}
	if len(focus) == 0 {
		focus = defaultFocus
	}

	return fmt.Sprintf(`You are an AI interviewer conducting a professional job interview. Your role is to:
1. Ask relevant questions about the candidate's experience, skills, and qualifications
2. Be professional, friendly, and encouraging
3. Listen carefully to responses and ask follow-up questions
4. Provide constructive feedback when appropriate
5. Keep responses concise and focused (2-3 sentences max)
6. Guide the conversation naturally and professionally

Current interview context:
- Position: %s
- Experience Level: %s
- Focus areas: %s`, jobRole, experienceLevel, strings.Join(focus, ", "))
}

// IsConclusion reports whether an interviewer utterance closes the interview.
func IsConclusion(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range conclusionMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// chatHistory converts a conversation log into chat messages after the system prompt.
func chatHistory(system string, turns []model.ConversationTurn) []model.ChatMessage {
	msgs := make([]model.ChatMessage, 0, len(turns)+2)
	msgs = append(msgs, model.ChatMessage{Role: model.ChatRoleSystem, Content: system})
	for _, t := range turns {
		role := model.ChatRoleUser
		if t.Role == model.TurnRoleInterviewer {
			role = model.ChatRoleAssistant
		}
		msgs = append(msgs, model.ChatMessage{Role: role, Content: t.Text})
	}
	return msgs
}
