package ai

import (
	"context"
	"fmt"

	"footagelens/internal/models"
)

const conversationSystemPrompt = `You are a video analysis assistant. You have analyzed a video and produced the following analysis:

%s

Based on this analysis, you will now engage in a conversation with the user about the video. Respond to their questions and comments, drawing upon the information in the analysis. If asked about something not covered in the analysis, politely explain that you don't have that information.`

// Conversationalist answers footage-scoped questions, grounding the provider
// on the stored analysis and the recent conversation history.
type Conversationalist struct {
	provider     ChatProvider
	historyLimit int
}

func NewConversationalist(provider ChatProvider, historyLimit int) *Conversationalist {
	if historyLimit < 0 {
		historyLimit = 0
	}
	return &Conversationalist{provider: provider, historyLimit: historyLimit}
}

// Reply answers userInput about a video whose analysis text is given.
// Only the last historyLimit turns are forwarded to the provider.
func (c *Conversationalist) Reply(ctx context.Context, analysis string, history []models.ConversationTurn, userInput string) (string, error) {
	if len(history) > c.historyLimit {
		history = history[len(history)-c.historyLimit:]
	}

	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, TextMessage("system", fmt.Sprintf(conversationSystemPrompt, analysis)))
	for _, turn := range history {
		messages = append(messages, TextMessage(turn.Role, turn.Content))
	}
	messages = append(messages, TextMessage(models.RoleUser, userInput))

	return c.provider.Complete(ctx, messages)
}
