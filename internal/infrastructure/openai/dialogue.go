package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/jestelle/slash-podcast/internal/domain/episode"
)

const dialogueSystemPrompt = `Your task is to take the input text provided and turn it into an engaging, informative podcast dialogue. The input text may be messy or unstructured; extract the key points and interesting facts that could be discussed in a podcast.

First brainstorm in a scratchpad: identify the main topics, key points and anecdotes, and consider analogies, storytelling techniques or hypothetical scenarios that make the content relatable. The podcast should be accessible to a general audience, so explain complex concepts in simple terms.

Then write the actual dialogue. Aim for a natural, conversational flow between the host and guest speakers. Use made-up names for an immersive experience, design the output to be read aloud, and make it as long and detailed as possible while staying on topic. At the end, have the speakers naturally summarize the main insights in a casual manner, without an obvious recap.

Respond with a json object with exactly two keys:
  "scratchpad": your brainstorming notes as a string,
  "dialogue": an array of objects, each {"text": "...", "speaker": "..."} where speaker is one of "female-1", "male-1", "female-2".`

// WriteDialogue turns source text into a structured podcast script. The
// model occasionally returns malformed or incomplete json; those payloads
// are retried with the validation failure appended to the conversation.
func (c *Client) WriteDialogue(ctx context.Context, text string) (*episode.Dialogue, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: dialogueSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: "<input_text>\n" + text + "\n</input_text>"},
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.DialogueAttempts; attempt++ {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.cfg.ChatModel,
			Messages: messages,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("chat completion returned no choices")
			continue
		}

		content := resp.Choices[0].Message.Content
		dialogue, err := c.parseDialogue(content)
		if err == nil {
			if c.logger != nil {
				c.logger.Info("dialogue generated",
					zap.Int("lines", len(dialogue.Lines)),
					zap.Int("attempt", attempt))
			}
			return dialogue, nil
		}
		lastErr = err
		if c.logger != nil {
			c.logger.Warn("dialogue payload rejected", zap.Int("attempt", attempt), zap.Error(err))
		}
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: "The previous response was invalid: " + err.Error() + ". Respond again with valid json in the required shape.",
			},
		)
	}
	return nil, fmt.Errorf("dialogue generation failed after %d attempts: %w", c.cfg.DialogueAttempts, lastErr)
}

func (c *Client) parseDialogue(content string) (*episode.Dialogue, error) {
	var dialogue episode.Dialogue
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &dialogue); err != nil {
		return nil, fmt.Errorf("decode dialogue: %w", err)
	}
	if err := c.validator.Struct(&dialogue); err != nil {
		return nil, fmt.Errorf("validate dialogue: %w", err)
	}
	return &dialogue, nil
}
