// Package nlp routes free-text chat messages to standup operations through
// an LLM function-calling loop, and generates the optional closing remark a
// group's custom instructions ask for.
package nlp

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Client wraps the chat-completion API used for both tool dispatch and
// one-shot completions.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient builds a client against an OpenAI-compatible endpoint. baseURL
// may be empty for the default endpoint.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// nothingToSay is the sentinel the model uses to signal that no closing
// remark is warranted.
const nothingToSay = "NOTHING_TO_SAY"

// ClosingRemark asks the model for a post-standup message driven by the
// group's custom instructions. Returns "" when the model has nothing to say.
func (c *Client) ClosingRemark(ctx context.Context, instructions string) (string, error) {
	date := time.Now().Format("Monday, January 2, 2006")
	system := fmt.Sprintf(`Today's date is %s.
You are a standup agent who has just wrapped up standup. As part of ending the standup, the group has this special instruction for you:
<INSTRUCTION>
%s
</INSTRUCTION>

It's possible that there is no output that is warranted. When that happens, simply say "%s". Otherwise, reply in a formal tone.`, date, instructions, nothingToSay)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: "What is the message, if any, for the users?"},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	content := resp.Choices[0].Message.Content
	if strings.Contains(content, nothingToSay) {
		return "", nil
	}
	return content, nil
}
