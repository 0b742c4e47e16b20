package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// Client defines the interface for interacting with different LLM providers.
type Client interface {
	// GenerateWorkItemDetails takes user input, system prompt, and context,
	// interacts with the LLM, parses the response, and returns the structured
	// work item suggestion or an error.
	GenerateWorkItemDetails(ctx context.Context, userInput, systemPrompt, contextContent string) (Suggestion, error)
}

// OpenAIClient implements the llm.Client interface for the OpenAI API.
type OpenAIClient struct {
	client    *openai.Client
	modelName string
}

// NewOpenAIClient creates a new OpenAI client wrapper.
// It requires a configured go-openai client and the model name to use.
func NewOpenAIClient(client *openai.Client, modelName string) (*OpenAIClient, error) {
	if client == nil {
		return nil, ErrLLMClientNil
	}
	if modelName == "" {
		log.Warn().Msg("modelName is empty for OpenAIClient, defaulting to gpt-4o")
		modelName = openai.GPT4o
	}
	return &OpenAIClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// GenerateWorkItemDetails implements the llm.Client interface for OpenAI.
// It constructs the prompt, calls the OpenAI API, and parses the response.
func (o *OpenAIClient) GenerateWorkItemDetails(ctx context.Context, userInput, systemPrompt, contextContent string) (Suggestion, error) {
	fullPrompt := ConstructPrompt(userInput, systemPrompt, contextContent)
	log.Debug().Str("full_prompt", fullPrompt).Msg("Constructed full prompt for LLM")

	if o.client == nil {
		return Suggestion{}, ErrLLMClientNil
	}
	if fullPrompt == "" {
		return Suggestion{}, ErrLLMPromptEmpty
	}

	log.Debug().Str("model", o.modelName).Msg("Preparing OpenAI chat completion request")
	req := openai.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fullPrompt,
			},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("OpenAI API call failed")
		return Suggestion{}, fmt.Errorf("%w: %w", ErrLLMCompletion, err)
	}

	if len(resp.Choices) == 0 {
		log.Error().Msg("Received an empty response (no choices) from OpenAI")
		return Suggestion{}, ErrLLMEmptyResponse
	}
	rawResponse := resp.Choices[0].Message.Content
	log.Debug().Str("raw_response", rawResponse).Msg("Extracted raw response content")

	suggestion, err := ParseSuggestion(rawResponse)
	if err != nil {
		return Suggestion{}, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	log.Info().Msg("Successfully generated and parsed work item details from OpenAI")
	return suggestion, nil
}
