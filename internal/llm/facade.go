// Package llm implements the uniform LLM Client Facade spec.md §4.9
// describes: one get_response/stream_response contract over either a
// chat-completion or an instruct-completion backend, both buffered and
// streaming, with stop-phrase and max-token control.
//
// Grounded on aqua777-go-llamaindex's llm/openai.go (go-openai client
// construction against a custom base URL, CreateChatCompletion /
// CreateChatCompletionStream usage, delta-forwarding goroutine), extended
// with go-retryablehttp transport the way internal/embedclient wires it,
// and with the instruct/completion path go-openai also exposes.
package llm

import (
	"context"
	"io"

	"github.com/hashicorp/go-retryablehttp"
	openai "github.com/sashabaranov/go-openai"
	"gitlab.com/tozd/go/errors"
)

// Kind selects which OpenAI-compatible endpoint family the Facade talks to.
type Kind string

const (
	KindChat     Kind = "chat"
	KindInstruct Kind = "instruct"
)

var (
	ErrUnexpectedRole = errors.Base("unexpected role in llm response")
	ErrEmptyResponse  = errors.Base("empty llm response")
)

// Facade is immutable after construction and safe to share across tasks,
// per spec.md §5's "LLM client is immutable after construction and
// cloneable across tasks."
type Facade struct {
	client   *openai.Client
	model    string
	kind     Kind
	bosToken string
	eosToken string
}

// New builds a Facade against an OpenAI-compatible base URL, retrying
// transient transport failures with exponential backoff. bosToken/eosToken
// are only used to wrap the rendered prompt for an instruct backend; pass
// empty strings for a chat backend or a model with no wrapping convention.
func New(baseURL, apiKey, model string, kind Kind, bosToken, eosToken string) *Facade {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	config.HTTPClient = retryablehttp.NewClient().StandardClient()

	return &Facade{
		client:   openai.NewClientWithConfig(config),
		model:    model,
		kind:     kind,
		bosToken: bosToken,
		eosToken: eosToken,
	}
}

// GetResponse drives one buffered completion.
func (f *Facade) GetResponse(ctx context.Context, args LanguageServiceArguments, maxTokens int, stopPhrases []string) (string, errors.E) {
	system := renderSystem(args)

	switch f.kind {
	case KindInstruct:
		return f.getInstructResponse(ctx, system, args.Query, maxTokens, stopPhrases)
	default:
		return f.getChatResponse(ctx, system, args.Query, maxTokens, stopPhrases)
	}
}

func (f *Facade) getChatResponse(ctx context.Context, system, query string, maxTokens int, stopPhrases []string) (string, errors.E) {
	resp, err := f.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: f.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		MaxTokens: maxTokens,
		N:         1,
		Stop:      stopPhrases,
	})
	if err != nil {
		return "", errors.WithStack(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.WithStack(ErrEmptyResponse)
	}

	message := resp.Choices[0].Message
	if message.Role == openai.ChatMessageRoleSystem || message.Role == openai.ChatMessageRoleFunction {
		return "", errors.WithStack(ErrUnexpectedRole)
	}
	if message.Content == "" {
		return "", errors.WithStack(ErrEmptyResponse)
	}
	return message.Content, nil
}

func (f *Facade) getInstructResponse(ctx context.Context, system, query string, maxTokens int, stopPhrases []string) (string, errors.E) {
	resp, err := f.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:     f.model,
		Prompt:    f.renderInstructPrompt(system, query),
		MaxTokens: maxTokens,
		N:         1,
		Stop:      stopPhrases,
	})
	if err != nil {
		return "", errors.WithStack(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.WithStack(ErrEmptyResponse)
	}
	if resp.Choices[0].Text == "" {
		return "", errors.WithStack(ErrEmptyResponse)
	}
	return resp.Choices[0].Text, nil
}

func (f *Facade) renderInstructPrompt(system, query string) string {
	return f.bosToken + system + "\n" + query + f.eosToken
}

// StreamResponse drives one streamed completion, sending each content
// delta on tx. Role-only frames are ignored. The caller cancels ctx to
// stop the stream; a pending send on tx is then abandoned.
func (f *Facade) StreamResponse(ctx context.Context, args LanguageServiceArguments, tx chan<- string, maxTokens int, stopPhrases []string) errors.E {
	system := renderSystem(args)

	switch f.kind {
	case KindInstruct:
		return f.streamInstruct(ctx, system, args.Query, tx, maxTokens, stopPhrases)
	default:
		return f.streamChat(ctx, system, args.Query, tx, maxTokens, stopPhrases)
	}
}

func (f *Facade) streamChat(ctx context.Context, system, query string, tx chan<- string, maxTokens int, stopPhrases []string) errors.E {
	stream, err := f.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: f.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		MaxTokens: maxTokens,
		N:         1,
		Stop:      stopPhrases,
		Stream:    true,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.WithStack(err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		select {
		case tx <- delta:
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		}
	}
}

func (f *Facade) streamInstruct(ctx context.Context, system, query string, tx chan<- string, maxTokens int, stopPhrases []string) errors.E {
	stream, err := f.client.CreateCompletionStream(ctx, openai.CompletionRequest{
		Model:     f.model,
		Prompt:    f.renderInstructPrompt(system, query),
		MaxTokens: maxTokens,
		N:         1,
		Stop:      stopPhrases,
		Stream:    true,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.WithStack(err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		text := resp.Choices[0].Text
		if text == "" {
			continue
		}
		select {
		case tx <- text:
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		}
	}
}
