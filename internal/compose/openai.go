package compose

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
)

// OpenAIComposer redacta correos con el SDK oficial de openai-go
// (chat completions). El brief se traduce a un par system/user y, al
// revisar, el borrador vigente entra como turno del asistente.
type OpenAIComposer struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAIComposer valida credenciales y arma las opciones del cliente.
func NewOpenAIComposer(apiKey, baseURL, model string) (*OpenAIComposer, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key missing")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIComposer{model: model, opts: opts}, nil
}

func (o *OpenAIComposer) Compose(ctx context.Context, brief domain.CampaignBrief) (string, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt(brief)),
		openai.UserMessage(composePrompt(brief)),
	}
	return o.complete(ctx, msgs)
}

func (o *OpenAIComposer) Revise(ctx context.Context, brief domain.CampaignBrief, current, feedback string) (string, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt(brief)),
		openai.UserMessage(composePrompt(brief)),
		openai.ChatCompletionMessageParamOfAssistant(current),
		openai.UserMessage("Revise the email above applying this feedback, and return only the full revised email in markdown: " + feedback),
	}
	return o.complete(ctx, msgs)
}

func (o *OpenAIComposer) complete(ctx context.Context, msgs []openai.ChatCompletionMessageParamUnion) (string, error) {
	client := openai.NewClient(o.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: msgs,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	content := cleanModelOutput(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai: empty content")
	}
	return content, nil
}

var (
	fenceStartRe = regexp.MustCompile("(?is)^\\s*```(?:markdown|md)?\\s*")
	fenceEndRe   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// cleanModelOutput quita fences ```markdown ... ``` y BOM; algunos modelos
// envuelven el correo aunque el prompt pida markdown plano.
func cleanModelOutput(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "\uFEFF")
	s = fenceStartRe.ReplaceAllString(s, "")
	s = fenceEndRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func systemPrompt(brief domain.CampaignBrief) string {
	var sb strings.Builder
	sb.WriteString("You are an email copywriter for the brand ")
	sb.WriteString(brief.BrandName)
	sb.WriteString(".")
	if brief.BrandVoice != "" {
		sb.WriteString(" Write in this voice: " + brief.BrandVoice + ".")
	}
	if brief.BrandAbout != "" {
		sb.WriteString(" About the brand: " + brief.BrandAbout + ".")
	}
	sb.WriteString(" Always answer with the complete email in markdown, starting with a '# ' subject line.")
	return sb.String()
}

func composePrompt(brief domain.CampaignBrief) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a %s email.\n", brief.EmailType)
	fmt.Fprintf(&sb, "Request: %s\n", brief.Request)
	if brief.Audience != "" {
		fmt.Fprintf(&sb, "Audience: %s\n", brief.Audience)
	}
	if len(brief.KeyPoints) > 0 {
		sb.WriteString("Key points:\n")
		for _, p := range brief.KeyPoints {
			sb.WriteString("- " + p + "\n")
		}
	}
	if brief.CallToAction != "" {
		fmt.Fprintf(&sb, "Call to action: %s\n", brief.CallToAction)
	}
	return sb.String()
}
