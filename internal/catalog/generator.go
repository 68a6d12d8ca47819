package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// descriptionGenerator fills in catalog entries using the OpenAI API.
type descriptionGenerator struct {
	client    *openai.Client
	bodyParts []string
}

func newDescriptionGenerator(openaiAPIKey string) *descriptionGenerator {
	client := openai.NewClient(option.WithAPIKey(openaiAPIKey))
	return &descriptionGenerator{
		client:    client,
		bodyParts: bodyParts,
	}
}

// Generate builds a catalog entry for the named exercise.
func (g *descriptionGenerator) Generate(ctx context.Context, name string) (Exercise, error) {
	if name == "" {
		return Exercise{}, errors.New("exercise name cannot be empty")
	}

	prompt := fmt.Sprintf(`Generate a detailed exercise description for "%s".
Include the primary body part it trains, whether it is scored by repetition
count alone (bodyweight movements like pull ups and planks are), and
a markdown description following this exact structure:

## Instructions
[Provide 3-5 numbered steps explaining how to perform the exercise correctly]

## Common Mistakes
[List 3-4 common form errors as bullet points]

## Coaching Cues
[Include 2-3 short cues a trainer would say mid-set]

Important guidelines:
- Instructions should be clear, concise, and focus on proper form
- Use simple, direct language that beginners can understand
- Highlight safety considerations where relevant

The description should be comprehensive yet concise, totaling around 150-200 words.`, name)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        openai.F("exercise"),
		Description: openai.F("Detailed information about a fitness exercise"),
		Schema:      openai.F(interface{}(exerciseJSONSchema{bodyParts: g.bodyParts})),
		Strict:      openai.Bool(true),
	}

	chat, err := g.client.Chat.Completions.New(ctx,
		openai.ChatCompletionNewParams{ //nolint:exhaustruct // only need to set a few fields.
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			}),
			ResponseFormat: openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
				openai.ResponseFormatJSONSchemaParam{
					Type:       openai.F(openai.ResponseFormatJSONSchemaTypeJSONSchema),
					JSONSchema: openai.F(schemaParam),
				},
			),
			Model: openai.F(openai.ChatModelGPT4o2024_08_06),
		})
	if err != nil {
		return Exercise{}, fmt.Errorf("chat completion: %w", err)
	}

	var exercise Exercise
	if err = json.Unmarshal([]byte(chat.Choices[0].Message.Content), &exercise); err != nil {
		return Exercise{}, fmt.Errorf("parse exercise response: %w", err)
	}

	if exercise.Name == "" || exercise.BodyPart == "" || exercise.DescriptionMarkdown == "" {
		return Exercise{}, errors.New("generated exercise is missing required fields")
	}
	if !slices.Contains(g.bodyParts, exercise.BodyPart) {
		return Exercise{}, fmt.Errorf("invalid body part %q", exercise.BodyPart)
	}

	return exercise, nil
}
