// Package openai interprets free-text gauge messages with an OpenAI model
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ansel1/merry"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/powerman/structlog"
)

var log = structlog.New(structlog.KeyUnit, "openai")

// Commands the agent may return
const (
	CommandResolveVolume = "ResolveVolume"
	CommandGeneralQuery  = "GeneralQuery"
)

// ErrNoAPIKey is returned by NewReadingInterpreter when OPENAI_API_KEY is unset
var ErrNoAPIKey = merry.New("OPENAI_API_KEY environment variable not set")

// AgentResponse defines the structured output from the OpenAI agent.
type AgentResponse struct {
	CommandName string `json:"command_name" jsonschema_description:"ResolveVolume when the user gives a fuel and a dipstick height, otherwise GeneralQuery"`
	FuelID      string `json:"fuel_id" jsonschema_description:"One of the known fuel ids, or an empty string"`
	Height      string `json:"height" jsonschema_description:"The dipstick height in centimetres exactly as the user wrote it, or an empty string"`
	UserMessage string `json:"user_message" jsonschema_description:"A short message to show back to the user in Brazilian Portuguese"`
}

// ReadingInterpreter turns a free-text message into a structured request.
type ReadingInterpreter interface {
	InterpretReading(ctx context.Context, userMessage string, fuels []FuelChoice) (*AgentResponse, error)
}

// FuelChoice is a fuel the agent may pick, with the name operators use for it
type FuelChoice struct {
	ID   string
	Name string
}

// readingInterpreterImpl implements the ReadingInterpreter interface.
type readingInterpreterImpl struct {
	client openai.Client
	schema interface{}
}

// GenerateSchema generates a JSON schema for a given type.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

// NewReadingInterpreter creates an interpreter using OPENAI_API_KEY.
func NewReadingInterpreter() (ReadingInterpreter, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &readingInterpreterImpl{
		client: client,
		schema: GenerateSchema[AgentResponse](),
	}, nil
}

func systemPrompt(fuels []FuelChoice) string {
	var known strings.Builder
	for _, f := range fuels {
		known.WriteString(fmt.Sprintf("- %s (%s)\n", f.ID, f.Name))
	}
	return fmt.Sprintf(`You assist gas station operators reading fuel tank dipsticks in Brazil.

Known fuels:
%s
Behavior:
1. If the user gives a fuel and a dipstick height (in cm):
   - command_name = "ResolveVolume"
   - fuel_id = the matching id from the list ("gasolina aditivada", "v-power" and similar map to their ids); empty if unsure
   - height = the number exactly as written, do not round or convert it
   - user_message = a one-line confirmation in Brazilian Portuguese
2. Anything else (greetings, questions, incomplete readings):
   - command_name = "GeneralQuery"
   - fuel_id = "", height = ""
   - user_message = a short reply in Brazilian Portuguese explaining how to send a reading

Output strictly in JSON.`, known.String())
}

// InterpretReading sends a message to the OpenAI agent and returns the structured response.
func (s *readingInterpreterImpl) InterpretReading(ctx context.Context, userMessage string, fuels []FuelChoice) (*AgentResponse, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "gauge_reading",
		Description: openai.String("Structured response containing command, fuel id, height and user message"),
		Schema:      s.schema,
		Strict:      openai.Bool(true),
	}

	respFormat := openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
	}

	chat, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(fuels)),
			openai.UserMessage(userMessage),
		},
		ResponseFormat: respFormat,
		Model:          openai.ChatModelGPT4o,
	})
	if err != nil {
		return nil, merry.Append(err, "error calling OpenAI API")
	}

	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return nil, merry.New("received empty response from OpenAI")
	}

	return decodeAgentResponse(chat.Choices[0].Message.Content)
}

func decodeAgentResponse(content string) (*AgentResponse, error) {
	var agentResp AgentResponse
	if err := json.Unmarshal([]byte(content), &agentResp); err != nil {
		log.PrintErr("failed to unmarshal OpenAI response", "err", err, "raw", content)
		return nil, merry.Append(err, "error unmarshalling OpenAI response")
	}
	agentResp.FuelID = strings.ToUpper(strings.TrimSpace(agentResp.FuelID))
	agentResp.Height = strings.TrimSpace(agentResp.Height)
	return &agentResp, nil
}
