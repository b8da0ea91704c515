package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// Insight is the structured answer the model must produce. The schema is
// reflected from this struct, so field tags are part of the wire contract.
type Insight struct {
	Answer           string   `json:"answer" jsonschema_description:"Direct answer to the question, grounded in the provided data"`
	Highlights       []string `json:"highlights" jsonschema_description:"Key figures or products backing the answer"`
	SuggestedActions []string `json:"suggested_actions" jsonschema_description:"Concrete restocking or pricing actions, empty if none apply"`
	Confidence       float64  `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
}

type AgentService interface {
	AnswerQuestion(ctx context.Context, question string, registry *ProviderRegistry) (*Insight, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// AnswerQuestion gathers the registered context blocks, then asks the model
// for a structured answer about the inventory position. All providers run
// before the call; the model never reads the store directly.
func (a *Agent) AnswerQuestion(ctx context.Context, question string, registry *ProviderRegistry) (*Insight, error) {
	var contextBlocks strings.Builder
	for _, provider := range registry.All() {
		data, err := provider.Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to gather %s context: %w", provider.Name, err)
		}
		fmt.Fprintf(&contextBlocks, "## %s\n%s\n%s\n\n", provider.Name, provider.Description, data)
	}

	prompt := fmt.Sprintf(`You are an inventory analyst for an apparel retailer.
Answer the question using ONLY the data sections below. The data comes from the
Contifico ERP: purchases, sales, stock snapshots, and computed KPIs.
Rules:
1. Quantities are units; lead times are in days.
2. A null metric means there is not enough data to compute it — say so, do not guess.
3. Reference products by their code (e.g. "CAMI012/54").
4. Provide a confidence score (0.0-1.0).

%s
Question: %s`, contextBlocks.String(), question)

	// Dynamically generate the JSON schema from the Go struct
	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "inventory_insight",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A structured answer about the current inventory position"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var insight Insight
	if err := json.Unmarshal([]byte(content), &insight); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	return &insight, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v Insight
	return reflector.Reflect(v)
}
