package assistant

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"pricingdesk/internal/config"
	"pricingdesk/internal/warehouse"
)

// WarehouseInvoker routes prompts through the warehouse ai_query function.
type WarehouseInvoker struct {
	exec  warehouse.Executor
	stmts *warehouse.Statements
}

// NewWarehouseInvoker wires the warehouse transport.
func NewWarehouseInvoker(exec warehouse.Executor, stmts *warehouse.Statements) *WarehouseInvoker {
	return &WarehouseInvoker{exec: exec, stmts: stmts}
}

func (w *WarehouseInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	table, err := w.exec.Execute(ctx, w.stmts.Invoke(prompt))
	if err != nil {
		return "", fmt.Errorf("ai_query invocation: %w", err)
	}
	if table.Empty() {
		return "", fmt.Errorf("no response received from endpoint")
	}
	return table.Value(0, "response"), nil
}

// EndpointInvoker calls the serving endpoint directly; the endpoint speaks
// the OpenAI chat protocol.
type EndpointInvoker struct {
	chatModel model.ToolCallingChatModel
}

// NewEndpointInvoker constructs the direct-endpoint transport from the
// warehouse host and token.
func NewEndpointInvoker(ctx context.Context, cfg config.WarehouseConfig) (*EndpointInvoker, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: fmt.Sprintf("https://%s/serving-endpoints", cfg.Host),
		Model:   cfg.AIEndpoint,
		APIKey:  cfg.Token,
	})
	if err != nil {
		return nil, fmt.Errorf("init endpoint chat model: %w", err)
	}
	return &EndpointInvoker{chatModel: chatModel}, nil
}

func (e *EndpointInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	msg, err := e.chatModel.Generate(ctx, []*schema.Message{
		{Role: schema.User, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("endpoint generate: %w", err)
	}
	return msg.Content, nil
}
