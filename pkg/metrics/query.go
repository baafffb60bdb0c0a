package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// OperationMetrics represents aggregated request metrics for one operation.
type OperationMetrics struct {
	Operation    string  `json:"operation"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	TotalTokens  int64   `json:"total_tokens"`
	TotalCost    float64 `json:"total_cost_usd"`
}

// QueryService provides methods to query recorded metrics from Prometheus.
type QueryService struct {
	client   api.Client
	queryAPI v1.API
}

// NewQueryService creates a new metrics query service.
func NewQueryService(prometheusURL string) (*QueryService, error) {
	client, err := api.NewClient(api.Config{
		Address: prometheusURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &QueryService{
		client:   client,
		queryAPI: v1.NewAPI(client),
	}, nil
}

// sumQuery runs an instant sum() query and returns the first sample value.
func (q *QueryService) sumQuery(ctx context.Context, query string) (float64, error) {
	result, _, err := q.queryAPI.Query(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("query %q failed: %w", query, err)
	}
	if vector, ok := result.(model.Vector); ok && len(vector) > 0 {
		return float64(vector[0].Value), nil
	}
	return 0, nil
}

// GetOperationMetrics retrieves aggregated token and cost metrics for one
// operation name across all providers and models.
func (q *QueryService) GetOperationMetrics(ctx context.Context, operation string) (*OperationMetrics, error) {
	metrics := &OperationMetrics{Operation: operation}

	input, err := q.sumQuery(ctx, fmt.Sprintf(`sum(llm_tokens_total{operation=%q, type="input"})`, operation))
	if err != nil {
		return nil, fmt.Errorf("failed to query input tokens: %w", err)
	}
	metrics.InputTokens = int64(input)

	output, err := q.sumQuery(ctx, fmt.Sprintf(`sum(llm_tokens_total{operation=%q, type="output"})`, operation))
	if err != nil {
		return nil, fmt.Errorf("failed to query output tokens: %w", err)
	}
	metrics.OutputTokens = int64(output)

	metrics.TotalTokens = metrics.InputTokens + metrics.OutputTokens

	cost, err := q.sumQuery(ctx, fmt.Sprintf(`sum(llm_costs_total{operation=%q})`, operation))
	if err != nil {
		return nil, fmt.Errorf("failed to query total cost: %w", err)
	}
	metrics.TotalCost = cost

	return metrics, nil
}

// GetOperationMetricsByModel retrieves metrics for one operation broken down
// by model, showing which models served it and their individual costs.
func (q *QueryService) GetOperationMetricsByModel(ctx context.Context, operation string) (map[string]*OperationMetrics, error) {
	modelsResult, _, err := q.queryAPI.Query(ctx,
		fmt.Sprintf(`group by (model) (llm_tokens_total{operation=%q})`, operation), time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}

	var models []string
	if vector, ok := modelsResult.(model.Vector); ok {
		for _, sample := range vector {
			if modelName, ok := sample.Metric["model"]; ok {
				models = append(models, string(modelName))
			}
		}
	}

	result := make(map[string]*OperationMetrics, len(models))
	for _, modelName := range models {
		metrics := &OperationMetrics{Operation: operation}

		input, err := q.sumQuery(ctx, fmt.Sprintf(`sum(llm_tokens_total{operation=%q, model=%q, type="input"})`, operation, modelName))
		if err != nil {
			return nil, err
		}
		metrics.InputTokens = int64(input)

		output, err := q.sumQuery(ctx, fmt.Sprintf(`sum(llm_tokens_total{operation=%q, model=%q, type="output"})`, operation, modelName))
		if err != nil {
			return nil, err
		}
		metrics.OutputTokens = int64(output)
		metrics.TotalTokens = metrics.InputTokens + metrics.OutputTokens

		cost, err := q.sumQuery(ctx, fmt.Sprintf(`sum(llm_costs_total{operation=%q, model=%q})`, operation, modelName))
		if err != nil {
			return nil, err
		}
		metrics.TotalCost = cost

		result[modelName] = metrics
	}

	return result, nil
}
