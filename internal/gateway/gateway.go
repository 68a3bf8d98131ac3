// Package gateway is the query safety gateway: it turns a natural-language
// question into a candidate SQL query via an external generator, decides
// whether that untrusted text is a single read-only statement over the
// approved schema, and only then executes it. Every path returns a
// response envelope; nothing panics out.
package gateway

import (
	"context"

	"github.com/stocksense-ai/stocksense/internal/dbx"
	"github.com/stocksense-ai/stocksense/internal/schema"
	"go.uber.org/zap"
)

// Generator produces a candidate SQL query for a question. The returned
// string is treated as fully untrusted regardless of provider.
type Generator interface {
	Generate(ctx context.Context, question, schemaDDL string) (string, error)
}

// Executor runs an allowed query. The gateway guarantees only classified
// ALLOW text reaches it.
type Executor interface {
	Execute(ctx context.Context, query string) (*dbx.Result, error)
}

// Envelope is the externally visible result of one request. Either
// Results is populated with Error empty, or Results is empty and Error
// explains the failure. Never both.
type Envelope struct {
	SQLQuery string           `json:"sql_query"`
	Results  []map[string]any `json:"results"`
	Error    string           `json:"error,omitempty"`
}

// Outcome carries per-request observability data alongside the envelope.
type Outcome struct {
	Generated bool // generator returned candidate text
	Verdict   Verdict
	Executed  bool
	RowCount  int
}

// Gateway sequences generation, classification, execution and projection.
type Gateway struct {
	generator Generator
	parser    Parser // nil when structural parsing is unavailable
	executor  Executor
	schema    *schema.Context
	logger    *zap.Logger
}

// New creates a Gateway. parser may be nil; classification then relies on
// the keyword scan alone.
func New(gen Generator, parser Parser, exec Executor, sc *schema.Context, logger *zap.Logger) *Gateway {
	return &Gateway{
		generator: gen,
		parser:    parser,
		executor:  exec,
		schema:    sc,
		logger:    logger,
	}
}

// Answer handles one question end to end. The flow is strictly linear:
// generate, classify, execute, project. Any stage's failure
// short-circuits to an error envelope; no stage retries.
func (g *Gateway) Answer(ctx context.Context, question string) (Envelope, Outcome) {
	var out Outcome

	sqlText, err := g.generator.Generate(ctx, question, g.schema.DDL())
	if err != nil {
		g.logger.Warn("query generation failed", zap.Error(err))
		return errEnvelope("", err.Error()), out
	}
	out.Generated = true

	var parse *StructuralParse
	if g.parser != nil {
		if p, ok := g.parser.Parse(sqlText); ok {
			parse = p
		}
	}

	verdict := Classify(sqlText, parse)
	out.Verdict = verdict
	if !verdict.Allowed {
		g.logger.Info("candidate query rejected",
			zap.String("reason", verdict.Reason.String()),
			zap.String("detail", verdict.Detail),
		)
		return errEnvelope(sqlText, "generated query failed safety validation: "+verdict.Detail), out
	}

	result, err := g.executor.Execute(ctx, sqlText)
	if err != nil {
		g.logger.Warn("query execution failed", zap.Error(err))
		return errEnvelope(sqlText, "query execution failed: "+err.Error()), out
	}
	out.Executed = true
	out.RowCount = len(result.Rows)

	return Envelope{
		SQLQuery: sqlText,
		Results:  result.Maps(),
	}, out
}

func errEnvelope(sqlText, msg string) Envelope {
	return Envelope{
		SQLQuery: sqlText,
		Results:  []map[string]any{},
		Error:    msg,
	}
}
