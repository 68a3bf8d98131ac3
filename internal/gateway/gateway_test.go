package gateway_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stocksense-ai/stocksense/internal/dbx"
	"github.com/stocksense-ai/stocksense/internal/gateway"
	"github.com/stocksense-ai/stocksense/internal/schema"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// stubGenerator returns a fixed candidate query, or an error.
type stubGenerator struct {
	sql string
	err error
}

func (g *stubGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return g.sql, g.err
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	stmts := []string{
		`CREATE TABLE products (
			product_id INTEGER PRIMARY KEY,
			sku TEXT NOT NULL,
			product_name TEXT NOT NULL,
			category TEXT,
			purchase_price REAL NOT NULL,
			selling_price REAL NOT NULL
		)`,
		`INSERT INTO products VALUES
			(1, 'SKU-1', 'Widget', 'Gadgets', 4.00, 10.00),
			(2, 'SKU-2', 'Gizmo', 'Gadgets', 8.00, 12.00)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return db
}

func newGateway(t *testing.T, gen gateway.Generator, parser gateway.Parser) *gateway.Gateway {
	t.Helper()
	exec := dbx.NewExecutor(newTestDB(t), 5*time.Second)
	return gateway.New(gen, parser, exec, schema.Default(), zap.NewNop())
}

func TestGateway_AllowedQueryExecutes(t *testing.T) {
	gen := &stubGenerator{sql: "SELECT product_name FROM products LIMIT 5;"}
	gw := newGateway(t, gen, gateway.NewStatementParser())

	env, out := gw.Answer(context.Background(), "what products do we sell?")

	if env.Error != "" {
		t.Fatalf("unexpected error: %s", env.Error)
	}
	if env.SQLQuery != gen.sql {
		t.Errorf("sql_query = %q, want %q", env.SQLQuery, gen.sql)
	}
	if len(env.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(env.Results))
	}
	if env.Results[0]["product_name"] != "Widget" {
		t.Errorf("unexpected first row: %v", env.Results[0])
	}
	if !out.Executed || out.RowCount != 2 {
		t.Errorf("outcome = %+v", out)
	}
}

func TestGateway_StackedStatementRejected(t *testing.T) {
	candidate := "SELECT * FROM products; DROP TABLE products;"
	gw := newGateway(t, &stubGenerator{sql: candidate}, gateway.NewStatementParser())

	env, out := gw.Answer(context.Background(), "drop everything")

	if env.Error == "" {
		t.Fatal("expected error set")
	}
	if len(env.Results) != 0 {
		t.Errorf("expected empty results, got %d", len(env.Results))
	}
	if env.SQLQuery != candidate {
		t.Errorf("rejected envelope must carry the candidate text, got %q", env.SQLQuery)
	}
	if out.Verdict.Reason != gateway.ReasonMultiStatement {
		t.Errorf("reason = %s", out.Verdict.Reason)
	}
	if out.Executed {
		t.Error("rejected query must never execute")
	}
}

func TestGateway_WriteRejected(t *testing.T) {
	gw := newGateway(t, &stubGenerator{sql: "UPDATE products SET selling_price = 0;"}, gateway.NewStatementParser())

	env, out := gw.Answer(context.Background(), "zero out prices")

	if env.Error == "" || out.Verdict.Reason != gateway.ReasonNotARead {
		t.Errorf("expected not_a_read rejection, got error=%q reason=%s", env.Error, out.Verdict.Reason)
	}
}

func TestGateway_DegenerateSelectWithoutParser(t *testing.T) {
	// No structural parser available: the keyword scan alone decides.
	gw := newGateway(t, &stubGenerator{sql: "SELECT 1;"}, nil)

	env, out := gw.Answer(context.Background(), "ping")

	if env.Error != "" {
		t.Fatalf("unexpected error: %s", env.Error)
	}
	if len(env.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(env.Results))
	}
	if !out.Verdict.Allowed {
		t.Errorf("expected allow, got %s", out.Verdict.Reason)
	}
}

func TestGateway_GeneratorUnavailable(t *testing.T) {
	genErr := errors.New("text generation is not configured: set STOCKSENSE_OPENAI_API_KEY")
	gw := newGateway(t, &stubGenerator{err: genErr}, gateway.NewStatementParser())

	env, out := gw.Answer(context.Background(), "anything")

	if env.Error == "" || !strings.Contains(env.Error, "not configured") {
		t.Errorf("expected configuration error, got %q", env.Error)
	}
	if env.SQLQuery != "" {
		t.Errorf("no candidate should be attached, got %q", env.SQLQuery)
	}
	if len(env.Results) != 0 {
		t.Errorf("expected empty results")
	}
	if out.Generated || out.Executed {
		t.Errorf("no stage after generation should run: %+v", out)
	}
}

func TestGateway_ExecutionError(t *testing.T) {
	// Allowed by the classifier, but references a missing table.
	gw := newGateway(t, &stubGenerator{sql: "SELECT x FROM missing_table"}, gateway.NewStatementParser())

	env, out := gw.Answer(context.Background(), "query a ghost")

	if env.Error == "" || !strings.Contains(env.Error, "execution failed") {
		t.Errorf("expected execution error, got %q", env.Error)
	}
	if env.SQLQuery == "" {
		t.Error("envelope must carry the candidate text")
	}
	if !out.Verdict.Allowed || out.Executed {
		t.Errorf("outcome = %+v", out)
	}
}

func TestGateway_EmptyResultSetIsNotAnError(t *testing.T) {
	gw := newGateway(t, &stubGenerator{sql: "SELECT product_name FROM products WHERE product_id = 999"}, gateway.NewStatementParser())

	env, _ := gw.Answer(context.Background(), "missing product")

	if env.Error != "" {
		t.Fatalf("unexpected error: %s", env.Error)
	}
	if env.Results == nil || len(env.Results) != 0 {
		t.Errorf("expected empty non-nil results, got %v", env.Results)
	}
}
