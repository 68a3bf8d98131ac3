package generator

import "strings"

// promptTemplate instructs the model to emit exactly one SELECT over the
// approved schema. The instructions are advisory only; enforcement
// happens in the gateway classifier, never here.
const promptTemplate = `You are an expert PostgreSQL data analyst. Your task is to convert a natural language question into a syntactically correct PostgreSQL query.
You must adhere to the following rules:
1. Only use the tables and columns defined in the provided schema. Do not hallucinate columns or tables.
2. Generate only a single SQL SELECT statement.
3. NEVER generate any INSERT, UPDATE, DELETE, DROP, or any other data-modifying statements.
4. The final output should be ONLY the SQL query, with no explanations, comments, or markdown formatting.

Database Schema:
{{schema}}

Examples:

-- Question: Show me the top 5 most expensive products.
-- SQL: SELECT product_name, selling_price FROM products ORDER BY selling_price DESC LIMIT 5;

-- Question: How many toys do we have in stock?
-- SQL: SELECT SUM(i.quantity) FROM inventory_levels i JOIN products p ON i.product_id = p.product_id WHERE p.category = 'Toys';

-- Question: Which products had no sales in the last 90 days?
-- SQL: SELECT p.product_name, p.sku FROM products p WHERE p.product_id NOT IN (SELECT so.product_id FROM sales_orders so WHERE so.order_date >= NOW() - INTERVAL '90 days');

New Question:
-- Question: {{question}}
-- SQL:`

// BuildPrompt renders the generation prompt for one question.
func BuildPrompt(question, schemaDDL string) string {
	out := strings.ReplaceAll(promptTemplate, "{{schema}}", schemaDDL)
	return strings.ReplaceAll(out, "{{question}}", question)
}
