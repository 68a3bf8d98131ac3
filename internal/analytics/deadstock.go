package analytics

import (
	"context"
	"fmt"
	"time"
)

// DeadStockItem is one product considered dead stock.
type DeadStockItem struct {
	ProductID                   int64      `json:"product_id"`
	SKU                         string     `json:"sku"`
	ProductName                 string     `json:"product_name"`
	Category                    string     `json:"category"`
	PurchasePrice               float64    `json:"purchase_price"`
	SellingPrice                float64    `json:"selling_price"`
	Quantity                    int64      `json:"quantity"`
	TotalValue                  float64    `json:"total_value"`
	LastSaleDate                *time.Time `json:"last_sale_date"`
	DaysSinceLastSale           *int       `json:"days_since_last_sale"`
	EstimatedMonthlyStorageCost float64    `json:"estimated_monthly_storage_cost"`
}

// FinancialSummary aggregates the report's totals.
type FinancialSummary struct {
	TotalDeadStockValue              float64 `json:"total_dead_stock_value"`
	TotalItems                       int     `json:"total_items"`
	EstimatedTotalMonthlyStorageCost float64 `json:"estimated_total_monthly_storage_cost"`
	PotentialProfitLoss              float64 `json:"potential_profit_loss"`
}

// DeadStockReport is the full report: summary plus items ordered by
// descending tied-up value.
type DeadStockReport struct {
	Summary FinancialSummary `json:"summary"`
	Items   []DeadStockItem  `json:"items"`
}

// DeadStock returns products with at least minQuantity on hand whose
// last sale is older than the staleness window (or that never sold).
// The window is interpolated as a validated integer because Postgres
// does not allow a bind parameter inside an INTERVAL literal.
func (s *Store) DeadStock(ctx context.Context, daysSinceLastSale, minQuantity int) (*DeadStockReport, error) {
	if daysSinceLastSale <= 0 || daysSinceLastSale > 3650 {
		return nil, fmt.Errorf("DeadStock: days_since_last_sale out of range: %d", daysSinceLastSale)
	}

	query := fmt.Sprintf(`
		WITH last_sale AS (
			SELECT product_id, MAX(order_date) AS last_sale_date
			FROM sales_orders
			GROUP BY product_id
		)
		SELECT
			p.product_id,
			p.sku,
			p.product_name,
			COALESCE(p.category, ''),
			p.purchase_price,
			p.selling_price,
			i.quantity,
			ls.last_sale_date,
			(i.quantity * p.purchase_price) AS total_value,
			(i.storage_cost_per_day * 30) AS estimated_monthly_storage_cost
		FROM products p
		JOIN inventory_levels i ON p.product_id = i.product_id
		LEFT JOIN last_sale ls ON p.product_id = ls.product_id
		WHERE
			i.quantity >= $1 AND
			(ls.last_sale_date IS NULL OR ls.last_sale_date < NOW() - INTERVAL '%d days')
		ORDER BY total_value DESC`, daysSinceLastSale)

	rows, err := s.db.QueryContext(ctx, query, minQuantity)
	if err != nil {
		return nil, fmt.Errorf("DeadStock: %w", err)
	}
	defer rows.Close()

	report := &DeadStockReport{Items: []DeadStockItem{}}
	now := time.Now().UTC()

	for rows.Next() {
		var item DeadStockItem
		if err := rows.Scan(
			&item.ProductID, &item.SKU, &item.ProductName, &item.Category,
			&item.PurchasePrice, &item.SellingPrice, &item.Quantity,
			&item.LastSaleDate, &item.TotalValue, &item.EstimatedMonthlyStorageCost,
		); err != nil {
			return nil, fmt.Errorf("DeadStock: %w", err)
		}
		if item.LastSaleDate != nil {
			days := int(now.Sub(*item.LastSaleDate).Hours() / 24)
			item.DaysSinceLastSale = &days
		}

		report.Items = append(report.Items, item)
		report.Summary.TotalDeadStockValue += item.TotalValue
		report.Summary.EstimatedTotalMonthlyStorageCost += item.EstimatedMonthlyStorageCost
		report.Summary.PotentialProfitLoss += (item.SellingPrice - item.PurchasePrice) * float64(item.Quantity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("DeadStock: %w", err)
	}

	report.Summary.TotalItems = len(report.Items)
	return report, nil
}
