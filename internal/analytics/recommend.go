package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrProductNotFound reports that the requested product has no row in
// products joined with inventory_levels.
var ErrProductNotFound = errors.New("product not found")

// Recommendation is the fixed-strategy advice for one product.
type Recommendation struct {
	Strategy        string `json:"strategy"`
	Details         string `json:"details"`
	ExpectedOutcome string `json:"expected_outcome"`
}

// productSnapshot holds the per-product facts the decision tree needs.
type productSnapshot struct {
	PurchasePrice     float64
	SellingPrice      float64
	Quantity          int64
	StorageCostPerDay float64
	LastSaleDate      *time.Time
	SalesLast30Days   int64
}

// Recommend gathers a product's sales and inventory facts and applies
// the expert decision tree.
func (s *Store) Recommend(ctx context.Context, productID int64) (*Recommendation, error) {
	var snap productSnapshot
	err := s.db.QueryRowContext(ctx, `
		SELECT
			p.purchase_price,
			p.selling_price,
			i.quantity,
			i.storage_cost_per_day,
			(SELECT MAX(order_date) FROM sales_orders WHERE product_id = p.product_id) AS last_sale_date,
			(SELECT COUNT(*) FROM sales_orders WHERE product_id = p.product_id
			   AND order_date > NOW() - INTERVAL '30 days') AS sales_last_30_days
		FROM products p
		JOIN inventory_levels i ON p.product_id = i.product_id
		WHERE p.product_id = $1`, productID,
	).Scan(&snap.PurchasePrice, &snap.SellingPrice, &snap.Quantity,
		&snap.StorageCostPerDay, &snap.LastSaleDate, &snap.SalesLast30Days)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Recommend: %w", err)
	}

	rec := decide(snap)
	return &rec, nil
}

// decide applies the expert rules in priority order. Pure function,
// tested without a database.
func decide(d productSnapshot) Recommendation {
	var margin float64
	if d.SellingPrice > 0 {
		margin = (d.SellingPrice - d.PurchasePrice) / d.SellingPrice
	}
	monthlyStorageCost := d.StorageCostPerDay * 30
	totalValue := d.PurchasePrice * float64(d.Quantity)

	if totalValue < 20 && monthlyStorageCost > totalValue*0.1 {
		return Recommendation{
			Strategy: "Liquidate",
			Details: fmt.Sprintf(
				"This low-value item (total value $%.2f) has a high relative storage cost ($%.2f/month). It's more cost-effective to clear the stock quickly.",
				totalValue, monthlyStorageCost),
			ExpectedOutcome: "Free up cash flow and eliminate ongoing storage costs.",
		}
	}

	if d.SalesLast30Days == 0 && margin > 0.40 {
		return Recommendation{
			Strategy: "Aggressive Discount (25%)",
			Details: fmt.Sprintf(
				"The product has a high profit margin (%.0f%%) but has not sold recently. A 25%% discount could stimulate demand while remaining profitable.",
				margin*100),
			ExpectedOutcome: "Generate sales and convert stagnant inventory into revenue.",
		}
	}

	if d.SalesLast30Days < 5 && margin < 0.20 {
		return Recommendation{
			Strategy: "Bundle with Bestseller",
			Details: "This is a slow-moving, low-margin item. Bundling it with a popular product can increase its perceived value and help clear inventory without a direct discount.",
			ExpectedOutcome: "Increase sales volume of the slow-moving item and potentially boost overall order value.",
		}
	}

	return Recommendation{
		Strategy:        "Monitor",
		Details:         "This product does not currently meet the criteria for urgent action. Continue to monitor its sales velocity and inventory levels.",
		ExpectedOutcome: "Maintain current strategy.",
	}
}
