package analytics

import "testing"

func TestDecide(t *testing.T) {
	tests := []struct {
		name         string
		snap         productSnapshot
		wantStrategy string
	}{
		{
			name: "low value high storage cost liquidates",
			snap: productSnapshot{
				PurchasePrice:     1.00,
				SellingPrice:      2.00,
				Quantity:          10,
				StorageCostPerDay: 0.10, // $3/month against $10 of stock
				SalesLast30Days:   2,
			},
			wantStrategy: "Liquidate",
		},
		{
			name: "stagnant high margin gets discounted",
			snap: productSnapshot{
				PurchasePrice:     10.00,
				SellingPrice:      25.00, // 60% margin
				Quantity:          50,
				StorageCostPerDay: 0.05,
				SalesLast30Days:   0,
			},
			wantStrategy: "Aggressive Discount (25%)",
		},
		{
			name: "slow low margin gets bundled",
			snap: productSnapshot{
				PurchasePrice:     9.00,
				SellingPrice:      10.00, // 10% margin
				Quantity:          30,
				StorageCostPerDay: 0.02,
				SalesLast30Days:   3,
			},
			wantStrategy: "Bundle with Bestseller",
		},
		{
			name: "healthy product is monitored",
			snap: productSnapshot{
				PurchasePrice:     10.00,
				SellingPrice:      15.00, // 33% margin
				Quantity:          100,
				StorageCostPerDay: 0.05,
				SalesLast30Days:   20,
			},
			wantStrategy: "Monitor",
		},
		{
			name: "liquidation outranks discount",
			snap: productSnapshot{
				PurchasePrice:     0.50,
				SellingPrice:      5.00, // 90% margin, but worthless stock
				Quantity:          4,
				StorageCostPerDay: 0.50,
				SalesLast30Days:   0,
			},
			wantStrategy: "Liquidate",
		},
		{
			name: "zero selling price cannot divide",
			snap: productSnapshot{
				PurchasePrice:     5.00,
				SellingPrice:      0,
				Quantity:          100,
				StorageCostPerDay: 0.01,
				SalesLast30Days:   0,
			},
			wantStrategy: "Bundle with Bestseller",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decide(tt.snap)
			if rec.Strategy != tt.wantStrategy {
				t.Errorf("decide() strategy = %q, want %q", rec.Strategy, tt.wantStrategy)
			}
			if rec.Details == "" || rec.ExpectedOutcome == "" {
				t.Error("details and expected outcome must be populated")
			}
		})
	}
}
