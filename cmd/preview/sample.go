package main

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shipprint/backend/internal/domain/shipping"
)

// sampleOrder is a fixed twelve item order that spans several pages and
// exercises title truncation and optional variant lines
func sampleOrder() *shipping.Order {
	placed := time.Date(2026, 2, 2, 14, 30, 0, 0, time.UTC)
	item := func(id string, qty int, title, variant string) shipping.LineItem {
		return shipping.LineItem{
			ID:           id,
			Title:        title,
			VariantTitle: variant,
			Quantity:     qty,
			TotalPrice:   decimal.Zero,
			Currency:     "USD",
		}
	}
	return &shipping.Order{
		ID:          "order_123abc456def",
		OrderNumber: "#1068",
		Status:      shipping.OrderStatusPaid,
		PlacedAt:    &placed,
		ToAddress: shipping.Address{
			Name:    "John Doe",
			Street1: "123 Market Street",
			Street2: "Apt 4B",
			City:    "San Francisco",
			State:   "CA",
			Zip:     "94103",
			Country: "US",
		},
		LineItems: []shipping.LineItem{
			item("item_1", 2, "Premium Adjustable Wrench Set with Ergonomic Grip - Professional Grade Tool Kit", "Size: Large"),
			item("item_2", 1, "Hammer", "16oz"),
			item("item_3", 5, "Screwdriver Set", ""),
			item("item_4", 1, "Ultra High Performance Industrial Grade Socket Set with Ratcheting Mechanism and Quick Release Feature", "Metric - 42 Pieces"),
			item("item_5", 3, "Pliers Set", "Needle Nose and Slip Joint"),
			item("item_6", 1, "Tape Measure", "25ft"),
			item("item_7", 2, "Level", "24 inch"),
			item("item_8", 4, "Utility Knife with Retractable Blade", ""),
			item("item_9", 1, "Cordless Drill Driver Kit with Battery and Charger", "20V Max"),
			item("item_10", 6, "Hex Key Set", "Metric and SAE"),
			item("item_11", 2, "Wire Strippers", ""),
			item("item_12", 1, "Tool Belt with Multiple Pockets and Pouches", ""),
		},
	}
}
