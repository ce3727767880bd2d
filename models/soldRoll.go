package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SoldRoll is an immutable historical record of a roll sale. Returns never
// edit history: a return mutates inventory and the roll catalog but leaves
// the sold record untouched. AvailableForReturn is set true at sale time
// and nothing in the current flow ever flips it to false, so this flag
// alone does not prevent a duplicate return of the same sale.
type SoldRoll struct {
	PurchaseOrder      string          `json:"purchase_order"`
	FabricType         string          `json:"fabric_type"`
	Color              string          `json:"color"`
	Lot                int             `json:"lot"`
	RollNumber         int             `json:"roll_number"`
	Warehouse          Warehouse       `json:"warehouse"`
	SoldQuantity       decimal.Decimal `json:"sold_quantity"`
	Unit               string          `json:"unit"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
	SoldDate           time.Time       `json:"sold_date"`
	SoldBy             string          `json:"sold_by"`
	AvailableForReturn bool            `json:"available_for_return"`
	SaleID             string          `json:"sale_id"`
}

// Value is the monetary worth of the sale entry.
func (s SoldRoll) Value() decimal.Decimal {
	return s.UnitCost.Mul(s.SoldQuantity)
}

// SaleRecord groups the rolls sold in one transaction. History documents
// hold many sale records appended across a calendar month.
type SaleRecord struct {
	SaleID   string     `json:"sale_id"`
	SoldBy   string     `json:"sold_by"`
	Notes    string     `json:"notes,omitempty"`
	SoldDate time.Time  `json:"sold_date"`
	Rolls    []SoldRoll `json:"rolls"`
}

// ReturnedRoll is the caller's description of one roll coming back. Each
// return is processed independently; one failing roll does not abort the
// rest of the batch.
type ReturnedRoll struct {
	PurchaseOrder string          `json:"purchase_order" binding:"required"`
	FabricType    string          `json:"fabric_type" binding:"required"`
	Color         string          `json:"color" binding:"required"`
	Lot           int             `json:"lot"`
	RollNumber    int             `json:"roll_number" binding:"required"`
	Warehouse     Warehouse       `json:"warehouse" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	Unit          string          `json:"unit"`
}
