package models

import (
	"fmt"

	"bitbucket.org/distextil/telas_backend/utils"
	"github.com/shopspring/decimal"
)

// LineKey is the business identity of an aggregate stock line. Lines are
// not individually addressable; they are found by scanning documents and
// matching keys.
type LineKey struct {
	PurchaseOrder string    `json:"purchase_order"`
	Fabric        string    `json:"fabric"`
	Color         string    `json:"color"`
	Location      Warehouse `json:"location,omitempty"`
}

func (k LineKey) String() string {
	return fmt.Sprintf("oc=%s fabric=%s color=%s location=%s", k.PurchaseOrder, k.Fabric, k.Color, k.Location)
}

// Matches decides whether two records denote the same stock line. Source
// documents are hand- and script-populated and inconsistently cased and
// quoted, so every field is normalized before comparison. Purchase order,
// fabric and color must all match. Location participates only when BOTH
// sides carry one; a blank location on either side short-circuits the
// check entirely. Callers rely on that looseness: a location-less query can
// match a stored line that has one, and vice versa. Tightening it would
// change which line a mutation lands on.
func (k LineKey) Matches(target LineKey) bool {
	if utils.NormalizeKeyField(k.PurchaseOrder) != utils.NormalizeKeyField(target.PurchaseOrder) {
		return false
	}
	if utils.NormalizeKeyField(k.Fabric) != utils.NormalizeKeyField(target.Fabric) {
		return false
	}
	if utils.NormalizeKeyField(k.Color) != utils.NormalizeKeyField(target.Color) {
		return false
	}
	candidateLoc := utils.NormalizeKeyField(string(k.Location))
	targetLoc := utils.NormalizeKeyField(string(target.Location))
	if candidateLoc == "" || targetLoc == "" {
		return true
	}
	return candidateLoc == targetLoc
}

// InventoryLine is one row of aggregate stock: quantity of a fabric/color
// at a location under a purchase order. Many lines for many different key
// combinations are serialized together as one JSON array per document.
type InventoryLine struct {
	PurchaseOrder    string          `json:"purchase_order"`
	Fabric           string          `json:"fabric"`
	Color            string          `json:"color"`
	Location         Warehouse       `json:"location,omitempty"`
	ImportFlag       ImportFlag      `json:"import_flag"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Quantity         decimal.Decimal `json:"quantity"`
	Total            decimal.Decimal `json:"total"`
	Units            string          `json:"units"`
	InvoiceReference string          `json:"invoice_reference,omitempty"`
}

func (l InventoryLine) Key() LineKey {
	return LineKey{
		PurchaseOrder: l.PurchaseOrder,
		Fabric:        l.Fabric,
		Color:         l.Color,
		Location:      l.Location,
	}
}

// RecomputeTotal derives total from unit cost and quantity. Total is never
// trusted from storage after a mutation; it is always recomputed so it
// cannot drift.
func (l *InventoryLine) RecomputeTotal() {
	l.Total = l.UnitCost.Mul(l.Quantity)
}

// Validate checks the fields every stored line must carry. Runs before any
// storage I/O.
func (l InventoryLine) Validate() error {
	if l.PurchaseOrder == "" {
		return &utils.ValidationError{Field: "purchase_order", Message: "required"}
	}
	if l.Fabric == "" {
		return &utils.ValidationError{Field: "fabric", Message: "required"}
	}
	if l.Color == "" {
		return &utils.ValidationError{Field: "color", Message: "required"}
	}
	if l.Quantity.IsNegative() {
		return &utils.ValidationError{Field: "quantity", Message: "must not be negative"}
	}
	if l.UnitCost.IsNegative() {
		return &utils.ValidationError{Field: "unit_cost", Message: "must not be negative"}
	}
	return nil
}
