package workflow

import (
	"bitbucket.org/distextil/telas_backend/models"
	"github.com/shopspring/decimal"
)

const (
	OperationEdit           = "edit"
	OperationQuantityChange = "quantity_change"
	OperationConsolidate    = "consolidate"
	OperationCreate         = "create"
)

// EditResult reports a wholesale line replacement.
type EditResult struct {
	Success     bool     `json:"success"`
	Operation   string   `json:"operation"`
	DocumentKey string   `json:"document_key"`
	CacheHints  []string `json:"-"`
}

// QuantityResult reports a quantity delta applied to one line.
type QuantityResult struct {
	Success                  bool            `json:"success"`
	Operation                string          `json:"operation"`
	NewQuantity              decimal.Decimal `json:"new_quantity"`
	RemainingItemsInDocument int             `json:"remaining_items_in_document"`
	DocumentKey              string          `json:"document_key"`
	LineRemoved              bool            `json:"line_removed"`
	DocumentRemoved          bool            `json:"document_removed"`
	CacheHints               []string        `json:"-"`
}

// TransferLineResult reports an aggregate-quantity transfer. Operation is
// "consolidate" when the destination already held a matching line and the
// quantity was merged, "create" when a new line was appended.
type TransferLineResult struct {
	Success           bool     `json:"success"`
	Operation         string   `json:"operation"`
	SourceDocumentKey string   `json:"source_document_key"`
	DestinationDocKey string   `json:"destination_document_key"`
	CacheHints        []string `json:"-"`
}

// RollTransferResult reports a warehouse flip for a set of rolls.
type RollTransferResult struct {
	Success          bool     `json:"success"`
	TransferredCount int      `json:"transferred_count"`
	DocumentKey      string   `json:"document_key"`
	BackupKey        string   `json:"backup_key"`
	CacheHints       []string `json:"-"`
}

// ReturnFailure names one roll that could not be returned and why. The
// rest of the batch is unaffected.
type ReturnFailure struct {
	Roll  models.ReturnedRoll `json:"roll"`
	Error string              `json:"error"`
}

// ReturnOutcome partitions a multi-roll return into the rolls that were
// applied and the rolls that failed. It is never collapsed into a single
// error.
type ReturnOutcome struct {
	Successful []models.ReturnedRoll `json:"successful"`
	Failed     []ReturnFailure       `json:"failed"`
	CacheHints []string              `json:"-"`
}

// SaleResult reports a recorded sale.
type SaleResult struct {
	SaleDocumentKey string          `json:"sale_document_key"`
	SaleID          string          `json:"sale_id"`
	TotalRolls      int             `json:"total_rolls"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
	CacheHints      []string        `json:"-"`
}

// ReturnableSummary carries the aggregates computed alongside a
// returnable-rolls query.
type ReturnableSummary struct {
	TotalRolls             int             `json:"total_rolls"`
	TotalQuantity          decimal.Decimal `json:"total_quantity"`
	TotalValue             decimal.Decimal `json:"total_value"`
	DistinctPurchaseOrders int             `json:"distinct_purchase_orders"`
}

// ReturnableResult is the filtered, time-windowed view of sale history
// used to validate returns.
type ReturnableResult struct {
	Rolls                  []models.SoldRoll            `json:"rolls"`
	GroupedByPurchaseOrder map[string][]models.SoldRoll `json:"grouped_by_purchase_order"`
	Summary                ReturnableSummary            `json:"summary"`
}
