package workflow

import (
	"context"
	"encoding/json"

	"bitbucket.org/distextil/telas_backend/config"
	"bitbucket.org/distextil/telas_backend/docstore"
	"bitbucket.org/distextil/telas_backend/models"
	"bitbucket.org/distextil/telas_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// lineDocument is one month-folder document holding many inventory lines
// for many different key combinations.
type lineDocument struct {
	key   string
	lines []models.InventoryLine
}

// loadLineDocuments fetches and parses every inventory document in the
// partition. Every mutation starts with this full scan; the month window
// is what bounds its cost.
func loadLineDocuments(ctx context.Context, store docstore.Store, partition Partition) ([]*lineDocument, error) {
	infos, err := store.List(ctx, partition.InventoryPrefix())
	if err != nil {
		return nil, err
	}
	docs := make([]*lineDocument, 0, len(infos))
	for _, info := range infos {
		data, err := store.Get(ctx, info.Key)
		if err != nil {
			return nil, err
		}
		var lines []models.InventoryLine
		if err := json.Unmarshal(data, &lines); err != nil {
			return nil, err
		}
		docs = append(docs, &lineDocument{key: info.Key, lines: lines})
	}
	return docs, nil
}

// findLine locates the first line matching the key. Returns document and
// line indexes, or ok=false.
func findLine(docs []*lineDocument, key models.LineKey) (int, int, bool) {
	for di, doc := range docs {
		for li := range doc.lines {
			if doc.lines[li].Key().Matches(key) {
				return di, li, true
			}
		}
	}
	return 0, 0, false
}

func validateLineKey(key models.LineKey) error {
	if key.PurchaseOrder == "" {
		return &utils.ValidationError{Field: "purchase_order", Message: "required"}
	}
	if key.Fabric == "" {
		return &utils.ValidationError{Field: "fabric", Message: "required"}
	}
	if key.Color == "" {
		return &utils.ValidationError{Field: "color", Message: "required"}
	}
	return nil
}

// EditLine replaces the line matching oldKey wholesale with newLine and
// recomputes its total. Edits never upsert: a missing key fails with the
// full search key and the number of files scanned.
func EditLine(ctx context.Context, store docstore.Store, logger *logrus.Logger, partition Partition, oldKey models.LineKey, newLine models.InventoryLine) (*EditResult, error) {
	if err := validateLineKey(oldKey); err != nil {
		return nil, err
	}
	if err := newLine.Validate(); err != nil {
		return nil, err
	}

	docs, err := loadLineDocuments(ctx, store, partition)
	if err != nil {
		config.LogError(logger, "inventoryLineWorkflow.go", "EditLine", "loadLineDocuments", partition.String(), err)
		return nil, err
	}

	di, li, ok := findLine(docs, oldKey)
	if !ok {
		return nil, &utils.NotFoundError{Resource: "inventory line", SearchKey: oldKey.String(), FilesScanned: len(docs)}
	}

	newLine.RecomputeTotal()
	docs[di].lines[li] = newLine

	plan := &Plan{}
	if err := plan.Put(docs[di].key, docs[di].lines); err != nil {
		return nil, err
	}
	if err := Commit(ctx, store, plan); err != nil {
		config.LogError(logger, "inventoryLineWorkflow.go", "EditLine", "Commit", docs[di].key, err)
		return nil, err
	}

	return &EditResult{
		Success:     true,
		Operation:   OperationEdit,
		DocumentKey: docs[di].key,
		CacheHints:  []string{partition.InventoryCacheHint()},
	}, nil
}

// ChangeQuantity deducts delta from the matching line and recomputes its
// total. A positive delta is a sale; callers reuse the same primitive with
// a negative delta for a stock addition. A deduction larger than the
// current quantity is rejected; a deduction that lands exactly on zero
// removes the line, and a document left with no lines is deleted.
func ChangeQuantity(ctx context.Context, store docstore.Store, logger *logrus.Logger, partition Partition, key models.LineKey, delta decimal.Decimal) (*QuantityResult, error) {
	if err := validateLineKey(key); err != nil {
		return nil, err
	}
	if delta.IsZero() {
		return nil, &utils.ValidationError{Field: "delta", Message: "must not be zero"}
	}

	docs, err := loadLineDocuments(ctx, store, partition)
	if err != nil {
		config.LogError(logger, "inventoryLineWorkflow.go", "ChangeQuantity", "loadLineDocuments", partition.String(), err)
		return nil, err
	}

	di, li, ok := findLine(docs, key)
	if !ok {
		return nil, &utils.NotFoundError{Resource: "inventory line", SearchKey: key.String(), FilesScanned: len(docs)}
	}

	doc := docs[di]
	line := &doc.lines[li]
	newQty := line.Quantity.Sub(delta)
	if newQty.IsNegative() {
		return nil, &utils.InsufficientQuantityError{
			SearchKey: key.String(),
			Available: line.Quantity.String(),
			Requested: delta.String(),
		}
	}

	result := &QuantityResult{
		Success:     true,
		Operation:   OperationQuantityChange,
		NewQuantity: newQty,
		DocumentKey: doc.key,
		CacheHints:  []string{partition.InventoryCacheHint()},
	}

	plan := &Plan{}
	if newQty.IsZero() {
		doc.lines = append(doc.lines[:li], doc.lines[li+1:]...)
		result.LineRemoved = true
		if len(doc.lines) == 0 {
			plan.Remove(doc.key)
			result.DocumentRemoved = true
		} else {
			if err := plan.Put(doc.key, doc.lines); err != nil {
				return nil, err
			}
		}
	} else {
		line.Quantity = newQty
		line.RecomputeTotal()
		if err := plan.Put(doc.key, doc.lines); err != nil {
			return nil, err
		}
	}
	result.RemainingItemsInDocument = len(doc.lines)

	if err := Commit(ctx, store, plan); err != nil {
		config.LogError(logger, "inventoryLineWorkflow.go", "ChangeQuantity", "Commit", doc.key, err)
		return nil, err
	}
	return result, nil
}

// TransferLine deducts amount from the source line and lands it at the
// destination location. The destination's document set is scanned for a
// matching line first: if one exists the quantities are merged and the
// EXISTING line's unit cost prevails (an errant incoming cost must not
// silently reprice already-valued stock); otherwise a new line is created
// with the incoming cost. The two writes are planned together and applied
// sequentially with no rollback in between.
func TransferLine(ctx context.Context, store docstore.Store, logger *logrus.Logger, partition Partition, key models.LineKey, amount decimal.Decimal, destination models.Warehouse) (*TransferLineResult, error) {
	if err := validateLineKey(key); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, &utils.ValidationError{Field: "amount", Message: "must be positive"}
	}
	if !destination.IsValid() {
		return nil, &utils.ValidationError{Field: "destination", Message: "unknown warehouse"}
	}

	docs, err := loadLineDocuments(ctx, store, partition)
	if err != nil {
		config.LogError(logger, "inventoryLineWorkflow.go", "TransferLine", "loadLineDocuments", partition.String(), err)
		return nil, err
	}

	srcDi, srcLi, ok := findLine(docs, key)
	if !ok {
		return nil, &utils.NotFoundError{Resource: "inventory line", SearchKey: key.String(), FilesScanned: len(docs)}
	}

	srcDoc := docs[srcDi]
	source := srcDoc.lines[srcLi]
	if amount.GreaterThan(source.Quantity) {
		return nil, &utils.InsufficientQuantityError{
			SearchKey: key.String(),
			Available: source.Quantity.String(),
			Requested: amount.String(),
		}
	}

	destKey := models.LineKey{
		PurchaseOrder: key.PurchaseOrder,
		Fabric:        key.Fabric,
		Color:         key.Color,
		Location:      destination,
	}

	// Consolidation policy: scan the destination's document set, skipping
	// the source line itself (a blank source location would otherwise
	// wildcard-match and merge the line into itself).
	destDi, destLi, destFound := findLineExcept(docs, destKey, srcDi, srcLi)

	result := &TransferLineResult{
		Success:           true,
		SourceDocumentKey: srcDoc.key,
		CacheHints:        []string{partition.InventoryCacheHint()},
	}

	if destFound {
		dest := &docs[destDi].lines[destLi]
		dest.Quantity = dest.Quantity.Add(amount)
		dest.RecomputeTotal()
		result.Operation = OperationConsolidate
		result.DestinationDocKey = docs[destDi].key
	}

	// Deduct from the source after the destination was located, so the
	// indexes above stay valid.
	newQty := source.Quantity.Sub(amount)
	sourceRemoved := false
	if newQty.IsZero() {
		srcDoc.lines = append(srcDoc.lines[:srcLi], srcDoc.lines[srcLi+1:]...)
		sourceRemoved = true
	} else {
		srcDoc.lines[srcLi].Quantity = newQty
		srcDoc.lines[srcLi].RecomputeTotal()
	}

	if !destFound {
		created := source
		created.Location = destination
		created.Quantity = amount
		created.RecomputeTotal()
		srcDoc.lines = append(srcDoc.lines, created)
		result.Operation = OperationCreate
		result.DestinationDocKey = srcDoc.key
	}

	plan := &Plan{}
	if len(srcDoc.lines) == 0 && sourceRemoved {
		plan.Remove(srcDoc.key)
	} else {
		if err := plan.Put(srcDoc.key, srcDoc.lines); err != nil {
			return nil, err
		}
	}
	if destFound && destDi != srcDi {
		if err := plan.Put(docs[destDi].key, docs[destDi].lines); err != nil {
			return nil, err
		}
	}
	if err := Commit(ctx, store, plan); err != nil {
		config.LogError(logger, "inventoryLineWorkflow.go", "TransferLine", "Commit", srcDoc.key, err)
		return nil, err
	}
	return result, nil
}

// findLineExcept is findLine with one (document, line) position excluded
// from the scan.
func findLineExcept(docs []*lineDocument, key models.LineKey, exceptDi, exceptLi int) (int, int, bool) {
	for di, doc := range docs {
		for li := range doc.lines {
			if di == exceptDi && li == exceptLi {
				continue
			}
			if doc.lines[li].Key().Matches(key) {
				return di, li, true
			}
		}
	}
	return 0, 0, false
}
