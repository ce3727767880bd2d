package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"bitbucket.org/distextil/telas_backend/config"
	"bitbucket.org/distextil/telas_backend/docstore"
	"bitbucket.org/distextil/telas_backend/models"
	"bitbucket.org/distextil/telas_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	// QueryReturnable bounds. The scan-and-filter has no index; the day
	// window is what keeps the document count acceptable.
	MaxReturnableWindowDays = 365
	MaxReturnableLimit      = 1000

	defaultReturnableWindowDays = 90
)

// RecordSale appends an immutable sale record to the current month's
// history document. Every roll is stamped with the sale time, the seller,
// availableForReturn=true and a fresh sale id. The month's
// most-recently-modified history document receives the append; if the
// month has none yet, a new document is created.
func RecordSale(ctx context.Context, store docstore.Store, logger *logrus.Logger, now time.Time, rolls []models.SoldRoll, soldBy string, notes string) (*SaleResult, error) {
	if len(rolls) == 0 {
		return nil, &utils.ValidationError{Field: "rolls", Message: "required"}
	}
	if soldBy == "" {
		return nil, &utils.ValidationError{Field: "sold_by", Message: "required"}
	}
	for _, roll := range rolls {
		if roll.FabricType == "" {
			return nil, &utils.ValidationError{Field: "fabric_type", Message: "required"}
		}
		if roll.Color == "" {
			return nil, &utils.ValidationError{Field: "color", Message: "required"}
		}
		if !roll.SoldQuantity.IsPositive() {
			return nil, &utils.ValidationError{Field: "sold_quantity", Message: "must be positive"}
		}
	}

	partition := PartitionFor(now)
	saleID := uuid.NewString()

	record := models.SaleRecord{
		SaleID:   saleID,
		SoldBy:   soldBy,
		Notes:    notes,
		SoldDate: now,
		Rolls:    make([]models.SoldRoll, len(rolls)),
	}
	totalQty := decimal.Zero
	for i, roll := range rolls {
		roll.SoldDate = now
		roll.SoldBy = soldBy
		roll.AvailableForReturn = true
		roll.SaleID = saleID
		record.Rolls[i] = roll
		totalQty = totalQty.Add(roll.SoldQuantity)
	}

	docKey, records, err := currentHistoryDocument(ctx, store, partition, now)
	if err != nil {
		config.LogError(logger, "soldRollsWorkflow.go", "RecordSale", "currentHistoryDocument", partition.String(), err)
		return nil, err
	}
	records = append(records, record)

	plan := &Plan{}
	if err := plan.Put(docKey, records); err != nil {
		return nil, err
	}
	if err := Commit(ctx, store, plan); err != nil {
		config.LogError(logger, "soldRollsWorkflow.go", "RecordSale", "Commit", docKey, err)
		return nil, err
	}

	return &SaleResult{
		SaleDocumentKey: docKey,
		SaleID:          saleID,
		TotalRolls:      len(rolls),
		TotalQuantity:   totalQty,
		CacheHints:      []string{partition.SoldRollsCacheHint()},
	}, nil
}

// currentHistoryDocument picks the month's most-recently-modified history
// document, or names a fresh one when the month has no document yet.
func currentHistoryDocument(ctx context.Context, store docstore.Store, partition Partition, now time.Time) (string, []models.SaleRecord, error) {
	infos, err := store.List(ctx, partition.SoldRollsPrefix())
	if err != nil {
		return "", nil, err
	}
	if len(infos) == 0 {
		key := fmt.Sprintf("%shistory-%s.json", partition.SoldRollsPrefix(), now.Format("20060102-150405"))
		return key, nil, nil
	}

	latest := infos[0]
	for _, info := range infos[1:] {
		if info.Updated.After(latest.Updated) {
			latest = info
		}
	}
	data, err := store.Get(ctx, latest.Key)
	if err != nil {
		return "", nil, err
	}
	var records []models.SaleRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return "", nil, err
	}
	return latest.Key, records, nil
}

// ReturnableFilters narrows the returnable-rolls view. The substring
// filters are case-insensitive; SinceDays and Limit are clamped to the
// documented bounds.
type ReturnableFilters struct {
	PurchaseOrder  string `json:"purchase_order" form:"oc"`
	Fabric         string `json:"fabric" form:"fabric"`
	Color          string `json:"color" form:"color"`
	SinceDays      int    `json:"since_days" form:"since_days"`
	OnlyReturnable bool   `json:"only_returnable" form:"only_returnable"`
	Limit          int    `json:"limit" form:"limit"`
}

// QueryReturnable lists sale history within the day window, flattens every
// roll entry across every sale record, applies the filters, sorts by sold
// date descending and truncates to the limit. The summary aggregates are
// computed once per query over the filtered set, before truncation.
func QueryReturnable(ctx context.Context, store docstore.Store, logger *logrus.Logger, now time.Time, filters ReturnableFilters) (*ReturnableResult, error) {
	sinceDays := filters.SinceDays
	if sinceDays <= 0 {
		sinceDays = defaultReturnableWindowDays
	}
	if sinceDays > MaxReturnableWindowDays {
		sinceDays = MaxReturnableWindowDays
	}
	limit := filters.Limit
	if limit <= 0 || limit > MaxReturnableLimit {
		limit = MaxReturnableLimit
	}

	cutoff := now.AddDate(0, 0, -sinceDays)

	var flattened []models.SoldRoll
	for partition := PartitionFor(cutoff); !partitionAfter(partition, PartitionFor(now)); partition = partition.AddMonths(1) {
		infos, err := store.List(ctx, partition.SoldRollsPrefix())
		if err != nil {
			config.LogError(logger, "soldRollsWorkflow.go", "QueryReturnable", "List", partition.String(), err)
			return nil, err
		}
		for _, info := range infos {
			data, err := store.Get(ctx, info.Key)
			if err != nil {
				return nil, err
			}
			var records []models.SaleRecord
			if err := json.Unmarshal(data, &records); err != nil {
				return nil, err
			}
			for _, record := range records {
				flattened = append(flattened, record.Rolls...)
			}
		}
	}

	filtered := flattened[:0:0]
	for _, roll := range flattened {
		if roll.SoldDate.Before(cutoff) {
			continue
		}
		if !matchesSubstring(roll.PurchaseOrder, filters.PurchaseOrder) {
			continue
		}
		if !matchesSubstring(roll.FabricType, filters.Fabric) {
			continue
		}
		if !matchesSubstring(roll.Color, filters.Color) {
			continue
		}
		if filters.OnlyReturnable && !roll.AvailableForReturn {
			continue
		}
		filtered = append(filtered, roll)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].SoldDate.After(filtered[j].SoldDate)
	})

	summary := ReturnableSummary{TotalRolls: len(filtered)}
	distinctOCs := map[string]struct{}{}
	totalQty := decimal.Zero
	totalValue := decimal.Zero
	for _, roll := range filtered {
		totalQty = totalQty.Add(roll.SoldQuantity)
		totalValue = totalValue.Add(roll.Value())
		distinctOCs[utils.NormalizeKeyField(roll.PurchaseOrder)] = struct{}{}
	}
	summary.TotalQuantity = totalQty
	summary.TotalValue = totalValue
	summary.DistinctPurchaseOrders = len(distinctOCs)

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	grouped := make(map[string][]models.SoldRoll)
	for _, roll := range filtered {
		grouped[roll.PurchaseOrder] = append(grouped[roll.PurchaseOrder], roll)
	}

	return &ReturnableResult{
		Rolls:                  filtered,
		GroupedByPurchaseOrder: grouped,
		Summary:                summary,
	}, nil
}

func matchesSubstring(value, filter string) bool {
	if strings.TrimSpace(filter) == "" {
		return true
	}
	return strings.Contains(utils.NormalizeKeyField(value), utils.NormalizeKeyField(filter))
}

func partitionAfter(a, b Partition) bool {
	if a.Year != b.Year {
		return a.Year > b.Year
	}
	return a.Month > b.Month
}
