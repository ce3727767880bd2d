package workflow_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"bitbucket.org/distextil/telas_backend/docstore"
	"bitbucket.org/distextil/telas_backend/models"
	"bitbucket.org/distextil/telas_backend/workflow"
	"github.com/shopspring/decimal"
)

var saleTime = time.Date(2026, 8, 15, 12, 30, 0, 0, time.UTC)

func soldRoll(oc, fabric, color string, rollNumber int, qty, cost string) models.SoldRoll {
	return models.SoldRoll{
		PurchaseOrder: oc,
		FabricType:    fabric,
		Color:         color,
		Lot:           1,
		RollNumber:    rollNumber,
		Warehouse:     models.WarehouseCDMX,
		SoldQuantity:  decimal.RequireFromString(qty),
		Unit:          "kg",
		UnitCost:      decimal.RequireFromString(cost),
	}
}

func getRecords(t *testing.T, store docstore.Store, key string) []models.SaleRecord {
	t.Helper()
	data, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	var records []models.SaleRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("unmarshal %s: %v", key, err)
	}
	return records
}

func TestRecordSaleCreatesMonthDocumentWhenNoneExists(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	result, err := workflow.RecordSale(ctx, store, testLogger(), saleTime,
		[]models.SoldRoll{soldRoll("OC001", "Cotton", "Blue", 7, "25.5", "15.50")}, "vendedor1", "")
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	if !strings.HasPrefix(result.SaleDocumentKey, "sold-rolls/2026/08/") {
		t.Errorf("document key = %s, want the sale month's prefix", result.SaleDocumentKey)
	}
	if result.SaleID == "" {
		t.Error("sale id not assigned")
	}

	records := getRecords(t, store, result.SaleDocumentKey)
	if len(records) != 1 || len(records[0].Rolls) != 1 {
		t.Fatalf("stored records = %+v", records)
	}
	stamped := records[0].Rolls[0]
	if !stamped.AvailableForReturn {
		t.Error("sold roll not marked available for return")
	}
	if stamped.SaleID != result.SaleID || stamped.SoldBy != "vendedor1" {
		t.Errorf("roll not stamped with sale metadata: %+v", stamped)
	}
	if !stamped.SoldDate.Equal(saleTime) {
		t.Errorf("sold date = %s, want %s", stamped.SoldDate, saleTime)
	}
}

func TestRecordSaleAppendsToMostRecentlyModifiedDocument(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	prefix := testPartition.SoldRollsPrefix()
	oldKey := prefix + "history-a.json"
	newKey := prefix + "history-b.json"
	putJSON(t, store, oldKey, []models.SaleRecord{{SaleID: "old"}})
	putJSON(t, store, newKey, []models.SaleRecord{{SaleID: "recent"}})
	store.SetUpdated(oldKey, saleTime.Add(-48*time.Hour))
	store.SetUpdated(newKey, saleTime.Add(-1*time.Hour))

	result, err := workflow.RecordSale(ctx, store, testLogger(), saleTime,
		[]models.SoldRoll{soldRoll("OC002", "Linen", "Red", 3, "10", "20.00")}, "vendedor2", "nota")
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	if result.SaleDocumentKey != newKey {
		t.Fatalf("appended to %s, want %s", result.SaleDocumentKey, newKey)
	}

	records := getRecords(t, store, newKey)
	if len(records) != 2 {
		t.Fatalf("record count = %d, want 2", len(records))
	}
	if records[1].Notes != "nota" || len(records[1].Rolls) != 1 {
		t.Errorf("appended record = %+v", records[1])
	}
	// The older document is left alone.
	if old := getRecords(t, store, oldKey); len(old) != 1 {
		t.Errorf("older history document grew to %d records", len(old))
	}
}

func TestRecordSaleRejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	bad := soldRoll("OC001", "Cotton", "Blue", 7, "0", "15.50")
	if _, err := workflow.RecordSale(ctx, store, testLogger(), saleTime, []models.SoldRoll{bad}, "vendedor1", ""); err == nil {
		t.Fatal("expected validation error for zero quantity")
	}
}

func seedHistory(t *testing.T, store docstore.Store) {
	t.Helper()
	stamp := func(roll models.SoldRoll, daysAgo int, returnable bool) models.SoldRoll {
		roll.SoldDate = saleTime.AddDate(0, 0, -daysAgo)
		roll.AvailableForReturn = returnable
		return roll
	}
	putJSON(t, store, testPartition.SoldRollsPrefix()+"history-aug.json", []models.SaleRecord{
		{SaleID: "s1", Rolls: []models.SoldRoll{
			stamp(soldRoll("OC001", "Cotton", "Blue", 7, "25.5", "15.50"), 2, true),
			stamp(soldRoll("OC002", "Linen", "Red", 3, "10", "20.00"), 5, false),
		}},
	})
	july := workflow.Partition{Year: 2026, Month: time.July}
	putJSON(t, store, july.SoldRollsPrefix()+"history-jul.json", []models.SaleRecord{
		{SaleID: "s2", Rolls: []models.SoldRoll{
			stamp(soldRoll("OC001", "Cotton", "Green", 9, "12", "14.00"), 30, true),
			stamp(soldRoll("OC003", "Silk", "White", 1, "8", "40.00"), 200, true),
		}},
	})
}

func TestQueryReturnableFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	seedHistory(t, store)

	result, err := workflow.QueryReturnable(ctx, store, testLogger(), saleTime, workflow.ReturnableFilters{
		PurchaseOrder: "oc001",
	})
	if err != nil {
		t.Fatalf("QueryReturnable: %v", err)
	}
	if len(result.Rolls) != 2 {
		t.Fatalf("matched %d rolls, want 2: %+v", len(result.Rolls), result.Rolls)
	}
	// Most recent sale first.
	if result.Rolls[0].RollNumber != 7 || result.Rolls[1].RollNumber != 9 {
		t.Errorf("sort order = [%d %d], want [7 9]", result.Rolls[0].RollNumber, result.Rolls[1].RollNumber)
	}
	if got := len(result.GroupedByPurchaseOrder["OC001"]); got != 2 {
		t.Errorf("grouped OC001 count = %d, want 2", got)
	}
}

func TestQueryReturnableDayWindowExcludesOldSales(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	seedHistory(t, store)

	// The Silk sale is 200 days old; the default window is 90.
	result, err := workflow.QueryReturnable(ctx, store, testLogger(), saleTime, workflow.ReturnableFilters{})
	if err != nil {
		t.Fatalf("QueryReturnable: %v", err)
	}
	for _, roll := range result.Rolls {
		if roll.FabricType == "Silk" {
			t.Errorf("sale outside the day window was returned: %+v", roll)
		}
	}
	if len(result.Rolls) != 3 {
		t.Errorf("matched %d rolls, want 3", len(result.Rolls))
	}
}

func TestQueryReturnableOnlyReturnableFlag(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	seedHistory(t, store)

	result, err := workflow.QueryReturnable(ctx, store, testLogger(), saleTime, workflow.ReturnableFilters{
		OnlyReturnable: true,
	})
	if err != nil {
		t.Fatalf("QueryReturnable: %v", err)
	}
	for _, roll := range result.Rolls {
		if !roll.AvailableForReturn {
			t.Errorf("non-returnable roll leaked through the filter: %+v", roll)
		}
	}
	if len(result.Rolls) != 2 {
		t.Errorf("matched %d rolls, want 2", len(result.Rolls))
	}
}

func TestQueryReturnableSummaryComputedBeforeTruncation(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	seedHistory(t, store)

	result, err := workflow.QueryReturnable(ctx, store, testLogger(), saleTime, workflow.ReturnableFilters{
		Limit: 1,
	})
	if err != nil {
		t.Fatalf("QueryReturnable: %v", err)
	}
	if len(result.Rolls) != 1 {
		t.Fatalf("truncated list length = %d, want 1", len(result.Rolls))
	}
	// Aggregates cover the full filtered set, not the truncated page.
	if result.Summary.TotalRolls != 3 {
		t.Errorf("summary total rolls = %d, want 3", result.Summary.TotalRolls)
	}
	if !result.Summary.TotalQuantity.Equal(dec(t, "47.5")) {
		t.Errorf("summary quantity = %s, want 47.5", result.Summary.TotalQuantity)
	}
	// 25.5*15.50 + 10*20 + 12*14 = 763.25
	if !result.Summary.TotalValue.Equal(dec(t, "763.25")) {
		t.Errorf("summary value = %s, want 763.25", result.Summary.TotalValue)
	}
	if result.Summary.DistinctPurchaseOrders != 2 {
		t.Errorf("distinct OCs = %d, want 2", result.Summary.DistinctPurchaseOrders)
	}
}
