package workflow_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"bitbucket.org/distextil/telas_backend/docstore"
	"bitbucket.org/distextil/telas_backend/models"
	"bitbucket.org/distextil/telas_backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var testPartition = workflow.Partition{Year: 2026, Month: time.August}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func putJSON(t *testing.T, store docstore.Store, key string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", key, err)
	}
	if err := store.Put(context.Background(), key, data); err != nil {
		t.Fatalf("put %s: %v", key, err)
	}
}

func getLines(t *testing.T, store docstore.Store, key string) []models.InventoryLine {
	t.Helper()
	data, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	var lines []models.InventoryLine
	if err := json.Unmarshal(data, &lines); err != nil {
		t.Fatalf("unmarshal %s: %v", key, err)
	}
	return lines
}

func getGroups(t *testing.T, store docstore.Store, key string) []models.RollGroup {
	t.Helper()
	data, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	var groups []models.RollGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		t.Fatalf("unmarshal %s: %v", key, err)
	}
	return groups
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func makeLine(oc, fabric, color string, location models.Warehouse, cost, qty string) models.InventoryLine {
	line := models.InventoryLine{
		PurchaseOrder: oc,
		Fabric:        fabric,
		Color:         color,
		Location:      location,
		UnitCost:      decimal.RequireFromString(cost),
		Quantity:      decimal.RequireFromString(qty),
		Units:         "kg",
	}
	line.RecomputeTotal()
	return line
}

// findStoredLine scans every inventory document in the test partition for
// the first line matching the key.
func findStoredLine(t *testing.T, store docstore.Store, key models.LineKey) (models.InventoryLine, bool) {
	t.Helper()
	infos, err := store.List(context.Background(), testPartition.InventoryPrefix())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, info := range infos {
		for _, line := range getLines(t, store, info.Key) {
			if line.Key().Matches(key) {
				return line, true
			}
		}
	}
	return models.InventoryLine{}, false
}
