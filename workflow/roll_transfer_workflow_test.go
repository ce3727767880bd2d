package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bitbucket.org/distextil/telas_backend/docstore"
	"bitbucket.org/distextil/telas_backend/models"
	"bitbucket.org/distextil/telas_backend/utils"
	"bitbucket.org/distextil/telas_backend/workflow"
	"github.com/shopspring/decimal"
)

func seedPackingList(t *testing.T, store docstore.Store) string {
	t.Helper()
	w := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	docKey := workflow.PackingListPrefix + "pl-2026-001.json"
	putJSON(t, store, docKey, []models.RollGroup{
		{
			FabricType: "Cotton",
			Color:      "Blue",
			Lot:        17,
			Rolls: []models.Roll{
				{RollNumber: 1, Warehouse: models.WarehouseCDMX, WeightKg: w("25.5")},
				{RollNumber: 2, Warehouse: models.WarehouseCDMX, WeightKg: w("24.0")},
				{RollNumber: 3, Warehouse: models.WarehouseMerida, WeightKg: w("26.1")},
			},
		},
		{
			FabricType: "Linen",
			Color:      "Red",
			Lot:        4,
			Rolls: []models.Roll{
				{RollNumber: 1, Warehouse: models.WarehouseCDMX, WeightKg: w("18.0")},
			},
		},
	})
	return docKey
}

func TestFindRollGroupNormalizesIdentity(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	docKey := seedPackingList(t, store)

	loc, err := workflow.FindRollGroup(ctx, store, ` "cotton" `, "BLUE", 17)
	if err != nil {
		t.Fatalf("FindRollGroup: %v", err)
	}
	if loc.DocumentKey != docKey {
		t.Errorf("document key = %s, want %s", loc.DocumentKey, docKey)
	}
	if loc.Group().Lot != 17 || len(loc.Group().Rolls) != 3 {
		t.Fatalf("wrong group located: %+v", loc.Group())
	}
}

func TestFindRollGroupNotFoundCarriesScanCount(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	seedPackingList(t, store)

	_, err := workflow.FindRollGroup(ctx, store, "Cotton", "Blue", 99)
	var nf *utils.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if nf.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", nf.FilesScanned)
	}
}

func TestTransferRollsFlipsExactlyTheRequestedRolls(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	docKey := seedPackingList(t, store)

	result, err := workflow.TransferRolls(ctx, store, testLogger(), time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC), "Cotton", "Blue", 17, []int{1, 2}, "", "")
	if err != nil {
		t.Fatalf("TransferRolls: %v", err)
	}
	if result.TransferredCount != 2 {
		t.Errorf("transferred %d rolls, want 2", result.TransferredCount)
	}

	groups := getGroups(t, store, docKey)
	for _, roll := range groups[0].Rolls {
		if roll.RollNumber == 1 || roll.RollNumber == 2 {
			if roll.Warehouse != models.WarehouseMerida {
				t.Errorf("roll %d warehouse = %s, want Mérida", roll.RollNumber, roll.Warehouse)
			}
		}
	}
	// The Linen group in the same document is untouched.
	if groups[1].Rolls[0].Warehouse != models.WarehouseCDMX {
		t.Errorf("unrelated group was modified")
	}

	// A timestamped backup of the post-transfer document exists.
	if result.BackupKey == "" || !strings.HasPrefix(result.BackupKey, workflow.BackupPrefix) {
		t.Fatalf("backup key = %q", result.BackupKey)
	}
	backup := getGroups(t, store, result.BackupKey)
	if backup[0].Rolls[0].Warehouse != models.WarehouseMerida {
		t.Errorf("backup must hold the post-transfer state")
	}
}

func TestTransferRollsAllOrNothingOnMissingRoll(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	docKey := seedPackingList(t, store)

	_, err := workflow.TransferRolls(ctx, store, testLogger(), time.Now(), "Cotton", "Blue", 17, []int{1, 2, 999}, "", "")
	var mismatch *utils.RollMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want RollMismatchError", err)
	}
	if len(mismatch.OffendingRolls) != 1 || mismatch.OffendingRolls[0] != 999 {
		t.Errorf("offending rolls = %v, want [999]", mismatch.OffendingRolls)
	}

	// Rolls 1 and 2 stayed where they were: no partial warehouse flip.
	groups := getGroups(t, store, docKey)
	for _, roll := range groups[0].Rolls[:2] {
		if roll.Warehouse != models.WarehouseCDMX {
			t.Errorf("roll %d moved despite rejected transfer", roll.RollNumber)
		}
	}
}

func TestTransferRollsAllOrNothingOnWrongWarehouse(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	seedPackingList(t, store)

	// Roll 3 is already at Mérida.
	_, err := workflow.TransferRolls(ctx, store, testLogger(), time.Now(), "Cotton", "Blue", 17, []int{1, 3}, "", "")
	var mismatch *utils.RollMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want RollMismatchError", err)
	}
	if len(mismatch.OffendingRolls) != 1 || mismatch.OffendingRolls[0] != 3 {
		t.Errorf("offending rolls = %v, want [3]", mismatch.OffendingRolls)
	}
}
