package workflow

import (
	"context"
	"strings"

	"bitbucket.org/distextil/telas_backend/config"
	"bitbucket.org/distextil/telas_backend/docstore"
	"bitbucket.org/distextil/telas_backend/models"
	"bitbucket.org/distextil/telas_backend/utils"
	"github.com/sirupsen/logrus"
)

// ProcessReturns applies a batch of roll returns. Every roll is processed
// independently: its inventory line is found through the identity matcher
// and incremented by the returned amount (the reverse of a sale), and its
// packing-list group either gets the existing roll-number entry topped up
// or a new roll entry appended: a return can reintroduce a physical roll
// number that had left the catalog. One failing roll never aborts the
// others; the caller receives the successes and failures as two disjoint
// lists.
func ProcessReturns(ctx context.Context, store docstore.Store, logger *logrus.Logger, partition Partition, rolls []models.ReturnedRoll, reason string, notes string) (*ReturnOutcome, error) {
	if len(rolls) == 0 {
		return nil, &utils.ValidationError{Field: "rolls", Message: "required"}
	}
	if reason == "" {
		return nil, &utils.ValidationError{Field: "reason", Message: "required"}
	}

	outcome := &ReturnOutcome{
		CacheHints: []string{partition.InventoryCacheHint(), PackingListCacheHint()},
	}

	for _, roll := range rolls {
		if err := returnOneRoll(ctx, store, logger, partition, roll); err != nil {
			outcome.Failed = append(outcome.Failed, ReturnFailure{Roll: roll, Error: err.Error()})
			continue
		}
		outcome.Successful = append(outcome.Successful, roll)
	}
	return outcome, nil
}

func returnOneRoll(ctx context.Context, store docstore.Store, logger *logrus.Logger, partition Partition, roll models.ReturnedRoll) error {
	if !roll.Quantity.IsPositive() {
		return &utils.ValidationError{Field: "quantity", Message: "must be positive"}
	}

	key := models.LineKey{
		PurchaseOrder: roll.PurchaseOrder,
		Fabric:        roll.FabricType,
		Color:         roll.Color,
		Location:      roll.Warehouse,
	}

	// Reverse of a sale: a negative delta adds the quantity back.
	if _, err := ChangeQuantity(ctx, store, logger, partition, key, roll.Quantity.Neg()); err != nil {
		return err
	}

	loc, err := FindRollGroup(ctx, store, roll.FabricType, roll.Color, roll.Lot)
	if err != nil {
		// The inventory increment above is NOT rolled back; the two
		// documents are independent writes (see Plan). The failure names
		// the group so an operator can reconcile by hand.
		return err
	}
	group := loc.Group()

	if ri := group.FindRoll(roll.RollNumber); ri >= 0 {
		entry := &group.Rolls[ri]
		entry.SetQuantity(entry.Quantity().Add(roll.Quantity))
		entry.Warehouse = roll.Warehouse
	} else {
		entry := models.Roll{RollNumber: roll.RollNumber, Warehouse: roll.Warehouse}
		if strings.EqualFold(strings.TrimSpace(roll.Unit), "kg") {
			q := roll.Quantity
			entry.WeightKg = &q
		} else {
			q := roll.Quantity
			entry.LengthMeters = &q
		}
		group.Rolls = append(group.Rolls, entry)
	}

	plan := &Plan{}
	if err := plan.Put(loc.DocumentKey, loc.Groups); err != nil {
		return err
	}
	if err := Commit(ctx, store, plan); err != nil {
		config.LogError(logger, "rollReturnWorkflow.go", "returnOneRoll", "Commit", loc.DocumentKey, err)
		return err
	}
	return nil
}
