package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"bitbucket.org/distextil/telas_backend/config"
	"bitbucket.org/distextil/telas_backend/docstore"
	"bitbucket.org/distextil/telas_backend/models"
	"bitbucket.org/distextil/telas_backend/utils"
	"github.com/sirupsen/logrus"
)

// RollGroupLocation is the result of scanning packing-list documents for
// one (fabric type, color, lot) group: the owning document and the full
// parsed body, so the caller can rewrite the document in place.
type RollGroupLocation struct {
	DocumentKey  string
	Groups       []models.RollGroup
	GroupIndex   int
	FilesScanned int
}

func (l *RollGroupLocation) Group() *models.RollGroup {
	return &l.Groups[l.GroupIndex]
}

// FindRollGroup scans every packing-list document for a group whose
// normalized identity matches.
func FindRollGroup(ctx context.Context, store docstore.Store, fabricType, color string, lot int) (*RollGroupLocation, error) {
	infos, err := store.List(ctx, PackingListPrefix)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		data, err := store.Get(ctx, info.Key)
		if err != nil {
			return nil, err
		}
		var groups []models.RollGroup
		if err := json.Unmarshal(data, &groups); err != nil {
			return nil, err
		}
		for gi := range groups {
			if groups[gi].MatchesGroup(fabricType, color, lot) {
				return &RollGroupLocation{
					DocumentKey:  info.Key,
					Groups:       groups,
					GroupIndex:   gi,
					FilesScanned: len(infos),
				}, nil
			}
		}
	}
	return nil, &utils.NotFoundError{
		Resource:     "roll group",
		SearchKey:    fmt.Sprintf("fabric_type=%s color=%s lot=%d", fabricType, color, lot),
		FilesScanned: len(infos),
	}
}

// TransferRolls flips the warehouse of exactly the requested roll numbers
// within one group. All-or-nothing at the roll-number-list level: every
// requested roll must exist in the group and must currently sit at the
// source warehouse, otherwise the whole transfer is rejected with the
// offending roll numbers named and no roll is moved. After a successful
// write, a timestamped copy of the post-transfer document lands under the
// backup prefix. The backup is diagnostic only, there is no restore path,
// so a failed backup write is logged and does not fail the transfer.
func TransferRolls(ctx context.Context, store docstore.Store, logger *logrus.Logger, now time.Time, fabricType, color string, lot int, rollNumbers []int, from, to models.Warehouse) (*RollTransferResult, error) {
	if fabricType == "" {
		return nil, &utils.ValidationError{Field: "fabric_type", Message: "required"}
	}
	if color == "" {
		return nil, &utils.ValidationError{Field: "color", Message: "required"}
	}
	if len(rollNumbers) == 0 {
		return nil, &utils.ValidationError{Field: "roll_numbers", Message: "required"}
	}
	if from == "" {
		from = models.WarehouseCDMX
	}
	if to == "" {
		to = models.WarehouseMerida
	}
	if !from.IsValid() || !to.IsValid() {
		return nil, &utils.ValidationError{Field: "warehouse", Message: "unknown warehouse"}
	}

	loc, err := FindRollGroup(ctx, store, fabricType, color, lot)
	if err != nil {
		return nil, err
	}
	group := loc.Group()

	var offending []int
	for _, number := range rollNumbers {
		ri := group.FindRoll(number)
		if ri < 0 || group.Rolls[ri].Warehouse != from {
			offending = append(offending, number)
		}
	}
	if len(offending) > 0 {
		return nil, &utils.RollMismatchError{
			FabricType:     fabricType,
			Color:          color,
			Lot:            lot,
			OffendingRolls: offending,
		}
	}

	for _, number := range rollNumbers {
		group.Rolls[group.FindRoll(number)].Warehouse = to
	}

	plan := &Plan{}
	if err := plan.Put(loc.DocumentKey, loc.Groups); err != nil {
		return nil, err
	}
	if err := Commit(ctx, store, plan); err != nil {
		config.LogError(logger, "rollTransferWorkflow.go", "TransferRolls", "Commit", loc.DocumentKey, err)
		return nil, err
	}

	backupKey := fmt.Sprintf("%s%s-%s", BackupPrefix, now.Format("20060102-150405"), path.Base(loc.DocumentKey))
	backup := &Plan{}
	if err := backup.Put(backupKey, loc.Groups); err != nil {
		return nil, err
	}
	if err := Commit(ctx, store, backup); err != nil {
		config.LogError(logger, "rollTransferWorkflow.go", "TransferRolls", "BackupWrite", backupKey, err)
		backupKey = ""
	}

	return &RollTransferResult{
		Success:          true,
		TransferredCount: len(rollNumbers),
		DocumentKey:      loc.DocumentKey,
		BackupKey:        backupKey,
		CacheHints:       []string{PackingListCacheHint()},
	}, nil
}
