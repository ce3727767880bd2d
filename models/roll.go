package models

import (
	"fmt"

	"bitbucket.org/distextil/telas_backend/utils"
	"github.com/shopspring/decimal"
)

// Roll is a single physical unit cut from a lot. It has no global id; it
// is identified by roll number within its (fabric type, color, lot) group.
// Exactly one of WeightKg / LengthMeters is set, depending on how the
// fabric is measured.
type Roll struct {
	RollNumber   int              `json:"roll_number"`
	Warehouse    Warehouse        `json:"warehouse"`
	WeightKg     *decimal.Decimal `json:"weight_kg,omitempty"`
	LengthMeters *decimal.Decimal `json:"length_meters,omitempty"`
}

// Quantity returns whichever measure the roll carries.
func (r Roll) Quantity() decimal.Decimal {
	if r.WeightKg != nil {
		return *r.WeightKg
	}
	if r.LengthMeters != nil {
		return *r.LengthMeters
	}
	return decimal.Zero
}

// SetQuantity writes the measure back into the populated field. Rolls that
// carry neither measure default to weight.
func (r *Roll) SetQuantity(q decimal.Decimal) {
	if r.LengthMeters != nil {
		r.LengthMeters = &q
		return
	}
	r.WeightKg = &q
}

// RollGroup is the packing-list entry for one (fabric type, color, lot)
// combination. Many groups share a packing-list document.
type RollGroup struct {
	FabricType string `json:"fabric_type"`
	Color      string `json:"color"`
	Lot        int    `json:"lot"`
	Rolls      []Roll `json:"rolls"`
}

func (g RollGroup) MatchesGroup(fabricType, color string, lot int) bool {
	return utils.NormalizeKeyField(g.FabricType) == utils.NormalizeKeyField(fabricType) &&
		utils.NormalizeKeyField(g.Color) == utils.NormalizeKeyField(color) &&
		g.Lot == lot
}

// FindRoll returns the index of the given roll number, or -1.
func (g RollGroup) FindRoll(rollNumber int) int {
	for i, roll := range g.Rolls {
		if roll.RollNumber == rollNumber {
			return i
		}
	}
	return -1
}

func (g RollGroup) String() string {
	return fmt.Sprintf("fabric_type=%s color=%s lot=%d", g.FabricType, g.Color, g.Lot)
}
