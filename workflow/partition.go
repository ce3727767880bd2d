package workflow

import (
	"fmt"
	"time"
)

const (
	inventoryPrefix   = "inventory"
	soldRollsPrefix   = "sold-rolls"
	PackingListPrefix = "packing-lists/"
	BackupPrefix      = "backups/"
)

// Partition scopes which documents are searched for a given operation:
// one calendar month's folder. The caller computes it once from wall-clock
// time and passes it in, so the ledgers stay pure functions of their
// inputs. Historical months are never scanned for mutation targets; a
// line that aged into a new month without being re-saved there cannot be
// found. That is an accepted limitation of the month-partitioned layout.
type Partition struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func PartitionFor(t time.Time) Partition {
	return Partition{Year: t.Year(), Month: t.Month()}
}

func (p Partition) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// InventoryPrefix is the folder holding the month's inventory documents.
func (p Partition) InventoryPrefix() string {
	return fmt.Sprintf("%s/%04d/%02d/", inventoryPrefix, p.Year, int(p.Month))
}

// SoldRollsPrefix is the folder holding the month's sale-history documents.
func (p Partition) SoldRollsPrefix() string {
	return fmt.Sprintf("%s/%04d/%02d/", soldRollsPrefix, p.Year, int(p.Month))
}

// InventoryCacheHint names the response-cache pattern invalidated by a
// mutation inside this partition. The core only returns the pattern; the
// HTTP layer acts on it.
func (p Partition) InventoryCacheHint() string {
	return fmt.Sprintf("inventory:%s:*", p.String())
}

func (p Partition) SoldRollsCacheHint() string {
	return fmt.Sprintf("soldrolls:%s:*", p.String())
}

// PackingListCacheHint covers the roll catalog, which is not partitioned.
func PackingListCacheHint() string {
	return "packinglists:*"
}

// AddMonths steps the partition forward or backward across year borders.
func (p Partition) AddMonths(n int) Partition {
	t := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return Partition{Year: t.Year(), Month: t.Month()}
}

func (p Partition) Valid() bool {
	return p.Year > 0 && p.Month >= time.January && p.Month <= time.December
}
