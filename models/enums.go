package models

import "strings"

// Warehouse is one of the two fixed distribution sites.
type Warehouse string

const (
	WarehouseCDMX   Warehouse = "CDMX"
	WarehouseMerida Warehouse = "Mérida"
)

func (w Warehouse) IsValid() bool {
	switch w {
	case WarehouseCDMX, WarehouseMerida:
		return true
	}
	return false
}

// ImportFlag is the tri-state import marker carried on inventory lines.
// Source documents encode it as ad hoc strings ("HOY", "DA", "-", "");
// NormalizeImportFlag maps those onto the enum. Unknown keeps the empty
// string value so reserialized documents round-trip what was observed.
type ImportFlag string

const (
	ImportFlagged    ImportFlag = "HOY"
	ImportNotFlagged ImportFlag = "DA"
	ImportUnknown    ImportFlag = ""
)

func NormalizeImportFlag(raw string) ImportFlag {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "HOY":
		return ImportFlagged
	case "DA":
		return ImportNotFlagged
	case "-", "":
		return ImportUnknown
	}
	// Unrecognized markers pass through as unknown rather than failing the
	// whole document; the raw marker is dropped, matching observed behavior.
	return ImportUnknown
}

// UserRole gates mutating operations. Only admins may touch the ledgers.
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleMajorAdmin UserRole = "major_admin"
	UserRoleViewer     UserRole = "viewer"
)

func (r UserRole) CanMutate() bool {
	return r == UserRoleAdmin || r == UserRoleMajorAdmin
}
