package domain

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidDBID rejects database segment ids that cannot form a numeric
// prefix.
var ErrInvalidDBID = errors.New("invalid_db_id")

// Quotation numbers are `PPYYYYNNN...`: a two-digit service prefix, the
// four-digit year and a running sequence. The first prefix digit is fixed;
// the second is the per-database segment id from the quotation defaults, so
// two databases sharing one ERP never collide.
const prefixDigit = 6

// ServicePrefix builds the two-digit allocator prefix from a database
// segment id. The id must start with a digit; blank falls back to "1".
func ServicePrefix(dbID string) (int64, error) {
	dbID = strings.TrimSpace(dbID)
	if dbID == "" {
		dbID = "1"
	}
	segment := dbID[0]
	if segment < '0' || segment > '9' {
		return 0, ErrInvalidDBID
	}
	return int64(prefixDigit*10) + int64(segment-'0'), nil
}

// NumberFloor returns the first number of a prefix+year block. Prefix 62 and
// year 2025 give 6202025000, already past the 32-bit boundary.
func NumberFloor(prefix int64, year int) int64 {
	return prefix*100_000_000 + int64(year)*1000
}

// NumberPattern returns the LIKE pattern matching every number in the
// block that starts at floor.
func NumberPattern(floor int64) string {
	return strconv.FormatInt(floor/1000, 10) + "%"
}
