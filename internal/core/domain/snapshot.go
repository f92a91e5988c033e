package domain

import "time"

// Entity kinds double as id prefixes and seed file names.
const (
	KindUser     = "user"
	KindCategory = "category"
	KindProduct  = "product"
	KindReview   = "review"
	KindOrder    = "order"
)

// TimestampLayout is the ISO-8601 form used for createdAt/updatedAt on the wire.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Snapshot is the full dataset as loaded at startup or exported by the seed command.
type Snapshot struct {
	Users      []User
	Categories []Category
	Products   []Product
	Reviews    []Review
	Orders     []Order
}

// Counts returns the collection sizes keyed by kind.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		KindUser:     len(s.Users),
		KindCategory: len(s.Categories),
		KindProduct:  len(s.Products),
		KindReview:   len(s.Reviews),
		KindOrder:    len(s.Orders),
	}
}
