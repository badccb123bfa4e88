package library

import "time"

// Member represents a registered library member.
// Held items are not stored here; they are derived from open lending records.
type Member struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	Stream string `db:"stream"`
}

// Item represents a title in the inventory and how many copies the library owns.
type Item struct {
	Title    string `db:"title"`
	Author   string `db:"author"`
	Quantity int    `db:"quantity"`
}

// LendingRecord is one loan of a title to a member. It is open while ReturnedAt is nil.
type LendingRecord struct {
	Title      string     `db:"title"`
	MemberID   int64      `db:"member_id"`
	IssuedAt   time.Time  `db:"issued_at"`
	ReturnedAt *time.Time `db:"returned_at"`
	Fine       int        `db:"fine"`
}

// Open reports whether the item has not been returned yet.
func (r *LendingRecord) Open() bool { return r.ReturnedAt == nil }

func (r *LendingRecord) clone() LendingRecord {
	c := *r
	if r.ReturnedAt != nil {
		t := *r.ReturnedAt
		c.ReturnedAt = &t
	}
	return c
}

// Snapshot represents the complete library state for persistence.
// Records keep insertion order, which is also chronological order.
type Snapshot struct {
	Members []Member
	Items   []Item
	Records []LendingRecord
}
