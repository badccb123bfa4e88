package library

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Library owns the members, the inventory and the lending history.
// Every exported method is safe to call from multiple goroutines.
type Library struct {
	mu sync.Mutex

	members map[int64]*Member
	items   map[string]*Item
	records []*LendingRecord

	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Library.
type Option func(*Library)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Library) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger used for operation traces.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New returns an empty library.
func New(opts ...Option) *Library {
	l := &Library{
		members: make(map[int64]*Member),
		items:   make(map[string]*Item),
		now:     time.Now,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewFromSnapshot rebuilds a library from persisted state.
// Open records are taken as outstanding loans, so held items and available
// copies reflect them immediately.
func NewFromSnapshot(snap *Snapshot, opts ...Option) (*Library, error) {
	l := New(opts...)
	if snap == nil {
		return l, nil
	}

	for _, m := range snap.Members {
		if _, ok := l.members[m.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate member id %d", ErrCorruptData, m.ID)
		}
		m := m
		l.members[m.ID] = &m
	}
	for _, it := range snap.Items {
		if _, ok := l.items[it.Title]; ok {
			return nil, fmt.Errorf("%w: duplicate title %q", ErrCorruptData, it.Title)
		}
		if it.Quantity < 0 {
			return nil, fmt.Errorf("%w: negative quantity for %q", ErrCorruptData, it.Title)
		}
		it := it
		l.items[it.Title] = &it
	}
	for i := range snap.Records {
		r := snap.Records[i].clone()
		if r.Fine < 0 {
			return nil, fmt.Errorf("%w: record %d has a negative fine", ErrCorruptData, i)
		}
		if r.ReturnedAt != nil && r.ReturnedAt.Before(r.IssuedAt) {
			return nil, fmt.Errorf("%w: record %d returned before it was issued", ErrCorruptData, i)
		}
		l.records = append(l.records, &r)
	}
	return l, nil
}

// Snapshot copies the current state for persistence.
func (l *Library) Snapshot() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := &Snapshot{
		Members: l.membersLocked(),
		Items:   l.itemsLocked(),
		Records: make([]LendingRecord, 0, len(l.records)),
	}
	for _, r := range l.records {
		snap.Records = append(snap.Records, r.clone())
	}
	return snap
}

// ------------------ Members & items ------------------

// AddMember registers a new member. Ids are unique.
func (l *Library) AddMember(name string, id int64, stream string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.members[id]; ok {
		return fmt.Errorf("member %d %w", id, ErrDuplicateKey)
	}
	l.members[id] = &Member{ID: id, Name: name, Stream: stream}
	l.logger.Debug("member added", "id", id, "name", name)
	return nil
}

// AddItem adds a title to the inventory with all copies available.
func (l *Library) AddItem(title, author string, quantity int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.items[title]; ok {
		return fmt.Errorf("item %q %w", title, ErrDuplicateKey)
	}
	l.items[title] = &Item{Title: title, Author: author, Quantity: quantity}
	l.logger.Debug("item added", "title", title, "quantity", quantity)
	return nil
}

// GetMember returns a copy of the member with the given id.
func (l *Library) GetMember(id int64) (Member, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.members[id]
	if !ok {
		return Member{}, fmt.Errorf("member %d %w", id, ErrNotFound)
	}
	return *m, nil
}

// GetItem returns a copy of the item with the given title.
func (l *Library) GetItem(title string) (Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	it, ok := l.items[title]
	if !ok {
		return Item{}, fmt.Errorf("item %q %w", title, ErrNotFound)
	}
	return *it, nil
}

// Members lists all members ordered by id.
func (l *Library) Members() []Member {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.membersLocked()
}

// Items lists the inventory ordered by title.
func (l *Library) Items() []Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.itemsLocked()
}

func (l *Library) membersLocked() []Member {
	out := make([]Member, 0, len(l.members))
	for _, m := range l.members {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (l *Library) itemsLocked() []Item {
	out := make([]Item, 0, len(l.items))
	for _, it := range l.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// ------------------ Derived state ------------------

// HeldItems returns the titles a member currently holds, oldest loan first.
// A title appears once per open loan.
func (l *Library) HeldItems(memberID int64) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heldLocked(memberID)
}

// Available returns how many copies of title can still be issued.
func (l *Library) Available(title string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	it, ok := l.items[title]
	if !ok {
		return 0, fmt.Errorf("item %q %w", title, ErrNotFound)
	}
	return l.availableLocked(it), nil
}

func (l *Library) heldLocked(memberID int64) []string {
	held := []string{}
	for _, r := range l.records {
		if r.Open() && r.MemberID == memberID {
			held = append(held, r.Title)
		}
	}
	return held
}

func (l *Library) availableLocked(it *Item) int {
	out := 0
	for _, r := range l.records {
		if r.Open() && r.Title == it.Title {
			out++
		}
	}
	if avail := it.Quantity - out; avail > 0 {
		return avail
	}
	return 0
}

// ------------------ Circulation ------------------

// Issue lends one copy of title to a member and returns the new open record.
func (l *Library) Issue(title string, memberID int64) (*LendingRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	it, ok := l.items[title]
	if !ok {
		return nil, fmt.Errorf("item %q %w", title, ErrNotFound)
	}
	if _, ok := l.members[memberID]; !ok {
		return nil, fmt.Errorf("member %d %w", memberID, ErrNotFound)
	}
	if l.availableLocked(it) == 0 {
		return nil, fmt.Errorf("%w: no copies of %q left", ErrCapacityExceeded, title)
	}
	if n := len(l.heldLocked(memberID)); n >= MaxItemsPerMember {
		return nil, fmt.Errorf("%w: member %d already holds %d items", ErrCapacityExceeded, memberID, n)
	}

	rec := &LendingRecord{
		Title:    title,
		MemberID: memberID,
		IssuedAt: l.now().Truncate(time.Second),
	}
	l.records = append(l.records, rec)
	l.logger.Debug("item issued", "title", title, "member", memberID)

	out := rec.clone()
	return &out, nil
}

// Return closes the earliest open loan of title to the member and charges any fine.
func (l *Library) Return(title string, memberID int64) (*LendingRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, r := range l.records {
		if !r.Open() || r.Title != title || r.MemberID != memberID {
			continue
		}
		returned := l.now().Truncate(time.Second)
		if returned.Before(r.IssuedAt) {
			returned = r.IssuedAt
		}
		r.ReturnedAt = &returned
		r.Fine = ComputeFine(r.IssuedAt, returned)
		l.logger.Debug("item returned", "title", title, "member", memberID, "fine", r.Fine)

		out := r.clone()
		return &out, nil
	}
	return nil, fmt.Errorf("%w: no open loan of %q for member %d", ErrNotFound, title, memberID)
}

// Records returns the lending history in the order loans were issued.
func (l *Library) Records() []LendingRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LendingRecord, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, r.clone())
	}
	return out
}

// OpenRecords returns the member's outstanding loans, oldest first.
func (l *Library) OpenRecords(memberID int64) []LendingRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []LendingRecord
	for _, r := range l.records {
		if r.Open() && r.MemberID == memberID {
			out = append(out, r.clone())
		}
	}
	return out
}
