package library

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// LibraryManager pairs a Library with the store it was loaded from, keeping
// CLI code simple: load once, run commands, save once.
type LibraryManager struct {
	*Library

	store  Store
	logger *slog.Logger
}

// NewLibraryManager loads the library from store.
func NewLibraryManager(store Store, opts ...Option) (*LibraryManager, error) {
	snap, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}
	lib, err := NewFromSnapshot(snap, opts...)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}
	lib.logger.Info("library loaded",
		"members", len(snap.Members), "items", len(snap.Items), "records", len(snap.Records))
	return &LibraryManager{Library: lib, store: store, logger: lib.logger}, nil
}

// SaveData writes the current state back to the store.
func (lm *LibraryManager) SaveData() error {
	snap := lm.Snapshot()
	if err := lm.store.Save(snap); err != nil {
		return fmt.Errorf("save library: %w", err)
	}
	lm.logger.Info("library saved",
		"members", len(snap.Members), "items", len(snap.Items), "records", len(snap.Records))
	return nil
}

// Close closes the underlying store without saving.
func (lm *LibraryManager) Close() error { return lm.store.Close() }

// ------------------ Utilities ------------------

// PrettyMember formats a member for lists.
func PrettyMember(m Member, held []string) string {
	return fmt.Sprintf("%-8d %-25s %-15s %s", m.ID, truncateString(m.Name, 25), truncateString(m.Stream, 15), strings.Join(held, ", "))
}

// PrettyItem formats an item for lists.
func PrettyItem(it Item, available int) string {
	return fmt.Sprintf("%-30s %-25s %-9d %d", truncateString(it.Title, 30), truncateString(it.Author, 25), it.Quantity, available)
}

// PrettyRecord formats a lending record for lists.
func PrettyRecord(r LendingRecord) string {
	returned := "-"
	if r.ReturnedAt != nil {
		returned = r.ReturnedAt.In(time.Local).Format(TimestampFmt)
	}
	return fmt.Sprintf("%-30s %-8d %-20s %-20s %d",
		truncateString(r.Title, 30), r.MemberID, r.IssuedAt.In(time.Local).Format(TimestampFmt), returned, r.Fine)
}

// WriteMembers prints every member with the items they hold.
func (lm *LibraryManager) WriteMembers(w io.Writer) {
	members := lm.Members()
	if len(members) == 0 {
		fmt.Fprintln(w, "No members registered.")
		return
	}
	fmt.Fprintf(w, "%-8s %-25s %-15s %s\n", "ID", "Name", "Stream", "Holding")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, m := range members {
		fmt.Fprintln(w, PrettyMember(m, lm.HeldItems(m.ID)))
	}
}

// WriteItems prints the inventory with available copies.
func (lm *LibraryManager) WriteItems(w io.Writer) {
	items := lm.Items()
	if len(items) == 0 {
		fmt.Fprintln(w, "No books in library.")
		return
	}
	fmt.Fprintf(w, "%-30s %-25s %-9s %s\n", "Title", "Author", "Quantity", "Available")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, it := range items {
		avail, _ := lm.Available(it.Title)
		fmt.Fprintln(w, PrettyItem(it, avail))
	}
}

// WriteRecords prints lending records, optionally only those of one member.
func (lm *LibraryManager) WriteRecords(w io.Writer, memberID int64, onlyMember bool) {
	var records []LendingRecord
	for _, r := range lm.Records() {
		if !onlyMember || r.MemberID == memberID {
			records = append(records, r)
		}
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No lending records.")
		return
	}
	fmt.Fprintf(w, "%-30s %-8s %-20s %-20s %s\n", "Title", "Member", "Issued", "Returned", "Fine")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, r := range records {
		fmt.Fprintln(w, PrettyRecord(r))
	}
}

// truncateString shortens s to maxLength runes, never splitting a character.
func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength-3]) + "..."
}
