package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// File names and timestamp layout of the flat-file documents.
const (
	MembersFile  = "students.json"
	ItemsFile    = "books.json"
	RecordsFile  = "transactions.json"
	TimestampFmt = "2006-01-02 15:04:05"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type memberDoc struct {
	Name   string `json:"name"`
	IDNo   int64  `json:"id_no"`
	Stream string `json:"stream"`
}

type itemDoc struct {
	Author   string `json:"author"`
	Quantity int    `json:"quantity"`
}

type recordDoc struct {
	BookTitle  string  `json:"book_title"`
	StudentID  int64   `json:"student_id"`
	IssueDate  string  `json:"issue_date"`
	ReturnDate *string `json:"return_date"`
	Fine       int     `json:"fine"`
}

// JSONStore keeps the library in three JSON documents inside one directory.
type JSONStore struct {
	dir string
}

// NewJSONStore returns a store rooted at dir. Nothing is touched until Load or Save.
func NewJSONStore(dir string) *JSONStore {
	if dir == "" {
		dir = "."
	}
	return &JSONStore{dir: dir}
}

// Dir returns the data directory.
func (s *JSONStore) Dir() string { return s.dir }

func (s *JSONStore) path(name string) string { return filepath.Join(s.dir, name) }

// Close is a no-op; documents are not held open.
func (s *JSONStore) Close() error { return nil }

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

// Load reads all three documents. A missing document counts as empty, so the
// first run starts from a blank library.
func (s *JSONStore) Load() (*Snapshot, error) {
	var (
		members map[string]memberDoc
		items   map[string]itemDoc
		records []recordDoc
	)
	if err := s.readDoc(MembersFile, &members); err != nil {
		return nil, err
	}
	if err := s.readDoc(ItemsFile, &items); err != nil {
		return nil, err
	}
	if err := s.readDoc(RecordsFile, &records); err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	for key, m := range members {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: member key %q is not a number", ErrCorruptData, MembersFile, key)
		}
		if id != m.IDNo {
			return nil, fmt.Errorf("%w: %s: key %q does not match id_no %d", ErrCorruptData, MembersFile, key, m.IDNo)
		}
		snap.Members = append(snap.Members, Member{ID: id, Name: m.Name, Stream: m.Stream})
	}
	sort.Slice(snap.Members, func(i, j int) bool { return snap.Members[i].ID < snap.Members[j].ID })

	for title, it := range items {
		snap.Items = append(snap.Items, Item{Title: title, Author: it.Author, Quantity: it.Quantity})
	}
	sort.Slice(snap.Items, func(i, j int) bool { return snap.Items[i].Title < snap.Items[j].Title })

	for i, rd := range records {
		rec, err := rd.record()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: entry %d: %v", ErrCorruptData, RecordsFile, i, err)
		}
		snap.Records = append(snap.Records, rec)
	}
	return snap, nil
}

func (s *JSONStore) readDoc(name string, v any) error {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptData, name, err)
	}
	return nil
}

func (rd recordDoc) record() (LendingRecord, error) {
	issued, err := time.ParseInLocation(TimestampFmt, rd.IssueDate, time.Local)
	if err != nil {
		return LendingRecord{}, fmt.Errorf("issue_date: %w", err)
	}
	rec := LendingRecord{
		Title:    rd.BookTitle,
		MemberID: rd.StudentID,
		IssuedAt: issued,
		Fine:     rd.Fine,
	}
	if rd.ReturnDate != nil && *rd.ReturnDate != "" {
		returned, err := time.ParseInLocation(TimestampFmt, *rd.ReturnDate, time.Local)
		if err != nil {
			return LendingRecord{}, fmt.Errorf("return_date: %w", err)
		}
		rec.ReturnedAt = &returned
	}
	return rec, nil
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

// Save overwrites the three documents. Held items and available counts are
// not written; they are recomputed from open records on load.
func (s *JSONStore) Save(snap *Snapshot) error {
	if snap == nil {
		snap = &Snapshot{}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	members := make(map[string]memberDoc, len(snap.Members))
	for _, m := range snap.Members {
		members[strconv.FormatInt(m.ID, 10)] = memberDoc{Name: m.Name, IDNo: m.ID, Stream: m.Stream}
	}
	items := make(map[string]itemDoc, len(snap.Items))
	for _, it := range snap.Items {
		items[it.Title] = itemDoc{Author: it.Author, Quantity: it.Quantity}
	}
	records := make([]recordDoc, 0, len(snap.Records))
	for _, r := range snap.Records {
		rd := recordDoc{
			BookTitle: r.Title,
			StudentID: r.MemberID,
			IssueDate: r.IssuedAt.In(time.Local).Format(TimestampFmt),
			Fine:      r.Fine,
		}
		if r.ReturnedAt != nil {
			ts := r.ReturnedAt.In(time.Local).Format(TimestampFmt)
			rd.ReturnDate = &ts
		}
		records = append(records, rd)
	}

	if err := s.writeDoc(MembersFile, members); err != nil {
		return err
	}
	if err := s.writeDoc(ItemsFile, items); err != nil {
		return err
	}
	return s.writeDoc(RecordsFile, records)
}

func (s *JSONStore) writeDoc(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
