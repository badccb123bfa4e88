package library

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *Snapshot {
	issued := time.Date(2024, 2, 1, 8, 15, 30, 0, time.Local)
	returned := time.Date(2024, 2, 11, 17, 45, 5, 0, time.Local)
	return &Snapshot{
		Members: []Member{
			{ID: 7, Name: "Alice", Stream: "Science"},
			{ID: 12, Name: "Bob", Stream: "Arts"},
		},
		Items: []Item{
			{Title: "Dune", Author: "Frank Herbert", Quantity: 2},
			{Title: "Emma", Author: "Jane Austen", Quantity: 1},
		},
		Records: []LendingRecord{
			{Title: "Dune", MemberID: 7, IssuedAt: issued, ReturnedAt: &returned, Fine: 15},
			{Title: "Emma", MemberID: 12, IssuedAt: returned},
			{Title: "Dune", MemberID: 12, IssuedAt: returned},
		},
	}
}

func TestJSONStoreRoundTrip(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "data"))
	want := sampleSnapshot()

	require.NoError(t, store.Save(want))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestJSONStoreMissingFilesLoadEmpty(t *testing.T) {
	store := NewJSONStore(t.TempDir())

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, snap.Members)
	assert.Empty(t, snap.Items)
	assert.Empty(t, snap.Records)
}

func TestJSONStoreDocumentShape(t *testing.T) {
	dir := t.TempDir()
	store := NewJSONStore(dir)
	require.NoError(t, store.Save(sampleSnapshot()))

	members, err := os.ReadFile(filepath.Join(dir, MembersFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"7":  {"name": "Alice", "id_no": 7, "stream": "Science"},
		"12": {"name": "Bob", "id_no": 12, "stream": "Arts"}
	}`, string(members))

	items, err := os.ReadFile(filepath.Join(dir, ItemsFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Dune": {"author": "Frank Herbert", "quantity": 2},
		"Emma": {"author": "Jane Austen", "quantity": 1}
	}`, string(items))

	records, err := os.ReadFile(filepath.Join(dir, RecordsFile))
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"book_title": "Dune", "student_id": 7, "issue_date": "2024-02-01 08:15:30", "return_date": "2024-02-11 17:45:05", "fine": 15},
		{"book_title": "Emma", "student_id": 12, "issue_date": "2024-02-11 17:45:05", "return_date": null, "fine": 0},
		{"book_title": "Dune", "student_id": 12, "issue_date": "2024-02-11 17:45:05", "return_date": null, "fine": 0}
	]`, string(records))

	// Documents are indented with four spaces.
	assert.Contains(t, string(items), "\n    \"Dune\"")
}

func TestJSONStoreEmptySnapshotWritesEmptyDocuments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewJSONStore(dir).Save(&Snapshot{}))

	data, err := os.ReadFile(filepath.Join(dir, RecordsFile))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))

	data, err = os.ReadFile(filepath.Join(dir, MembersFile))
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(data))
}

func TestJSONStoreCorruptDocuments(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "invalid json", file: MembersFile, content: `{"1": `},
		{name: "non numeric key", file: MembersFile, content: `{"abc": {"name": "A", "id_no": 1, "stream": "S"}}`},
		{name: "key mismatch", file: MembersFile, content: `{"2": {"name": "A", "id_no": 1, "stream": "S"}}`},
		{name: "bad issue date", file: RecordsFile, content: `[{"book_title": "A", "student_id": 1, "issue_date": "yesterday", "return_date": null, "fine": 0}]`},
		{name: "bad return date", file: RecordsFile, content: `[{"book_title": "A", "student_id": 1, "issue_date": "2024-01-01 10:00:00", "return_date": "2024/01/02", "fine": 0}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.content), 0o644))

			_, err := NewJSONStore(dir).Load()
			assert.ErrorIs(t, err, ErrCorruptData)
		})
	}
}

func TestJSONStoreReadsHandWrittenFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		MembersFile: `{"101": {"name": "Ravi", "id_no": 101, "stream": "CSE"}}`,
		ItemsFile:   `{"Wings of Fire": {"author": "A. P. J. Abdul Kalam", "quantity": 4}}`,
		RecordsFile: `[{"book_title": "Wings of Fire", "student_id": 101, "issue_date": "2023-07-01 11:22:33", "return_date": null, "fine": 0}]`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	snap, err := NewJSONStore(dir).Load()
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, time.Date(2023, 7, 1, 11, 22, 33, 0, time.Local), snap.Records[0].IssuedAt)
	assert.Nil(t, snap.Records[0].ReturnedAt)

	lib, err := NewFromSnapshot(snap)
	require.NoError(t, err)
	avail, err := lib.Available("Wings of Fire")
	require.NoError(t, err)
	assert.Equal(t, 3, avail)
	assert.Equal(t, []string{"Wings of Fire"}, lib.HeldItems(101))
}
