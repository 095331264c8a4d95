package podds

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(":memory:")
	require.NoError(t, err, "Failed to open in-memory store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGenerateCreateTableSQL(t *testing.T) {
	sql := generateCreateTableSQL(&MatchRecord{}, "match_record")

	assert.True(t, strings.HasPrefix(sql, "CREATE TABLE IF NOT EXISTS match_record ("))
	assert.Contains(t, sql, "home_team TEXT NOT NULL")
	assert.Contains(t, sql, "played_at DATETIME")
	assert.Contains(t, sql, "PRIMARY KEY (id)")

	indexes := generateIndexSQL(&MatchRecord{}, "match_record")
	assert.Contains(t, indexes, "CREATE INDEX IF NOT EXISTS idx_match_record_competition ON match_record(competition)")
	assert.Len(t, indexes, 3)
}

func TestStoreSaveAndLoad(t *testing.T) {
	s := openTestStore(t)

	played := time.Date(2024, 9, 1, 15, 0, 0, 0, time.UTC)
	m := &MatchRecord{Competition: "Premier League", Season: "2024/2025", PlayedAt: played, HomeTeam: "Arsenal", AwayTeam: "Spurs", HomeGoals: 2, AwayGoals: 1}
	require.NoError(t, s.Save(m))
	assert.NotEmpty(t, m.ID)

	found, err := s.Exists(m)
	require.NoError(t, err)
	assert.True(t, found)

	loaded := &MatchRecord{}
	require.NoError(t, s.FindByPrimaryKey(loaded, m.GetPrimaryKey()))
	assert.Equal(t, "Arsenal", loaded.HomeTeam)
	assert.Equal(t, 2, loaded.HomeGoals)
	assert.True(t, played.Equal(loaded.PlayedAt), "played at %v", loaded.PlayedAt)

	err = s.FindByPrimaryKey(&MatchRecord{}, map[string]any{"id": "nope"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestStoreSaveIsUpsert(t *testing.T) {
	s := openTestStore(t)

	first, err := NewMatchRecord("Cup", "Leeds", "Hull", 1, 0)
	require.NoError(t, err)
	require.NoError(t, s.Save(first))

	// same fixture corrected score
	second, err := NewMatchRecord("cup", "leeds", "hull", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.NoError(t, s.Save(second))

	count, err := s.Count(&MatchRecord{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	records, err := s.LoadMatchRecords("")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].HomeGoals)
}

func TestStoreSaveMatchRecordsIsAtomic(t *testing.T) {
	s := openTestStore(t)

	good, err := NewMatchRecord("League", "A", "B", 1, 1)
	require.NoError(t, err)
	bad := &MatchRecord{Competition: "League", HomeTeam: "A", AwayTeam: "A"}

	err = s.SaveMatchRecords([]*MatchRecord{good, bad})
	assert.ErrorIs(t, err, ErrInvalidMatchRecord)

	count, err := s.Count(&MatchRecord{})
	require.NoError(t, err)
	assert.Equal(t, 0, count, "nothing should be committed when one record fails")
}

func TestStoreCompetitionsAndFilter(t *testing.T) {
	s := openTestStore(t)

	var records []*MatchRecord
	for i, r := range testRecords() {
		r.PlayedAt = time.Date(2024, 8, 10+i, 0, 0, 0, 0, time.UTC)
		records = append(records, &r)
	}
	cup, err := NewMatchRecord("FA Cup", "Leeds", "Arsenal", 0, 4)
	require.NoError(t, err)
	records = append(records, cup)
	require.NoError(t, s.SaveMatchRecords(records))

	comps, err := s.Competitions()
	require.NoError(t, err)
	assert.Equal(t, []string{"FA Cup", "Premier League"}, comps)

	league, err := s.LoadMatchRecords("premier league")
	require.NoError(t, err)
	assert.Len(t, league, 7)
	assert.Equal(t, "Chelsea", league[0].AwayTeam, "ordered by date")

	all, err := s.LoadMatchRecords(" ")
	require.NoError(t, err)
	assert.Len(t, all, 8)

	found, err := s.FindWhere(&MatchRecord{}, "home_team = ?", "Spurs")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	everything, err := s.FindAll(&MatchRecord{})
	require.NoError(t, err)
	assert.Len(t, everything, 8)
}

func TestStoreDelete(t *testing.T) {
	s := openTestStore(t)

	m, err := NewMatchRecord("League", "A", "B", 3, 2)
	require.NoError(t, err)
	require.NoError(t, s.Save(m))
	require.NoError(t, s.Delete(m))

	found, err := s.Exists(m)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOpenStoreOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "podds.db")

	s, err := OpenStore(path)
	require.NoError(t, err)
	m, err := NewMatchRecord("League", "A", "B", 0, 0)
	require.NoError(t, err)
	require.NoError(t, s.Save(m))
	require.NoError(t, s.Close())

	reopened, err := OpenStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, path, reopened.Path())

	records, err := reopened.LoadMatchRecords("League")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = OpenStore("  ")
	assert.Error(t, err)
}
