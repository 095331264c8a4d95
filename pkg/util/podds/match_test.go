package podds

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatchRecord(t *testing.T) {
	m, err := NewMatchRecord(" Premier League ", " Arsenal", "Spurs ", 2, 0)
	require.NoError(t, err)

	assert.Equal(t, "Premier League", m.Competition)
	assert.Equal(t, "Arsenal", m.HomeTeam)
	assert.Equal(t, "Spurs", m.AwayTeam)
	assert.Equal(t, 2, m.TotalGoals())
	assert.Equal(t, "2 - 0", m.ScoreStr())

	_, err = uuid.Parse(m.ID)
	assert.NoError(t, err, "ID should be a uuid")
}

func TestMatchRecordValidation(t *testing.T) {
	cases := []struct {
		name                  string
		competition, home, aw string
		hg, ag                int
	}{
		{"no competition", "", "A", "B", 1, 0},
		{"no home team", "League", " ", "B", 1, 0},
		{"no away team", "League", "A", "", 1, 0},
		{"same team", "League", "Arsenal", "arsenal", 1, 0},
		{"negative home goals", "League", "A", "B", -1, 0},
		{"negative away goals", "League", "A", "B", 0, -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMatchRecord(tc.competition, tc.home, tc.aw, tc.hg, tc.ag)
			assert.ErrorIs(t, err, ErrInvalidMatchRecord)
		})
	}
}

func TestDeriveIDIsStable(t *testing.T) {
	played := time.Date(2024, 8, 17, 15, 0, 0, 0, time.UTC)
	a := &MatchRecord{Competition: "Premier League", Season: "2024/2025", PlayedAt: played, HomeTeam: "Arsenal", AwayTeam: "Wolves"}
	b := &MatchRecord{Competition: "premier league", Season: "2024/2025", PlayedAt: played.Add(2 * time.Hour), HomeTeam: "ARSENAL ", AwayTeam: "wolves", HomeGoals: 9}

	// same fixture, whatever the case, kick-off time or score
	assert.Equal(t, a.DeriveID(), b.DeriveID())

	reverse := &MatchRecord{Competition: "Premier League", Season: "2024/2025", PlayedAt: played, HomeTeam: "Wolves", AwayTeam: "Arsenal"}
	assert.NotEqual(t, a.DeriveID(), reverse.DeriveID())

	nextDay := *a
	nextDay.PlayedAt = played.AddDate(0, 0, 1)
	assert.NotEqual(t, a.DeriveID(), nextDay.DeriveID())
}

func TestBeforeSaveKeepsExistingID(t *testing.T) {
	m := &MatchRecord{ID: "fixed", Competition: "League", HomeTeam: "A", AwayTeam: "B"}
	require.NoError(t, m.BeforeSave())
	assert.Equal(t, "fixed", m.ID)
	assert.False(t, m.CreatedAt.IsZero())

	pk := m.GetPrimaryKey()
	assert.Equal(t, "fixed", pk["id"])

	require.NoError(t, m.SetPrimaryKey(map[string]any{"id": "other"}))
	assert.Equal(t, "other", m.ID)
	assert.Error(t, m.SetPrimaryKey(map[string]any{"id": 7}))
	assert.Error(t, m.SetPrimaryKey(map[string]any{}))
}
