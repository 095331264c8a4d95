package podds

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Compile-time check to ensure MatchRecord implements Persistable interface
var _ Persistable = (*MatchRecord)(nil)

// matchRecordNamespace scopes the name-based UUIDs used as match record IDs
var matchRecordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("podds/match-record"))

// MatchRecord is one finished historical match.
// Records are treated as values and never modified once loaded.
type MatchRecord struct {
	// Primary key
	ID string `json:"id" column:"id" dbtype:"TEXT" primary:"true" index:"true"`

	// Info
	Competition string    `json:"competition" column:"competition" dbtype:"TEXT NOT NULL" index:"true"`
	Season      string    `json:"season,omitempty" column:"season" dbtype:"TEXT"`
	PlayedAt    time.Time `json:"playedAt,omitempty" column:"played_at" dbtype:"DATETIME"`

	// Teams
	HomeTeam string `json:"homeTeam" column:"home_team" dbtype:"TEXT NOT NULL" index:"true"`
	AwayTeam string `json:"awayTeam" column:"away_team" dbtype:"TEXT NOT NULL" index:"true"`

	// Full time score
	HomeGoals int `json:"homeGoals" column:"home_goals" dbtype:"INTEGER NOT NULL"`
	AwayGoals int `json:"awayGoals" column:"away_goals" dbtype:"INTEGER NOT NULL"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// NewMatchRecord creates a validated record with its ID assigned
func NewMatchRecord(competition, homeTeam, awayTeam string, homeGoals, awayGoals int) (*MatchRecord, error) {
	m := &MatchRecord{
		Competition: competition,
		HomeTeam:    homeTeam,
		AwayTeam:    awayTeam,
		HomeGoals:   homeGoals,
		AwayGoals:   awayGoals,
	}
	if err := m.Normalise(); err != nil {
		return nil, err
	}
	return m, nil
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetPrimaryKey returns the primary key as a map
func (m *MatchRecord) GetPrimaryKey() map[string]any {
	return map[string]any{
		"id": m.ID,
	}
}

// SetPrimaryKey sets the primary key from a map
func (m *MatchRecord) SetPrimaryKey(pk map[string]any) error {
	if id, ok := pk["id"]; ok {
		if idStr, ok := id.(string); ok {
			m.ID = idStr
			return nil
		}
		return fmt.Errorf("primary key 'id' must be a string")
	}
	return fmt.Errorf("primary key 'id' not found")
}

// GetTableName returns the table name for match records
func (m *MatchRecord) GetTableName() string {
	return "match_record"
}

// BeforeSave validates the record and fills in derived fields
func (m *MatchRecord) BeforeSave() error {
	if err := m.Normalise(); err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MatchRecord) AfterSave() error {
	return nil
}

func (m *MatchRecord) BeforeDelete() error {
	return nil
}

func (m *MatchRecord) AfterDelete() error {
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// Validation and derived data
/////////////////////////////////////////////////////////////////////////

// Normalise trims the text fields, validates the record and assigns an ID if it has none
func (m *MatchRecord) Normalise() error {
	m.Competition = strings.TrimSpace(m.Competition)
	m.Season = strings.TrimSpace(m.Season)
	m.HomeTeam = strings.TrimSpace(m.HomeTeam)
	m.AwayTeam = strings.TrimSpace(m.AwayTeam)
	if !m.PlayedAt.IsZero() {
		m.PlayedAt = m.PlayedAt.UTC()
	}

	if err := m.Validate(); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = m.DeriveID()
	}
	return nil
}

// Validate checks the record can be used by the model
func (m *MatchRecord) Validate() error {
	if strings.TrimSpace(m.Competition) == "" {
		return fmt.Errorf("%w: competition is required", ErrInvalidMatchRecord)
	}
	if strings.TrimSpace(m.HomeTeam) == "" || strings.TrimSpace(m.AwayTeam) == "" {
		return fmt.Errorf("%w: both team names are required", ErrInvalidMatchRecord)
	}
	if strings.EqualFold(strings.TrimSpace(m.HomeTeam), strings.TrimSpace(m.AwayTeam)) {
		return fmt.Errorf("%w: %s cannot play itself", ErrInvalidMatchRecord, m.HomeTeam)
	}
	if m.HomeGoals < 0 || m.AwayGoals < 0 {
		return fmt.Errorf("%w: goals cannot be negative (%d - %d)", ErrInvalidMatchRecord, m.HomeGoals, m.AwayGoals)
	}
	return nil
}

// DeriveID returns the name-based ID for this fixture.
// The same competition, season, date and teams always give the same ID.
func (m *MatchRecord) DeriveID() string {
	date := ""
	if !m.PlayedAt.IsZero() {
		date = m.PlayedAt.UTC().Format("2006-01-02")
	}
	key := strings.ToLower(strings.Join([]string{
		strings.TrimSpace(m.Competition),
		strings.TrimSpace(m.Season),
		date,
		strings.TrimSpace(m.HomeTeam),
		strings.TrimSpace(m.AwayTeam),
	}, "|"))
	return uuid.NewSHA1(matchRecordNamespace, []byte(key)).String()
}

// TotalGoals returns the number of goals scored in the match
func (m MatchRecord) TotalGoals() int {
	return m.HomeGoals + m.AwayGoals
}

// ScoreStr renders the full time score
func (m MatchRecord) ScoreStr() string {
	return fmt.Sprintf("%d - %d", m.HomeGoals, m.AwayGoals)
}
