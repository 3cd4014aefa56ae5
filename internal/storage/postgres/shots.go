package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/gunfire/internal/game/combat"
)

// ErrInvalidShot is returned when a record is missing its character or weapon.
var ErrInvalidShot = errors.New("invalid shot record")

// ShotRecord is one row of the shots table.
type ShotRecord struct {
	ID             string
	CharacterID    string
	WeaponID       string
	Classification string
	TargetName     string
	FiredAt        time.Time
}

// RecordFromShot converts a resolved shot into a row. ID and FiredAt are
// assigned on insert.
func RecordFromShot(s combat.Shot) ShotRecord {
	return ShotRecord{
		CharacterID:    s.CharacterID,
		WeaponID:       s.WeaponID,
		Classification: s.Outcome.Classification.String(),
		TargetName:     s.Outcome.TargetName(),
	}
}

// ShotLog persists shot telemetry.
type ShotLog struct {
	db *pgxpool.Pool
}

// NewShotLog creates a ShotLog backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewShotLog(db *pgxpool.Pool) *ShotLog {
	return &ShotLog{db: db}
}

// Record inserts r.
//
// Precondition: r.CharacterID and r.WeaponID must be non-empty.
// Postcondition: Returns r with ID and FiredAt set, or ErrInvalidShot.
func (l *ShotLog) Record(ctx context.Context, r ShotRecord) (ShotRecord, error) {
	if r.CharacterID == "" || r.WeaponID == "" {
		return ShotRecord{}, ErrInvalidShot
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	err := l.db.QueryRow(ctx,
		`INSERT INTO shots (id, character_id, weapon_id, classification, target_name)
		 VALUES ($1::uuid, $2, $3, $4, $5)
		 RETURNING id::text, fired_at`,
		r.ID, r.CharacterID, r.WeaponID, r.Classification, r.TargetName,
	).Scan(&r.ID, &r.FiredAt)
	if err != nil {
		return ShotRecord{}, fmt.Errorf("inserting shot: %w", err)
	}
	return r, nil
}

// CountByCharacter returns how many shots characterID has fired.
func (l *ShotLog) CountByCharacter(ctx context.Context, characterID string) (int64, error) {
	var n int64
	if err := l.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM shots WHERE character_id = $1`, characterID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting shots: %w", err)
	}
	return n, nil
}

// Recent returns up to limit of characterID's shots, newest first.
func (l *ShotLog) Recent(ctx context.Context, characterID string, limit int) ([]ShotRecord, error) {
	rows, err := l.db.Query(ctx,
		`SELECT id::text, character_id, weapon_id, classification, target_name, fired_at
		 FROM shots WHERE character_id = $1
		 ORDER BY fired_at DESC LIMIT $2`,
		characterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying shots: %w", err)
	}
	defer rows.Close()

	var out []ShotRecord
	for rows.Next() {
		var r ShotRecord
		if err := rows.Scan(&r.ID, &r.CharacterID, &r.WeaponID, &r.Classification, &r.TargetName, &r.FiredAt); err != nil {
			return nil, fmt.Errorf("scanning shot: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shots: %w", err)
	}
	return out, nil
}
