package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("asset metadata not found")

// Store is the boundary to the external asset store. Metadata is only
// borrowed by the conversion pipeline: Load at job start, Save once at the
// end, and only when a variant actually changed.
type Store interface {
	Load(ctx context.Context, subjectID int64) (*Metadata, error)
	Save(ctx context.Context, meta *Metadata) error
}

type dbStore struct {
	dbpool *pgxpool.Pool
}

func New(ctx context.Context, databaseDSN string) (*dbStore, error) {
	pool, err := pgxpool.New(ctx, databaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &dbStore{dbpool: pool}, nil
}

func (s *dbStore) Ping(ctx context.Context) error {
	return s.dbpool.Ping(ctx)
}

func (s *dbStore) Load(ctx context.Context, subjectID int64) (*Metadata, error) {
	var raw []byte
	err := s.dbpool.QueryRow(ctx,
		`SELECT metadata FROM assets WHERE subject_id = $1`, subjectID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load metadata for subject %d: %w", subjectID, err)
	}

	meta := &Metadata{SubjectID: subjectID}
	if err := json.Unmarshal(raw, meta); err != nil {
		return nil, fmt.Errorf("decode metadata for subject %d: %w", subjectID, err)
	}
	meta.SubjectID = subjectID

	return meta, nil
}

func (s *dbStore) Save(ctx context.Context, meta *Metadata) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode metadata for subject %d: %w", meta.SubjectID, err)
	}

	_, err = s.dbpool.Exec(ctx,
		`INSERT INTO assets (subject_id, metadata, updated_timestamp)
		 VALUES ($1, $2, now())
		 ON CONFLICT (subject_id)
		 DO UPDATE SET metadata = EXCLUDED.metadata, updated_timestamp = now()`,
		meta.SubjectID, raw,
	)
	if err != nil {
		return fmt.Errorf("save metadata for subject %d: %w", meta.SubjectID, err)
	}
	return nil
}
