// Package agreements stores maintenance agreements and serves the sorted,
// searchable listing the UI and API render.
package agreements

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kuitang/agreements-e2e/internal/db"
	"github.com/kuitang/agreements-e2e/internal/obs"
)

const (
	// DefaultLimit is the default number of agreements to return in a list
	DefaultLimit = 50

	// MaxLimit is the maximum number of agreements to return in a list
	MaxLimit = 1000

	// maxIDAttempts bounds retries when a generated ID is already taken.
	maxIDAttempts = 5
)

const selectColumns = `id, name, agreement_date, notes, responsible_party,
	maintenance_owner_responsibility, maintenance_reasoning, created_at, updated_at`

// Service handles agreement CRUD operations using the db layer.
type Service struct {
	db  *db.DB
	now func() time.Time
	id  func() string
}

// NewService creates a new agreements service.
func NewService(database *db.DB) *Service {
	return &Service{db: database, now: time.Now, id: NewID}
}

// NewID returns a fresh display ID: IDPrefix plus 8 upper-case hex characters.
func NewID() string {
	u := uuid.New()
	return IDPrefix + strings.ToUpper(fmt.Sprintf("%x", u[:4]))
}

// Create stores a new agreement.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Agreement, error) {
	params, err := normalizeCreate(params)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	a := Agreement{
		Name:                           params.Name,
		Date:                           params.Date,
		Notes:                          params.Notes,
		ResponsibleParty:               params.ResponsibleParty,
		MaintenanceOwnerResponsibility: params.MaintenanceOwnerResponsibility,
		MaintenanceReasoning:           params.MaintenanceReasoning,
		CreatedAt:                      now,
		UpdatedAt:                      now,
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		a.ID = s.id()
		err = s.insert(ctx, a)
		if !errors.Is(err, ErrIDCollision) {
			break
		}
		obs.From(ctx).Warn("agreement_id_collision", "id", a.ID, "attempt", attempt+1)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create agreement: %w", err)
	}

	obs.From(ctx).Info("agreement_created", "id", a.ID)
	return &a, nil
}

func (s *Service) insert(ctx context.Context, a Agreement) error {
	_, err := s.db.SQL().ExecContext(ctx, `
		INSERT INTO agreements (id, name, agreement_date, notes, responsible_party,
			maintenance_owner_responsibility, maintenance_reasoning, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Date, a.Notes, a.ResponsibleParty,
		a.MaintenanceOwnerResponsibility, a.MaintenanceReasoning,
		a.CreatedAt.UnixNano(), a.UpdatedAt.UnixNano(),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrIDCollision
	}
	return err
}

// Read retrieves an agreement by ID.
func (s *Service) Read(ctx context.Context, id string) (*Agreement, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	row := s.db.SQL().QueryRowContext(ctx, "SELECT "+selectColumns+" FROM agreements WHERE id = ?", id)
	a, err := scanAgreement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read agreement: %w", err)
	}
	return a, nil
}

// Update applies the non-nil fields of params and bumps the last-modified time.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Agreement, error) {
	existing, err := s.Read(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := params.apply(*existing)
	if err != nil {
		return nil, err
	}
	updated.UpdatedAt = s.now().UTC()
	if !updated.UpdatedAt.After(existing.UpdatedAt) {
		updated.UpdatedAt = existing.UpdatedAt.Add(time.Nanosecond)
	}

	res, err := s.db.SQL().ExecContext(ctx, `
		UPDATE agreements SET name = ?, agreement_date = ?, notes = ?, responsible_party = ?,
			maintenance_owner_responsibility = ?, maintenance_reasoning = ?, updated_at = ?
		WHERE id = ?`,
		updated.Name, updated.Date, updated.Notes, updated.ResponsibleParty,
		updated.MaintenanceOwnerResponsibility, updated.MaintenanceReasoning,
		updated.UpdatedAt.UnixNano(), updated.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update agreement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, updated.ID)
	}

	obs.From(ctx).Info("agreement_updated", "id", updated.ID)
	return &updated, nil
}

// Delete permanently removes an agreement.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	res, err := s.db.SQL().ExecContext(ctx, "DELETE FROM agreements WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete agreement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete agreement: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	obs.From(ctx).Info("agreement_deleted", "id", id)
	return nil
}

// List returns a page of agreements matching params.Query, ordered by params.Sort.
// The query matches case-insensitively anywhere in the name, the ID or the
// last-modified date as displayed (MM/DD/YYYY).
func (s *Service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	sortKey, err := ParseSort(string(params.Sort))
	if err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	query := strings.TrimSpace(params.Query)

	where := `WHERE ?1 = ''
		OR instr(search_fold(name), search_fold(?1)) > 0
		OR instr(search_fold(id), search_fold(?1)) > 0
		OR instr(strftime('%m/%d/%Y', updated_at / 1000000000, 'unixepoch'), search_fold(?1)) > 0`

	var total int
	if err := s.db.SQL().QueryRowContext(ctx, "SELECT count(*) FROM agreements "+where, query).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count agreements: %w", err)
	}

	rows, err := s.db.SQL().QueryContext(ctx,
		"SELECT "+selectColumns+" FROM agreements "+where+" ORDER BY "+orderBy(sortKey)+" LIMIT ?2 OFFSET ?3",
		query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list agreements: %w", err)
	}
	defer rows.Close()

	list := make([]Agreement, 0)
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agreement: %w", err)
		}
		list = append(list, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agreements: %w", err)
	}

	obs.From(ctx).Debug("agreements_listed", slog.String("sort", string(sortKey)), slog.Int("matched", total))
	return &ListResult{
		Agreements: list,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
		Sort:       sortKey,
		Query:      query,
	}, nil
}

func orderBy(s Sort) string {
	switch s {
	case SortName:
		return "name COLLATE NOCASE ASC, id ASC"
	case SortID:
		return "id ASC"
	default:
		return "updated_at DESC, id ASC"
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgreement(row rowScanner) (*Agreement, error) {
	var a Agreement
	var createdAt, updatedAt int64
	if err := row.Scan(&a.ID, &a.Name, &a.Date, &a.Notes, &a.ResponsibleParty,
		&a.MaintenanceOwnerResponsibility, &a.MaintenanceReasoning, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.CreatedAt = time.Unix(0, createdAt).UTC()
	a.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &a, nil
}
