package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"coursedesk/internal/domain"

	"github.com/jmoiron/sqlx"
)

// LeadRepository handles lead data access with hand-written SQL.
type LeadRepository struct {
	db *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `id, name, email, phone, course_id, source, status, notes,
	follow_up_count, last_contacted_at, converted_user_id, converted_at, created_at, updated_at`

// Create inserts a new lead
func (r *LeadRepository) Create(ctx context.Context, l *domain.Lead) error {
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now

	query := r.db.Rebind(`
		INSERT INTO leads (name, email, phone, course_id, source, status, notes, follow_up_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		RETURNING id`)

	return r.db.QueryRowContext(ctx, query,
		l.Name, l.Email, l.Phone, l.CourseID, l.Source, l.Status, l.Notes, now, now,
	).Scan(&l.ID)
}

// GetByID returns nil, nil when the lead does not exist.
func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	var l domain.Lead
	err := r.db.GetContext(ctx, &l, r.db.Rebind(`SELECT `+leadColumns+` FROM leads WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetOpenByEmail returns the newest lead for email that is not converted yet.
func (r *LeadRepository) GetOpenByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	var l domain.Lead
	query := r.db.Rebind(`SELECT ` + leadColumns + ` FROM leads
		WHERE email = ? AND status <> ?
		ORDER BY created_at DESC LIMIT 1`)
	err := r.db.GetContext(ctx, &l, query, email, domain.LeadConverted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// List returns leads with optional status filter
func (r *LeadRepository) List(ctx context.Context, status domain.LeadStatus, limit, offset int) ([]domain.Lead, int, error) {
	where := ""
	args := []any{}
	if status != "" {
		where = ` WHERE status = ?`
		args = append(args, status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM leads`+where), args...); err != nil {
		return nil, 0, err
	}

	leads := []domain.Lead{}
	query := r.db.Rebind(`SELECT ` + leadColumns + ` FROM leads` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &leads, query, append(args, limit, offset)...); err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// UpdateStatus updates lead status and notes
func (r *LeadRepository) UpdateStatus(ctx context.Context, id int64, status domain.LeadStatus, notes string) error {
	query := r.db.Rebind(`UPDATE leads SET status = ?, notes = ?, updated_at = ? WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query, status, notes, time.Now().UTC(), id)
	return err
}

// MarkContacted bumps the follow-up counter
func (r *LeadRepository) MarkContacted(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`
		UPDATE leads
		SET last_contacted_at = ?, follow_up_count = follow_up_count + 1, updated_at = ?
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query, now, now, id)
	return err
}

// MarkConverted links the lead to the student account created for it
func (r *LeadRepository) MarkConverted(ctx context.Context, leadID, userID int64) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`
		UPDATE leads
		SET status = ?, converted_at = ?, converted_user_id = ?, updated_at = ?
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query, domain.LeadConverted, now, userID, now, leadID)
	return err
}

// CountByStatus returns lead counts by status
func (r *LeadRepository) CountByStatus(ctx context.Context) (map[domain.LeadStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.LeadStatus]int)
	for rows.Next() {
		var status domain.LeadStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *LeadRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM leads WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
