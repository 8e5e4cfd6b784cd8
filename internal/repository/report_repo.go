package repository

import (
	"context"
	"time"

	"coursedesk/internal/domain"

	"github.com/jmoiron/sqlx"
)

// ReportRepository runs read-only aggregate queries over the ledger tables.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type BalanceGroupRow struct {
	Status domain.BookingStatus `db:"status"`
	Count  int                  `db:"booking_count"`
	Open   float64              `db:"open_total"`
}

type DebtorRow struct {
	ID           int64                `db:"id" json:"id"`
	Code         string               `db:"code" json:"code"`
	StudentName  string               `db:"student_name" json:"student_name"`
	StudentEmail string               `db:"student_email" json:"student_email"`
	CourseTitle  string               `db:"course_title" json:"course_title"`
	Status       domain.BookingStatus `db:"status" json:"status"`
	Amount       *float64             `db:"amount" json:"amount"`
	PaidTotal    float64              `db:"paid_total" json:"paid_total"`
	Saldo        float64              `db:"saldo" json:"saldo"`
	BookingDate  time.Time            `db:"booking_date" json:"booking_date"`
}

// OpenBalancesByStatus groups bookings with a positive saldo by status.
func (r *ReportRepository) OpenBalancesByStatus(ctx context.Context) ([]BalanceGroupRow, error) {
	rows := []BalanceGroupRow{}
	query := `
		SELECT status, COUNT(*) AS booking_count, COALESCE(SUM(saldo), 0) AS open_total
		FROM bookings
		WHERE saldo > 0
		GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

// Debtors lists bookings with a positive saldo, largest first.
func (r *ReportRepository) Debtors(ctx context.Context, status domain.BookingStatus, limit int) ([]DebtorRow, error) {
	where := ` WHERE saldo > 0`
	args := []any{}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}

	rows := []DebtorRow{}
	query := r.db.Rebind(`
		SELECT id, code, student_name, student_email, course_title, status, amount, paid_total, saldo, booking_date
		FROM bookings` + where + `
		ORDER BY saldo DESC, id ASC
		LIMIT ?`)
	if err := r.db.SelectContext(ctx, &rows, query, append(args, limit)...); err != nil {
		return nil, err
	}
	return rows, nil
}
