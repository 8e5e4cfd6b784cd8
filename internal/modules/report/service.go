package report

import (
	"context"
	"errors"
	"fmt"

	"coursedesk/internal/domain"
	"coursedesk/internal/pkg/money"
	"coursedesk/internal/repository"
)

var ErrInvalidStatus = errors.New("invalid status")

const (
	defaultDebtorLimit = 50
	maxDebtorLimit     = 500
)

type reportRepo interface {
	OpenBalancesByStatus(ctx context.Context) ([]repository.BalanceGroupRow, error)
	Debtors(ctx context.Context, status domain.BookingStatus, limit int) ([]repository.DebtorRow, error)
}

type Service struct {
	repo reportRepo
}

func NewService(repo reportRepo) *Service {
	return &Service{repo: repo}
}

type StatusBalance struct {
	Status domain.BookingStatus `json:"status"`
	Count  int                  `json:"count"`
	Open   float64              `json:"open"`
}

type OpenBalances struct {
	Groups     []StatusBalance        `json:"groups"`
	TotalCount int                    `json:"total_count"`
	TotalOpen  float64                `json:"total_open"`
	Debtors    []repository.DebtorRow `json:"debtors,omitempty"`
}

// OpenBalances returns open saldo per status in vocabulary order. Statuses
// without open bookings are omitted.
func (s *Service) OpenBalances(ctx context.Context) (*OpenBalances, error) {
	rows, err := s.repo.OpenBalancesByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("open balances: %w", err)
	}

	byStatus := make(map[domain.BookingStatus]repository.BalanceGroupRow, len(rows))
	for _, r := range rows {
		byStatus[r.Status] = r
	}

	out := &OpenBalances{Groups: []StatusBalance{}}
	var totals []float64
	for _, st := range domain.BookingStatuses() {
		r, ok := byStatus[st]
		if !ok {
			continue
		}
		out.Groups = append(out.Groups, StatusBalance{Status: st, Count: r.Count, Open: money.Round2(r.Open)})
		out.TotalCount += r.Count
		totals = append(totals, r.Open)
		delete(byStatus, st)
	}
	// legacy rows with a status outside the vocabulary
	for st, r := range byStatus {
		out.Groups = append(out.Groups, StatusBalance{Status: st, Count: r.Count, Open: money.Round2(r.Open)})
		out.TotalCount += r.Count
		totals = append(totals, r.Open)
	}
	out.TotalOpen = money.Sum(totals...)
	return out, nil
}

// Debtors lists the bookings behind the open balance, optionally for one status.
func (s *Service) Debtors(ctx context.Context, status string, limit int) ([]repository.DebtorRow, error) {
	var st domain.BookingStatus
	if status != "" {
		parsed, err := domain.ParseBookingStatus(status)
		if err != nil {
			return nil, ErrInvalidStatus
		}
		st = parsed
	}
	if limit <= 0 {
		limit = defaultDebtorLimit
	}
	if limit > maxDebtorLimit {
		limit = maxDebtorLimit
	}
	return s.repo.Debtors(ctx, st, limit)
}
