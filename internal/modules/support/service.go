package support

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coursedesk/internal/domain"
	"coursedesk/internal/repository"
)

const referenceAttempts = 3

type Service struct {
	tickets *repository.SupportRepository
}

func NewService(tickets *repository.SupportRepository) *Service {
	return &Service{tickets: tickets}
}

// NewReference returns a short human-readable ticket id such as T-3F9A1C0B.
func NewReference() string {
	return "T-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *Service) Create(ctx context.Context, userID int64, req CreateTicketRequest) (*domain.SupportTicket, error) {
	subject := strings.TrimSpace(req.Subject)
	body := strings.TrimSpace(req.Body)
	if userID <= 0 || subject == "" || body == "" {
		return nil, ErrInvalidRequest
	}

	t := &domain.SupportTicket{
		UserID:  userID,
		Subject: subject,
		Body:    body,
		Status:  domain.TicketOpen,
	}
	var err error
	for i := 0; i < referenceAttempts; i++ {
		t.ID = 0
		t.Reference = NewReference()
		if err = s.tickets.Create(ctx, t); err == nil || !repository.IsUniqueViolation(err) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns a ticket to its owner or to an admin.
func (s *Service) Get(ctx context.Context, userID int64, role string, id int64) (*domain.SupportTicket, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if role != string(domain.RoleAdmin) && t.UserID != userID {
		return nil, ErrNotFound
	}
	return t, nil
}

// List returns the caller's own tickets, or every ticket for admins.
func (s *Service) List(ctx context.Context, userID int64, role string, status domain.TicketStatus) ([]domain.SupportTicket, error) {
	owner := userID
	if role == string(domain.RoleAdmin) {
		owner = 0
	}
	out, err := s.tickets.List(ctx, owner, status)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.SupportTicket{}
	}
	return out, nil
}

func (s *Service) Answer(ctx context.Context, adminID, id int64, answer string) (*domain.SupportTicket, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrInvalidRequest
	}

	t, err := s.Get(ctx, adminID, string(domain.RoleAdmin), id)
	if err != nil {
		return nil, err
	}
	if t.Status == domain.TicketClosed {
		return nil, ErrClosed
	}

	now := time.Now()
	if err := s.tickets.Update(ctx, id, map[string]any{
		"answer":      answer,
		"answered_by": adminID,
		"answered_at": now,
		"status":      domain.TicketAnswered,
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, adminID, string(domain.RoleAdmin), id)
}

// Close is allowed for admins and for the ticket owner.
func (s *Service) Close(ctx context.Context, userID int64, role string, id int64) (*domain.SupportTicket, error) {
	t, err := s.Get(ctx, userID, role, id)
	if err != nil {
		return nil, err
	}
	if t.Status == domain.TicketClosed {
		return t, nil
	}
	if err := s.tickets.Update(ctx, id, map[string]any{"status": domain.TicketClosed}); err != nil {
		return nil, err
	}
	t.Status = domain.TicketClosed
	return t, nil
}
