package lead

import (
	"context"
	"strings"

	"coursedesk/internal/domain"
	"coursedesk/internal/modules/auth"
	"coursedesk/internal/repository"
)

// UserStore is the part of the user repository lead conversion needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

// Service handles lead business logic
type Service struct {
	repo  *repository.LeadRepository
	users UserStore
}

func NewService(repo *repository.LeadRepository, users UserStore) *Service {
	return &Service{repo: repo, users: users}
}

// SubmitLead stores a public enquiry. A second enquiry from an email with an
// open lead returns that lead instead of creating a duplicate.
func (s *Service) SubmitLead(ctx context.Context, req *SubmitLeadRequest) (*domain.Lead, bool, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.repo.GetOpenByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "website"
	}
	l := &domain.Lead{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Phone:    strings.TrimSpace(req.Phone),
		CourseID: req.CourseID,
		Source:   source,
		Status:   domain.LeadNew,
		Notes:    strings.TrimSpace(req.Message),
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, false, err
	}
	return l, true, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrLeadNotFound
	}
	return l, nil
}

func (s *Service) ListLeads(ctx context.Context, status domain.LeadStatus, limit, offset int) ([]domain.Lead, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, status, limit, offset)
}

// UpdateStatus changes the pipeline status. Converted leads are frozen.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.LeadStatus, notes string) error {
	l, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l.IsConverted() {
		return ErrAlreadyConverted
	}
	if !status.Valid() || status == domain.LeadConverted {
		return ErrInvalidStatus
	}
	if notes == "" {
		notes = l.Notes
	}
	return s.repo.UpdateStatus(ctx, id, status, notes)
}

// MarkContacted moves a new lead to contacted and counts the follow-up.
func (s *Service) MarkContacted(ctx context.Context, id int64) error {
	l, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l.Status == domain.LeadNew {
		if err := s.repo.UpdateStatus(ctx, id, domain.LeadContacted, l.Notes); err != nil {
			return err
		}
	}
	return s.repo.MarkContacted(ctx, id)
}

// ConvertLead creates a student account for the lead and links it.
func (s *Service) ConvertLead(ctx context.Context, id int64, req *ConvertLeadRequest) (*ConvertLeadResponse, error) {
	l, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.IsConverted() {
		return nil, ErrAlreadyConverted
	}
	if l.Status == domain.LeadLost {
		return nil, ErrCannotConvert
	}

	if _, err := s.users.GetByEmail(ctx, l.Email); err == nil {
		return nil, ErrEmailExists
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Email:        l.Email,
		PasswordHash: hash,
		Role:         domain.RoleStudent,
		Name:         l.Name,
		Phone:        l.Phone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	if err := s.repo.MarkConverted(ctx, id, user.ID); err != nil {
		return nil, err
	}
	return &ConvertLeadResponse{LeadID: id, StudentID: user.ID, Email: user.Email}, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLeadNotFound
	}
	return nil
}

func (s *Service) GetStats(ctx context.Context) (map[domain.LeadStatus]int, error) {
	return s.repo.CountByStatus(ctx)
}
