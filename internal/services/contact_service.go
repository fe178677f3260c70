package services

import (
	"context"
	"log/slog"
	"strings"

	"tokoshop/internal/models"
	"tokoshop/internal/repositories"
)

// ContactService stores contact-form submissions for the admin inbox.
type ContactService struct {
	repo repositories.ContactRepository
}

func NewContactService(repo repositories.ContactRepository) *ContactService {
	return &ContactService{repo: repo}
}

func (s *ContactService) Submit(ctx context.Context, msg *models.ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.ToLower(strings.TrimSpace(msg.Email))
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.IsRead = false
	if err := s.repo.Create(ctx, msg); err != nil {
		return err
	}
	slog.InfoContext(ctx, "contact message received", "id", msg.ID.Hex(), "subject", msg.Subject)
	return nil
}

func (s *ContactService) List(ctx context.Context, unreadOnly bool, page models.Page) (*models.PagedResult[models.ContactMessage], error) {
	page = page.Normalize()
	messages, total, err := s.repo.List(ctx, unreadOnly, page)
	if err != nil {
		return nil, err
	}
	return &models.PagedResult[models.ContactMessage]{Data: messages, Page: page.Number, PageSize: page.Size, Total: total}, nil
}

func (s *ContactService) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
