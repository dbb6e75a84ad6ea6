package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    clock
}

func NewRequestService(repo domain.Repository, logger *zerolog.Logger) *RequestService {
	return &RequestService{repo: repo, logger: nopLogger(logger), now: time.Now}
}

func (s *RequestService) Create(ctx context.Context, userID int64, description string) (*models.ItemRequest, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	req := &models.ItemRequest{
		Description: description,
		RequestorID: userID,
		Created:     s.now().UTC(),
		Items:       []models.Item{},
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("request_id", req.ID).Int64("user_id", userID).Msg("item request created")
	return req, nil
}

// ListOwn returns the caller's requests, newest first.
func (s *RequestService) ListOwn(ctx context.Context, userID int64) ([]*models.ItemRequest, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	reqs, err := s.repo.GetRequestsByRequestor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, reqs)
}

// ListOthers returns requests of all other users, newest first.
func (s *RequestService) ListOthers(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	reqs, err := s.repo.GetRequestsOfOthers(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, reqs)
}

func (s *RequestService) GetByID(ctx context.Context, userID, requestID int64) (*models.ItemRequest, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, notFound(err, "Request with id %d not found", requestID)
	}
	out, err := s.attachItems(ctx, []*models.ItemRequest{req})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (s *RequestService) ensureUser(ctx context.Context, userID int64) error {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return notFound(err, "User with id %d not found", userID)
	}
	return nil
}

func (s *RequestService) attachItems(ctx context.Context, reqs []*models.ItemRequest) ([]*models.ItemRequest, error) {
	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
	}
	items, err := s.repo.GetItemsByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byRequest := make(map[int64][]models.Item, len(reqs))
	for _, item := range items {
		byRequest[*item.RequestID] = append(byRequest[*item.RequestID], *item)
	}
	for _, r := range reqs {
		r.Items = byRequest[r.ID]
		if r.Items == nil {
			r.Items = []models.Item{}
		}
	}
	return reqs, nil
}
