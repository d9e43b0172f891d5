package saved

import (
	"context"
	"errors"
	"time"
	"tripscout/pkg/idgen"
	"tripscout/pkg/logger"
)

var ErrExcursionRequired = errors.New("excursion id and snapshot are required")

type Service struct {
	store  Store
	idgen  idgen.Generator
	logger logger.Client
}

func NewService(store Store, idgen idgen.Generator, logger logger.Client) *Service {
	return &Service{
		store:  store,
		idgen:  idgen,
		logger: logger,
	}
}

func (s *Service) Save(ctx context.Context, userID string, req SaveRequest) (*SavedExcursion, error) {
	if req.ExcursionID == "" || len(req.Excursion) == 0 {
		return nil, ErrExcursionRequired
	}

	se := SavedExcursion{
		ID:          s.idgen.GenerateID(),
		UserID:      userID,
		ExcursionID: req.ExcursionID,
		Excursion:   req.Excursion,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Upsert(ctx, se); err != nil {
		return nil, err
	}

	s.logger.Debug("excursion saved",
		logger.Field{Key: "excursion_id", Value: req.ExcursionID},
	)
	return &se, nil
}

func (s *Service) Unsave(ctx context.Context, userID, excursionID string) error {
	return s.store.Delete(ctx, userID, excursionID)
}

func (s *Service) List(ctx context.Context, userID string) ([]SavedExcursion, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) IsSaved(ctx context.Context, userID, excursionID string) (bool, error) {
	return s.store.Exists(ctx, userID, excursionID)
}
