package trip

import (
	"context"
	"errors"
	"time"
	"tripscout/pkg/idgen"
	"tripscout/pkg/logger"
)

var (
	ErrNameRequired        = errors.New("trip name is required")
	ErrDestinationRequired = errors.New("trip destination is required")
	ErrExcursionRequired   = errors.New("excursion id and snapshot are required")
)

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

func (s *Service) Create(ctx context.Context, userID string, req CreateTripRequest) (*Trip, error) {
	if req.Name == "" {
		return nil, ErrNameRequired
	}
	if req.Destination == "" {
		return nil, ErrDestinationRequired
	}

	t := Trip{
		ID:          s.idgen.GenerateID(),
		UserID:      userID,
		Name:        req.Name,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("trip created",
		logger.Field{Key: "trip_id", Value: t.ID},
		logger.Field{Key: "destination", Value: t.Destination},
	)
	return &t, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Trip, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, tripID, userID string) error {
	return s.store.Delete(ctx, tripID, userID)
}

// AddExcursion attaches a canonical-record snapshot to an owned trip.
func (s *Service) AddExcursion(ctx context.Context, tripID, userID string, req AddExcursionRequest) (*TripExcursion, error) {
	if req.ExcursionID == "" || len(req.Excursion) == 0 {
		return nil, ErrExcursionRequired
	}

	// Ownership check: adding to someone else's trip must look like a
	// missing trip.
	if _, err := s.store.Get(ctx, tripID, userID); err != nil {
		return nil, err
	}

	te := TripExcursion{
		ID:          s.idgen.GenerateID(),
		TripID:      tripID,
		ExcursionID: req.ExcursionID,
		Day:         req.Day,
		Excursion:   req.Excursion,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.InsertExcursion(ctx, te); err != nil {
		return nil, err
	}
	return &te, nil
}

func (s *Service) RemoveExcursion(ctx context.Context, tripID, userID, excursionID string) error {
	if _, err := s.store.Get(ctx, tripID, userID); err != nil {
		return err
	}
	return s.store.DeleteExcursion(ctx, tripID, excursionID)
}

func (s *Service) ListExcursions(ctx context.Context, tripID, userID string) ([]TripExcursion, error) {
	if _, err := s.store.Get(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.store.ListExcursions(ctx, tripID)
}
