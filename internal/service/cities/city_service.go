package cities

import (
	"context"
	"fmt"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/flyticket/flyticket/internal/logging"
	"github.com/flyticket/flyticket/internal/repository"
	"github.com/sirupsen/logrus"
)

type CityUseCase interface {
	List(ctx context.Context) ([]domain.City, error)
	Seed(ctx context.Context) (int, error)
}

// CityCache mirrors the flight cache contract: SetCities drops the write when
// the list was invalidated after version was read.
type CityCache interface {
	GetCities(ctx context.Context) ([]domain.City, error)
	CitiesVersion(ctx context.Context) (int64, error)
	SetCities(ctx context.Context, cities []domain.City, version int64) error
	InvalidateCities(ctx context.Context) error
	InvalidateFlights(ctx context.Context) error
}

type CityService struct {
	repo  repository.CityRepository
	cache CityCache
	log   logrus.FieldLogger
}

// NewCityService wires the city directory. cache and log may be nil.
func NewCityService(repo repository.CityRepository, cache CityCache, log logrus.FieldLogger) *CityService {
	if log == nil {
		log = logging.Discard()
	}
	return &CityService{repo: repo, cache: cache, log: log}
}

func (s *CityService) List(ctx context.Context) ([]domain.City, error) {
	writeBack := false
	var version int64
	if s.cache != nil {
		cached, err := s.cache.GetCities(ctx)
		if err != nil {
			s.log.WithError(err).Warn("city cache read failed")
		} else if cached != nil {
			return cached, nil
		}
		if version, err = s.cache.CitiesVersion(ctx); err != nil {
			s.log.WithError(err).Warn("city cache version read failed")
		} else {
			writeBack = true
		}
	}

	cities, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	if writeBack {
		if err := s.cache.SetCities(ctx, cities, version); err != nil {
			s.log.WithError(err).Warn("city cache write failed")
		}
	}
	return cities, nil
}

// Seed upserts the province list by plate code. Running it again renames
// nothing and creates nothing.
func (s *CityService) Seed(ctx context.Context) (int, error) {
	n, err := s.repo.Upsert(ctx, Provinces)
	if err != nil {
		return 0, fmt.Errorf("seed cities: %w", err)
	}

	// Flight list entries carry city names.
	if s.cache != nil {
		if err := s.cache.InvalidateCities(ctx); err != nil {
			s.log.WithError(err).Warn("city cache invalidation failed")
		}
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			s.log.WithError(err).Warn("flight cache invalidation failed")
		}
	}

	s.log.WithField("cities", n).Info("cities seeded")
	return n, nil
}

var _ CityUseCase = (*CityService)(nil)
