package service

import (
	"context"
	"strings"

	"github.com/altura-labs/countryatlas/internal/country/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("country.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListCountriesRequest) ([]domain.CountryRecord, error) {
	sort, err := parseSort(req.SortBy, req.Order)
	if err != nil {
		return nil, err
	}

	filter := domain.ListFilter{
		Region:       strings.TrimSpace(req.Region),
		CurrencyCode: strings.TrimSpace(req.CurrencyCode),
	}

	items, err := s.repo.List(ctx, s.db, filter, sort)
	if err != nil {
		return nil, err
	}

	records := make([]domain.CountryRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		records = append(records, *item)
	}
	return records, nil
}

func (s *Service) GetByName(ctx context.Context, name string) (domain.CountryRecord, error) {
	if strings.TrimSpace(name) == "" {
		return domain.CountryRecord{}, domain.ErrInvalidName
	}
	record, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return domain.CountryRecord{}, err
	}
	if record == nil {
		return domain.CountryRecord{}, domain.ErrNotFound
	}
	return *record, nil
}

func (s *Service) DeleteByName(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ErrInvalidName
	}
	deleted, err := s.repo.DeleteByName(ctx, s.db, name)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	s.log.Info("country deleted", zap.String("name_key", domain.NormalizeName(name)))
	return nil
}

func (s *Service) Status(ctx context.Context) (domain.RefreshMetadata, error) {
	meta, err := s.repo.GetMetadata(ctx, s.db)
	if err != nil {
		return domain.RefreshMetadata{}, err
	}
	if meta == nil {
		// No refresh has ever completed.
		return domain.RefreshMetadata{ID: domain.MetadataID}, nil
	}
	return *meta, nil
}

func parseSort(sortBy, order string) (domain.SortSpec, error) {
	var field domain.SortField
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "", "name":
		field = domain.SortByName
	case "estimated_gdp", "gdp":
		field = domain.SortByGDP
	case "population":
		field = domain.SortByPopulation
	default:
		return domain.SortSpec{}, domain.ErrInvalidSort
	}

	var descending bool
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "asc":
		descending = false
	case "desc":
		descending = true
	default:
		return domain.SortSpec{}, domain.ErrInvalidOrder
	}

	return domain.SortSpec{Field: field, Descending: descending}, nil
}
