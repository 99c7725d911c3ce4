package domain

import (
	"context"

	"gorm.io/gorm"
)

// ListFilter narrows List results; empty fields match everything.
// Matching is case-insensitive exact.
type ListFilter struct {
	Region       string
	CurrencyCode string
}

type SortField string

const (
	SortByName       SortField = "name"
	SortByGDP        SortField = "estimated_gdp"
	SortByPopulation SortField = "population"
)

type SortSpec struct {
	Field      SortField
	Descending bool
}

type Repository interface {
	UpsertBatch(ctx context.Context, db *gorm.DB, records []*CountryRecord) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter, sort SortSpec) ([]*CountryRecord, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*CountryRecord, error)
	DeleteByName(ctx context.Context, db *gorm.DB, name string) (bool, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	TopByGDP(ctx context.Context, db *gorm.DB, limit int) ([]*CountryRecord, error)
	GetMetadata(ctx context.Context, db *gorm.DB) (*RefreshMetadata, error)
	UpsertMetadata(ctx context.Context, db *gorm.DB, meta *RefreshMetadata) error
}
