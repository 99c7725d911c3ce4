package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/altura-labs/countryatlas/internal/country/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// upsertColumns are the mutable fields overwritten on conflict. Name is
// included so the stored casing always follows the latest fetch.
var upsertColumns = []string{
	"name",
	"capital",
	"region",
	"population",
	"currency_code",
	"exchange_rate",
	"estimated_gdp",
	"flag_url",
	"last_refreshed_at",
}

func (r *repo) UpsertBatch(ctx context.Context, db *gorm.DB, records []*domain.CountryRecord) error {
	if len(records) == 0 {
		return nil
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name_key"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(&records).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, sort domain.SortSpec) ([]*domain.CountryRecord, error) {
	var records []*domain.CountryRecord
	stmt := db.WithContext(ctx).Model(&domain.CountryRecord{})
	if filter.Region != "" {
		stmt = stmt.Where("LOWER(region) = LOWER(?)", filter.Region)
	}
	if filter.CurrencyCode != "" {
		stmt = stmt.Where("UPPER(currency_code) = UPPER(?)", filter.CurrencyCode)
	}
	if err := stmt.Order(orderClause(sort)).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func orderClause(sort domain.SortSpec) string {
	field := sort.Field
	switch field {
	case domain.SortByName, domain.SortByGDP, domain.SortByPopulation:
	default:
		field = domain.SortByName
	}
	dir := "ASC"
	if sort.Descending {
		dir = "DESC"
	}
	if field == domain.SortByGDP {
		// Unknown GDP sorts after every known value in either direction.
		return fmt.Sprintf("estimated_gdp %s NULLS LAST, name_key ASC", dir)
	}
	return fmt.Sprintf("%s %s, name_key ASC", field, dir)
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.CountryRecord, error) {
	var record domain.CountryRecord
	err := db.WithContext(ctx).
		Where("name_key = ?", domain.NormalizeName(name)).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repo) DeleteByName(ctx context.Context, db *gorm.DB, name string) (bool, error) {
	result := db.WithContext(ctx).
		Where("name_key = ?", domain.NormalizeName(name)).
		Delete(&domain.CountryRecord{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.CountryRecord{}).Count(&count).Error
	return count, err
}

func (r *repo) TopByGDP(ctx context.Context, db *gorm.DB, limit int) ([]*domain.CountryRecord, error) {
	var records []*domain.CountryRecord
	err := db.WithContext(ctx).
		Model(&domain.CountryRecord{}).
		Where("estimated_gdp IS NOT NULL").
		Order("estimated_gdp DESC, id ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) GetMetadata(ctx context.Context, db *gorm.DB) (*domain.RefreshMetadata, error) {
	var meta domain.RefreshMetadata
	err := db.WithContext(ctx).
		Where("id = ?", domain.MetadataID).
		First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (r *repo) UpsertMetadata(ctx context.Context, db *gorm.DB, meta *domain.RefreshMetadata) error {
	meta.ID = domain.MetadataID
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_countries", "last_refreshed_at"}),
	}).Create(meta).Error
}
