package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// CountryRecord is one country's reconciled state. Name keeps its
// as-fetched casing; NameKey is the lowercased lookup/upsert key.
//
// EstimatedGDP is a pointer on purpose: nil means the value is unknown
// (currency exists but no rate was available), while a stored 0 means
// the country has no currency at all. ExchangeRate is nil whenever the
// rate table had no entry for the currency.
type CountryRecord struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"-"`
	Name            string       `gorm:"not null" json:"name"`
	NameKey         string       `gorm:"column:name_key;not null;uniqueIndex:ux_country_records_name_key" json:"-"`
	Capital         string       `gorm:"not null;default:''" json:"capital,omitempty"`
	Region          string       `gorm:"not null;default:'';index:idx_country_records_region" json:"region,omitempty"`
	Population      int64        `gorm:"not null;default:0" json:"population"`
	CurrencyCode    string       `gorm:"not null;default:'';index:idx_country_records_currency_code" json:"currency_code,omitempty"`
	ExchangeRate    *float64     `json:"exchange_rate"`
	EstimatedGDP    *float64     `gorm:"column:estimated_gdp;index:idx_country_records_estimated_gdp,sort:desc" json:"estimated_gdp"`
	FlagURL         string       `gorm:"not null;default:''" json:"flag_url,omitempty"`
	LastRefreshedAt time.Time    `gorm:"not null" json:"last_refreshed_at"`
}

// RefreshMetadata is a singleton row describing the last successful refresh.
type RefreshMetadata struct {
	ID              int64      `gorm:"primaryKey" json:"-"`
	TotalCountries  int64      `gorm:"not null;default:0" json:"total_countries"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}

// MetadataID is the fixed primary key of the singleton row.
const MetadataID int64 = 1

// NormalizeName folds a country name into its lookup key.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
