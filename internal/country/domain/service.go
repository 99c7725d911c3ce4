package domain

import (
	"context"
	"errors"
)

type ListCountriesRequest struct {
	Region       string
	CurrencyCode string
	SortBy       string
	Order        string
}

type Service interface {
	List(context.Context, ListCountriesRequest) ([]CountryRecord, error)
	GetByName(ctx context.Context, name string) (CountryRecord, error)
	DeleteByName(ctx context.Context, name string) error
	Status(context.Context) (RefreshMetadata, error)
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidSort  = errors.New("invalid_sort")
	ErrInvalidOrder = errors.New("invalid_order")
	ErrNotFound     = errors.New("not_found")
)
