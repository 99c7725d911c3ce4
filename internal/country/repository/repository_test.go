package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/altura-labs/countryatlas/internal/country/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CountryRecord{}, &domain.RefreshMetadata{}))
	return db
}

var testNode = func() *snowflake.Node {
	node, err := snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
	return node
}()

func makeRecord(name string, mutate ...func(*domain.CountryRecord)) *domain.CountryRecord {
	record := &domain.CountryRecord{
		ID:              testNode.Generate(),
		Name:            name,
		NameKey:         domain.NormalizeName(name),
		LastRefreshedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, fn := range mutate {
		fn(record)
	}
	return record
}

func fptr(v float64) *float64 { return &v }

func TestUpsertBatch_InsertThenOverwrite(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	original := makeRecord("Testland", func(r *domain.CountryRecord) {
		r.Capital = "Old Cap"
		r.Population = 100
	})
	require.NoError(t, repo.UpsertBatch(ctx, db, []*domain.CountryRecord{original}))

	// Same country re-fetched with different casing and new values.
	updated := makeRecord("TESTLAND", func(r *domain.CountryRecord) {
		r.Capital = "New Cap"
		r.Population = 200
		r.CurrencyCode = "TST"
		r.ExchangeRate = fptr(10)
		r.EstimatedGDP = fptr(30000)
	})
	require.NoError(t, repo.UpsertBatch(ctx, db, []*domain.CountryRecord{updated}))

	count, err := repo.Count(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	record, err := repo.FindByName(ctx, db, "tEsTlAnD")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, original.ID, record.ID, "conflict keeps the existing row")
	assert.Equal(t, "TESTLAND", record.Name, "as-fetched casing wins")
	assert.Equal(t, "New Cap", record.Capital)
	assert.Equal(t, int64(200), record.Population)
}

func TestUpsertBatch_OverwriteClearsStaleValues(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	withRate := makeRecord("Testland", func(r *domain.CountryRecord) {
		r.CurrencyCode = "TST"
		r.ExchangeRate = fptr(10)
		r.EstimatedGDP = fptr(30000)
	})
	require.NoError(t, repo.UpsertBatch(ctx, db, []*domain.CountryRecord{withRate}))

	// Next refresh could not resolve the rate: both fields go back to NULL
	// rather than keeping the stale estimate.
	unknown := makeRecord("Testland", func(r *domain.CountryRecord) {
		r.CurrencyCode = "TST"
	})
	require.NoError(t, repo.UpsertBatch(ctx, db, []*domain.CountryRecord{unknown}))

	record, err := repo.FindByName(ctx, db, "Testland")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Nil(t, record.ExchangeRate)
	assert.Nil(t, record.EstimatedGDP)
}

func TestFindByName_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()

	record, err := repo.FindByName(context.Background(), db, "nowhere")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestDeleteByName_CaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	require.NoError(t, repo.UpsertBatch(ctx, db, []*domain.CountryRecord{makeRecord("Testland")}))

	deleted, err := repo.DeleteByName(ctx, db, "TESTLAND")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteByName(ctx, db, "TESTLAND")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestList_FiltersAndSort(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	require.NoError(t, repo.UpsertBatch(ctx, db, []*domain.CountryRecord{
		makeRecord("Alpha", func(r *domain.CountryRecord) {
			r.Region = "Europe"
			r.CurrencyCode = "EUR"
			r.Population = 30
			r.EstimatedGDP = fptr(300)
		}),
		makeRecord("Beta", func(r *domain.CountryRecord) {
			r.Region = "Africa"
			r.CurrencyCode = "NGN"
			r.Population = 10
			r.EstimatedGDP = fptr(100)
		}),
		makeRecord("Gamma", func(r *domain.CountryRecord) {
			r.Region = "europe"
			r.CurrencyCode = "eur"
			r.Population = 20
		}),
	}))

	europe, err := repo.List(ctx, db, domain.ListFilter{Region: "EUROPE"}, domain.SortSpec{Field: domain.SortByName})
	require.NoError(t, err)
	require.Len(t, europe, 2)
	assert.Equal(t, "Alpha", europe[0].Name)
	assert.Equal(t, "Gamma", europe[1].Name)

	eur, err := repo.List(ctx, db, domain.ListFilter{CurrencyCode: "eur"}, domain.SortSpec{Field: domain.SortByName})
	require.NoError(t, err)
	assert.Len(t, eur, 2)

	byPop, err := repo.List(ctx, db, domain.ListFilter{}, domain.SortSpec{Field: domain.SortByPopulation, Descending: true})
	require.NoError(t, err)
	require.Len(t, byPop, 3)
	assert.Equal(t, "Alpha", byPop[0].Name)
	assert.Equal(t, "Gamma", byPop[1].Name)
	assert.Equal(t, "Beta", byPop[2].Name)

	byGDP, err := repo.List(ctx, db, domain.ListFilter{}, domain.SortSpec{Field: domain.SortByGDP, Descending: true})
	require.NoError(t, err)
	require.Len(t, byGDP, 3)
	assert.Equal(t, "Alpha", byGDP[0].Name)
	assert.Equal(t, "Beta", byGDP[1].Name)
	assert.Equal(t, "Gamma", byGDP[2].Name, "unknown GDP sorts last")
}

func TestTopByGDP_ExcludesUnknownAndRanksDescending(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	records := []*domain.CountryRecord{
		makeRecord("A", func(r *domain.CountryRecord) { r.EstimatedGDP = fptr(50) }),
		makeRecord("B", func(r *domain.CountryRecord) { r.EstimatedGDP = fptr(500) }),
		makeRecord("C"),
		makeRecord("D", func(r *domain.CountryRecord) { r.EstimatedGDP = fptr(300) }),
		makeRecord("E", func(r *domain.CountryRecord) { r.EstimatedGDP = fptr(200) }),
		makeRecord("F", func(r *domain.CountryRecord) { r.EstimatedGDP = fptr(100) }),
		makeRecord("G", func(r *domain.CountryRecord) { r.EstimatedGDP = fptr(400) }),
	}
	require.NoError(t, repo.UpsertBatch(ctx, db, records))

	top, err := repo.TopByGDP(ctx, db, 5)
	require.NoError(t, err)
	require.Len(t, top, 5)

	names := make([]string, 0, len(top))
	for _, record := range top {
		names = append(names, record.Name)
	}
	assert.Equal(t, []string{"B", "G", "D", "E", "F"}, names)
}

func TestMetadata_UpsertAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	meta, err := repo.GetMetadata(ctx, db)
	require.NoError(t, err)
	assert.Nil(t, meta)

	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertMetadata(ctx, db, &domain.RefreshMetadata{
		TotalCountries:  10,
		LastRefreshedAt: &first,
	}))

	second := first.Add(time.Hour)
	require.NoError(t, repo.UpsertMetadata(ctx, db, &domain.RefreshMetadata{
		TotalCountries:  12,
		LastRefreshedAt: &second,
	}))

	meta, err = repo.GetMetadata(ctx, db)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, int64(12), meta.TotalCountries)
	require.NotNil(t, meta.LastRefreshedAt)
	assert.True(t, meta.LastRefreshedAt.Equal(second))
}
