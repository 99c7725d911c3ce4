package refresh

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestReconciler(t *testing.T, mult MultiplierSource) *Reconciler {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewReconciler(zap.NewNop(), node, mult)
}

func TestReconcile_ResolvedRate(t *testing.T) {
	rec := newTestReconciler(t, FixedMultiplier(1500))
	refreshedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	records := rec.Reconcile([]SourceCountry{{
		Name:       "Testland",
		Capital:    "Cap",
		Region:     "TestRegion",
		Population: 1_000_000,
		FlagURL:    "http://x/flag.svg",
		Currencies: []string{"TST"},
	}}, map[string]float64{"TST": 10}, refreshedAt)

	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, "Testland", record.Name)
	assert.Equal(t, "testland", record.NameKey)
	assert.Equal(t, "Cap", record.Capital)
	assert.Equal(t, "TestRegion", record.Region)
	assert.Equal(t, int64(1_000_000), record.Population)
	assert.Equal(t, "http://x/flag.svg", record.FlagURL)
	assert.Equal(t, "TST", record.CurrencyCode)
	require.NotNil(t, record.ExchangeRate)
	assert.Equal(t, 10.0, *record.ExchangeRate)
	require.NotNil(t, record.EstimatedGDP)
	assert.Equal(t, 150_000_000.0, *record.EstimatedGDP)
	assert.Equal(t, refreshedAt, record.LastRefreshedAt)
}

func TestReconcile_NoCurrencyMeansZeroGDP(t *testing.T) {
	rec := newTestReconciler(t, FixedMultiplier(1500))

	records := rec.Reconcile([]SourceCountry{{
		Name:       "Testland",
		Population: 1_000_000,
	}}, map[string]float64{"TST": 10}, time.Now().UTC())

	require.Len(t, records, 1)
	record := records[0]
	assert.Empty(t, record.CurrencyCode)
	assert.Nil(t, record.ExchangeRate)
	require.NotNil(t, record.EstimatedGDP)
	assert.Equal(t, 0.0, *record.EstimatedGDP)
}

func TestReconcile_UnmappedRateMeansUnknownGDP(t *testing.T) {
	rec := newTestReconciler(t, FixedMultiplier(1500))

	records := rec.Reconcile([]SourceCountry{{
		Name:       "Testland",
		Population: 1_000_000,
		Currencies: []string{"ZZZ"},
	}}, map[string]float64{"TST": 10}, time.Now().UTC())

	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, "ZZZ", record.CurrencyCode)
	assert.Nil(t, record.ExchangeRate)
	assert.Nil(t, record.EstimatedGDP)
}

func TestReconcile_GDPWithinBounds(t *testing.T) {
	rec := newTestReconciler(t, NewUniformMultiplier())

	for i := 0; i < 50; i++ {
		records := rec.Reconcile([]SourceCountry{{
			Name:       "Boundia",
			Population: 7_500_000,
			Currencies: []string{"BND"},
		}}, map[string]float64{"BND": 4}, time.Now().UTC())

		require.Len(t, records, 1)
		gdp := records[0].EstimatedGDP
		require.NotNil(t, gdp)
		assert.GreaterOrEqual(t, *gdp, 7_500_000.0*1000/4)
		assert.LessOrEqual(t, *gdp, 7_500_000.0*2000/4)
	}
}

func TestReconcile_FirstCurrencyWins(t *testing.T) {
	rec := newTestReconciler(t, FixedMultiplier(1200))

	records := rec.Reconcile([]SourceCountry{{
		Name:       "Multi",
		Population: 100,
		Currencies: []string{"aaa", "BBB"},
	}}, map[string]float64{"AAA": 2, "BBB": 5}, time.Now().UTC())

	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, "AAA", record.CurrencyCode)
	require.NotNil(t, record.ExchangeRate)
	assert.Equal(t, 2.0, *record.ExchangeRate)
}

func TestReconcile_SkipsNamelessEntries(t *testing.T) {
	rec := newTestReconciler(t, FixedMultiplier(1500))

	records := rec.Reconcile([]SourceCountry{
		{Name: "  "},
		{Name: "Named", Population: 5},
	}, nil, time.Now().UTC())

	require.Len(t, records, 1)
	assert.Equal(t, "Named", records[0].Name)
}

func TestReconcile_CollapsesDuplicateNames(t *testing.T) {
	rec := newTestReconciler(t, FixedMultiplier(1500))

	records := rec.Reconcile([]SourceCountry{
		{Name: "Testland", Capital: "Old Cap", Population: 100},
		{Name: "Alpha", Population: 1},
		{Name: "TESTLAND", Capital: "New Cap", Population: 200},
	}, nil, time.Now().UTC())

	require.Len(t, records, 2)
	assert.Equal(t, "testland", records[0].NameKey)
	assert.Equal(t, "TESTLAND", records[0].Name, "latest entry wins")
	assert.Equal(t, "New Cap", records[0].Capital)
	assert.Equal(t, int64(200), records[0].Population)
	assert.Equal(t, "Alpha", records[1].Name)

	keys := make(map[string]bool, len(records))
	for _, record := range records {
		assert.False(t, keys[record.NameKey])
		keys[record.NameKey] = true
	}
}

func TestReconcile_UniformTimestampAcrossBatch(t *testing.T) {
	rec := newTestReconciler(t, FixedMultiplier(1500))
	refreshedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	records := rec.Reconcile([]SourceCountry{
		{Name: "A", Currencies: []string{"AAA"}},
		{Name: "B"},
		{Name: "C", Currencies: []string{"ZZZ"}},
	}, map[string]float64{"AAA": 1}, refreshedAt)

	require.Len(t, records, 3)
	for _, record := range records {
		assert.Equal(t, refreshedAt, record.LastRefreshedAt)
	}
}
