package refresh

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/altura-labs/countryatlas/internal/country/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

const (
	gdpMultiplierMin = 1000.0
	gdpMultiplierMax = 2000.0
)

// MultiplierSource supplies the random factor of the GDP estimate.
// Injectable so tests can pin it.
type MultiplierSource interface {
	Multiplier() float64
}

type uniformMultiplier struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewUniformMultiplier draws uniformly from [1000, 2000) on every call.
func NewUniformMultiplier() MultiplierSource {
	return &uniformMultiplier{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (u *uniformMultiplier) Multiplier() float64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return gdpMultiplierMin + u.rnd.Float64()*(gdpMultiplierMax-gdpMultiplierMin)
}

// FixedMultiplier always returns the same factor.
type FixedMultiplier float64

func (f FixedMultiplier) Multiplier() float64 { return float64(f) }

// Reconciler turns raw upstream entries plus a rate table into canonical
// records. It is a pure transform apart from ID generation and the
// multiplier draw.
type Reconciler struct {
	log   *zap.Logger
	genID *snowflake.Node
	mult  MultiplierSource
}

func NewReconciler(log *zap.Logger, genID *snowflake.Node, mult MultiplierSource) *Reconciler {
	return &Reconciler{
		log:   log.Named("refresh.reconciler"),
		genID: genID,
		mult:  mult,
	}
}

// Reconcile builds one record per named country. The GDP estimate
// distinguishes three cases: no currency at all stores exactly 0,
// a currency missing from the rate table stores nothing (unknown),
// and a resolved rate stores population x multiplier / rate with a
// fresh multiplier per record.
func (r *Reconciler) Reconcile(countries []SourceCountry, rates map[string]float64, refreshedAt time.Time) []*domain.CountryRecord {
	records := make([]*domain.CountryRecord, 0, len(countries))
	// Upstream entries colliding on the lookup key must collapse to one
	// record, last wins; a multi-row upsert cannot touch the same row twice.
	seen := make(map[string]int, len(countries))
	for _, country := range countries {
		name := strings.TrimSpace(country.Name)
		if name == "" {
			// Upstream contract marks name required; a nameless entry is
			// a broken upstream, not a reason to abort the batch.
			r.log.Warn("skipping country without name")
			continue
		}

		record := &domain.CountryRecord{
			ID:              r.genID.Generate(),
			Name:            name,
			NameKey:         domain.NormalizeName(name),
			Capital:         country.Capital,
			Region:          country.Region,
			Population:      country.Population,
			FlagURL:         country.FlagURL,
			LastRefreshedAt: refreshedAt,
		}

		code := firstCurrencyCode(country.Currencies)
		if code == "" {
			zero := 0.0
			record.EstimatedGDP = &zero
		} else {
			record.CurrencyCode = code
			if rate, ok := rates[code]; ok && rate > 0 {
				gdp := float64(record.Population) * r.mult.Multiplier() / rate
				record.ExchangeRate = &rate
				record.EstimatedGDP = &gdp
			}
		}

		if idx, dup := seen[record.NameKey]; dup {
			r.log.Warn("duplicate country entry, keeping latest",
				zap.String("name_key", record.NameKey))
			records[idx] = record
			continue
		}
		seen[record.NameKey] = len(records)
		records = append(records, record)
	}
	return records
}

func firstCurrencyCode(codes []string) string {
	if len(codes) == 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(codes[0]))
}
