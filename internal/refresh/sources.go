package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/altura-labs/countryatlas/internal/config"
	"go.uber.org/zap"
)

// SourceCountry is one entry of the country reference upstream, already
// lifted out of its wire shape.
type SourceCountry struct {
	Name       string
	Capital    string
	Region     string
	Population int64
	FlagURL    string
	Currencies []string
}

// CountrySource fetches the country reference table.
type CountrySource interface {
	FetchCountries(ctx context.Context) ([]SourceCountry, error)
}

// RateSource fetches the exchange rate table, keyed by currency code
// relative to a single base currency.
type RateSource interface {
	FetchRates(ctx context.Context) (map[string]float64, error)
}

type wireCurrency struct {
	Code string `json:"code"`
}

type wireCountry struct {
	Name       string          `json:"name"`
	Capital    string          `json:"capital"`
	Region     string          `json:"region"`
	Population json.RawMessage `json:"population"`
	Flag       string          `json:"flag"`
	Currencies []wireCurrency  `json:"currencies"`
}

type wireRates struct {
	Rates map[string]float64 `json:"rates"`
}

type countriesClient struct {
	holder *config.RefreshConfigHolder
	log    *zap.Logger
}

func NewCountrySource(holder *config.RefreshConfigHolder, log *zap.Logger) CountrySource {
	return &countriesClient{holder: holder, log: log.Named("source.countries")}
}

func (c *countriesClient) FetchCountries(ctx context.Context) ([]SourceCountry, error) {
	cfg := c.holder.Get()

	var entries []wireCountry
	if err := fetchJSON(ctx, cfg, cfg.CountriesURL, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCountriesUnavailable, err)
	}

	countries := make([]SourceCountry, 0, len(entries))
	for _, entry := range entries {
		codes := make([]string, 0, len(entry.Currencies))
		for _, currency := range entry.Currencies {
			codes = append(codes, currency.Code)
		}
		countries = append(countries, SourceCountry{
			Name:       entry.Name,
			Capital:    entry.Capital,
			Region:     entry.Region,
			Population: parsePopulation(entry.Population),
			FlagURL:    entry.Flag,
			Currencies: codes,
		})
	}
	c.log.Debug("fetched countries", zap.Int("count", len(countries)))
	return countries, nil
}

type ratesClient struct {
	holder *config.RefreshConfigHolder
	log    *zap.Logger
}

func NewRateSource(holder *config.RefreshConfigHolder, log *zap.Logger) RateSource {
	return &ratesClient{holder: holder, log: log.Named("source.rates")}
}

func (c *ratesClient) FetchRates(ctx context.Context) (map[string]float64, error) {
	cfg := c.holder.Get()

	var payload wireRates
	if err := fetchJSON(ctx, cfg, cfg.RatesURL, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRatesUnavailable, err)
	}
	if payload.Rates == nil {
		return nil, fmt.Errorf("%w: response has no rates table", ErrRatesUnavailable)
	}

	rates := make(map[string]float64, len(payload.Rates))
	for code, rate := range payload.Rates {
		rates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	c.log.Debug("fetched rates", zap.Int("count", len(rates)))
	return rates, nil
}

func fetchJSON(ctx context.Context, cfg config.RefreshConfig, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: cfg.FetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// parsePopulation tolerates missing, null, string-wrapped or otherwise
// malformed population values by falling back to 0.
func parsePopulation(raw json.RawMessage) int64 {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0
	}
	trimmed = strings.Trim(trimmed, `"`)
	if value, err := strconv.ParseInt(trimmed, 10, 64); err == nil && value >= 0 {
		return value
	}
	if value, err := strconv.ParseFloat(trimmed, 64); err == nil && value >= 0 {
		return int64(value)
	}
	return 0
}
