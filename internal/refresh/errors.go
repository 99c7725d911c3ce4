package refresh

import "errors"

// Pipeline failures are attributed to the stage that produced them so
// callers can tell a failing upstream apart from a failing store.
var (
	ErrCountriesUnavailable = errors.New("countries_source_unavailable")
	ErrRatesUnavailable     = errors.New("rates_source_unavailable")
	ErrPersistence          = errors.New("persistence_failure")
)
