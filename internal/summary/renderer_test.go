package summary

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/altura-labs/countryatlas/internal/config"
	"github.com/altura-labs/countryatlas/internal/country/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRenderer(t *testing.T) *ImageRenderer {
	t.Helper()
	cfg := config.Config{SummaryPath: filepath.Join(t.TempDir(), "cache", "summary.png")}
	return New(cfg, zap.NewNop())
}

func fptr(v float64) *float64 { return &v }

func TestRender_ProducesFixedSizePNG(t *testing.T) {
	r := testRenderer(t)

	top := []*domain.CountryRecord{
		{Name: "Alpha", EstimatedGDP: fptr(5_000_000)},
		{Name: "Beta", EstimatedGDP: fptr(3_000_000)},
		{Name: "Gamma", EstimatedGDP: fptr(1_000_000)},
	}
	require.NoError(t, r.Render(3, top, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))

	f, err := os.Open(r.Path())
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestRender_OverwritesPriorArtifact(t *testing.T) {
	r := testRenderer(t)
	at := time.Now().UTC()

	require.NoError(t, r.Render(1, []*domain.CountryRecord{{Name: "Old", EstimatedGDP: fptr(1)}}, at))
	first, err := os.ReadFile(r.Path())
	require.NoError(t, err)

	require.NoError(t, r.Render(1, []*domain.CountryRecord{{Name: "New", EstimatedGDP: fptr(2)}}, at))
	second, err := os.ReadFile(r.Path())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(r.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRender_EmptyRanking(t *testing.T) {
	r := testRenderer(t)
	require.NoError(t, r.Render(0, nil, time.Now().UTC()))

	_, err := os.Stat(r.Path())
	assert.NoError(t, err)
}
