package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/altura-labs/countryatlas/internal/config"
	"github.com/altura-labs/countryatlas/internal/country/domain"
	"github.com/dustin/go-humanize"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	canvasWidth  = 800
	canvasHeight = 600

	padding   = 40
	rowHeight = 64
)

// ImageRenderer draws the top-ranked countries into a fixed-size PNG and
// atomically replaces the cached artifact.
type ImageRenderer struct {
	path string
	log  *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) *ImageRenderer {
	return &ImageRenderer{
		path: cfg.SummaryPath,
		log:  log.Named("summary.renderer"),
	}
}

// Path is where the artifact is cached.
func (r *ImageRenderer) Path() string {
	return r.path
}

func (r *ImageRenderer) Render(total int64, top []*domain.CountryRecord, refreshedAt time.Time) error {
	start := time.Now()
	dc := gg.NewContext(canvasWidth, canvasHeight)

	// Background gradient, dark blue top to near-black bottom.
	for y := 0; y < canvasHeight; y++ {
		t := float64(y) / float64(canvasHeight)
		dc.SetRGB(0.05+0.02*t, 0.07+0.03*t, 0.16-0.08*t)
		dc.DrawLine(0, float64(y), canvasWidth, float64(y))
		dc.Stroke()
	}

	titleFace, err := loadFont(gobold.TTF, 34)
	if err != nil {
		return fmt.Errorf("load title font: %w", err)
	}
	headerFace, err := loadFont(goregular.TTF, 20)
	if err != nil {
		return fmt.Errorf("load header font: %w", err)
	}
	rowFace, err := loadFont(goregular.TTF, 24)
	if err != nil {
		return fmt.Errorf("load row font: %w", err)
	}
	valueFace, err := loadFont(gomono.TTF, 22)
	if err != nil {
		return fmt.Errorf("load value font: %w", err)
	}

	dc.SetFontFace(titleFace)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored("Top Countries by Estimated GDP", canvasWidth/2, 60, 0.5, 0.5)

	dc.SetFontFace(headerFace)
	dc.SetRGB(0.7, 0.75, 0.85)
	dc.DrawStringAnchored(fmt.Sprintf("%d countries tracked", total), canvasWidth/2, 100, 0.5, 0.5)

	y := 160.0
	for i, record := range top {
		// Rank badge, gold/silver/bronze for the podium.
		switch i {
		case 0:
			dc.SetRGB(1, 0.84, 0)
		case 1:
			dc.SetRGB(0.75, 0.75, 0.75)
		case 2:
			dc.SetRGB(0.8, 0.5, 0.2)
		default:
			dc.SetRGB(0.35, 0.4, 0.5)
		}
		dc.DrawCircle(padding+16, y, 16)
		dc.Fill()

		dc.SetFontFace(headerFace)
		dc.SetRGB(0.05, 0.05, 0.1)
		dc.DrawStringAnchored(fmt.Sprintf("%d", i+1), padding+16, y, 0.5, 0.35)

		name := record.Name
		if len(name) > 28 {
			name = name[:27] + "…"
		}
		dc.SetFontFace(rowFace)
		dc.SetRGB(0.95, 0.95, 1)
		dc.DrawStringAnchored(name, padding+48, y, 0, 0.35)

		dc.SetFontFace(valueFace)
		dc.SetRGB(0.6, 0.95, 0.7)
		dc.DrawStringAnchored(formatGDP(record.EstimatedGDP), canvasWidth-padding, y, 1, 0.35)

		dc.SetRGBA(0.5, 0.55, 0.65, 0.25)
		dc.SetLineWidth(1)
		dc.DrawLine(padding, y+rowHeight/2, canvasWidth-padding, y+rowHeight/2)
		dc.Stroke()

		y += rowHeight
	}

	if len(top) == 0 {
		dc.SetFontFace(rowFace)
		dc.SetRGB(0.6, 0.65, 0.75)
		dc.DrawStringAnchored("No ranked countries yet", canvasWidth/2, canvasHeight/2, 0.5, 0.5)
	}

	dc.SetFontFace(headerFace)
	dc.SetRGB(0.55, 0.6, 0.7)
	dc.DrawStringAnchored(
		"Refreshed "+refreshedAt.UTC().Format("02 Jan 2006 15:04:05 MST"),
		canvasWidth/2, canvasHeight-40, 0.5, 0.5,
	)

	if err := r.writeAtomic(dc); err != nil {
		return err
	}

	r.log.Info("summary artifact rendered",
		zap.String("path", r.path),
		zap.Int("ranked", len(top)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

// writeAtomic writes to a temp file and renames it over the artifact so
// readers never observe a half-written image.
func (r *ImageRenderer) writeAtomic(dc *gg.Context) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".summary-*.png")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	if err := dc.EncodePNG(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}

func formatGDP(gdp *float64) string {
	if gdp == nil {
		return "unknown"
	}
	return "$" + humanize.CommafWithDigits(*gdp, 0)
}

func loadFont(data []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		Hinting: font.HintingFull,
	}), nil
}
