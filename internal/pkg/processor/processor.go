package processor

import (
	"context"
	"fmt"
	"math"

	"github.com/uu4k/promotimg-back/config"
	"github.com/uu4k/promotimg-back/internal/entity"
)

const (
	EngineMagick = "magick"
	EngineNative = "native"
)

type TextStyle struct {
	SizePx     float64
	Color      string
	Background string
}

// TextRenderer rasterizes caption text into an image file at out.
type TextRenderer interface {
	// RenderHorizontal keeps the image width fixed and lets the height grow.
	RenderHorizontal(ctx context.Context, text string, style TextStyle, width int, out string) (entity.RenderedImage, error)
	// RenderVerticalSegment keeps the image height fixed and lets the width grow.
	RenderVerticalSegment(ctx context.Context, segment string, style TextStyle, height int, out string) (entity.RenderedImage, error)
}

// Compositor appends images in the given order. Every input is scaled to the
// fixed dimension first.
type Compositor interface {
	JoinVertical(ctx context.Context, images []entity.RenderedImage, width int, out string) (entity.RenderedImage, error)
	JoinHorizontal(ctx context.Context, images []entity.RenderedImage, height int, out string) (entity.RenderedImage, error)
}

type Measurer interface {
	Measure(ctx context.Context, path string) (entity.Dimensions, error)
}

type Options struct {
	FontPath string
	// pixels per point; 1 means the requested pixel size is passed through as points
	PxPerPoint           float64
	VerticalSpacingRatio float64
}

func (o Options) PointSize(px float64) float64 {
	if o.PxPerPoint <= 0 {
		return px
	}
	return px / o.PxPerPoint
}

// VerticalSpacing is the interline spacing for stacked glyphs, usually negative.
func (o Options) VerticalSpacing(pointSize float64) int {
	return int(math.Round(pointSize * o.VerticalSpacingRatio))
}

type Engine struct {
	Renderer   TextRenderer
	Compositor Compositor
	Measurer   Measurer
}

func NewEngine(cfg config.RenderConfig) (*Engine, error) {
	opts := Options{
		FontPath:             cfg.FontPath,
		PxPerPoint:           cfg.PxPerPoint,
		VerticalSpacingRatio: cfg.VerticalSpacingRatio,
	}

	switch cfg.Engine {
	case "", EngineMagick:
		runner := NewCommandRunner()
		return &Engine{
			Renderer:   NewMagickRenderer(runner, cfg.ConvertBinary, opts),
			Compositor: NewMagickCompositor(runner, cfg.ConvertBinary),
			Measurer:   NewIdentifyMeasurer(runner, cfg.IdentifyBinary),
		}, nil
	case EngineNative:
		renderer, err := NewNativeRenderer(opts)
		if err != nil {
			return nil, err
		}
		return &Engine{
			Renderer:   renderer,
			Compositor: NewNativeCompositor(),
			Measurer:   NewImageMeasurer(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown render engine %q", cfg.Engine)
	}
}
