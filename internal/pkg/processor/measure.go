package processor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/uu4k/promotimg-back/internal/entity"
)

type identifyMeasurer struct {
	runner CommandRunner
	binary string
}

// NewIdentifyMeasurer reads image dimensions with ImageMagick identify.
func NewIdentifyMeasurer(runner CommandRunner, binary string) Measurer {
	if binary == "" {
		binary = "identify"
	}
	return &identifyMeasurer{runner: runner, binary: binary}
}

func (m *identifyMeasurer) Measure(ctx context.Context, path string) (entity.Dimensions, error) {
	// [0] limits animated images to their first frame
	res, err := m.runner.Run(ctx, m.binary, "-format", "%wx%h", path+"[0]")
	if err != nil {
		return entity.Dimensions{}, fmt.Errorf("%w: identify: %v: %s", entity.ErrInvalidBaseImage, err, strings.TrimSpace(string(res.Stderr)))
	}
	return parseDimensions(string(res.Stdout))
}

func parseDimensions(s string) (entity.Dimensions, error) {
	w, h, ok := strings.Cut(strings.TrimSpace(s), "x")
	if !ok {
		return entity.Dimensions{}, fmt.Errorf("%w: unexpected size %q", entity.ErrInvalidBaseImage, s)
	}
	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil {
		return entity.Dimensions{}, fmt.Errorf("%w: unexpected size %q", entity.ErrInvalidBaseImage, s)
	}
	return checkDimensions(entity.Dimensions{Width: width, Height: height})
}

func checkDimensions(d entity.Dimensions) (entity.Dimensions, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return entity.Dimensions{}, fmt.Errorf("%w: empty image %dx%d", entity.ErrInvalidBaseImage, d.Width, d.Height)
	}
	return d, nil
}

type imageMeasurer struct{}

// NewImageMeasurer decodes the image in process.
func NewImageMeasurer() Measurer {
	return imageMeasurer{}
}

func (imageMeasurer) Measure(ctx context.Context, path string) (entity.Dimensions, error) {
	if err := ctx.Err(); err != nil {
		return entity.Dimensions{}, err
	}
	img, err := imaging.Open(path)
	if err != nil {
		return entity.Dimensions{}, fmt.Errorf("%w: %v", entity.ErrInvalidBaseImage, err)
	}
	b := img.Bounds()
	return checkDimensions(entity.Dimensions{Width: b.Dx(), Height: b.Dy()})
}
