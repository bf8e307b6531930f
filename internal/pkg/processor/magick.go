package processor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/uu4k/promotimg-back/internal/entity"
)

var errNoImages = errors.New("no images to join")

// caption: reads a file for text starting with '@' and expands % escapes.
var captionEscaper = strings.NewReplacer("%", "%%")

func captionArg(text string) string {
	if text == "" {
		// an empty line still occupies a column
		return "caption: "
	}
	text = captionEscaper.Replace(text)
	if strings.HasPrefix(text, "@") {
		text = `\` + text
	}
	return "caption:" + text
}

func formatPoints(pt float64) string {
	return strconv.FormatFloat(pt, 'f', -1, 64)
}

type magickRenderer struct {
	runner CommandRunner
	binary string
	opts   Options
}

func NewMagickRenderer(runner CommandRunner, binary string, opts Options) TextRenderer {
	if binary == "" {
		binary = "convert"
	}
	return &magickRenderer{runner: runner, binary: binary, opts: opts}
}

func (r *magickRenderer) RenderHorizontal(ctx context.Context, text string, style TextStyle, width int, out string) (entity.RenderedImage, error) {
	pt := r.opts.PointSize(style.SizePx)
	args := []string{
		"-font", r.opts.FontPath,
		"-size", fmt.Sprintf("%dx", width),
		"-pointsize", formatPoints(pt),
		"-gravity", "center",
		"-background", style.Background,
		"-fill", style.Color,
		captionArg(text),
		out,
	}
	return r.render(ctx, args, out)
}

func (r *magickRenderer) RenderVerticalSegment(ctx context.Context, segment string, style TextStyle, height int, out string) (entity.RenderedImage, error) {
	pt := r.opts.PointSize(style.SizePx)
	args := []string{
		"-font", r.opts.FontPath,
		"-size", fmt.Sprintf("x%d", height),
		"-pointsize", formatPoints(pt),
		"-interline-spacing", strconv.Itoa(r.opts.VerticalSpacing(pt)),
		"-gravity", "center",
		"-background", style.Background,
		"-fill", style.Color,
		captionArg(segment),
		out,
	}
	return r.render(ctx, args, out)
}

func (r *magickRenderer) render(ctx context.Context, args []string, out string) (entity.RenderedImage, error) {
	res, err := r.runner.Run(ctx, r.binary, args...)
	if err != nil {
		return entity.RenderedImage{}, &entity.RenderFailure{
			Command: commandLine(r.binary, args),
			Output:  string(res.Stderr),
			Err:     err,
		}
	}
	return entity.RenderedImage{Path: out}, nil
}

type magickCompositor struct {
	runner CommandRunner
	binary string
}

func NewMagickCompositor(runner CommandRunner, binary string) Compositor {
	if binary == "" {
		binary = "convert"
	}
	return &magickCompositor{runner: runner, binary: binary}
}

func (c *magickCompositor) JoinVertical(ctx context.Context, images []entity.RenderedImage, width int, out string) (entity.RenderedImage, error) {
	return c.join(ctx, "-append", images, fmt.Sprintf("%dx", width), out)
}

func (c *magickCompositor) JoinHorizontal(ctx context.Context, images []entity.RenderedImage, height int, out string) (entity.RenderedImage, error) {
	return c.join(ctx, "+append", images, fmt.Sprintf("x%d", height), out)
}

func (c *magickCompositor) join(ctx context.Context, mode string, images []entity.RenderedImage, geometry, out string) (entity.RenderedImage, error) {
	args := make([]string, 0, len(images)+4)
	args = append(args, mode)
	for _, img := range images {
		args = append(args, img.Path)
	}
	args = append(args, "-geometry", geometry, out)

	if len(images) == 0 {
		return entity.RenderedImage{}, &entity.JoinFailure{Command: commandLine(c.binary, args), Err: errNoImages}
	}

	res, err := c.runner.Run(ctx, c.binary, args...)
	if err != nil {
		return entity.RenderedImage{}, &entity.JoinFailure{
			Command: commandLine(c.binary, args),
			Output:  string(res.Stderr),
			Err:     err,
		}
	}
	return entity.RenderedImage{Path: out}, nil
}
