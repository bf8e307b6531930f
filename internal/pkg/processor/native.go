package processor

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/uu4k/promotimg-back/internal/entity"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	nativeLineSpacing = 1.2
	nativePadding     = 0.25 // of the font height
)

type nativeRenderer struct {
	font *truetype.Font
	opts Options
}

// NewNativeRenderer draws captions in process. Without a font file it falls
// back to a fixed 7x13 bitmap face that ignores the requested size.
func NewNativeRenderer(opts Options) (TextRenderer, error) {
	r := &nativeRenderer{opts: opts}
	if opts.FontPath == "" {
		return r, nil
	}

	fontBytes, err := os.ReadFile(opts.FontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", opts.FontPath, err)
	}
	r.font, err = truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", opts.FontPath, err)
	}
	return r, nil
}

func (r *nativeRenderer) face(pt float64) font.Face {
	if r.font == nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(r.font, &truetype.Options{Size: pt})
}

func (r *nativeRenderer) RenderHorizontal(ctx context.Context, text string, style TextStyle, width int, out string) (entity.RenderedImage, error) {
	fg, bg, err := parseStyleColors(style)
	if err != nil {
		return entity.RenderedImage{}, r.failure("horizontal", out, err)
	}
	if err := ctx.Err(); err != nil {
		return entity.RenderedImage{}, r.failure("horizontal", out, err)
	}

	face := r.face(r.opts.PointSize(style.SizePx))

	probe := gg.NewContext(width, 1)
	probe.SetFontFace(face)
	lines := probe.WordWrap(text, float64(width))
	fh := probe.FontHeight()
	textHeight := float64(len(lines))*fh*nativeLineSpacing - (nativeLineSpacing-1)*fh
	height := int(math.Ceil(textHeight + 2*fh*nativePadding))
	if height < 1 {
		height = 1
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()
	dc.SetColor(fg)
	dc.SetFontFace(face)
	dc.DrawStringWrapped(text, float64(width)/2, float64(height)/2, 0.5, 0.5, float64(width), nativeLineSpacing, gg.AlignCenter)

	if err := imaging.Save(dc.Image(), out); err != nil {
		return entity.RenderedImage{}, r.failure("horizontal", out, err)
	}
	return entity.RenderedImage{Path: out}, nil
}

func (r *nativeRenderer) RenderVerticalSegment(ctx context.Context, segment string, style TextStyle, height int, out string) (entity.RenderedImage, error) {
	fg, bg, err := parseStyleColors(style)
	if err != nil {
		return entity.RenderedImage{}, r.failure("vertical", out, err)
	}
	if err := ctx.Err(); err != nil {
		return entity.RenderedImage{}, r.failure("vertical", out, err)
	}

	pt := r.opts.PointSize(style.SizePx)
	face := r.face(pt)
	glyphs := strings.Split(segment, "\n")

	probe := gg.NewContext(1, height)
	probe.SetFontFace(face)
	fh := probe.FontHeight()
	step := math.Max(fh+float64(r.opts.VerticalSpacing(pt)), 1)

	var columnWidth float64
	for _, g := range glyphs {
		w, _ := probe.MeasureString(g)
		columnWidth = math.Max(columnWidth, w)
	}
	width := int(math.Ceil(columnWidth + 2*fh*nativePadding))
	if width < 1 {
		width = 1
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()
	dc.SetColor(fg)
	dc.SetFontFace(face)

	total := step*float64(len(glyphs)-1) + fh
	top := (float64(height) - total) / 2
	for i, g := range glyphs {
		dc.DrawStringAnchored(g, float64(width)/2, top+float64(i)*step+fh/2, 0.5, 0.5)
	}

	if err := imaging.Save(dc.Image(), out); err != nil {
		return entity.RenderedImage{}, r.failure("vertical", out, err)
	}
	return entity.RenderedImage{Path: out}, nil
}

func (r *nativeRenderer) failure(mode, out string, err error) error {
	return &entity.RenderFailure{Command: fmt.Sprintf("native %s render -> %s", mode, out), Err: err}
}

func parseStyleColors(style TextStyle) (color.Color, color.Color, error) {
	fg, err := colorful.Hex(style.Color)
	if err != nil {
		return nil, nil, fmt.Errorf("text color %q: %w", style.Color, err)
	}
	bg, err := colorful.Hex(style.Background)
	if err != nil {
		return nil, nil, fmt.Errorf("background color %q: %w", style.Background, err)
	}
	return fg, bg, nil
}

type nativeCompositor struct{}

// NewNativeCompositor appends images in process with imaging.
func NewNativeCompositor() Compositor {
	return nativeCompositor{}
}

func (c nativeCompositor) JoinVertical(ctx context.Context, images []entity.RenderedImage, width int, out string) (entity.RenderedImage, error) {
	loaded, err := c.load(ctx, images, func(img image.Image) image.Image {
		if img.Bounds().Dx() == width {
			return img
		}
		return imaging.Resize(img, width, 0, imaging.Lanczos)
	})
	if err != nil {
		return entity.RenderedImage{}, c.failure("-append", out, err)
	}

	var height int
	for _, img := range loaded {
		height += img.Bounds().Dy()
	}

	dst := imaging.New(width, height, color.NRGBA{})
	y := 0
	for _, img := range loaded {
		dst = imaging.Paste(dst, img, image.Pt(0, y))
		y += img.Bounds().Dy()
	}
	return c.save(dst, "-append", out)
}

func (c nativeCompositor) JoinHorizontal(ctx context.Context, images []entity.RenderedImage, height int, out string) (entity.RenderedImage, error) {
	loaded, err := c.load(ctx, images, func(img image.Image) image.Image {
		if img.Bounds().Dy() == height {
			return img
		}
		return imaging.Resize(img, 0, height, imaging.Lanczos)
	})
	if err != nil {
		return entity.RenderedImage{}, c.failure("+append", out, err)
	}

	var width int
	for _, img := range loaded {
		width += img.Bounds().Dx()
	}

	dst := imaging.New(width, height, color.NRGBA{})
	x := 0
	for _, img := range loaded {
		dst = imaging.Paste(dst, img, image.Pt(x, 0))
		x += img.Bounds().Dx()
	}
	return c.save(dst, "+append", out)
}

func (c nativeCompositor) load(ctx context.Context, images []entity.RenderedImage, fit func(image.Image) image.Image) ([]image.Image, error) {
	if len(images) == 0 {
		return nil, errNoImages
	}

	loaded := make([]image.Image, 0, len(images))
	for _, ri := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := imaging.Open(ri.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", ri.Path, err)
		}
		loaded = append(loaded, fit(img))
	}
	return loaded, nil
}

func (c nativeCompositor) save(img image.Image, mode, out string) (entity.RenderedImage, error) {
	if err := imaging.Save(img, out); err != nil {
		return entity.RenderedImage{}, c.failure(mode, out, err)
	}
	return entity.RenderedImage{Path: out}, nil
}

func (c nativeCompositor) failure(mode, out string, err error) error {
	return &entity.JoinFailure{Command: fmt.Sprintf("native %s -> %s", mode, out), Err: err}
}
