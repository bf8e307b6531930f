package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uu4k/promotimg-back/config"
	"github.com/uu4k/promotimg-back/internal/entity"
	"github.com/uu4k/promotimg-back/internal/pkg/processor"
	"github.com/uu4k/promotimg-back/internal/pkg/workspace"
)

func encodedBaseImage(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(width, height, color.NRGBA{R: 255, A: 255}), imaging.PNG))
	return buf.Bytes()
}

func isRed(c color.Color) bool {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n.R > 200 && n.B < 60
}

func isBlue(c color.Color) bool {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n.B > 200 && n.R < 60
}

// Text and background share a color so the whole text block is uniformly blue.
func TestRunNativeGeometry(t *testing.T) {
	engine, err := processor.NewEngine(config.RenderConfig{Engine: processor.EngineNative, PxPerPoint: 1, VerticalSpacingRatio: -0.25})
	require.NoError(t, err)

	const baseW, baseH = 120, 80

	tests := []struct {
		position entity.Position
		text     string
		check    func(t *testing.T, img image.Image)
	}{
		{
			position: entity.PositionRight,
			text:     "ab\ncd",
			check: func(t *testing.T, img image.Image) {
				assert.Equal(t, baseH, img.Bounds().Dy())
				assert.Greater(t, img.Bounds().Dx(), baseW)
				assert.True(t, isRed(img.At(5, baseH/2)))
				assert.True(t, isBlue(img.At(img.Bounds().Dx()-2, baseH/2)))
			},
		},
		{
			position: entity.PositionLeft,
			text:     "ab",
			check: func(t *testing.T, img image.Image) {
				assert.Equal(t, baseH, img.Bounds().Dy())
				assert.True(t, isBlue(img.At(1, baseH/2)))
				assert.True(t, isRed(img.At(img.Bounds().Dx()-5, baseH/2)))
			},
		},
		{
			position: entity.PositionBottom,
			text:     "sample\ntext",
			check: func(t *testing.T, img image.Image) {
				assert.Equal(t, baseW, img.Bounds().Dx())
				assert.Greater(t, img.Bounds().Dy(), baseH)
				assert.True(t, isRed(img.At(baseW/2, 5)))
				assert.True(t, isBlue(img.At(baseW/2, img.Bounds().Dy()-2)))
			},
		},
		{
			position: entity.PositionTop,
			text:     "sample",
			check: func(t *testing.T, img image.Image) {
				assert.Equal(t, baseW, img.Bounds().Dx())
				assert.True(t, isBlue(img.At(baseW/2, 1)))
				assert.True(t, isRed(img.At(baseW/2, img.Bounds().Dy()-5)))
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.position), func(t *testing.T) {
			root := t.TempDir()
			p := New(engine, workspace.NewFactory(root))

			req := entity.CaptionRequest{
				Text:         tt.text,
				Position:     tt.position,
				TextColor:    "#0000FF",
				BgColor:      "#0000FF",
				TextSizePx:   13,
				BaseImage:    encodedBaseImage(t, baseW, baseH),
				BaseImageExt: ".png",
			}

			var composite image.Image
			err := p.Run(context.Background(), req, func(_ context.Context, res entity.CompositeResult) error {
				img, err := imaging.Open(res.Path)
				composite = img
				return err
			})
			require.NoError(t, err)
			require.NotNil(t, composite)
			tt.check(t, composite)
		})
	}
}

func TestRunNativeRejectsUndecodableBase(t *testing.T) {
	engine, err := processor.NewEngine(config.RenderConfig{Engine: processor.EngineNative})
	require.NoError(t, err)

	req := entity.CaptionRequest{
		Text:         "x",
		Position:     entity.PositionTop,
		TextColor:    "#000000",
		BgColor:      "#FFFFFF",
		TextSizePx:   12,
		BaseImage:    []byte("garbage"),
		BaseImageExt: ".png",
	}
	err = New(engine, workspace.NewFactory(t.TempDir())).Run(context.Background(), req, nil)
	assert.ErrorIs(t, err, entity.ErrInvalidBaseImage)
}
