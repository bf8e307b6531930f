package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uu4k/promotimg-back/internal/entity"
	"github.com/uu4k/promotimg-back/internal/pkg/processor"
	"github.com/uu4k/promotimg-back/internal/pkg/workspace"
)

type renderCall struct {
	vertical bool
	text     string
	size     int
	out      string
}

type joinCall struct {
	vertical bool
	images   []string
	size     int
	out      string
}

type fakeRenderer struct {
	calls   []renderCall
	failOn  int
	failErr error
}

func (f *fakeRenderer) record(c renderCall) (entity.RenderedImage, error) {
	f.calls = append(f.calls, c)
	if f.failErr != nil && len(f.calls) == f.failOn {
		return entity.RenderedImage{}, f.failErr
	}
	return entity.RenderedImage{Path: c.out}, nil
}

func (f *fakeRenderer) RenderHorizontal(_ context.Context, text string, _ processor.TextStyle, width int, out string) (entity.RenderedImage, error) {
	return f.record(renderCall{text: text, size: width, out: out})
}

func (f *fakeRenderer) RenderVerticalSegment(_ context.Context, segment string, _ processor.TextStyle, height int, out string) (entity.RenderedImage, error) {
	return f.record(renderCall{vertical: true, text: segment, size: height, out: out})
}

type fakeCompositor struct {
	calls   []joinCall
	failErr error
}

func (f *fakeCompositor) record(c joinCall) (entity.RenderedImage, error) {
	f.calls = append(f.calls, c)
	if f.failErr != nil {
		return entity.RenderedImage{}, f.failErr
	}
	return entity.RenderedImage{Path: c.out}, nil
}

func paths(images []entity.RenderedImage) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		out = append(out, img.Path)
	}
	return out
}

func (f *fakeCompositor) JoinVertical(_ context.Context, images []entity.RenderedImage, width int, out string) (entity.RenderedImage, error) {
	return f.record(joinCall{vertical: true, images: paths(images), size: width, out: out})
}

func (f *fakeCompositor) JoinHorizontal(_ context.Context, images []entity.RenderedImage, height int, out string) (entity.RenderedImage, error) {
	return f.record(joinCall{images: paths(images), size: height, out: out})
}

type fakeMeasurer struct {
	dims entity.Dimensions
	err  error
}

func (f fakeMeasurer) Measure(context.Context, string) (entity.Dimensions, error) {
	return f.dims, f.err
}

type fixture struct {
	renderer   *fakeRenderer
	compositor *fakeCompositor
	measurer   fakeMeasurer
	root       string
	states     []State
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		renderer:   &fakeRenderer{},
		compositor: &fakeCompositor{},
		measurer:   fakeMeasurer{dims: entity.Dimensions{Width: 640, Height: 480}},
		root:       t.TempDir(),
	}
}

func (f *fixture) pipeline() *Pipeline {
	engine := &processor.Engine{Renderer: f.renderer, Compositor: f.compositor, Measurer: f.measurer}
	return New(engine, workspace.NewFactory(f.root), WithStateHook(func(s State) {
		f.states = append(f.states, s)
	}))
}

func (f *fixture) assertWorkspaceReleased(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func request(text string, position entity.Position) entity.CaptionRequest {
	return entity.CaptionRequest{
		Text:         text,
		Position:     position,
		TextColor:    "#FFF000",
		BgColor:      "#000FFF",
		TextSizePx:   22,
		BaseImage:    []byte("not really a png"),
		BaseImageExt: ".png",
	}
}

func baseName(p string) string {
	return strings.SplitN(filepath.Base(p), "-", 2)[0]
}

func TestRunRightPlacesColumnsAfterBase(t *testing.T) {
	f := newFixture(t)

	var result entity.CompositeResult
	err := f.pipeline().Run(context.Background(), request("サンプル", entity.PositionRight), func(_ context.Context, res entity.CompositeResult) error {
		result = res
		assert.FileExists(t, filepath.Join(filepath.Dir(res.Path), "baseimage-0.png"))
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []State{ReadBaseImage, MeasureBaseImage, RenderText, JoinImages, Done}, f.states)
	assert.Equal(t, ".png", result.Ext)

	require.Len(t, f.renderer.calls, 1)
	assert.True(t, f.renderer.calls[0].vertical)
	assert.Equal(t, "サ\nン\nプ\nル", f.renderer.calls[0].text)
	assert.Equal(t, 480, f.renderer.calls[0].size)

	// a single column needs no sub-join
	require.Len(t, f.compositor.calls, 1)
	final := f.compositor.calls[0]
	assert.False(t, final.vertical)
	assert.Equal(t, 480, final.size)
	assert.Equal(t, []string{"baseimage", "textcolumn"}, []string{baseName(final.images[0]), baseName(final.images[1])})
	assert.Equal(t, final.out, result.Path)

	f.assertWorkspaceReleased(t)
}

func TestRunVerticalColumnsAreReversed(t *testing.T) {
	f := newFixture(t)

	err := f.pipeline().Run(context.Background(), request("いち\nに\nさん", entity.PositionLeft), nil)
	require.NoError(t, err)

	require.Len(t, f.renderer.calls, 3)
	assert.Equal(t, "い\nち", f.renderer.calls[0].text)
	assert.Equal(t, "に", f.renderer.calls[1].text)
	assert.Equal(t, "さ\nん", f.renderer.calls[2].text)

	require.Len(t, f.compositor.calls, 2)
	sub := f.compositor.calls[0]
	assert.False(t, sub.vertical)
	assert.Equal(t, 480, sub.size)
	assert.Equal(t, []string{f.renderer.calls[2].out, f.renderer.calls[1].out, f.renderer.calls[0].out}, sub.images)

	final := f.compositor.calls[1]
	assert.False(t, final.vertical)
	assert.Equal(t, []string{sub.out}, final.images[:1])
	assert.Equal(t, "baseimage", baseName(final.images[1]))
}

func TestRunHorizontalPositions(t *testing.T) {
	tests := []struct {
		position  entity.Position
		wantFirst string
	}{
		{position: entity.PositionBottom, wantFirst: "baseimage"},
		{position: entity.PositionTop, wantFirst: "textimage"},
	}

	for _, tt := range tests {
		t.Run(string(tt.position), func(t *testing.T) {
			f := newFixture(t)

			err := f.pipeline().Run(context.Background(), request("サンプル\nですよ", tt.position), nil)
			require.NoError(t, err)

			require.Len(t, f.renderer.calls, 1)
			assert.False(t, f.renderer.calls[0].vertical)
			assert.Equal(t, "サンプル\nですよ", f.renderer.calls[0].text)
			assert.Equal(t, 640, f.renderer.calls[0].size)

			require.Len(t, f.compositor.calls, 1)
			final := f.compositor.calls[0]
			assert.True(t, final.vertical)
			assert.Equal(t, 640, final.size)
			assert.Equal(t, tt.wantFirst, baseName(final.images[0]))
		})
	}
}

func TestRunRenderFailure(t *testing.T) {
	f := newFixture(t)
	f.renderer.failOn = 2
	f.renderer.failErr = &entity.RenderFailure{Command: "convert ...", Err: errors.New("exit status 1")}

	consumed := false
	err := f.pipeline().Run(context.Background(), request("あ\nい\nう", entity.PositionRight), func(context.Context, entity.CompositeResult) error {
		consumed = true
		return nil
	})
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, RenderText, stepErr.State)
	var failure *entity.RenderFailure
	assert.ErrorAs(t, err, &failure)

	assert.False(t, consumed)
	assert.Len(t, f.renderer.calls, 2)
	assert.Empty(t, f.compositor.calls)
	assert.Equal(t, []State{ReadBaseImage, MeasureBaseImage, RenderText, Failed}, f.states)
	f.assertWorkspaceReleased(t)
}

func TestRunJoinFailure(t *testing.T) {
	f := newFixture(t)
	f.compositor.failErr = &entity.JoinFailure{Command: "convert -append", Err: errors.New("exit status 1")}

	err := f.pipeline().Run(context.Background(), request("text", entity.PositionBottom), nil)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, JoinImages, stepErr.State)
	assert.Equal(t, Failed, f.states[len(f.states)-1])
	f.assertWorkspaceReleased(t)
}

func TestRunMeasureFailure(t *testing.T) {
	f := newFixture(t)
	f.measurer.err = entity.ErrInvalidBaseImage

	err := f.pipeline().Run(context.Background(), request("text", entity.PositionTop), nil)
	assert.ErrorIs(t, err, entity.ErrInvalidBaseImage)
	assert.Empty(t, f.renderer.calls)
	assert.Equal(t, []State{ReadBaseImage, MeasureBaseImage, Failed}, f.states)
	f.assertWorkspaceReleased(t)
}

func TestRunConsumeErrorIsReturned(t *testing.T) {
	f := newFixture(t)
	uploadErr := &entity.StorageFailure{Object: "x.png", Err: errors.New("bucket gone")}

	err := f.pipeline().Run(context.Background(), request("text", entity.PositionTop), func(context.Context, entity.CompositeResult) error {
		return uploadErr
	})
	assert.ErrorIs(t, err, uploadErr)
	assert.Equal(t, Done, f.states[len(f.states)-1])
	f.assertWorkspaceReleased(t)
}
