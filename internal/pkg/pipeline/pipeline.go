// Package pipeline turns a caption request into a composite image: the base
// image is written into a scratch workspace, measured, the caption is rendered
// and finally both are appended along the axis given by the text position.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/uu4k/promotimg-back/internal/entity"
	"github.com/uu4k/promotimg-back/internal/pkg/processor"
	"github.com/uu4k/promotimg-back/internal/pkg/workspace"
)

type State int

const (
	ReadBaseImage State = iota
	MeasureBaseImage
	RenderText
	JoinImages
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case ReadBaseImage:
		return "read_base_image"
	case MeasureBaseImage:
		return "measure_base_image"
	case RenderText:
		return "render_text"
	case JoinImages:
		return "join_images"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// StepError reports the step a run failed in.
type StepError struct {
	State State
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// ConsumeFunc receives the composite while the workspace still exists.
type ConsumeFunc func(ctx context.Context, result entity.CompositeResult) error

type Pipeline struct {
	renderer   processor.TextRenderer
	compositor processor.Compositor
	measurer   processor.Measurer
	workspaces workspace.Factory
	onState    func(State)
}

type Option func(*Pipeline)

// WithStateHook calls fn every time a run enters a state.
func WithStateHook(fn func(State)) Option {
	return func(p *Pipeline) {
		p.onState = fn
	}
}

func New(engine *processor.Engine, workspaces workspace.Factory, opts ...Option) *Pipeline {
	p := &Pipeline{
		renderer:   engine.Renderer,
		compositor: engine.Compositor,
		measurer:   engine.Measurer,
		workspaces: workspaces,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type run struct {
	*Pipeline
	req   entity.CaptionRequest
	ws    *workspace.Workspace
	state State
	log   *logrus.Entry
}

// Run executes one invocation. Steps run strictly in sequence and the first
// failure aborts the rest; the workspace is released on every path.
func (p *Pipeline) Run(ctx context.Context, req entity.CaptionRequest, consume ConsumeFunc) error {
	r := &run{
		Pipeline: p,
		req:      req,
		log: logrus.WithFields(logrus.Fields{
			"position":    req.Position,
			"orientation": req.Position.Orientation().String(),
		}),
	}
	r.enter(ReadBaseImage)

	ws, err := p.workspaces.New()
	if err != nil {
		return r.fail(err)
	}
	defer func() {
		if err := ws.Release(); err != nil {
			r.log.WithError(err).Warn("failed to release workspace")
		}
	}()
	r.ws = ws

	base, err := r.writeBaseImage()
	if err != nil {
		return r.fail(err)
	}

	r.enter(MeasureBaseImage)
	dims, err := p.measurer.Measure(ctx, base.Path)
	if err != nil {
		return r.fail(err)
	}
	r.log = r.log.WithFields(logrus.Fields{"width": dims.Width, "height": dims.Height})

	r.enter(RenderText)
	text, err := r.renderText(ctx, dims)
	if err != nil {
		return r.fail(err)
	}

	r.enter(JoinImages)
	joined, err := r.join(ctx, base, text, dims)
	if err != nil {
		return r.fail(err)
	}

	r.enter(Done)
	if consume == nil {
		return nil
	}
	return consume(ctx, entity.CompositeResult{Path: joined.Path, Ext: req.BaseImageExt})
}

func (r *run) enter(s State) {
	r.state = s
	r.log.WithField("state", s.String()).Debug("caption pipeline state")
	if r.onState != nil {
		r.onState(s)
	}
}

func (r *run) fail(err error) error {
	failed := r.state
	entry := r.log.WithError(err).WithField("step", failed.String())

	var renderFailure *entity.RenderFailure
	var joinFailure *entity.JoinFailure
	switch {
	case errors.As(err, &renderFailure):
		entry = entry.WithFields(logrus.Fields{"command": renderFailure.Command, "output": renderFailure.Output})
	case errors.As(err, &joinFailure):
		entry = entry.WithFields(logrus.Fields{"command": joinFailure.Command, "output": joinFailure.Output})
	}
	entry.Error("caption pipeline failed")

	r.enter(Failed)
	return &StepError{State: failed, Err: err}
}

func (r *run) writeBaseImage() (entity.RenderedImage, error) {
	path := r.ws.Path("baseimage", r.req.BaseImageExt)
	if err := os.WriteFile(path, r.req.BaseImage, 0644); err != nil {
		return entity.RenderedImage{}, fmt.Errorf("failed to write base image: %w", err)
	}
	return entity.RenderedImage{Path: path}, nil
}

func (r *run) renderText(ctx context.Context, dims entity.Dimensions) (entity.RenderedImage, error) {
	style := processor.TextStyle{
		SizePx:     r.req.TextSizePx,
		Color:      r.req.TextColor,
		Background: r.req.BgColor,
	}
	ext := r.req.BaseImageExt

	if r.req.Position.Orientation() == entity.Horizontal {
		return r.renderer.RenderHorizontal(ctx, r.req.Text, style, dims.Width, r.ws.Path("textimage", ext))
	}

	segments := processor.TransformVertical(r.req.Text)
	columns := make([]entity.RenderedImage, 0, len(segments))
	for _, segment := range segments {
		column, err := r.renderer.RenderVerticalSegment(ctx, segment, style, dims.Height, r.ws.Path("textcolumn", ext))
		if err != nil {
			return entity.RenderedImage{}, err
		}
		columns = append(columns, column)
	}

	// columns read right to left: the first line ends up rightmost
	slices.Reverse(columns)
	if len(columns) == 1 {
		return columns[0], nil
	}
	return r.compositor.JoinHorizontal(ctx, columns, dims.Height, r.ws.Path("textimage", ext))
}

func (r *run) join(ctx context.Context, base, text entity.RenderedImage, dims entity.Dimensions) (entity.RenderedImage, error) {
	images := []entity.RenderedImage{base, text}
	if r.req.Position.TextFirst() {
		images = []entity.RenderedImage{text, base}
	}

	out := r.ws.Path("joinedimage", r.req.BaseImageExt)
	if r.req.Position.Orientation() == entity.Vertical {
		return r.compositor.JoinHorizontal(ctx, images, dims.Height, out)
	}
	return r.compositor.JoinVertical(ctx, images, dims.Width, out)
}
