package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

type Position string

const (
	PositionRight  Position = "right"
	PositionLeft   Position = "left"
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

func (p Position) Valid() bool {
	switch p {
	case PositionRight, PositionLeft, PositionTop, PositionBottom:
		return true
	}
	return false
}

// Orientation of the caption text: columns beside the image, rows above or below it.
func (p Position) Orientation() Orientation {
	if p == PositionRight || p == PositionLeft {
		return Vertical
	}
	return Horizontal
}

// TextFirst reports whether the text block precedes the base image along the join axis.
func (p Position) TextFirst() bool {
	return p == PositionLeft || p == PositionTop
}

// TextSize accepts both 22 and "22".
type TextSize float64

func (s *TextSize) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var v float64
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: got %q", ErrInvalidTextSize, raw)
		}
		v = parsed
	} else if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	// ParseFloat accepts "Inf" and "NaN"
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("%w: got %v", ErrInvalidTextSize, v)
	}
	*s = TextSize(v)
	return nil
}

// CaptionPayload is the JSON body of a caption request. Text may be empty but
// must be present.
type CaptionPayload struct {
	Text          *string  `json:"text" binding:"required"`
	TextPosition  Position `json:"textposition" binding:"required,oneof=right left top bottom"`
	TextColor     string   `json:"textcolor" binding:"required,rgbhex"`
	BgColor       string   `json:"bgcolor" binding:"required,rgbhex"`
	TextSize      TextSize `json:"textsize" binding:"required,gt=0"`
	BaseImageName string   `json:"baseimagename" binding:"required"`
	BaseImage     string   `json:"baseimage" binding:"required,base64"`
}

type CaptionRequest struct {
	Text         string
	Position     Position
	TextColor    string
	BgColor      string
	TextSizePx   float64
	BaseImage    []byte
	BaseImageExt string
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type RenderedImage struct {
	Path string
}

type CompositeResult struct {
	Path string
	Ext  string
}

type CaptionResponse struct {
	URL string `json:"url"`
}

type CaptionRecord struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Position   Position  `json:"textposition"`
	TextSizePx float64   `json:"textsize"`
	Ext        string    `json:"ext"`
	CreatedAt  time.Time `json:"created_at"`
}

type CaptionCreatedEvent struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Position  Position  `json:"textposition"`
	CreatedAt time.Time `json:"created_at"`
}
