package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCaptionNotFound     = errors.New("caption not found")
	ErrUnsupportedImage    = errors.New("unsupported image type")
	ErrInvalidBaseImage    = errors.New("invalid base image")
	ErrUnsupportedEncoding = errors.New("request body must be application/json")
	ErrInvalidTextSize     = errors.New("textsize must be a finite number")
)

type FieldError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
}

// ValidationError lists every request field that violated a constraint.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RenderFailure is returned when the text rasterizer fails.
type RenderFailure struct {
	Command string
	Output  string
	Err     error
}

func (e *RenderFailure) Error() string {
	return fmt.Sprintf("render text image: %v", e.Err)
}

func (e *RenderFailure) Unwrap() error { return e.Err }

// JoinFailure is returned when images could not be appended together.
type JoinFailure struct {
	Command string
	Output  string
	Err     error
}

func (e *JoinFailure) Error() string {
	return fmt.Sprintf("join images: %v", e.Err)
}

func (e *JoinFailure) Unwrap() error { return e.Err }

type StorageFailure struct {
	Object string
	Err    error
}

func (e *StorageFailure) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Object, e.Err)
}

func (e *StorageFailure) Unwrap() error { return e.Err }
