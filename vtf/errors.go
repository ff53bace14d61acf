package vtf

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHeader is returned when the fixed header is short, carries
	// the wrong signature or has invalid dimensions.
	ErrMalformedHeader = errors.New("vtf: malformed header")
	// ErrLoad means the imaging library could not parse the file body.
	ErrLoad = errors.New("vtf: load failed")
	// ErrConversion means the pixel-format conversion to RGB888 failed.
	ErrConversion = errors.New("vtf: conversion failed")
	// ErrUnsupportedFormat is returned by the generic path when no decoder
	// recognizes the data.
	ErrUnsupportedFormat = errors.New("vtf: unsupported image format")
	// ErrDecode is returned by the generic path when a registered decoder
	// recognized the data but failed on it.
	ErrDecode = errors.New("vtf: decode failed")
)

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedHeader, fmt.Sprintf(format, args...))
}

// LoadError carries the imaging library's last error message.
type LoadError struct {
	Msg string
}

func (e *LoadError) Error() string {
	if e.Msg == "" {
		return ErrLoad.Error()
	}
	return ErrLoad.Error() + ": " + e.Msg
}

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// ConversionError carries the imaging library's last error message.
type ConversionError struct {
	Msg string
}

func (e *ConversionError) Error() string {
	if e.Msg == "" {
		return ErrConversion.Error()
	}
	return ErrConversion.Error() + ": " + e.Msg
}

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// DecodeError wraps the failure of a generic image decoder.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrDecode.Error(), e.Format, e.Err)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func (e *DecodeError) Unwrap() error { return e.Err }
