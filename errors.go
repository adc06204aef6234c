package jsonconv

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/Station-Manager/jsonconv/node"
)

var (
	// ErrUnsupportedType matches errors raised when no adapter, including the fallback,
	// can handle a value or target type.
	ErrUnsupportedType = errors.New("jsonconv: unsupported type")
	// ErrConversionFailure matches errors raised when a matched adapter cannot coerce a
	// concrete value. These are the only errors IgnoreConversionErrors suppresses.
	ErrConversionFailure = errors.New("jsonconv: conversion failure")
	// ErrSecurityOptOut matches errors raised for types that must be explicitly enabled
	// before they are resolved from input, such as type names.
	ErrSecurityOptOut = errors.New("jsonconv: type resolution not enabled")
)

// UnsupportedTypeError reports a value or target type nothing can convert.
type UnsupportedTypeError struct {
	Path string
	Type reflect.Type
	// Node is the kind of the source node when deserializing, zero when serializing.
	Node node.Kind
}

func (e *UnsupportedTypeError) Error() string {
	if e.Node != 0 {
		return fmt.Sprintf("jsonconv: cannot deserialize %s into %s at %s", e.Node, typeString(e.Type), e.Path)
	}
	return fmt.Sprintf("jsonconv: cannot serialize %s at %s", typeString(e.Type), e.Path)
}

func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

// ConversionError reports a value a matched adapter could not coerce.
type ConversionError struct {
	Path string
	Type reflect.Type
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("jsonconv: converting %s at %s: %v", typeString(e.Type), e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversionFailure }

// SecurityOptOutError reports a name that would resolve a type the caller never enabled.
type SecurityOptOutError struct {
	Path string
	Type reflect.Type
	Name string
}

func (e *SecurityOptOutError) Error() string {
	return fmt.Sprintf("jsonconv: resolving %q as %s at %s requires explicit registration", e.Name, typeString(e.Type), e.Path)
}

func (e *SecurityOptOutError) Is(target error) bool { return target == ErrSecurityOptOut }

// suppressible reports whether IgnoreConversionErrors may swallow err.
func suppressible(err error) bool {
	return errors.Is(err, ErrConversionFailure) && !errors.Is(err, ErrUnsupportedType) && !errors.Is(err, ErrSecurityOptOut)
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
