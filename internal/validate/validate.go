// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate performs admission checks on documents before conversion.
package validate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// supportedExtensions lists accepted document extensions, lower case.
var supportedExtensions = map[string]bool{
	".docx": true,
	".doc":  true,
}

// Kind classifies a validation failure.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindNotAFile          Kind = "not_a_file"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindUnreadable        Kind = "unreadable"
)

// ValidationError describes why a path was rejected.
type ValidationError struct {
	Path   string
	Kind   Kind
	Reason string
	Err    error
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return e.Err }

// Check runs the admission checks in order and stops at the first failure:
// the path exists, is a regular file, has a supported extension, and at
// least one byte can be read. It returns nil or a *ValidationError.
func Check(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ValidationError{Path: path, Kind: KindNotFound, Reason: "file not found: " + path, Err: err}
		}
		return unreadable(path, err)
	}

	if !info.Mode().IsRegular() {
		return &ValidationError{Path: path, Kind: KindNotAFile, Reason: "not a file: " + path}
	}

	if !IsSupportedFormat(path) {
		return &ValidationError{
			Path:   path,
			Kind:   KindUnsupportedFormat,
			Reason: fmt.Sprintf("unsupported format: %q (only .docx and .doc are supported)", filepath.Ext(path)),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return unreadable(path, err)
	}
	defer f.Close()

	var buf [1]byte
	if _, err := f.Read(buf[:]); err != nil && !errors.Is(err, io.EOF) {
		return unreadable(path, err)
	}
	return nil
}

// Validate reports whether path passes every admission check, and the
// reason when it does not.
func Validate(path string) (bool, string) {
	if err := Check(path); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// IsSupportedFormat reports whether path has a supported extension. It does
// not touch the filesystem.
func IsSupportedFormat(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

func unreadable(path string, err error) *ValidationError {
	if errors.Is(err, fs.ErrPermission) {
		return &ValidationError{Path: path, Kind: KindUnreadable, Reason: "permission denied: " + path, Err: err}
	}
	return &ValidationError{Path: path, Kind: KindUnreadable, Reason: fmt.Sprintf("cannot read file: %v", err), Err: err}
}
