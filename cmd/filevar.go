// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cmd

import (
	"io"
	"os"

	"github.com/juju/errors"
)

// FileVar represents a path to a file given on the command line.
type FileVar struct {
	// Path is the path to the file.
	Path string
}

// Set stores the path.
func (f *FileVar) Set(v string) error {
	if v == "" {
		return errors.NotValidf("empty path")
	}
	f.Path = v
	return nil
}

// IsSet reports whether a path was given.
func (f *FileVar) IsSet() bool {
	return f.Path != ""
}

// Open returns an io.ReadCloser to the file relative to the context.
func (f *FileVar) Open(ctx *Context) (io.ReadCloser, error) {
	if f.Path == "" {
		return nil, errors.NotValidf("empty path")
	}
	file, err := os.Open(ctx.AbsPath(f.Path))
	return file, errors.Trace(err)
}

// Read returns the contents of the file relative to the context.
func (f *FileVar) Read(ctx *Context) ([]byte, error) {
	file, err := f.Open(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	return data, errors.Trace(err)
}

// String returns the path to the file.
func (f *FileVar) String() string {
	return f.Path
}
