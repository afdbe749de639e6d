// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package assets provides the places shader bytecode and other
// resources can be read from: a plain directory, a packr box or a
// kar archive, optionally chained together.
package assets

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/devblok/potentia/core"
	"github.com/devblok/potentia/utility/kar"
	"github.com/gobuffalo/packr"
	"golang.org/x/exp/mmap"
)

// ErrNotFound is returned when no provider has the requested file
var ErrNotFound = errors.New("asset not found")

// Dir reads files relative to a directory on disk
type Dir string

// ReadFile implements core.FileProvider
func (d Dir) ReadFile(name string) ([]byte, error) {
	data, err := ioutil.ReadFile(filepath.Join(string(d), filepath.FromSlash(name)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

// Box reads files compiled into the binary with packr
type Box struct {
	box packr.Box
}

// NewBox wraps the packr box rooted at path, relative to the calling source file
func NewBox(path string) Box {
	return Box{box: packr.NewBox(path)}
}

// Builtin holds the shaders compiled into the binary
func Builtin() Box {
	return Box{box: packr.NewBox("./builtin")}
}

// ReadFile implements core.FileProvider
func (b Box) ReadFile(name string) ([]byte, error) {
	if !b.box.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return b.box.Find(name)
}

// Archive reads files out of a memory mapped kar archive
type Archive struct {
	mapped  *mmap.ReaderAt
	archive *kar.Archive
}

// OpenArchive maps the kar archive at path
func OpenArchive(path string) (*Archive, error) {
	mapped, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	archive, err := kar.Open(mapped)
	if err != nil {
		mapped.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Archive{mapped: mapped, archive: archive}, nil
}

// ReadFile implements core.FileProvider
func (a *Archive) ReadFile(name string) ([]byte, error) {
	data, err := a.archive.ReadAll(name)
	if err == kar.ErrFileNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

// Close unmaps the archive
func (a *Archive) Close() error {
	return a.mapped.Close()
}

// Chain tries each provider in turn, the first one that has the file wins.
// Errors other than a missing file stop the search.
type Chain []core.FileProvider

// ReadFile implements core.FileProvider
func (c Chain) ReadFile(name string) ([]byte, error) {
	var tried []string
	for _, p := range c {
		data, err := p.ReadFile(name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		tried = append(tried, fmt.Sprintf("%T", p))
	}
	return nil, fmt.Errorf("%w: %s (tried %s)", ErrNotFound, name, strings.Join(tried, ", "))
}

// Open chains the archive, when one is given, the directory and the
// builtin box, in that order. The returned func closes the archive.
func Open(dir, archive string) (Chain, func(), error) {
	if archive == "" {
		return Chain{Dir(dir), Builtin()}, func() {}, nil
	}
	a, err := OpenArchive(archive)
	if err != nil {
		return nil, nil, err
	}
	return Chain{a, Dir(dir), Builtin()}, func() { a.Close() }, nil
}

var (
	_ core.FileProvider = Dir("")
	_ core.FileProvider = Box{}
	_ core.FileProvider = (*Archive)(nil)
	_ core.FileProvider = Chain(nil)
)
