// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"bytes"
	"io"
	"path/filepath"

	"github.com/pierrec/lz4"
)

// Open opens the kar archived from r. It will also check
// if the file is actually a kar archive, will return an error
// when file incorrect.
func Open(r io.ReaderAt) (*Archive, error) {
	fileMagic := make([]byte, MagicLength)
	if num, err := r.ReadAt(fileMagic, 0); num < MagicLength || !bytes.Equal(fileMagic, magic[:]) {
		return nil, ErrFileFormat
	} else if err != nil && err != io.EOF {
		return nil, err
	}

	headerSizeBytes := make([]byte, HeaderSizeNumberLength)
	if num, err := r.ReadAt(headerSizeBytes, MagicLength); num < HeaderSizeNumberLength {
		return nil, ErrFileFormat
	} else if err != nil && err != io.EOF {
		return nil, err
	}

	headerSize, err := binaryToint64(headerSizeBytes)
	if err != nil || headerSize <= 0 {
		return nil, ErrFileFormat
	}

	headerBytes := make([]byte, headerSize)
	if num, err := r.ReadAt(headerBytes, MagicLength+HeaderSizeNumberLength); int64(num) < headerSize {
		return nil, ErrFileFormat
	} else if err != nil && err != io.EOF {
		return nil, err
	}

	var header Header
	if err := gobDecode(&header, headerBytes); err != nil {
		return nil, ErrFileFormat
	}

	ar := &Archive{
		reader:     r,
		header:     header,
		dataOffset: MagicLength + HeaderSizeNumberLength + headerSize,
		index:      make(map[string]IndexEntry, len(header.Index)),
	}
	for _, e := range header.Index {
		ar.index[e.Name] = e
	}
	return ar, nil
}

// Archive provides concurrent io for a kar file, and can provide
// an io.Reader for each file separately to perform actions on.
type Archive struct {
	reader     io.ReaderAt
	header     Header
	dataOffset int64
	index      map[string]IndexEntry
}

// Header returns the archive header, index included
func (a *Archive) Header() Header {
	return a.header
}

// ReadAll returns the entire contents of a file with a given name
func (a *Archive) ReadAll(file string) ([]byte, error) {
	r, err := a.Open(file)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, r.entry.Size)
	buf := bytes.NewBuffer(data)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadFile is ReadAll, under the name file providers use
func (a *Archive) ReadFile(name string) ([]byte, error) {
	return a.ReadAll(name)
}

// Open returns a Reader for a file in the Archive
func (a *Archive) Open(name string) (*Reader, error) {
	entry, ok := a.index[filepath.ToSlash(name)]
	if !ok {
		return nil, ErrFileNotFound
	}
	section := io.NewSectionReader(a.reader, a.dataOffset+entry.Offset, entry.CompressedSize)
	return &Reader{
		entry:  entry,
		reader: lz4.NewReader(section),
	}, nil
}

// Reader is a reader for a single file in an Archive.
// Abstracts away the location that needs to be known.
type Reader struct {
	entry  IndexEntry
	reader io.Reader
}

// Read reads already decompressed data
func (r *Reader) Read(p []byte) (n int, err error) {
	return r.reader.Read(p)
}

// Size returns the decompressed size of the file
func (r *Reader) Size() int64 {
	return r.entry.Size
}

var _ io.Reader = (*Reader)(nil)
