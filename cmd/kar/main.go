// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/devblok/potentia/utility/kar"
	"github.com/sirupsen/logrus"
)

func currentUserName() string {
	u, err := user.Current()
	if err != nil {
		return "unknown"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

var (
	author   = flag.String("author", currentUserName(), "Set the author of the package when compressing")
	version  = flag.Int64("version", 1, "Archive version number to create it with")
	extract  = flag.String("e", "", "Extract the file given")
	compress = flag.String("c", "", "Compress the given file/folder")
	dstFile  = flag.String("f", "out.kar", "Destination file, or directory when extracting")
	silent   = flag.Bool("s", false, "Silent")
)

func main() {
	var opMade bool
	flag.Parse()

	if *silent {
		logrus.SetLevel(logrus.WarnLevel)
	}

	if *extract != "" && *compress != "" {
		logrus.Fatal(errors.New("only one operation at a time"))
	}

	if *extract != "" {
		opMade = true
		if err := extractFiles(); err != nil {
			logrus.Fatal(err)
		}
	}

	if *compress != "" {
		opMade = true
		if err := compressFiles(); err != nil {
			logrus.Fatal(err)
		}
	}

	if !opMade {
		flag.PrintDefaults()
	}
}

func compressFiles() error {
	if _, err := os.Stat(*dstFile); err == nil {
		return errors.New("destination file exists, will not overwrite")
	}

	var filesToCompress []string
	if err := filepath.Walk(*compress, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		filesToCompress = append(filesToCompress, path)
		return nil
	}); err != nil {
		return err
	}

	karBuilder, err := kar.NewBuilder(kar.Header{
		Author:      *author,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})
	if err != nil {
		return err
	}
	defer karBuilder.Close()

	for _, ftc := range filesToCompress {
		name, err := filepath.Rel(*compress, ftc)
		if err != nil || name == "." {
			name = filepath.Base(ftc)
		}
		if err := addFile(karBuilder, filepath.ToSlash(name), ftc); err != nil {
			return err
		}
		logrus.WithField("file", name).Info("added")
	}

	dst, err := os.Create(*dstFile)
	if err != nil {
		return err
	}
	defer dst.Close()

	written, err := karBuilder.WriteTo(dst)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"archive": *dstFile,
		"files":   len(filesToCompress),
		"bytes":   written,
	}).Info("archive written")
	return nil
}

func addFile(b *kar.Builder, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return b.Add(name, f)
}

func extractFiles() error {
	src, err := os.Open(*extract)
	if err != nil {
		return err
	}
	defer src.Close()

	archive, err := kar.Open(src)
	if err != nil {
		return err
	}

	dir := *dstFile
	if dir == "out.kar" {
		dir = "."
	}
	for _, entry := range archive.Header().Index {
		data, err := archive.ReadAll(entry.Name)
		if err != nil {
			return err
		}
		name := filepath.Clean(filepath.FromSlash(entry.Name))
		if escapes(name) {
			return fmt.Errorf("refusing to extract %q outside %s", entry.Name, dir)
		}
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := ioutil.WriteFile(path, data, 0644); err != nil {
			return err
		}
		logrus.WithField("file", entry.Name).Info("extracted")
	}
	return nil
}

// escapes reports whether a cleaned archive name would land outside the
// extraction directory
func escapes(name string) bool {
	return filepath.IsAbs(name) || name == ".." ||
		strings.HasPrefix(name, ".."+string(filepath.Separator))
}
