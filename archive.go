// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

var errPathOutsideArchive = errors.New("archive entry escapes extraction directory")

// extractArchive unpacks a .tar.gz, .tgz or .tar.xz stream into dest. The
// compression is picked from name.
func extractArchive(r io.Reader, name string, dest string) error {
	var decompressed io.Reader
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("open gzip stream of %s: %w", name, err)
		}
		defer gz.Close()
		decompressed = gz
	case strings.HasSuffix(name, ".tar.xz"):
		xzr, err := xz.NewReader(r)
		if err != nil {
			return fmt.Errorf("open xz stream of %s: %w", name, err)
		}
		decompressed = xzr
	default:
		return fmt.Errorf("unsupported archive format: %s", name)
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	tr := tar.NewReader(decompressed)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar entry of %s: %w", name, err)
		}
		if err := extractEntry(tr, hdr, dest); err != nil {
			return err
		}
	}
}

func extractEntry(tr *tar.Reader, hdr *tar.Header, root string) error {
	target, err := safeJoin(root, hdr.Name)
	if err != nil {
		return fmt.Errorf("%s: %w", hdr.Name, err)
	}
	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", hdr.Name, err)
		}
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create parent dir for %s: %w", hdr.Name, err)
		}
		f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode).Perm())
		if err != nil {
			return fmt.Errorf("create file %s: %w", hdr.Name, err)
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return fmt.Errorf("write file %s: %w", hdr.Name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close file %s: %w", hdr.Name, err)
		}
	case tar.TypeSymlink:
		// Toolchains ship their driver aliases as symlinks.
		linkTarget := hdr.Linkname
		if !filepath.IsAbs(linkTarget) {
			linkTarget = filepath.Join(filepath.Dir(hdr.Name), linkTarget)
		}
		if _, err := safeJoin(root, linkTarget); err != nil {
			return fmt.Errorf("symlink %s -> %s: %w", hdr.Name, hdr.Linkname, err)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create parent dir for %s: %w", hdr.Name, err)
		}
		os.Remove(target)
		if err := os.Symlink(hdr.Linkname, target); err != nil {
			return fmt.Errorf("create symlink %s: %w", hdr.Name, err)
		}
	case tar.TypeLink:
		source, err := safeJoin(root, hdr.Linkname)
		if err != nil {
			return fmt.Errorf("hardlink %s -> %s: %w", hdr.Name, hdr.Linkname, err)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create parent dir for %s: %w", hdr.Name, err)
		}
		os.Remove(target)
		if err := os.Link(source, target); err != nil {
			return fmt.Errorf("create hardlink %s: %w", hdr.Name, err)
		}
	}
	return nil
}

func safeJoin(root, name string) (string, error) {
	base, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve base path: %w", err)
	}

	cleaned := filepath.Clean(name)
	if filepath.IsAbs(cleaned) || filepath.VolumeName(cleaned) != "" {
		return "", errPathOutsideArchive
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", errPathOutsideArchive
	}
	return filepath.Join(base, cleaned), nil
}
