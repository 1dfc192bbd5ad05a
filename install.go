// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// installExecutables creates one wasix<name> symlink per persona in dir,
// all pointing at exePath.
func installExecutables(w io.Writer, exePath string, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for _, name := range installedPersonaNames {
		target := filepath.Join(dir, "wasix"+name)
		if _, err := os.Lstat(target); err == nil {
			if err := os.Remove(target); err != nil {
				return fmt.Errorf("remove existing %s: %w", target, err)
			}
		}
		if err := os.Symlink(exePath, target); err != nil {
			return fmt.Errorf("create symlink %s: %w", target, err)
		}
		fmt.Fprintf(w, "Created command %s\n", target)
	}
	return nil
}
