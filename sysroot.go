// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

type resourceKind int

const (
	platformRootResource resourceKind = iota
	toolchainResource
)

func (kind resourceKind) String() string {
	if kind == toolchainResource {
		return "toolchain"
	}
	return "platform-root"
}

// acquirer fetches a missing resource and returns where it was installed.
type acquirer interface {
	acquire(kind resourceKind, tag string) (string, error)
}

// sysrootResolver does path arithmetic and existence checks only. Anything
// that writes to disk is left to the acquirer.
type sysrootResolver struct {
	cfg      *effectiveConfig
	acquirer acquirer
}

func newSysrootResolver(cfg *effectiveConfig, acquirer acquirer) *sysrootResolver {
	return &sysrootResolver{cfg: cfg, acquirer: acquirer}
}

// The sysroot prefix holds one sysroot per exception/PIC combination.
func sysrootDirName(mode exceptionMode, pic bool) string {
	switch {
	case mode == wasmExceptions && pic:
		return "sysroot-ehpic"
	case mode == wasmExceptions:
		return "sysroot-eh"
	default:
		return "sysroot"
	}
}

func (r *sysrootResolver) platformRootPath(profile *buildProfile) string {
	if sysroot := r.cfg.str(optSysroot); sysroot != "" {
		return sysroot
	}
	return filepath.Join(r.cfg.str(optSysrootPrefix), sysrootDirName(profile.exceptionMode, profile.positionIndependent))
}

func (r *sysrootResolver) resolvePlatformRoot(profile *buildProfile) (string, error) {
	return r.ensure(platformRootResource, r.platformRootPath(profile), r.cfg.str(optSysrootTag))
}

func (r *sysrootResolver) toolchainBinPath() string {
	return filepath.Join(r.cfg.str(optLlvmLocation), "bin")
}

func (r *sysrootResolver) resolveToolchainBinDir() (string, error) {
	return r.ensure(toolchainResource, r.toolchainBinPath(), r.cfg.str(optLlvmTag))
}

// wasm-opt comes from BINARYEN_LOCATION when set, otherwise from PATH.
func (r *sysrootResolver) wasmOptPath() string {
	if location := r.cfg.str(optBinaryenLocation); location != "" {
		return filepath.Join(location, "bin", "wasm-opt")
	}
	return "wasm-opt"
}

func (r *sysrootResolver) ensure(kind resourceKind, path string, tag string) (string, error) {
	if isDir(path) {
		return path, nil
	}
	if !r.cfg.boolean(optDownloadMissing) || r.acquirer == nil {
		return "", newUserErrorf(missingResourceError,
			"%s not found at %s; run 'wasixccenv download-%s' or set %sDOWNLOAD_MISSING=yes",
			kind, path, downloadCommandSuffix(kind), envPrefix)
	}
	Logger().Info("acquiring missing resource",
		zap.Stringer("kind", kind), zap.String("path", path), zap.String("tag", tag))
	if _, err := r.acquirer.acquire(kind, tag); err != nil {
		return "", newUserErrorf(acquisitionFailedError, "failed to acquire %s (tag %s): %s", kind, tag, err)
	}
	if !isDir(path) {
		return "", newUserErrorf(acquisitionFailedError,
			"%s still missing at %s after acquiring tag %s", kind, path, tag)
	}
	return path, nil
}

func downloadCommandSuffix(kind resourceKind) string {
	if kind == toolchainResource {
		return "llvm"
	}
	return "sysroot"
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
