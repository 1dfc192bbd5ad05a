// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"path/filepath"
	"strings"
)

var requiredFeatureDisables = map[string]string{
	"-mno-atomics":         "atomics",
	"-mno-bulk-memory":     "bulk-memory",
	"-mno-mutable-globals": "mutable-globals",
}

// checkConflictingFlags rejects tokens asking for something the profile
// cannot deliver. Both pass-through and configured tokens are checked.
func checkConflictingFlags(profile *buildProfile, tokens []string, platformRoot string) error {
	lastPicArg := ""
	for _, arg := range tokens {
		if feature, ok := requiredFeatureDisables[arg]; ok {
			return newUserErrorf(unsupportedCombinationError,
				"option %q is not supported; WASIX requires the %s feature", arg, feature)
		}
		switch arg {
		case "-mno-exception-handling":
			if profile.exceptionMode == wasmExceptions {
				return newUserErrorf(unsupportedCombinationError,
					"option %q conflicts with wasm exceptions", arg)
			}
		case "-mexception-handling":
			if profile.exceptionMode == asyncifyExceptions {
				return newUserErrorf(unsupportedCombinationError,
					"option %q requires wasm exceptions; set WASM_EXCEPTIONS=yes", arg)
			}
		case "-fPIC", "-fpic", "-fno-PIC", "-fno-pic":
			lastPicArg = arg
		}
	}
	if strings.HasPrefix(lastPicArg, "-fno-") && profile.moduleKind.requiresPIC() {
		return newUserErrorf(unsupportedCombinationError,
			"option %q conflicts with module kind %s, which is position-independent", lastPicArg, profile.moduleKind)
	}

	info := scanUserArgs(cCompilerPersona, tokens)
	for _, target := range info.targets {
		if !strings.HasPrefix(target, wasixTarget) {
			return newUserErrorf(unsupportedCombinationError,
				"target %q is not supported; only %s targets can be built", target, wasixTarget)
		}
	}
	if platformRoot != "" {
		for _, sysroot := range info.sysroots {
			if filepath.Clean(sysroot) != filepath.Clean(platformRoot) {
				return newUserErrorf(unsupportedCombinationError,
					"--sysroot=%s conflicts with the resolved platform root %s; set SYSROOT instead", sysroot, platformRoot)
			}
		}
	}
	return nil
}
