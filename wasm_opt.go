// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import "strings"

var wasmOptEnabledFeatures = []string{
	"--enable-threads",
	"--enable-mutable-globals",
	"--enable-bulk-memory",
	"--enable-bulk-memory-opt",
	"--enable-exception-handling",
}

// Removes --wasm-opt and --no-wasm-opt, the last one wins.
func processWasmOptFlag(builder *commandBuilder) optionalBool {
	var runWasmOpt optionalBool
	builder.filterArgs(func(arg builderArg) bool {
		if arg.fromUser {
			switch arg.value {
			case "--wasm-opt":
				runWasmOpt.assign(true)
				return false
			case "--no-wasm-opt":
				runWasmOpt.assign(false)
				return false
			}
		}
		return true
	})
	return runWasmOpt
}

// An explicit RUN_WASM_OPT always decides. Otherwise configured optimizer
// flags ask for a run, then the command line flags, then the default.
func shouldRunWasmOpt(cfg *effectiveConfig, argOverride optionalBool) bool {
	if cfg.isSet(optRunWasmOpt) {
		return cfg.boolean(optRunWasmOpt)
	}
	if len(cfg.list(optWasmOptFlags)) > 0 {
		return true
	}
	if argOverride.set {
		return argOverride.value
	}
	return cfg.boolean(optRunWasmOpt)
}

func artifactPath(profile *buildProfile) string {
	if profile.output != "" {
		return profile.output
	}
	if profile.moduleKind == objectFileModule {
		return "a.o"
	}
	return "a.out"
}

// calcWasmOptCommand returns nil when there is nothing for the optimizer to
// do.
func calcWasmOptCommand(cfg *effectiveConfig, profile *buildProfile, wasmOptPath string) *command {
	configured := cfg.list(optWasmOptFlags)
	var args []string
	if !cfg.boolean(optWasmOptSuppressDefault) {
		if profile.exceptionMode == wasmExceptions {
			args = append(args, "--emit-exnref")
		} else {
			args = append(args, "--asyncify")
		}
		if !hasOptLevelFlag(configured) && profile.optLevel != "" && profile.optLevel != "0" {
			args = append(args, "-O"+profile.optLevel)
		}
	}
	args = append(args, configured...)
	if len(args) == 0 {
		return nil
	}

	if profile.debug {
		args = append(args, "-g")
	}
	args = append(args, "--no-validation")
	args = append(args, wasmOptEnabledFeatures...)
	artifact := artifactPath(profile)
	args = append(args, artifact, "-o", artifact)
	return &command{
		Path: wasmOptPath,
		Args: args,
	}
}

func hasOptLevelFlag(args []string) bool {
	for _, arg := range args {
		if strings.HasPrefix(arg, "-O") {
			return true
		}
	}
	return false
}
