// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

const wasixTarget = "wasm32-wasi"

// Defines and codegen settings every WASIX object is built with.
var platformBaselineFlags = []string{
	"-matomics",
	"-mbulk-memory",
	"-mmutable-globals",
	"-pthread",
	"-mthread-model", "posix",
	"-fno-trapping-math",
	"-D_WASI_EMULATED_MMAN",
	"-D_WASI_EMULATED_SIGNAL",
	"-D_WASI_EMULATED_PROCESS_CLOCKS",
}

func processTargetFlags(builder *commandBuilder, platformRoot string) {
	builder.addPreUserArgs("--sysroot="+platformRoot, "--target="+wasixTarget)
	builder.addPreUserArgs(platformBaselineFlags...)
}

// Features the platform cannot run without. They go after the user's
// arguments so nothing can switch them off.
func processForcedFeatureFlags(builder *commandBuilder, profile *buildProfile) {
	builder.addPostUserArgs("-matomics", "-mbulk-memory", "-mmutable-globals")
	if profile.exceptionMode == wasmExceptions {
		builder.addPostUserArgs("-mexception-handling")
	} else {
		builder.addPostUserArgs("-mno-exception-handling")
	}
}
