// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

func exceptionBackendArgs(profile *buildProfile) []string {
	args := []string{"-mllvm", "--wasm-enable-sjlj"}
	if profile.sourceLanguage == languageCxx {
		args = append(args, "-mllvm", "--wasm-enable-eh")
	}
	return args
}

func processExceptionCompileFlags(builder *commandBuilder, profile *buildProfile) {
	if profile.exceptionMode == wasmExceptions {
		builder.addPreUserArgs("-fwasm-exceptions")
		builder.addPreUserArgs(exceptionBackendArgs(profile)...)
		return
	}
	// asyncify unwinds in the optimizer, the compiler must not emit EH.
	if profile.sourceLanguage == languageCxx {
		builder.addPreUserArgs("-fno-exceptions")
	}
}

// The linker runs LTO code generation too, so it needs the same backend
// options.
func processExceptionLinkFlags(e linkEmitter, profile *buildProfile) {
	if profile.exceptionMode != wasmExceptions || !profile.moduleKind.isBinary() {
		return
	}
	args := exceptionBackendArgs(profile)
	for i := 0; i+1 < len(args); i += 2 {
		e.linkerFlag(args[i], args[i+1])
	}
}
