// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

func processPicCompileFlags(builder *commandBuilder, profile *buildProfile) {
	if profile.picCodegen() {
		builder.addPreUserArgs("-fPIC", "-ftls-model=global-dynamic", "-fvisibility=default")
	} else {
		builder.addPreUserArgs("-ftls-model=local-exec")
	}
}

func processPicLinkFlags(e linkEmitter, profile *buildProfile) {
	if !profile.moduleKind.requiresPIC() {
		return
	}
	e.linkerFlag("--experimental-pic")
	e.linkerFlag("--export-if-defined=__wasm_apply_data_relocs")
	e.linkerFlag("--export-if-defined=__wasm_apply_tls_relocs")
	// Only shared libraries bind their own symbols locally.
	if profile.moduleKind == sharedLibraryModule && profile.linkSymbolic {
		e.linkerFlag("-Bsymbolic")
	}
}
