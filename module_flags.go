// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"path/filepath"
	"strings"
)

// Stack size of static executables.
const defaultStackSize = "8388608"

// linkEmitter receives link decisions. The clang driver needs them wrapped
// in -Wl, while wasm-ld takes them as they are.
type linkEmitter interface {
	// A flag only the linker understands, with any separate value parts.
	linkerFlag(parts ...string)
	// A flag both the driver and the linker understand.
	sharedFlag(flag string)
	lib(name string)
	libDir(dir string)
	object(path string)
}

type driverLinkEmitter struct {
	builder *commandBuilder
}

func (e driverLinkEmitter) linkerFlag(parts ...string) {
	e.builder.addPreUserArgs("-Wl," + strings.Join(parts, ","))
}

func (e driverLinkEmitter) sharedFlag(flag string) { e.builder.addPreUserArgs(flag) }
func (e driverLinkEmitter) lib(name string)        { e.builder.addPreUserArgs("-l" + name) }
func (e driverLinkEmitter) libDir(dir string)      { e.builder.addPreUserArgs("-L" + dir) }
func (e driverLinkEmitter) object(path string)     { e.builder.addPreUserArgs(path) }

type wasmLdLinkEmitter struct {
	builder *commandBuilder
}

func (e wasmLdLinkEmitter) linkerFlag(parts ...string) { e.builder.addPreUserArgs(parts...) }
func (e wasmLdLinkEmitter) sharedFlag(flag string)     { e.builder.addPreUserArgs(flag) }
func (e wasmLdLinkEmitter) lib(name string)            { e.builder.addPreUserArgs("-l" + name) }
func (e wasmLdLinkEmitter) libDir(dir string)          { e.builder.addPreUserArgs("-L" + dir) }
func (e wasmLdLinkEmitter) object(path string)         { e.builder.addPreUserArgs(path) }

var runtimeLibs = []string{"c", "resolv", "rt", "m", "pthread", "util"}
var emulationLibs = []string{"wasi-emulated-getpid", "wasi-emulated-mman", "wasi-emulated-process-clocks"}
var cxxRuntimeLibs = []string{"c++", "c++abi", "unwind"}

func sysrootLibDirs(platformRoot string) (libDir string, targetLibDir string) {
	libDir = filepath.Join(platformRoot, "lib")
	return libDir, filepath.Join(libDir, wasixTarget)
}

// Compile-side module kind flags. Object files stop before linking;
// everything else is linked through the driver.
func processModuleKindCompileFlags(builder *commandBuilder, profile *buildProfile, info *userArgInfo) {
	if profile.moduleKind == objectFileModule {
		if !info.compileOnlyFlag {
			builder.addPreUserArgs("-c")
		}
		return
	}
	// Start files are chosen per module kind below.
	builder.addPreUserArgs("-nostartfiles")
}

func processModuleKindLinkFlags(e linkEmitter, profile *buildProfile, platformRoot string) {
	kind := profile.moduleKind
	if !kind.isBinary() {
		return
	}

	e.linkerFlag("--extra-features=atomics")
	e.linkerFlag("--extra-features=bulk-memory")
	e.linkerFlag("--extra-features=mutable-globals")
	e.linkerFlag("--shared-memory")
	e.linkerFlag("--max-memory=4294967296")
	e.linkerFlag("--import-memory")
	e.linkerFlag("--export-dynamic")
	e.linkerFlag("--export=__wasm_call_ctors")
	for _, symbol := range []string{"__wasm_init_tls", "__wasm_signal", "__tls_size", "__tls_align", "__tls_base"} {
		e.linkerFlag("--export=" + symbol)
	}
	if kind.isExecutable() {
		for _, symbol := range []string{"__stack_pointer", "__heap_base", "__data_end"} {
			e.linkerFlag("--export-if-defined=" + symbol)
		}
	}

	// A dynamic main carries the whole runtime so side modules loaded later
	// can resolve against it.
	if kind == dynamicMainModule {
		e.linkerFlag("--export-all")
		e.linkerFlag("--whole-archive")
	}

	libDir, targetLibDir := sysrootLibDirs(platformRoot)
	e.libDir(libDir)
	e.libDir(targetLibDir)

	if kind.isExecutable() {
		for _, lib := range emulationLibs {
			e.lib(lib)
		}
		for _, lib := range runtimeLibs {
			e.lib(lib)
		}
		if profile.sourceLanguage == languageCxx || (kind == dynamicMainModule && profile.includeCxxRuntime) {
			for _, lib := range cxxRuntimeLibs {
				e.lib(lib)
			}
		}
	}

	if kind == dynamicMainModule {
		e.linkerFlag("--no-whole-archive")
	}

	e.lib("clang_rt.builtins-wasm32")

	switch kind {
	case staticMainModule:
		e.linkerFlag("-z", "stack-size="+defaultStackSize)
	case dynamicMainModule:
		e.linkerFlag("-pie")
		e.lib("common-tag-stubs")
	case sharedLibraryModule:
		e.sharedFlag("-shared")
		e.linkerFlag("--no-entry")
		e.linkerFlag("--unresolved-symbols=import-dynamic")
	}

	if kind.isExecutable() {
		e.object(filepath.Join(targetLibDir, "crt1.o"))
	} else {
		e.object(filepath.Join(targetLibDir, "scrt1.o"))
	}
}
