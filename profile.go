// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import "fmt"

type moduleKind int

const (
	staticMainModule moduleKind = iota
	dynamicMainModule
	sharedLibraryModule
	objectFileModule
)

var moduleKindNames = map[string]moduleKind{
	"static-main":    staticMainModule,
	"dynamic-main":   dynamicMainModule,
	"shared-library": sharedLibraryModule,
	"object-file":    objectFileModule,
}

func (kind moduleKind) String() string {
	for name, k := range moduleKindNames {
		if k == kind {
			return name
		}
	}
	return fmt.Sprintf("moduleKind(%d)", int(kind))
}

func (kind moduleKind) requiresPIC() bool {
	return kind == dynamicMainModule || kind == sharedLibraryModule
}

// Anything that goes through the linker.
func (kind moduleKind) isBinary() bool {
	return kind != objectFileModule
}

func (kind moduleKind) isExecutable() bool {
	return kind == staticMainModule || kind == dynamicMainModule
}

type exceptionMode int

const (
	asyncifyExceptions exceptionMode = iota
	wasmExceptions
)

func (mode exceptionMode) String() string {
	if mode == wasmExceptions {
		return "wasm-eh"
	}
	return "asyncify"
}

type sourceLanguage int

const (
	languageC sourceLanguage = iota
	languageCxx
)

func (lang sourceLanguage) String() string {
	if lang == languageCxx {
		return "C++"
	}
	return "C"
}

type buildProfile struct {
	moduleKind          moduleKind
	exceptionMode       exceptionMode
	positionIndependent bool
	sourceLanguage      sourceLanguage

	linkSymbolic      bool
	includeCxxRuntime bool
	// Used by the optimizer invocation only.
	optLevel string
	debug    bool
	output   string
}

// Shared libraries and dynamic mains are always compiled as PIC, whatever
// positionIndependent says. positionIndependent only selects the sysroot.
func (profile *buildProfile) picCodegen() bool {
	return profile.positionIndependent || profile.moduleKind.requiresPIC()
}

func (profile *buildProfile) String() string {
	return fmt.Sprintf("%s/%s/pic=%t/%s", profile.moduleKind, profile.exceptionMode,
		profile.positionIndependent, profile.sourceLanguage)
}

// resolveBuildProfile derives the build profile. It does no I/O.
func resolveBuildProfile(cfg *effectiveConfig, persona toolPersona, info *userArgInfo) (*buildProfile, error) {
	profile := &buildProfile{
		linkSymbolic:      cfg.boolean(optLinkSymbolic),
		includeCxxRuntime: cfg.boolean(optIncludeCppSymbols),
		optLevel:          info.optLevel,
		debug:             info.debug,
		output:            info.output,
	}

	if cfg.boolean(optWasmExceptions) {
		profile.exceptionMode = wasmExceptions
	}
	if info.wasmExceptions.set {
		profile.exceptionMode = asyncifyExceptions
		if info.wasmExceptions.value {
			profile.exceptionMode = wasmExceptions
		}
	}

	picRequested := cfg.boolean(optPic)
	if info.pic.set {
		picRequested = info.pic.value
	}

	kindName := cfg.str(optModuleKind)
	switch {
	case kindName != "":
		kind, ok := moduleKindNames[kindName]
		if !ok {
			return nil, newUserErrorf(invalidModuleKindError,
				"unknown module kind %q, expected one of static-main, dynamic-main, shared-library, object-file", kindName)
		}
		profile.moduleKind = kind
	default:
		if kind, ok := info.deducedModuleKind(); ok {
			profile.moduleKind = kind
		} else if picRequested {
			profile.moduleKind = dynamicMainModule
		} else {
			profile.moduleKind = staticMainModule
		}
	}

	profile.positionIndependent = picRequested
	// wasm-ld links PIC module kinds against the PIC sysroot.
	if persona == linkerPersona && profile.moduleKind.requiresPIC() {
		profile.positionIndependent = true
	}
	if profile.positionIndependent && profile.exceptionMode == asyncifyExceptions {
		if picRequested {
			return nil, newUserErrorf(incompatibleProfileError,
				"position-independent code requires wasm exceptions; set WASM_EXCEPTIONS=yes or disable PIC")
		}
		return nil, newUserErrorf(incompatibleProfileError,
			"linking module kind %s needs the position-independent sysroot, which requires wasm exceptions; set WASM_EXCEPTIONS=yes", profile.moduleKind)
	}

	if persona == cxxCompilerPersona {
		profile.sourceLanguage = languageCxx
	}
	if info.language != nil && persona.isCompiler() {
		profile.sourceLanguage = *info.language
	}
	return profile, nil
}
