// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"path/filepath"
	"strings"
)

// Clang flags whose value is the following argument.
var clangFlagsWithArgs = map[string]bool{
	"-MT": true, "-MF": true, "-MJ": true, "-MQ": true, "-D": true, "-U": true,
	"-o": true, "-x": true, "-Xpreprocessor": true, "-include": true, "-imacros": true,
	"-idirafter": true, "-iprefix": true, "-iwithprefix": true, "-iwithprefixbefore": true,
	"-isysroot": true, "-imultilib": true, "-A": true, "-isystem": true, "-iquote": true,
	"-install_name": true, "-compatibility_version": true, "-mllvm": true,
	"-mthread-model": true, "-current_version": true, "-I": true, "-l": true, "-L": true,
	"-include-pch": true, "-u": true, "-undefined": true, "-target": true,
	"-Xlinker": true, "-Xclang": true, "-z": true, "--sysroot": true, "--target": true,
}

// wasm-ld flags whose value is the following argument.
var wasmLdFlagsWithArgs = map[string]bool{
	"-o": true, "-mllvm": true, "-L": true, "-l": true, "-m": true, "-O": true, "-y": true, "-z": true,
}

type optionalBool struct {
	set   bool
	value bool
}

func (b *optionalBool) assign(value bool) {
	b.set = true
	b.value = value
}

// userArgInfo is what the wrapper reads out of the pass-through arguments.
// The arguments themselves are never rewritten.
type userArgInfo struct {
	output          string
	inputs          []string
	sharedFlag      bool
	compileOnlyFlag bool
	pieFlag         bool
	wasmExceptions  optionalBool
	pic             optionalBool
	language        *sourceLanguage
	// "" when no -O flag was given.
	optLevel string
	debug    bool
	// Values of flag/value pairs, in order.
	targets  []string
	sysroots []string
}

func scanUserArgs(persona toolPersona, args []string) *userArgInfo {
	info := &userArgInfo{}
	withArgs := clangFlagsWithArgs
	if persona == linkerPersona {
		withArgs = wasmLdFlagsWithArgs
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() string {
			if i+1 < len(args) {
				i++
				return args[i]
			}
			return ""
		}

		switch {
		case arg == "-o":
			info.output = next()
		case strings.HasPrefix(arg, "-o") && !strings.HasPrefix(arg, "-obj") && persona != linkerPersona:
			info.output = arg[2:]
		case arg == "-Xlinker":
			info.scanLinkerArg(next())
		case strings.HasPrefix(arg, "-Wl,"):
			for _, linkerArg := range strings.Split(arg[len("-Wl,"):], ",") {
				info.scanLinkerArg(linkerArg)
			}
		case arg == "-x":
			info.setLanguage(next())
		case strings.HasPrefix(arg, "-x") && persona != linkerPersona && len(arg) > 2:
			info.setLanguage(arg[2:])
		case arg == "-target" || arg == "--target":
			info.targets = append(info.targets, next())
		case strings.HasPrefix(arg, "--target="):
			info.targets = append(info.targets, strings.TrimPrefix(arg, "--target="))
		case arg == "--sysroot":
			info.sysroots = append(info.sysroots, next())
		case strings.HasPrefix(arg, "--sysroot="):
			info.sysroots = append(info.sysroots, strings.TrimPrefix(arg, "--sysroot="))
		case withArgs[arg]:
			next()
		case arg == "-" || !strings.HasPrefix(arg, "-"):
			info.inputs = append(info.inputs, arg)
		default:
			info.scanFlag(persona, arg)
		}
	}
	return info
}

func (info *userArgInfo) scanFlag(persona toolPersona, arg string) {
	switch arg {
	case "-shared", "--shared":
		info.sharedFlag = true
		return
	case "-pie", "--pie":
		info.pieFlag = true
		return
	}
	if persona == linkerPersona {
		return
	}
	switch arg {
	case "-c", "-S", "-E":
		info.compileOnlyFlag = true
	case "-fwasm-exceptions":
		info.wasmExceptions.assign(true)
	case "-fno-wasm-exceptions":
		info.wasmExceptions.assign(false)
	case "-fPIC", "-fpic":
		info.pic.assign(true)
	case "-fno-PIC", "-fno-pic":
		info.pic.assign(false)
	case "--driver-mode=g++":
		lang := languageCxx
		info.language = &lang
	case "--driver-mode=gcc":
		lang := languageC
		info.language = &lang
	default:
		if level, ok := strings.CutPrefix(arg, "-O"); ok {
			info.optLevel = normalizeOptLevel(level)
		} else if level, ok := strings.CutPrefix(arg, "-g"); ok && !strings.HasPrefix(level, "no-") {
			info.debug = level != "0"
		}
	}
}

func (info *userArgInfo) scanLinkerArg(arg string) {
	switch arg {
	case "-shared", "--shared":
		info.sharedFlag = true
	case "-pie", "--pie":
		info.pieFlag = true
	}
}

func (info *userArgInfo) setLanguage(value string) {
	var lang sourceLanguage
	switch value {
	case "c", "c-header", "cpp-output":
		lang = languageC
	case "c++", "c++-header", "c++-cpp-output":
		lang = languageCxx
	case "none":
		info.language = nil
		return
	default:
		return
	}
	info.language = &lang
}

func normalizeOptLevel(level string) string {
	switch level {
	case "":
		return "1"
	case "fast":
		return "3"
	case "0", "1", "2", "3", "4", "s", "z":
		return level
	}
	return ""
}

func (info *userArgInfo) deducedModuleKind() (moduleKind, bool) {
	switch filepath.Ext(info.output) {
	case ".o", ".obj":
		return objectFileModule, true
	case ".so":
		return sharedLibraryModule, true
	}
	switch {
	case info.sharedFlag:
		return sharedLibraryModule, true
	case info.compileOnlyFlag:
		return objectFileModule, true
	case info.pieFlag:
		return dynamicMainModule, true
	}
	return 0, false
}
