// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"path/filepath"
	"strings"
)

type toolPersona int

const (
	cCompilerPersona toolPersona = iota
	cxxCompilerPersona
	archiverPersona
	symbolListerPersona
	indexGeneratorPersona
	linkerPersona
)

func (persona toolPersona) String() string {
	switch persona {
	case cCompilerPersona:
		return "c-compiler"
	case cxxCompilerPersona:
		return "cxx-compiler"
	case archiverPersona:
		return "archiver"
	case symbolListerPersona:
		return "symbol-lister"
	case indexGeneratorPersona:
		return "index-generator"
	case linkerPersona:
		return "linker"
	}
	return "unknown"
}

func (persona toolPersona) isCompiler() bool {
	return persona == cCompilerPersona || persona == cxxCompilerPersona
}

// Names are the part after the wasix/wasix- prefix.
var personaTable = map[string]toolPersona{
	"cc":     cCompilerPersona,
	"++":     cxxCompilerPersona,
	"cc++":   cxxCompilerPersona,
	"ar":     archiverPersona,
	"nm":     symbolListerPersona,
	"ranlib": indexGeneratorPersona,
	"ld":     linkerPersona,
}

// Suffixes of the names wasixccenv install-executables creates.
var installedPersonaNames = []string{"cc", "++", "cc++", "ar", "nm", "ranlib", "ld"}

// Tool invoked by the personas that only pass their arguments through.
var passthroughTools = map[toolPersona]string{
	archiverPersona:       "llvm-ar",
	symbolListerPersona:   "llvm-nm",
	indexGeneratorPersona: "llvm-ranlib",
}

func invokedBaseName(invokedName string) string {
	return strings.TrimSuffix(filepath.Base(invokedName), ".exe")
}

func determinePersona(invokedName string) (toolPersona, error) {
	basename := invokedBaseName(invokedName)
	var suffix string
	switch {
	case strings.HasPrefix(basename, "wasix-"):
		suffix = strings.TrimPrefix(basename, "wasix-")
	case strings.HasPrefix(basename, "wasix"):
		suffix = strings.TrimPrefix(basename, "wasix")
	default:
		return 0, newUserErrorf(unknownPersonaError,
			"unknown tool name %q; this binary must be run as 'wasix<tool>' or 'wasix-<tool>', e.g. wasixcc", basename)
	}
	persona, ok := personaTable[suffix]
	if !ok {
		return 0, newUserErrorf(unknownPersonaError, "unknown tool %q in name %q", suffix, basename)
	}
	return persona, nil
}
