// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterminePersona(t *testing.T) {
	tests := map[string]toolPersona{
		"wasixcc":                cCompilerPersona,
		"wasix-cc":               cCompilerPersona,
		"/usr/local/bin/wasixcc": cCompilerPersona,
		"wasix++":                cxxCompilerPersona,
		"wasixcc++":              cxxCompilerPersona,
		"wasix-c++":              -1,
		"wasixar":                archiverPersona,
		"wasixnm":                symbolListerPersona,
		"wasixranlib":            indexGeneratorPersona,
		"wasixld":                linkerPersona,
		"wasixcc.exe":            cCompilerPersona,
	}
	for name, expected := range tests {
		persona, err := determinePersona(name)
		if expected < 0 {
			assert.ErrorIs(t, err, ErrUnknownPersona, name)
			continue
		}
		if assert.NoError(t, err, name) {
			assert.Equal(t, expected, persona, name)
		}
	}
}

func TestUnknownPersona(t *testing.T) {
	for _, name := range []string{"gcc", "clang", "wasix", "wasixgcc", "cc"} {
		_, err := determinePersona(name)
		assert.ErrorIs(t, err, ErrUnknownPersona, name)
	}
}

func TestInstalledNamesAreAllKnownPersonas(t *testing.T) {
	for _, name := range installedPersonaNames {
		_, err := determinePersona("wasix" + name)
		assert.NoError(t, err, name)
	}
}

func TestUnknownPersonaRunsNoSubprocess(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		exitCode := ctx.callWrapper(ctx.newCommand("./wasixfoo", mainC))
		stderr := ctx.mustFail(exitCode)
		assert.Equal(t, unknownPersonaError.exitCode(), exitCode)
		assert.Contains(t, stderr, "wasixfoo")
		assert.Zero(t, ctx.cmdCount)
	})
}
