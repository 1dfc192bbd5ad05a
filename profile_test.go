// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveTestProfile(ctx *testContext, persona toolPersona, args []string, settings ...string) (*buildProfile, error) {
	cfg := newTestConfig(ctx, settings...)
	return resolveBuildProfile(cfg, persona, scanUserArgs(persona, args))
}

func TestProfileDefaults(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		profile, err := resolveTestProfile(ctx, cCompilerPersona, []string{mainC})
		require.NoError(t, err)
		assert.Equal(t, staticMainModule, profile.moduleKind)
		assert.Equal(t, asyncifyExceptions, profile.exceptionMode)
		assert.False(t, profile.positionIndependent)
		assert.Equal(t, languageC, profile.sourceLanguage)
		assert.True(t, profile.linkSymbolic)
	})
}

func TestProfileInvalidModuleKind(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		_, err := resolveTestProfile(ctx, cCompilerPersona, []string{mainC}, "-sMODULE_KIND=plugin")
		assert.ErrorIs(t, err, ErrInvalidModuleKind)
	})
}

func TestProfileModuleKindOptionBeatsDeduction(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		profile, err := resolveTestProfile(ctx, cCompilerPersona, []string{"-c", mainC}, "-sMODULE_KIND=static-main")
		require.NoError(t, err)
		assert.Equal(t, staticMainModule, profile.moduleKind)
	})
}

func TestProfilePicRequiresWasmExceptions(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		_, err := resolveTestProfile(ctx, cCompilerPersona, []string{mainC}, "-sPIC=yes")
		assert.ErrorIs(t, err, ErrIncompatibleProfile)
		assert.Contains(t, err.Error(), "position-independent code requires wasm exceptions")
	})
}

func TestProfilePicKindsCompileUnderAsyncify(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		profile, err := resolveTestProfile(ctx, cCompilerPersona, []string{"-shared", mainC, "-o", "libfoo.so"})
		require.NoError(t, err)
		assert.Equal(t, sharedLibraryModule, profile.moduleKind)
		assert.Equal(t, asyncifyExceptions, profile.exceptionMode)
		assert.False(t, profile.positionIndependent)
		assert.True(t, profile.picCodegen())

		profile, err = resolveTestProfile(ctx, cCompilerPersona, []string{mainC}, "-sMODULE_KIND=dynamic-main")
		require.NoError(t, err)
		assert.False(t, profile.positionIndependent)
		assert.True(t, profile.picCodegen())
	})
}

func TestProfileLinkingPicKindRequiresWasmExceptions(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		_, err := resolveTestProfile(ctx, linkerPersona, []string{"-shared", "main.o"})
		assert.ErrorIs(t, err, ErrIncompatibleProfile)
		assert.Contains(t, err.Error(), "shared-library")

		profile, err := resolveTestProfile(ctx, linkerPersona, []string{"-shared", "main.o"}, "-sWASM_EXCEPTIONS=yes")
		require.NoError(t, err)
		assert.True(t, profile.positionIndependent)
	})
}

func TestProfileSharedLibraryUsesPicOption(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		profile, err := resolveTestProfile(ctx, cCompilerPersona, []string{mainC},
			"-sMODULE_KIND=shared-library", "-sWASM_EXCEPTIONS=yes")
		require.NoError(t, err)
		assert.False(t, profile.positionIndependent)
		assert.True(t, profile.picCodegen())
		assert.Equal(t, wasmExceptions, profile.exceptionMode)

		profile, err = resolveTestProfile(ctx, cCompilerPersona, []string{mainC},
			"-sMODULE_KIND=shared-library", "-sWASM_EXCEPTIONS=yes", "-sPIC=yes")
		require.NoError(t, err)
		assert.True(t, profile.positionIndependent)
	})
}

func TestProfilePicWithoutKindDeducesDynamicMain(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		profile, err := resolveTestProfile(ctx, cCompilerPersona, []string{"-fPIC", "-fwasm-exceptions", mainC})
		require.NoError(t, err)
		assert.Equal(t, dynamicMainModule, profile.moduleKind)
		assert.True(t, profile.positionIndependent)
	})
}

func TestProfileExceptionFlagOverridesOption(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		profile, err := resolveTestProfile(ctx, cCompilerPersona, []string{"-fno-wasm-exceptions", mainC}, "-sWASM_EXCEPTIONS=yes")
		require.NoError(t, err)
		assert.Equal(t, asyncifyExceptions, profile.exceptionMode)
	})
}

func TestProfileLanguage(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		profile, err := resolveTestProfile(ctx, cxxCompilerPersona, []string{mainCc})
		require.NoError(t, err)
		assert.Equal(t, languageCxx, profile.sourceLanguage)

		profile, err = resolveTestProfile(ctx, cCompilerPersona, []string{"-x", "c++", mainC})
		require.NoError(t, err)
		assert.Equal(t, languageCxx, profile.sourceLanguage)

		profile, err = resolveTestProfile(ctx, linkerPersona, []string{"main.o"})
		require.NoError(t, err)
		assert.Equal(t, languageC, profile.sourceLanguage)
	})
}
