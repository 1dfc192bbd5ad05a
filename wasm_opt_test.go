// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWasmOptNo(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.must(ctx.callWrapper(ctx.newCommand(wasixCc, "-sRUN_WASM_OPT=no", mainC)))
		assert.Len(t, ctx.cmds, 1)
	})
}

func TestSuppressedDefaultsWithoutFlagsSkipOptimizer(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.must(ctx.callWrapper(ctx.newCommand(wasixCc, "-sWASM_OPT_SUPPRESS_DEFAULT=yes", "-O2", mainC)))
		assert.Len(t, ctx.cmds, 1)
	})
}

func TestSuppressedDefaultsKeepConfiguredFlags(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		cmd := ctx.must(ctx.callWrapper(ctx.newCommand(wasixCc,
			"-sWASM_OPT_SUPPRESS_DEFAULT=yes", "-sWASM_OPT_FLAGS=--strip-debug", "-O2", mainC, "-o", "a.wasm")))
		require.Len(t, ctx.cmds, 2)
		if err := verifyArgOrder(cmd, "--strip-debug", "--no-validation", "--enable-threads", "a.wasm", "-o", "a.wasm"); err != nil {
			t.Error(err)
		}
		for _, regex := range []string{"--asyncify", "--emit-exnref", "-O2"} {
			if err := verifyArgCount(cmd, 0, regex); err != nil {
				t.Error(err)
			}
		}
	})
}

func TestOptimizerUsesCompileOptLevelAndDebug(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		cmd := ctx.must(ctx.callWrapper(ctx.newCommand(wasixCc, "-O2", "-g", mainC)))
		if err := verifyArgOrder(cmd, "--asyncify", "-O2", "-g", "--no-validation", "a.out", "-o", "a.out"); err != nil {
			t.Error(err)
		}
	})
}

func TestConfiguredOptLevelWins(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		cmd := ctx.must(ctx.callWrapper(ctx.newCommand(wasixCc, "-sWASM_OPT_FLAGS=-O1", "-O3", mainC)))
		if err := verifyArgOrder(cmd, "--asyncify", "-O1"); err != nil {
			t.Error(err)
		}
		if err := verifyArgCount(cmd, 0, "-O3"); err != nil {
			t.Error(err)
		}
	})
}

func TestNoWasmOptFlag(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		cmd := ctx.must(ctx.callWrapper(ctx.newCommand(wasixCc, "--no-wasm-opt", mainC)))
		assert.Len(t, ctx.cmds, 1)
		if err := verifyArgCount(cmd, 0, "--no-wasm-opt"); err != nil {
			t.Error(err)
		}
	})
}

func TestExplicitRunWasmOptBeatsFlag(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.must(ctx.callWrapper(ctx.newCommand(wasixCc, "-sRUN_WASM_OPT=yes", "--no-wasm-opt", mainC)))
		assert.Len(t, ctx.cmds, 2)
	})
}

func TestWasmOptFlagsImplyRun(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.must(ctx.callWrapper(ctx.newCommand(wasixCc, "-sWASM_OPT_FLAGS=-O4", "--no-wasm-opt", mainC)))
		assert.Len(t, ctx.cmds, 2)
	})
}

func TestWasmOptFromBinaryenLocation(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		cmd := ctx.must(ctx.callWrapper(ctx.newCommand(wasixCc, "-sBINARYEN_LOCATION=/opt/binaryen", mainC)))
		if err := verifyPath(cmd, "/opt/binaryen/bin/wasm-opt"); err != nil {
			t.Error(err)
		}
	})
}

func TestShouldRunWasmOpt(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		assert.True(t, shouldRunWasmOpt(newTestConfig(ctx), optionalBool{}))
		assert.False(t, shouldRunWasmOpt(newTestConfig(ctx), optionalBool{set: true}))
		assert.True(t, shouldRunWasmOpt(newTestConfig(ctx), optionalBool{set: true, value: true}))
		assert.False(t, shouldRunWasmOpt(newTestConfig(ctx, "-sRUN_WASM_OPT=no"), optionalBool{set: true, value: true}))
	})
}
