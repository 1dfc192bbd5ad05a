// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConflictingFlagsAreRejected(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"foreign target", []string{"--target=x86_64-linux-gnu", mainC}},
		{"foreign target pair", []string{"-target", "aarch64-linux-gnu", mainC}},
		{"no atomics", []string{"-mno-atomics", mainC}},
		{"no bulk memory", []string{"-mno-bulk-memory", mainC}},
		{"no mutable globals", []string{"-mno-mutable-globals", mainC}},
		{"no eh under wasm-eh", []string{"-sWASM_EXCEPTIONS=yes", "-mno-exception-handling", mainC}},
		{"eh under asyncify", []string{"-mexception-handling", mainC}},
		{"no pic on shared library", []string{"-sWASM_EXCEPTIONS=yes", "-sMODULE_KIND=shared-library", "-fno-PIC", mainC}},
		{"foreign sysroot", []string{"--sysroot=/usr", mainC}},
		{"configured conflict", []string{"-sCOMPILER_POST_FLAGS=-mno-atomics", mainC}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withTestContext(t, func(ctx *testContext) {
				exitCode := ctx.callWrapper(ctx.newCommand(wasixCc, tt.args...))
				ctx.mustFail(exitCode)
				assert.Equal(t, unsupportedCombinationError.exitCode(), exitCode)
				assert.Zero(t, ctx.cmdCount)
			})
		})
	}
}

func TestCompatibleFlagsAreAccepted(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"wasix target", []string{"--target=wasm32-wasi", mainC}},
		{"wasix target variant", []string{"--target=wasm32-wasip1", mainC}},
		{"pic re-enabled", []string{"-sWASM_EXCEPTIONS=yes", "-sMODULE_KIND=shared-library", "-fno-PIC", "-fPIC", mainC}},
		{"no eh under asyncify", []string{"-mno-exception-handling", mainC}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withTestContext(t, func(ctx *testContext) {
				ctx.must(ctx.callWrapper(ctx.newCommand(wasixCc, tt.args...)))
			})
		})
	}
}

func TestMatchingSysrootIsAccepted(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.must(ctx.callWrapper(ctx.newCommand(wasixCc, "--sysroot="+ctx.sysrootDir("sysroot")+"/", mainC)))
	})
}
