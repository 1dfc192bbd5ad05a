// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestCommandBuilderSegments(t *testing.T) {
	builder := newCommandBuilder("clang", []string{"u1", "u2"})
	builder.addPreUserArgs("p1")
	builder.addPostUserArgs("q1")
	builder.addPreUserArgs("p2", "p3")
	builder.addPostUserArgs("q2")

	cmd := builder.build()
	if diff := cmp.Diff([]string{"p1", "p2", "p3", "u1", "u2", "q1", "q2"}, cmd.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"u1", "u2"}, builder.userArgs())
}

func TestCommandBuilderWithoutUserArgs(t *testing.T) {
	builder := newCommandBuilder("clang", nil)
	builder.addPostUserArgs("q1")
	builder.addPreUserArgs("p1")
	assert.Equal(t, []string{"p1", "q1"}, builder.build().Args)
}

func TestCommandBuilderFilterKeepsOrigin(t *testing.T) {
	builder := newCommandBuilder("clang", []string{"-drop", "keep"})
	builder.addPreUserArgs("-drop")
	builder.addPostUserArgs("post")
	builder.filterArgs(func(arg builderArg) bool {
		return !(arg.fromUser && arg.value == "-drop")
	})
	assert.Equal(t, []string{"-drop", "keep", "post"}, builder.build().Args)
	assert.Equal(t, []string{"keep"}, builder.userArgs())
	builder.addPreUserArgs("p2")
	assert.Equal(t, []string{"-drop", "p2", "keep", "post"}, builder.build().Args)
}

func TestCommandBuilderFilterKeepsEmptyArgs(t *testing.T) {
	builder := newCommandBuilder("clang", []string{"-DX", "", "main.c"})
	builder.filterArgs(func(arg builderArg) bool { return true })
	assert.Equal(t, []string{"-DX", "", "main.c"}, builder.userArgs())
}

func TestCommandString(t *testing.T) {
	cmd := &command{Path: "/bin/clang", Args: []string{"-DMSG=hello world", "main.c"}}
	assert.Equal(t, `/bin/clang '-DMSG=hello world' main.c`, cmd.String())
}
