// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import "path/filepath"

type toolPaths struct {
	platformRoot    string
	toolchainBinDir string
	wasmOpt         string
}

type invocation struct {
	primary *command
	// nil when the optimizer does not run.
	optimizer           *command
	artifact            string
	preserveUnoptimized bool
}

// invocationComposer turns a build profile into commands. It is pure: it
// reads nothing besides its inputs and runs nothing.
type invocationComposer struct {
	cfg     *effectiveConfig
	profile *buildProfile
	persona toolPersona
	info    *userArgInfo
	paths   toolPaths
}

func (c *invocationComposer) compose(builder *commandBuilder, runWasmOpt optionalBool) (*invocation, error) {
	if len(c.info.inputs) == 0 {
		return &invocation{primary: c.calcNoInputCommand(builder)}, nil
	}

	var primary *command
	var err error
	if c.persona == linkerPersona {
		primary, err = c.calcLinkerCommand(builder)
	} else {
		primary, err = c.calcCompilerCommand(builder)
	}
	if err != nil {
		return nil, err
	}

	inv := &invocation{
		primary:             primary,
		artifact:            artifactPath(c.profile),
		preserveUnoptimized: c.cfg.boolean(optWasmOptPreserveUnoptimized),
	}
	if c.profile.moduleKind.isBinary() && shouldRunWasmOpt(c.cfg, runWasmOpt) {
		inv.optimizer = calcWasmOptCommand(c.cfg, c.profile, c.paths.wasmOpt)
	}
	return inv, nil
}

func (c *invocationComposer) calcCompilerCommand(builder *commandBuilder) (*command, error) {
	pre, post := configuredCompilerFlags(c.cfg, c.profile)
	tokens := append(append(pre, builder.userArgs()...), post...)
	if err := checkConflictingFlags(c.profile, tokens, c.paths.platformRoot); err != nil {
		return nil, err
	}

	builder.path = filepath.Join(c.paths.toolchainBinDir, compilerToolName(c.profile))
	link := driverLinkEmitter{builder}
	processTargetFlags(builder, c.paths.platformRoot)
	processModuleKindCompileFlags(builder, c.profile, c.info)
	processModuleKindLinkFlags(link, c.profile, c.paths.platformRoot)
	processExceptionCompileFlags(builder, c.profile)
	processExceptionLinkFlags(link, c.profile)
	processPicCompileFlags(builder, c.profile)
	processPicLinkFlags(link, c.profile)
	processConfiguredPreFlags(builder, c.cfg, c.profile)
	processConfiguredPostFlags(builder, c.cfg, c.profile)
	processForcedFeatureFlags(builder, c.profile)
	return builder.build(), nil
}

func (c *invocationComposer) calcLinkerCommand(builder *commandBuilder) (*command, error) {
	if !c.profile.moduleKind.isBinary() {
		return nil, newUserErrorf(unsupportedCombinationError,
			"module kind %s cannot be produced by the linker", c.profile.moduleKind)
	}
	builder.path = filepath.Join(c.paths.toolchainBinDir, "wasm-ld")
	link := wasmLdLinkEmitter{builder}
	processModuleKindLinkFlags(link, c.profile, c.paths.platformRoot)
	processExceptionLinkFlags(link, c.profile)
	processPicLinkFlags(link, c.profile)
	builder.addPreUserArgs(c.cfg.list(optLinkerFlags)...)
	return builder.build(), nil
}

// Invocations such as --version or -dumpmachine have no inputs and only
// need the target.
func (c *invocationComposer) calcNoInputCommand(builder *commandBuilder) *command {
	if c.persona == linkerPersona {
		builder.path = filepath.Join(c.paths.toolchainBinDir, "wasm-ld")
		return builder.build()
	}
	builder.path = filepath.Join(c.paths.toolchainBinDir, compilerToolName(c.profile))
	builder.addPreUserArgs("--target=" + wasixTarget)
	return builder.build()
}
