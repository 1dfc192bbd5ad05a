// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// newAcquirerFunc builds the acquisition collaborator for one run. It may
// return nil when acquisition is not available.
type newAcquirerFunc func(env env, cfg *effectiveConfig) acquirer

func callWrapper(env env, newAcquirer newAcquirerFunc, inputCmd *command) int {
	exitCode, err := callWrapperInternal(env, newAcquirer, inputCmd)
	if err != nil {
		printWrapperError(env.stderr(), err)
		return errorExitCode(err)
	}
	return exitCode
}

func callWrapperInternal(env env, newAcquirer newAcquirerFunc, inputCmd *command) (exitCode int, err error) {
	persona, err := determinePersona(inputCmd.Path)
	if err != nil {
		return 0, err
	}
	Logger().Debug("dispatching", zap.String("name", inputCmd.Path), zap.Stringer("persona", persona))

	settings, toolArgs := separateSettingsArgs(inputCmd.Args)
	store, err := newConfigStore(env, settings)
	if err != nil {
		return 0, err
	}
	cfg, err := store.snapshot()
	if err != nil {
		return 0, err
	}
	var acq acquirer
	if newAcquirer != nil {
		acq = newAcquirer(env, cfg)
	}
	if c, ok := acq.(interface{ close() }); ok {
		defer c.close()
	}
	resolver := newSysrootResolver(cfg, acq)

	if tool, ok := passthroughTools[persona]; ok {
		binDir, err := resolver.resolveToolchainBinDir()
		if err != nil {
			return 0, err
		}
		toolCmd := &command{Path: filepath.Join(binDir, tool), Args: toolArgs}
		return wrapSubprocessErrorWithSourceLoc(toolCmd, env.exec(toolCmd))
	}

	builder := newCommandBuilder("", toolArgs)
	if processPrintCmdlineFlag(builder) {
		env = &printingEnv{env}
	}
	printConfig := processPrintConfigFlag(builder)
	runWasmOpt := processWasmOptFlag(builder)

	info := scanUserArgs(persona, builder.userArgs())
	profile, err := resolveBuildProfile(cfg, persona, info)
	if err != nil {
		return 0, err
	}
	Logger().Debug("resolved build profile", zap.Stringer("profile", profile))
	if printConfig {
		if err := printEffectiveConfig(env.stderr(), cfg, profile); err != nil {
			return 0, err
		}
	}

	paths := toolPaths{wasmOpt: resolver.wasmOptPath()}
	if paths.toolchainBinDir, err = resolver.resolveToolchainBinDir(); err != nil {
		return 0, err
	}
	if len(info.inputs) > 0 {
		if paths.platformRoot, err = resolver.resolvePlatformRoot(profile); err != nil {
			return 0, err
		}
	}

	composer := &invocationComposer{
		cfg:     cfg,
		profile: profile,
		persona: persona,
		info:    info,
		paths:   paths,
	}
	inv, err := composer.compose(builder, runWasmOpt)
	if err != nil {
		return 0, err
	}
	return runInvocation(env, inv)
}

// runInvocation runs the primary command and, only if it succeeded, the
// optimizer.
func runInvocation(env env, inv *invocation) (exitCode int, err error) {
	Logger().Debug("running", zap.Stringer("command", inv.primary))
	exitCode, err = wrapSubprocessErrorWithSourceLoc(inv.primary,
		env.run(inv.primary, env.stdin(), env.stdout(), env.stderr()))
	if err != nil || exitCode != 0 || inv.optimizer == nil {
		return exitCode, err
	}

	preserved := ""
	if inv.preserveUnoptimized {
		if preserved, err = preserveUnoptimized(env, inv.artifact); err != nil {
			return 0, err
		}
	}
	Logger().Debug("running", zap.Stringer("command", inv.optimizer))
	exitCode, err = wrapSubprocessErrorWithSourceLoc(inv.optimizer,
		env.run(inv.optimizer, env.stdin(), env.stdout(), env.stderr()))
	if preserved != "" {
		if err != nil || exitCode != 0 {
			fmt.Fprintf(env.stderr(), "wasm-opt failed, the unoptimized module was preserved at %s\n", preserved)
		} else {
			os.Remove(preserved)
		}
	}
	return exitCode, err
}

func preserveUnoptimized(env env, artifact string) (string, error) {
	if !filepath.IsAbs(artifact) {
		artifact = filepath.Join(env.getwd(), artifact)
	}
	src, err := os.Open(artifact)
	if err != nil {
		return "", wrapErrorwithSourceLocf(err, "failed to open %s", artifact)
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "wasixcc-unoptimized-*"+filepath.Ext(artifact))
	if err != nil {
		return "", wrapErrorwithSourceLocf(err, "failed to create preserved copy")
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", wrapErrorwithSourceLocf(err, "failed to copy %s", artifact)
	}
	return dst.Name(), nil
}

func printWrapperError(writer io.Writer, wrapperErr error) {
	var uerr userError
	if errors.As(wrapperErr, &uerr) {
		fmt.Fprintf(writer, "wasixcc: %s\n", wrapperErr)
	} else {
		fmt.Fprintf(writer,
			"wasixcc: internal error, please report to https://github.com/wasix-org/wasixcc/issues\n%s\n",
			wrapperErr)
	}
}
