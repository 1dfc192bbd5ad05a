// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// wasixcc drives clang, wasm-ld and wasm-opt to build WASIX modules.
//
// The binary is installed under several names (see
// 'wasixccenv install-executables') and picks its behavior from the name
// it was invoked as:
// - wasixcc, wasix++, wasixcc++: C/C++ compiler.
// - wasixld: linker.
// - wasixar, wasixnm, wasixranlib: LLVM binary tools.
// - wasixccenv: toolchain management.
//
// The version is set at link time:
//
//	go build -ldflags "-X main.Version=v0.3.0"
//
// Setting WASIXCC_LOG=debug logs the resolved profile and every command.
package main

import (
	"log"
	"os"
)

var osExecutable = os.Executable

func main() {
	env, err := newProcessEnv()
	if err != nil {
		log.Fatal(err)
	}
	if err := setupLogging(env); err != nil {
		log.Fatal(err)
	}

	inputCmd := newProcessCommand()
	var exitCode int
	if invokedBaseName(inputCmd.Path) == envToolName {
		exitCode = runEnvTool(env, inputCmd.Args)
	} else {
		// Note: pass-through personas exec the tool. We only get here for
		// compiler and linker invocations or on errors.
		exitCode = callWrapper(env, newWrapperAcquirer, inputCmd)
	}
	Logger().Sync()
	os.Exit(exitCode)
}
