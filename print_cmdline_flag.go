// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

func processPrintCmdlineFlag(builder *commandBuilder) bool {
	printCmd := false
	builder.filterArgs(func(arg builderArg) bool {
		if arg.fromUser && arg.value == "-print-cmdline" {
			printCmd = true
			return false
		}
		return true
	})
	return printCmd
}
