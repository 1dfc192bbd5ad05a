// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

func configuredCompilerFlags(cfg *effectiveConfig, profile *buildProfile) (pre []string, post []string) {
	pre = append(pre, cfg.list(optCompilerFlags)...)
	post = append(post, cfg.list(optCompilerPostFlags)...)
	if profile.sourceLanguage == languageCxx {
		pre = append(pre, cfg.list(optCompilerFlagsCxx)...)
		post = append(post, cfg.list(optCompilerPostFlagsCxx)...)
	} else {
		pre = append(pre, cfg.list(optCompilerFlagsC)...)
		post = append(post, cfg.list(optCompilerPostFlagsC)...)
	}
	return pre, post
}

func processConfiguredPreFlags(builder *commandBuilder, cfg *effectiveConfig, profile *buildProfile) {
	pre, _ := configuredCompilerFlags(cfg, profile)
	builder.addPreUserArgs(pre...)
	if profile.moduleKind.isBinary() {
		e := driverLinkEmitter{builder}
		for _, flag := range cfg.list(optLinkerFlags) {
			e.linkerFlag(flag)
		}
	}
}

func processConfiguredPostFlags(builder *commandBuilder, cfg *effectiveConfig, profile *buildProfile) {
	_, post := configuredCompilerFlags(cfg, profile)
	builder.addPostUserArgs(post...)
}

func compilerToolName(profile *buildProfile) string {
	if profile.sourceLanguage == languageCxx {
		return "clang++"
	}
	return "clang"
}
