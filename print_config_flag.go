// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"io"

	"gopkg.in/yaml.v3"
)

func processPrintConfigFlag(builder *commandBuilder) bool {
	printConfig := false
	builder.filterArgs(func(arg builderArg) bool {
		if arg.fromUser && arg.value == "-print-config" {
			printConfig = true
			return false
		}
		return true
	})
	return printConfig
}

type printedOption struct {
	Key    string `yaml:"key"`
	Value  string `yaml:"value"`
	Type   string `yaml:"type"`
	Source string `yaml:"source"`
}

type printedProfile struct {
	ModuleKind          string `yaml:"module_kind"`
	ExceptionMode       string `yaml:"exception_mode"`
	PositionIndependent bool   `yaml:"position_independent"`
	Language            string `yaml:"language"`
}

type printedConfig struct {
	Options []printedOption `yaml:"options"`
	Profile *printedProfile `yaml:"profile,omitempty"`
}

func printEffectiveConfig(w io.Writer, cfg *effectiveConfig, profile *buildProfile) error {
	out := printedConfig{}
	for _, entry := range cfg.sortedEntries() {
		out.Options = append(out.Options, printedOption{
			Key:    entry.Key,
			Value:  entry.Value,
			Type:   entry.typ.String(),
			Source: entry.Source.String(),
		})
	}
	if profile != nil {
		out.Profile = &printedProfile{
			ModuleKind:          profile.moduleKind.String(),
			ExceptionMode:       profile.exceptionMode.String(),
			PositionIndependent: profile.positionIndependent,
			Language:            profile.sourceLanguage.String(),
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return wrapErrorwithSourceLocf(err, "failed to print configuration")
	}
	return enc.Close()
}
