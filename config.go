// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"path/filepath"
	"sort"
	"strings"
)

// Every option can be set as -s<KEY>=<VALUE> or through the environment
// variable envPrefix+KEY.
const envPrefix = "WASIXCC_"

type optionType int

const (
	stringOption optionType = iota
	boolOption
	pathOption
	listOption
)

func (typ optionType) String() string {
	switch typ {
	case boolOption:
		return "bool"
	case pathOption:
		return "path"
	case listOption:
		return "list"
	default:
		return "string"
	}
}

type optionSource int

const (
	sourceDefault optionSource = iota
	sourceEnvironment
	sourceCommandLine
)

func (source optionSource) String() string {
	switch source {
	case sourceEnvironment:
		return "environment"
	case sourceCommandLine:
		return "command-line"
	default:
		return "default"
	}
}

// Option keys.
const (
	optSysroot                    = "SYSROOT"
	optSysrootPrefix              = "SYSROOT_PREFIX"
	optLlvmLocation               = "LLVM_LOCATION"
	optBinaryenLocation           = "BINARYEN_LOCATION"
	optCompilerFlags              = "COMPILER_FLAGS"
	optCompilerPostFlags          = "COMPILER_POST_FLAGS"
	optCompilerFlagsC             = "COMPILER_FLAGS_C"
	optCompilerPostFlagsC         = "COMPILER_POST_FLAGS_C"
	optCompilerFlagsCxx           = "COMPILER_FLAGS_CXX"
	optCompilerPostFlagsCxx       = "COMPILER_POST_FLAGS_CXX"
	optLinkerFlags                = "LINKER_FLAGS"
	optIncludeCppSymbols          = "INCLUDE_CPP_SYMBOLS"
	optRunWasmOpt                 = "RUN_WASM_OPT"
	optWasmOptFlags               = "WASM_OPT_FLAGS"
	optWasmOptSuppressDefault     = "WASM_OPT_SUPPRESS_DEFAULT"
	optWasmOptPreserveUnoptimized = "WASM_OPT_PRESERVE_UNOPTIMIZED"
	optModuleKind                 = "MODULE_KIND"
	optWasmExceptions             = "WASM_EXCEPTIONS"
	optPic                        = "PIC"
	optLinkSymbolic               = "LINK_SYMBOLIC"
	optDownloadMissing            = "DOWNLOAD_MISSING"
	optSysrootTag                 = "SYSROOT_TAG"
	optLlvmTag                    = "LLVM_TAG"
)

type optionSpec struct {
	key string
	typ optionType
	// Returns the built-in value. An empty string means unset.
	defaultValue func(env env) string
}

func constDefault(value string) func(env) string {
	return func(env) string { return value }
}

func homeDefault(rel string, fallback string) func(env) string {
	return func(env env) string {
		if home, ok := env.getenv("HOME"); ok && home != "" {
			return filepath.Join(home, rel)
		}
		return fallback
	}
}

var optionRegistry = []optionSpec{
	{key: optSysroot, typ: pathOption, defaultValue: constDefault("")},
	{key: optSysrootPrefix, typ: pathOption, defaultValue: homeDefault(".wasixcc/sysroot", "/lib/wasixcc/sysroot")},
	{key: optLlvmLocation, typ: pathOption, defaultValue: homeDefault(".wasixcc/llvm", "/lib/wasixcc/llvm")},
	{key: optBinaryenLocation, typ: pathOption, defaultValue: constDefault("")},
	{key: optCompilerFlags, typ: listOption, defaultValue: constDefault("")},
	{key: optCompilerPostFlags, typ: listOption, defaultValue: constDefault("")},
	{key: optCompilerFlagsC, typ: listOption, defaultValue: constDefault("")},
	{key: optCompilerPostFlagsC, typ: listOption, defaultValue: constDefault("")},
	{key: optCompilerFlagsCxx, typ: listOption, defaultValue: constDefault("")},
	{key: optCompilerPostFlagsCxx, typ: listOption, defaultValue: constDefault("")},
	{key: optLinkerFlags, typ: listOption, defaultValue: constDefault("")},
	{key: optIncludeCppSymbols, typ: boolOption, defaultValue: constDefault("no")},
	{key: optRunWasmOpt, typ: boolOption, defaultValue: constDefault("yes")},
	{key: optWasmOptFlags, typ: listOption, defaultValue: constDefault("")},
	{key: optWasmOptSuppressDefault, typ: boolOption, defaultValue: constDefault("no")},
	{key: optWasmOptPreserveUnoptimized, typ: boolOption, defaultValue: constDefault("no")},
	{key: optModuleKind, typ: stringOption, defaultValue: constDefault("")},
	{key: optWasmExceptions, typ: boolOption, defaultValue: constDefault("no")},
	{key: optPic, typ: boolOption, defaultValue: constDefault("no")},
	{key: optLinkSymbolic, typ: boolOption, defaultValue: constDefault("yes")},
	{key: optDownloadMissing, typ: boolOption, defaultValue: constDefault("no")},
	{key: optSysrootTag, typ: stringOption, defaultValue: constDefault("latest")},
	{key: optLlvmTag, typ: stringOption, defaultValue: constDefault("latest")},
}

func lookupOption(key string) (*optionSpec, bool) {
	canonical := strings.ToUpper(key)
	for i := range optionRegistry {
		if optionRegistry[i].key == canonical {
			return &optionRegistry[i], true
		}
	}
	return nil, false
}

type configEntry struct {
	Key    string
	Value  string
	Source optionSource
	typ    optionType
}

// configStore holds the raw layers. It is read exactly once, by snapshot.
type configStore struct {
	env     env
	cmdline map[string]string
}

// Splits the arguments into -s<KEY>=<VALUE> settings and the arguments that
// are passed on to the tool. Everything after "--" is passed on.
func separateSettingsArgs(args []string) (settings []string, toolArgs []string) {
	seenDashDash := false
	for _, arg := range args {
		switch {
		case seenDashDash:
			toolArgs = append(toolArgs, arg)
		case arg == "--":
			seenDashDash = true
		case isSettingArg(arg):
			settings = append(settings, arg)
		default:
			toolArgs = append(toolArgs, arg)
		}
	}
	return settings, toolArgs
}

// Compiler flags such as -std=c11 or -save-temps=obj share the -s prefix.
// A token is only a setting if it names a registered option, or if its key
// is spelled in upper case like every option is.
func isSettingArg(arg string) bool {
	key, _, ok := splitSettingArg(arg)
	if !ok {
		return false
	}
	if _, known := lookupOption(key); known {
		return true
	}
	return key == strings.ToUpper(key) && strings.ToLower(key) != key
}

func splitSettingArg(arg string) (key string, value string, ok bool) {
	if !strings.HasPrefix(arg, "-s") {
		return "", "", false
	}
	key, value, ok = strings.Cut(arg[2:], "=")
	if !ok || key == "" {
		return "", "", false
	}
	for _, r := range key {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return "", "", false
		}
	}
	return key, value, true
}

func newConfigStore(env env, settings []string) (*configStore, error) {
	store := &configStore{
		env:     env,
		cmdline: map[string]string{},
	}
	for _, arg := range settings {
		key, value, ok := splitSettingArg(arg)
		if !ok {
			return nil, newUserErrorf(invalidOptionValueError, "malformed setting %q, expected -s<KEY>=<VALUE>", arg)
		}
		spec, known := lookupOption(key)
		if !known {
			return nil, newUserErrorf(unknownOptionError, "unknown option %q in %q", key, arg)
		}
		// Last occurrence wins.
		store.cmdline[spec.key] = value
	}
	return store, nil
}

func (store *configStore) resolve(key string) (configEntry, error) {
	spec, known := lookupOption(key)
	if !known {
		return configEntry{}, newUserErrorf(unknownOptionError, "unknown option %q", key)
	}
	if value, ok := store.cmdline[spec.key]; ok {
		return configEntry{Key: spec.key, Value: value, Source: sourceCommandLine, typ: spec.typ}, nil
	}
	if value, ok := store.env.getenv(envPrefix + spec.key); ok {
		return configEntry{Key: spec.key, Value: value, Source: sourceEnvironment, typ: spec.typ}, nil
	}
	return configEntry{Key: spec.key, Value: spec.defaultValue(store.env), Source: sourceDefault, typ: spec.typ}, nil
}

// snapshot freezes every registered option. Typed values are parsed here so
// that malformed input is reported before anything is composed.
func (store *configStore) snapshot() (*effectiveConfig, error) {
	cfg := &effectiveConfig{
		entries: make(map[string]configEntry, len(optionRegistry)),
		bools:   map[string]bool{},
		lists:   map[string][]string{},
	}
	for _, spec := range optionRegistry {
		entry, err := store.resolve(spec.key)
		if err != nil {
			return nil, err
		}
		switch spec.typ {
		case boolOption:
			b, ok := parseBoolSetting(entry.Value)
			if !ok {
				return nil, newUserErrorf(invalidOptionValueError,
					"invalid value %q for %s (from %s), expected yes/no", entry.Value, spec.key, entry.Source)
			}
			cfg.bools[spec.key] = b
		case listOption:
			cfg.lists[spec.key] = parseListSetting(entry.Value)
		case pathOption:
			if entry.Value != "" && !filepath.IsAbs(entry.Value) {
				entry.Value = filepath.Join(store.env.getwd(), entry.Value)
			}
		}
		cfg.entries[spec.key] = entry
	}
	return cfg, nil
}

// effectiveConfig is immutable once built.
type effectiveConfig struct {
	entries map[string]configEntry
	bools   map[string]bool
	lists   map[string][]string
}

func (cfg *effectiveConfig) entry(key string) configEntry {
	entry, ok := cfg.entries[strings.ToUpper(key)]
	if !ok {
		panic("unregistered option " + key)
	}
	return entry
}

func (cfg *effectiveConfig) str(key string) string {
	return cfg.entry(key).Value
}

func (cfg *effectiveConfig) isSet(key string) bool {
	return cfg.entry(key).Source != sourceDefault
}

func (cfg *effectiveConfig) boolean(key string) bool {
	cfg.entry(key)
	return cfg.bools[strings.ToUpper(key)]
}

// Returns a copy, callers may append to it.
func (cfg *effectiveConfig) list(key string) []string {
	cfg.entry(key)
	return append([]string(nil), cfg.lists[strings.ToUpper(key)]...)
}

func (cfg *effectiveConfig) sortedEntries() []configEntry {
	entries := make([]configEntry, 0, len(cfg.entries))
	for _, entry := range cfg.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

func parseBoolSetting(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	}
	return false, false
}

// Colon separated, "\:" is a literal colon. Entries are trimmed and empty
// entries dropped.
func parseListSetting(value string) []string {
	var result []string
	var current strings.Builder
	push := func() {
		if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
			result = append(result, trimmed)
		}
		current.Reset()
	}
	for i := 0; i < len(value); i++ {
		switch ch := value[i]; ch {
		case '\\':
			if i+1 < len(value) && value[i+1] == ':' {
				current.WriteByte(':')
				i++
			} else {
				current.WriteByte('\\')
			}
		case ':':
			push()
		default:
			current.WriteByte(ch)
		}
	}
	push()
	return result
}
