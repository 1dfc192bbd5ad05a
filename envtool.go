// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Name under which the binary runs the management commands.
const envToolName = "wasixccenv"

// Version is set at link time with -ldflags "-X main.Version=...".
var Version = "dev"

type resourceDownloader interface {
	acquirer
	downloadSysroot(tag string) (string, error)
	downloadLLVM(tag string) (string, error)
	downloadBinaryen(tag string) (string, error)
	close()
}

func newResourceDownloader(e env, cfg *effectiveConfig) resourceDownloader {
	return newGithubAcquirer(e, cfg)
}

type envToolDeps struct {
	env           env
	newDownloader func(env env, cfg *effectiveConfig) resourceDownloader
	executable    func() (string, error)
}

type settingsFlag struct {
	values []string
}

func (f *settingsFlag) bind(flags *pflag.FlagSet) {
	flags.StringArrayVarP(&f.values, "setting", "s", nil,
		"configuration setting KEY=VALUE, see 'help-config'")
}

func (f *settingsFlag) config(env env) (*effectiveConfig, error) {
	settings := make([]string, 0, len(f.values))
	for _, value := range f.values {
		settings = append(settings, "-s"+value)
	}
	store, err := newConfigStore(env, settings)
	if err != nil {
		return nil, err
	}
	return store.snapshot()
}

func newEnvToolCommand(deps envToolDeps) *cobra.Command {
	settings := &settingsFlag{}
	cmd := &cobra.Command{
		Use:           envToolName,
		Short:         "wasixccenv manages the WASIX toolchain used by wasixcc",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(deps.env.stdin())
	cmd.SetOut(deps.env.stdout())
	cmd.SetErr(deps.env.stderr())
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return newUserErrorf(invalidOptionValueError, "%s: %s", cmd.CommandPath(), err)
	})
	settings.bind(cmd.PersistentFlags())

	downloader := func() (resourceDownloader, error) {
		cfg, err := settings.config(deps.env)
		if err != nil {
			return nil, err
		}
		return deps.newDownloader(deps.env, cfg), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "install-executables PATH",
		Short: "Install the wasixcc commands as symlinks to this binary",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			exePath, err := deps.executable()
			if err != nil {
				return wrapErrorwithSourceLocf(err, "failed to find the current executable")
			}
			return installExecutables(cmd.OutOrStdout(), exePath, args[0])
		},
	})

	cmd.AddCommand(newDownloadCommand("download-sysroot", "Download the WASIX sysroots", downloader,
		resourceDownloader.downloadSysroot))
	cmd.AddCommand(newDownloadCommand("download-llvm", "Download the WASIX LLVM toolchain", downloader,
		resourceDownloader.downloadLLVM))
	cmd.AddCommand(newDownloadCommand("download-binaryen", "Download binaryen into BINARYEN_LOCATION", downloader,
		resourceDownloader.downloadBinaryen))

	var sysrootTag, llvmTag string
	installAll := &cobra.Command{
		Use:   "install-all PATH",
		Short: "Download the toolchain and sysroots, then install the wasixcc commands",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := downloader()
			if err != nil {
				return err
			}
			defer d.close()
			if _, err := d.downloadLLVM(llvmTag); err != nil {
				return downloadError(err)
			}
			if _, err := d.downloadSysroot(sysrootTag); err != nil {
				return downloadError(err)
			}
			exePath, err := deps.executable()
			if err != nil {
				return wrapErrorwithSourceLocf(err, "failed to find the current executable")
			}
			return installExecutables(cmd.OutOrStdout(), exePath, args[0])
		},
	}
	installAll.Flags().StringVar(&sysrootTag, "sysroot-tag", "latest", "sysroot release tag")
	installAll.Flags().StringVar(&llvmTag, "llvm-tag", "latest", "LLVM release tag")
	cmd.AddCommand(installAll)

	cmd.AddCommand(&cobra.Command{
		Use:   "print-sysroot",
		Short: "Print the sysroot location for the current configuration",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings.config(deps.env)
			if err != nil {
				return err
			}
			profile, err := resolveBuildProfile(cfg, cCompilerPersona, &userArgInfo{})
			if err != nil {
				return err
			}
			d := deps.newDownloader(deps.env, cfg)
			defer d.close()
			root, err := newSysrootResolver(cfg, d).resolvePlatformRoot(profile)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), root)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information and the installed resources",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
			cfg, err := settings.config(deps.env)
			if err != nil {
				return err
			}
			printInstalled(cmd.OutOrStdout(), cfg)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "help-config",
		Short: "Describe the configuration options",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			printConfigHelp(cmd.OutOrStdout())
		},
	})
	return cmd
}

func newDownloadCommand(use, short string, downloader func() (resourceDownloader, error),
	download func(resourceDownloader, string) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [TAG]",
		Short: short + ", TAG is 'latest', 'v*' or 'version_*'",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := "latest"
			if len(args) == 1 {
				tag = args[0]
			}
			d, err := downloader()
			if err != nil {
				return err
			}
			defer d.close()
			if _, err := download(d, tag); err != nil {
				return downloadError(err)
			}
			return nil
		},
	}
}

// Argument count mistakes are the user's, not ours.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return newUserErrorf(invalidOptionValueError, "%s: %s", cmd.CommandPath(), err)
		}
		return nil
	}
}

// Reports what install-all and the download commands left behind.
func printInstalled(w io.Writer, cfg *effectiveConfig) {
	for _, resource := range []struct{ name, dir string }{
		{"sysroot", cfg.str(optSysrootPrefix)},
		{"llvm", cfg.str(optLlvmLocation)},
		{"binaryen", cfg.str(optBinaryenLocation)},
	} {
		if resource.dir == "" {
			continue
		}
		manifest, err := readInstallManifest(resource.dir)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s: %s from %s, installed %s at %s\n", resource.name, manifest.Tag,
			manifest.Repository, manifest.InstalledAt.Format("2006-01-02"), resource.dir)
	}
}

func downloadError(err error) error {
	var uerr userError
	if errors.As(err, &uerr) {
		return err
	}
	return newUserErrorf(acquisitionFailedError, "%s", err)
}

var optionHelp = map[string]string{
	optSysroot:                    "Sysroot to use directly, overrides SYSROOT_PREFIX.",
	optSysrootPrefix:              "Directory holding the sysroot, sysroot-eh and sysroot-ehpic sysroots.",
	optLlvmLocation:               "Installation directory of the WASIX LLVM toolchain; tools run from its bin directory.",
	optBinaryenLocation:           "Installation directory of binaryen; wasm-opt is taken from PATH when unset.",
	optCompilerFlags:              "Compiler flags added before the command line arguments.",
	optCompilerPostFlags:          "Compiler flags added after the command line arguments.",
	optCompilerFlagsC:             "Like COMPILER_FLAGS, for C only.",
	optCompilerPostFlagsC:         "Like COMPILER_POST_FLAGS, for C only.",
	optCompilerFlagsCxx:           "Like COMPILER_FLAGS, for C++ only.",
	optCompilerPostFlagsCxx:       "Like COMPILER_POST_FLAGS, for C++ only.",
	optLinkerFlags:                "Extra linker flags.",
	optIncludeCppSymbols:          "Link the C++ runtime into dynamic main modules built from C.",
	optRunWasmOpt:                 "Run wasm-opt on linked modules. Defaults to yes, or follows --wasm-opt/--no-wasm-opt.",
	optWasmOptFlags:               "Extra wasm-opt flags; a non-empty list implies RUN_WASM_OPT=yes.",
	optWasmOptSuppressDefault:     "Do not pass --asyncify/--emit-exnref and -O to wasm-opt.",
	optWasmOptPreserveUnoptimized: "Keep a copy of the unoptimized module when wasm-opt fails.",
	optModuleKind:                 "static-main, dynamic-main, shared-library or object-file; deduced from the arguments when unset.",
	optWasmExceptions:             "Use WebAssembly exception handling instead of asyncify.",
	optPic:                        "Build position-independent code against the PIC sysroot; dynamic-main and shared-library always compile as PIC.",
	optLinkSymbolic:               "Link shared libraries with -Bsymbolic.",
	optDownloadMissing:            "Download a missing sysroot or toolchain instead of failing.",
	optSysrootTag:                 "Release tag used when downloading the sysroot.",
	optLlvmTag:                    "Release tag used when downloading the toolchain.",
}

func printConfigHelp(w io.Writer) {
	fmt.Fprintf(w, "Options are set with -s<KEY>=<VALUE> on the command line or with %s<KEY>\n", envPrefix)
	fmt.Fprintf(w, "environment variables. The command line wins over the environment.\n")
	fmt.Fprintf(w, "Lists are separated by ':', booleans are yes/no, true/false or 1/0.\n\n")
	for _, spec := range optionRegistry {
		fmt.Fprintf(w, "  %s=<%s>\n", spec.key, strings.ToUpper(spec.typ.String()))
		fmt.Fprintf(w, "      %s\n", optionHelp[spec.key])
	}
}

func runEnvTool(env env, args []string) int {
	cmd := newEnvToolCommand(envToolDeps{
		env:           env,
		newDownloader: newResourceDownloader,
		executable:    osExecutable,
	})
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		printWrapperError(env.stderr(), err)
		return errorExitCode(err)
	}
	return 0
}
