// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

const mainC = "main.c"
const mainCc = "main.cc"
const wasixCc = "./wasixcc"
const wasixCxx = "./wasix++"
const wasixLd = "./wasixld"
const wasixAr = "./wasixar"

type testContext struct {
	t            *testing.T
	tempDir      string
	env          []string
	stdinBuffer  bytes.Buffer
	stdoutBuffer bytes.Buffer
	stderrBuffer bytes.Buffer
	cmdCount     int
	cmds         []*command
	cmdMock      func(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error
	acquirer     *fakeAcquirer
}

func withTestContext(t *testing.T, work func(ctx *testContext)) {
	t.Parallel()
	tempDir := t.TempDir()
	ctx := testContext{
		t:        t,
		tempDir:  tempDir,
		env:      []string{"HOME=" + tempDir},
		acquirer: &fakeAcquirer{},
	}
	for _, dir := range []string{
		ctx.llvmBinDir(),
		ctx.sysrootDir("sysroot"),
		ctx.sysrootDir("sysroot-eh"),
		ctx.sysrootDir("sysroot-ehpic"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	work(&ctx)
}

var _ env = (*testContext)(nil)

func (ctx *testContext) getenv(key string) (string, bool) {
	for i := len(ctx.env) - 1; i >= 0; i-- {
		entry := ctx.env[i]
		if strings.HasPrefix(entry, key+"=") {
			return entry[len(key)+1:], true
		}
	}
	return "", false
}

func (ctx *testContext) environ() []string {
	return ctx.env
}

func (ctx *testContext) getwd() string {
	return ctx.tempDir
}

func (ctx *testContext) stdin() io.Reader {
	return &ctx.stdinBuffer
}

func (ctx *testContext) stdout() io.Writer {
	return &ctx.stdoutBuffer
}

func (ctx *testContext) stdoutString() string {
	return ctx.stdoutBuffer.String()
}

func (ctx *testContext) stderr() io.Writer {
	return &ctx.stderrBuffer
}

func (ctx *testContext) stderrString() string {
	return ctx.stderrBuffer.String()
}

func (ctx *testContext) run(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	ctx.cmdCount++
	ctx.cmds = append(ctx.cmds, cmd)
	if ctx.cmdMock != nil {
		return ctx.cmdMock(cmd, stdin, stdout, stderr)
	}
	return nil
}

func (ctx *testContext) exec(cmd *command) error {
	return ctx.run(cmd, ctx.stdin(), ctx.stdout(), ctx.stderr())
}

func (ctx *testContext) lastCmd() *command {
	if len(ctx.cmds) == 0 {
		ctx.t.Fatal("no command was run")
	}
	return ctx.cmds[len(ctx.cmds)-1]
}

func (ctx *testContext) llvmBinDir() string {
	return filepath.Join(ctx.tempDir, ".wasixcc", "llvm", "bin")
}

func (ctx *testContext) sysrootPrefix() string {
	return filepath.Join(ctx.tempDir, ".wasixcc", "sysroot")
}

func (ctx *testContext) sysrootDir(name string) string {
	return filepath.Join(ctx.sysrootPrefix(), name)
}

func (ctx *testContext) newCommand(path string, args ...string) *command {
	return &command{
		Path: path,
		Args: args,
	}
}

func (ctx *testContext) newAcquirer(env env, cfg *effectiveConfig) acquirer {
	return ctx.acquirer
}

// Runs the wrapper and fails the test on a non zero exit code.
func (ctx *testContext) must(exitCode int) *command {
	if exitCode != 0 {
		ctx.t.Fatalf("expected no error, but got exit code %d. Stderr: %s",
			exitCode, ctx.stderrString())
	}
	return ctx.lastCmd()
}

func (ctx *testContext) mustFail(exitCode int) string {
	if exitCode == 0 {
		ctx.t.Fatalf("expected an error, but got none")
	}
	return ctx.stderrString()
}

func (ctx *testContext) callWrapper(cmd *command) int {
	return callWrapper(ctx, ctx.newAcquirer, cmd)
}

func (ctx *testContext) writeFile(fullFileName string, fileContent string) {
	if !filepath.IsAbs(fullFileName) {
		fullFileName = filepath.Join(ctx.tempDir, fullFileName)
	}
	if err := os.MkdirAll(filepath.Dir(fullFileName), 0o777); err != nil {
		ctx.t.Fatal(err)
	}
	if err := os.WriteFile(fullFileName, []byte(fileContent), 0o777); err != nil {
		ctx.t.Fatal(err)
	}
}

type fakeAcquirer struct {
	calls   []string
	install func(kind resourceKind, tag string) error
}

func (a *fakeAcquirer) acquire(kind resourceKind, tag string) (string, error) {
	a.calls = append(a.calls, fmt.Sprintf("%s@%s", kind, tag))
	if a.install != nil {
		if err := a.install(kind, tag); err != nil {
			return "", err
		}
	}
	return "", nil
}

// Returns an error that looks like a process that exited with exitCode.
func newExitCodeError(exitCode int) error {
	return exec.Command("sh", "-c", fmt.Sprintf("exit %d", exitCode)).Run()
}

func verifyPath(cmd *command, expectedRegex string) error {
	compiledRegex := regexp.MustCompile(matchFullString(expectedRegex))
	if !compiledRegex.MatchString(cmd.Path) {
		return fmt.Errorf("path does not match %s. Actual %s", expectedRegex, cmd.Path)
	}
	return nil
}

func verifyArgCount(cmd *command, expectedCount int, expectedRegex string) error {
	compiledRegex := regexp.MustCompile(matchFullString(expectedRegex))
	count := 0
	for _, arg := range cmd.Args {
		if compiledRegex.MatchString(arg) {
			count++
		}
	}
	if count != expectedCount {
		return fmt.Errorf("expected %d matches for arg %s. All args: %s",
			expectedCount, expectedRegex, cmd.Args)
	}
	return nil
}

func verifyArgOrder(cmd *command, expectedRegexes ...string) error {
	compiledRegexes := []*regexp.Regexp{}
	for _, regex := range expectedRegexes {
		compiledRegexes = append(compiledRegexes, regexp.MustCompile(matchFullString(regex)))
	}
	expectedArgIndex := 0
	for _, arg := range cmd.Args {
		if expectedArgIndex == len(compiledRegexes) {
			break
		} else if compiledRegexes[expectedArgIndex].MatchString(arg) {
			expectedArgIndex++
		}
	}
	if expectedArgIndex != len(expectedRegexes) {
		return fmt.Errorf("expected args %s in order. All args: %s",
			expectedRegexes, cmd.Args)
	}
	return nil
}

// Checks that expected appears in the arguments as one contiguous block.
func verifyContiguousArgs(cmd *command, expected ...string) error {
	for start := 0; start+len(expected) <= len(cmd.Args); start++ {
		match := true
		for i, arg := range expected {
			if cmd.Args[start+i] != arg {
				match = false
				break
			}
		}
		if match {
			return nil
		}
	}
	return fmt.Errorf("expected contiguous args %s. All args: %s", expected, cmd.Args)
}

func indexOfArg(cmd *command, arg string) int {
	for i, a := range cmd.Args {
		if a == arg {
			return i
		}
	}
	return -1
}

func matchFullString(regex string) string {
	return "^" + regex + "$"
}
