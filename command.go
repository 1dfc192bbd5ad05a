// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/kballard/go-shellquote"
)

type command struct {
	Path string
	Args []string
}

func newProcessCommand() *command {
	return &command{
		Path: os.Args[0],
		Args: os.Args[1:],
	}
}

func newExecCmd(env env, cmd *command) *exec.Cmd {
	execCmd := exec.Command(cmd.Path, cmd.Args...)
	execCmd.Env = env.environ()
	execCmd.Dir = env.getwd()
	return execCmd
}

func getAbsCmdPath(env env, cmd *command) string {
	path := cmd.Path
	if !filepath.IsAbs(path) && filepath.Base(path) != path {
		path = filepath.Join(env.getwd(), path)
	}
	return path
}

// String renders the command the way a shell would need to see it.
func (cmd *command) String() string {
	return shellquote.Join(append([]string{cmd.Path}, cmd.Args...)...)
}

// commandBuilder is an ordered flag list. Arguments coming from the user
// form one contiguous block; configuration adds arguments in front of it
// (pre) or after it (post). The underlying tools apply last-flag-wins, so
// this split decides who can override whom.
type commandBuilder struct {
	path string
	args []builderArg
}

type builderArg struct {
	value    string
	fromUser bool
	post     bool
}

func newCommandBuilder(path string, userArgs []string) *commandBuilder {
	return &commandBuilder{
		path: path,
		args: createBuilderArgs( /*fromUser=*/ true, userArgs),
	}
}

func createBuilderArgs(fromUser bool, args []string) []builderArg {
	builderArgs := make([]builderArg, len(args))
	for i, arg := range args {
		builderArgs[i] = builderArg{value: arg, fromUser: fromUser}
	}
	return builderArgs
}

func (builder *commandBuilder) addPreUserArgs(args ...string) {
	index := 0
	for _, arg := range builder.args {
		if arg.fromUser || arg.post {
			break
		}
		index++
	}
	builder.args = append(builder.args[:index], append(createBuilderArgs( /*fromUser=*/ false, args), builder.args[index:]...)...)
}

func (builder *commandBuilder) addPostUserArgs(args ...string) {
	postArgs := createBuilderArgs( /*fromUser=*/ false, args)
	for i := range postArgs {
		postArgs[i].post = true
	}
	builder.args = append(builder.args, postArgs...)
}

// Removes the arguments keep rejects. Empty arguments are ordinary
// arguments here.
func (builder *commandBuilder) filterArgs(keep func(arg builderArg) bool) {
	// See https://github.com/golang/go/wiki/SliceTricks
	newArgs := builder.args[:0]
	for _, arg := range builder.args {
		if keep(arg) {
			newArgs = append(newArgs, arg)
		}
	}
	builder.args = newArgs
}

func (builder *commandBuilder) userArgs() []string {
	var args []string
	for _, arg := range builder.args {
		if arg.fromUser {
			args = append(args, arg.value)
		}
	}
	return args
}

func (builder *commandBuilder) build() *command {
	cmdArgs := make([]string, len(builder.args))
	for i, builderArg := range builder.args {
		cmdArgs[i] = builderArg.value
	}
	return &command{
		Path: builder.path,
		Args: cmdArgs,
	}
}
