// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Environment variable selecting the log level. Unset disables logging.
const logLevelEnv = envPrefix + "LOG"

var (
	loggerMu sync.Mutex
	logger   *zap.Logger
)

// Logger returns the wrapper's logger. It is a no-op logger unless
// setupLogging or SetLogger installed another one.
func Logger() *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// setupLogging installs a console logger on stderr when WASIXCC_LOG names a
// level. Compiler output goes to stderr as well, so logs stay off by default.
func setupLogging(env env) error {
	levelName, ok := env.getenv(logLevelEnv)
	if !ok || levelName == "" {
		return nil
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return newUserErrorf(invalidOptionValueError, "invalid value %q for %s: %s", levelName, logLevelEnv, err)
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if f, ok := env.stderr().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(env.stderr()),
		level,
	)
	SetLogger(zap.New(core).Named("wasixcc"))
	return nil
}
