package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"

	"MeshKeygen/internal/cli"
	"MeshKeygen/internal/logsink"
	"MeshKeygen/pkg/appcfg"
	"MeshKeygen/pkg/logx"
)

func main() {
	os.Exit(run())
}

func run() int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "getwd: %v\n", err)
		return 2
	}

	appConf, err := appcfg.Load(filepath.Join(cwd, "configs", "app.yaml"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "load app config: %v (use defaults)\n", err)
		}
		appConf = appcfg.Default()
	}

	logCfg := logx.Config{
		Level:                appConf.LogLevel,
		ConsoleOnly:          appConf.LogsDir == "",
		HideSecretsInConsole: appConf.HideSecretsInConsole,
		Console:              zapcore.Lock(os.Stderr),
	}
	if appConf.LogsDir != "" {
		dir, err := logsink.RunDir(appConf.LogsDir, "search", logx.StartTime)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logs dir: %v\n", err)
			return 1
		}
		logCfg.FilePath = filepath.Join(dir, "app.log")
	}
	if err := logx.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "log init: %v\n", err)
		return 1
	}
	defer logx.Close()

	logx.S().Infow("meshkeygen started",
		"cwd", cwd,
		"lang", appConf.Language,
		"log_level", appConf.LogLevel,
		"hide_secrets_in_console", appConf.HideSecretsInConsole,
		"keys_file", appConf.KeysFile,
	)

	cmd := cli.NewRootCommand(cli.NewRunner(appConf))
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logx.S().Errorw("meshkeygen failed", "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
