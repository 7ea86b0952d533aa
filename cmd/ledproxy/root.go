package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/ledproxy/internal/config"
	"github.com/taoyao-code/ledproxy/internal/logging"
)

// loader 加载配置并初始化全局日志，flag 已绑定到同一 viper 实例
type loader func() (*cfgpkg.Config, *zap.Logger, error)

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "ledproxy",
		Short: "ALLS to LED board serial proxy",
		Long: `ledproxy sits between an ALLS I/O controller and its LED board,
forwarding JVS frames in both directions. It answers board-info queries with
a spoofed identity and can correct boards wired as RBG.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./configs/ledproxy.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console, json")
	mustBind(v, "logging.level", pf.Lookup("log-level"))
	mustBind(v, "logging.format", pf.Lookup("log-format"))

	load := func() (*cfgpkg.Config, *zap.Logger, error) {
		cfg, err := cfgpkg.LoadWith(v, cfgFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		log, err := logging.InitLogger(cfg.Logging)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init logger: %w", err)
		}
		zap.ReplaceGlobals(log)
		return cfg, log, nil
	}

	root.AddCommand(newFileCmd(v, load), newProxyCmd(v, load))
	return root
}
