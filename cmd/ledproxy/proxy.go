package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/taoyao-code/ledproxy/internal/app/bootstrap"
)

const pinHelp = "PWM channel as <pwmchip#>-<pwm#>, e.g. 0-3; repeatable, overlapping sections average"

func newProxyCmd(v *viper.Viper, load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy [alls-port] [led-port]",
		Short: "Proxy traffic between the ALLS and the LED board",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				v.Set("link.alls.path", args[0])
			}
			if len(args) > 1 {
				v.Set("link.led.path", args[1])
			}
			f := cmd.Flags()
			if f.Changed("ring") || f.Changed("side") || f.Changed("chassis") {
				v.Set("pwm.enable", true)
			}
			if f.Changed("http-addr") {
				v.Set("http.enable", true)
			}

			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return bootstrap.Run(ctx, cfg, log)
		},
	}

	f := cmd.Flags()
	f.BoolP("fix-rbg", "f", false, "fix RGB vs RBG mixup")
	f.BoolP("log-traffic", "l", false, "log packets as they are sent")
	f.Int("baud", 115200, "baud rate for both serial ports")
	f.StringSliceP("ring", "r", nil, pinHelp)
	f.StringSliceP("side", "s", nil, pinHelp)
	f.StringSliceP("chassis", "c", nil, pinHelp)
	f.String("http-addr", ":9108", "serve health and metrics on this address")

	mustBind(v, "proxy.fixColorSwap", f.Lookup("fix-rbg"))
	mustBind(v, "proxy.logTraffic", f.Lookup("log-traffic"))
	mustBind(v, "link.alls.baudRate", f.Lookup("baud"))
	mustBind(v, "link.led.baudRate", f.Lookup("baud"))
	mustBind(v, "pwm.ring", f.Lookup("ring"))
	mustBind(v, "pwm.side", f.Lookup("side"))
	mustBind(v, "pwm.chassis", f.Lookup("chassis"))
	mustBind(v, "http.addr", f.Lookup("http-addr"))
	return cmd
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
