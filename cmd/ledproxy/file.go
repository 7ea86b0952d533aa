package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taoyao-code/ledproxy/internal/replay"
)

var errNotIdentical = errors.New("re-encoded stream differs from capture")

func newFileCmd(v *viper.Viper, load loader) *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Decode a capture file and verify it re-encodes byte for byte",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout 留给统计与 YAML 输出
			v.Set("logging.output", "stderr")
			_, log, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := replay.Replay(f, log)
			if err != nil {
				return err
			}
			if dump {
				if err := replay.WriteYAML(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "frames=%d parsed=%d failed=%d drops=%d identical=%t\n",
				res.Frames, res.Parsed, res.Failed, res.Drops, res.Identical)
			if !res.Identical {
				return errNotIdentical
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "print decoded frames as YAML")
	return cmd
}
