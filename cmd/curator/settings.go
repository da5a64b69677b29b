package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kangruixiang/curator/internal/curator"
)

func newSettingCommand() *cobra.Command {
	settingCmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change scoring settings",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every setting, creating missing ones with their defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			settings, err := curator.NewSettingState(s.client).LoadDefaults(s.ctx)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer func() {
				_ = enc.Close()
			}()
			return enc.Encode(settings)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults, err := curator.DefaultValues()
			if err != nil {
				return err
			}
			def, ok := defaults[args[0]]
			if !ok {
				return fmt.Errorf("unknown setting %q, known settings are %v", args[0], slices.Sorted(maps.Keys(defaults)))
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			setting, err := curator.NewSettingState(s.client).Get(s.ctx, args[0], def)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", setting.Name, setting.Value)
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Change one setting. Values are parsed as JSON and fall back to plain strings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			setting, err := curator.NewSettingState(s.client).Change(s.ctx, args[0], parseSettingValue(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", setting.Name, setting.Value)
			return nil
		},
	}

	settingCmd.AddCommand(listCmd, getCmd, setCmd)
	return settingCmd
}

func parseSettingValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}
