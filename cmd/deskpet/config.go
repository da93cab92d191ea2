package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/deskpet/internal/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "inspect the configuration",
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "check the configuration strictly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfig()
			if err != nil {
				return err
			}
			if err := res.Validate(); err != nil {
				return err
			}
			if res.Config.Character.Manifest != "" {
				if _, err := loadManifest(res.Config); err != nil {
					return err
				}
			}
			fmt.Println("config: ok")
			return nil
		},
	}

	var printDefaults bool
	printCmd := &cobra.Command{
		Use:   "print",
		Short: "print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if !printDefaults {
				res, err := loadConfig()
				if err != nil {
					return err
				}
				for _, f := range res.Files {
					fmt.Printf("# loaded: %s\n", f)
				}
				cfg = res.Config
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
	printCmd.Flags().BoolVar(&printDefaults, "defaults", false, "print built-in defaults (no files)")

	explainCmd := &cobra.Command{
		Use:   "explain <yaml.path>",
		Short: "show a config value and where it was set",
		Long:  "Show a config value and where it was set.\n\nPaths:\n  " + strings.Join(config.ExplainPaths(), "\n  "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfig()
			if err != nil {
				return err
			}
			value, src, err := config.Explain(res, args[0])
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(value)
			if err != nil {
				return err
			}
			fmt.Printf("path: %s\n", args[0])
			fmt.Printf("source: %s\n", formatSource(src))
			fmt.Printf("value:\n%s", string(out))
			return nil
		},
	}

	configCmd.AddCommand(validateCmd, printCmd, explainCmd)
	return configCmd
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
