package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ignite-gym/ignitegym/internal/cli/config"
)

// AnnotationNoSession marks commands that run without opening the session
const AnnotationNoSession = "ignitegym/no-session"

// SkipsSession reports whether cmd is marked with AnnotationNoSession
func SkipsSession(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[AnnotationNoSession] == "true" {
			return true
		}
	}
	return false
}

// configKeys maps the command line names to setters on the config file
var configKeys = map[string]func(cfg *config.Config, value string){
	"api-url":     func(cfg *config.Config, v string) { cfg.APIURL = strings.TrimRight(v, "/") },
	"token-store": func(cfg *config.Config, v string) { cfg.TokenStore = v },
	"log-level":   func(cfg *config.Config, v string) { cfg.LogLevel = v },
}

func configKeyNames() string {
	names := make([]string, 0, len(configKeys))
	for name := range configKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// NewConfigCmd creates the config command
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Show or change the CLI configuration",
		Annotations: map[string]string{AnnotationNoSession: "true"},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save a configuration value (" + configKeyNames() + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	})

	return cmd
}

func runConfigShow(w io.Writer) error {
	cfg, err := config.LoadFile()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "api-url:     %s\n", cfg.APIURL)
	fmt.Fprintf(w, "token-store: %s\n", cfg.TokenStore)
	fmt.Fprintf(w, "log-level:   %s\n", cfg.LogLevel)
	fmt.Fprintf(w, "file:        %s\n", filepath.Join(cfg.Dir(), config.ConfigFileName))
	return nil
}

func runConfigSet(w io.Writer, key, value string) error {
	set, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (expected one of: %s)", key, configKeyNames())
	}

	cfg, err := config.LoadFile()
	if err != nil {
		return err
	}
	set(cfg, value)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "✓ Saved %s = %s\n", key, value)
	return nil
}
