package cli

import (
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/psulibraries/rmdlink/pkg/config"
	"github.com/psulibraries/rmdlink/pkg/errors"
)

// configCommand creates the "config" command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or validate the configuration",
	}
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configValidateCommand())
	return cmd
}

// configShowCommand prints the effective configuration as TOML with
// secrets masked.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			return toml.NewEncoder(c.Out).Encode(cfg.Redacted())
		},
	}
}

func (c *CLI) configValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				c.printError("Configuration is invalid")
				for _, problem := range strings.Split(errors.UserMessage(err), "; ") {
					c.printDetail("%s", problem)
				}
				return err
			}

			source := cfg.Source
			if source == "" {
				source = "(defaults)"
			}
			c.printSuccess("Configuration is valid")
			c.printKeyValue("source", source)
			c.printKeyValue("api_url", cfg.APIURL())
			c.printKeyValue("cache_ttl", strconv.Itoa(cfg.CacheTTLSecs)+"s")
			c.printKeyValue("publications", strings.Join(cfg.Publications, ", "))
			backend := cfg.Cache.Backend
			if backend == "" {
				backend = "(file for lookups, memory for serve)"
			}
			c.printKeyValue("cache", backend)
			return nil
		},
	}
}
