package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psulibraries/rmdlink/pkg/cache"
	"github.com/psulibraries/rmdlink/pkg/rmd"
)

// profileCommand creates the "profile" command.
func (c *CLI) profileCommand() *cobra.Command {
	var (
		attribute string
		tags      []string
	)

	cmd := &cobra.Command{
		Use:   "profile <username>",
		Short: "Look up a profile in the Researcher Metadata Database",
		Long: `Look up a profile and print it as JSON.

With --attribute only that attribute's value is printed. Unknown usernames
print a warning; they are cached like any other result.`,
		Example: `  rmdlink profile abc123
  rmdlink profile abc123 --attribute title
  rmdlink profile abc123 --tag node:42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, store, _, err := c.newFetcher(ctx, cache.BackendFile)
			if err != nil {
				return err
			}
			defer store.Close()

			username := args[0]
			prog := newProgress(loggerFromContext(ctx))
			opts := []rmd.FetchOption{rmd.WithCacheTags(tags...)}

			var out any
			if attribute != "" {
				v, ok := f.FetchAttribute(ctx, username, attribute, opts...)
				prog.done("Looked up " + username)
				if !ok {
					c.printWarning("No %s for %s", attribute, username)
					return nil
				}
				out = v
			} else {
				rec := f.FetchProfile(ctx, username, opts...)
				prog.done("Looked up " + username)
				if rec.Empty() {
					c.printWarning("Username not found")
					return nil
				}
				out = rec.Attributes()
			}
			return c.writeJSON(out)
		},
	}

	cmd.Flags().StringVarP(&attribute, "attribute", "a", "", "print only this attribute")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "extra cache tag for this lookup (repeatable)")
	return cmd
}

func (c *CLI) writeJSON(v any) error {
	enc := json.NewEncoder(c.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
