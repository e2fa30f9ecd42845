package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psulibraries/rmdlink/pkg/cache"
	"github.com/psulibraries/rmdlink/pkg/rmd"
)

// publicationsCommand creates the "publications" command.
func (c *CLI) publicationsCommand() *cobra.Command {
	var (
		asJSON bool
		tags   []string
	)

	cmd := &cobra.Command{
		Use:   "publications <username>",
		Short: "Show the publication sections of a profile",
		Long: `Show the enabled publication categories of a profile in configured order.

Categories are enabled with publications_display; empty ones are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, store, _, err := c.newFetcher(ctx, cache.BackendFile)
			if err != nil {
				return err
			}
			defer store.Close()

			username := args[0]
			pubs := f.FetchPublications(ctx, username, rmd.WithCacheTags(tags...))
			if asJSON {
				if pubs == nil {
					pubs = rmd.Publications{}
				}
				return c.writeJSON(pubs)
			}

			if len(pubs) == 0 {
				c.printInfo("No publications for %s", username)
				return nil
			}
			for _, s := range pubs {
				c.printHeading(s.Title, fmt.Sprintf("#%s · %d", s.ID, len(s.Items)))
				for _, item := range s.Items {
					c.printItem(itemText(item))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print sections as JSON")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "extra cache tag for this lookup (repeatable)")
	return cmd
}

// itemText renders a publication entry: strings as is, records by their
// title when they have one, anything else as compact JSON.
func itemText(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case map[string]any:
		if title, ok := v["title"].(string); ok && title != "" {
			return title
		}
	}
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Sprint(item)
	}
	return string(data)
}
