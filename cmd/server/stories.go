package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"snooze-web/internal/storyapi"
	"snooze-web/internal/storylist"
)

func newStoriesCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stories",
		Short: "Lista las historias del servicio remoto",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			client := storyapi.New(storyapi.Config{
				BaseURL:  cfg.Remote.BaseURL,
				Timeout:  cfg.Remote.Timeout.Std(),
				RetryMax: cfg.Remote.RetryMax,
			}, nil)

			stories, err := storylist.New(client, nil).FetchAll(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stories)
			}
			for _, s := range stories {
				fmt.Fprintf(out, "%s\t%s (%s) by %s, posted by %s\n", s.ID, s.Title, s.HostName(), s.Author, s.Username)
			}
			fmt.Fprintf(out, "%d stories\n", len(stories))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "salida en JSON")
	return cmd
}
