package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hylla/listdock/internal/app"
	"github.com/hylla/listdock/internal/render"
)

func newPathsCmd(cli *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data, and log paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", cli.AppName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", cli.DevMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", cli.paths.ConfigPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", cli.paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", cli.cfg.Database.Path)
			_, _ = fmt.Fprintf(out, "log_dir: %s\n", cli.paths.LogDir)
			return nil
		},
	}
}

func newListCmd(cli *cliApp) *cobra.Command {
	var (
		folder   string
		markdown bool
		raw      bool
		showIDs  bool
		width    int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the current view, or one folder",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			view := svc.CurrentView()
			if strings.TrimSpace(folder) != "" {
				id, err := svc.ResolveID(folder)
				if err != nil {
					return err
				}
				view = app.FolderViewOf(id)
			}
			listing, err := svc.Listing(view)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !markdown {
				_, _ = fmt.Fprintln(out, render.Listing(listing, render.ListingOptions{
					Selected: svc.SelectedIDs(),
					ShowIDs:  showIDs,
				}))
				return nil
			}
			md := render.ListingMarkdown(listing)
			if raw {
				_, _ = fmt.Fprint(out, md)
				return nil
			}
			var renderer render.MarkdownRenderer
			_, _ = fmt.Fprintln(out, renderer.Render(md, width))
			return nil
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "Folder id (or prefix) to list instead of the current view")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the view as a markdown checklist")
	cmd.Flags().BoolVar(&raw, "raw", false, "With --markdown, print the markdown source")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "Show short ids next to each row")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for rendered markdown")
	return cmd
}

func newSearchCmd(cli *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY...",
		Short: "Find items by title across every folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			hits := svc.Search(query)
			if len(hits) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "no matches for %q\n", query)
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), render.ItemsTable(hits))
			return nil
		},
	}
}

func newGotoCmd(cli *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "goto ID",
		Short: "Open the view that shows an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			id, err := svc.ResolveID(args[0])
			if err != nil {
				return err
			}
			view, err := svc.Locate(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printView(cmd, svc, view, id)
		},
	}
}

func newViewCmd(cli *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "view (root | FOLDER_ID)",
		Short: "Switch the current view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			view := app.RootView()
			if !strings.EqualFold(strings.TrimSpace(args[0]), "root") {
				id, err := svc.ResolveID(args[0])
				if err != nil {
					return err
				}
				view = app.FolderViewOf(id)
			}
			if err := svc.SetView(cmd.Context(), view); err != nil {
				return err
			}
			return printView(cmd, svc, view)
		},
	}
}

// printView renders view with highlight marking the given ids.
func printView(cmd *cobra.Command, svc *app.Service, view app.View, highlight ...string) error {
	listing, err := svc.Listing(view)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), render.Listing(listing, render.ListingOptions{Selected: highlight}))
	return nil
}
