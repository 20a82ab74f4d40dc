package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hylla/listdock/internal/adapters/server"
	"github.com/hylla/listdock/internal/adapters/server/common"
	"github.com/hylla/listdock/internal/app"
	"github.com/hylla/listdock/internal/render"
)

// serveCommandRunner starts serve mode; tests replace it.
var serveCommandRunner = func(ctx context.Context, cfg server.Config, deps server.Dependencies) error {
	return server.Run(ctx, cfg, deps)
}

// settingKeys lists the keys `settings` reads and writes, in display order.
var settingKeys = []string{
	"show_completed",
	"hide_completed_subtasks",
	"persist_last_folder",
	"copy_with_subtasks",
}

// settingField maps a settings key to its field.
func settingField(s *app.Settings, key string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "show_completed":
		return &s.ShowCompleted, nil
	case "hide_completed_subtasks":
		return &s.HideCompletedSubtasks, nil
	case "persist_last_folder":
		return &s.PersistLastFolder, nil
	case "copy_with_subtasks":
		return &s.CopyWithSubtasks, nil
	default:
		return nil, fmt.Errorf("unknown setting %q (want one of %s)", key, strings.Join(settingKeys, ", "))
	}
}

func newSettingsCmd(cli *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "settings [KEY [VALUE]]",
		Short: "Show or change display and clipboard preferences",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			current := svc.Settings()

			switch len(args) {
			case 0:
				for _, key := range settingKeys {
					field, _ := settingField(&current, key)
					_, _ = fmt.Fprintf(out, "%s = %t\n", key, *field)
				}
				return nil
			case 1:
				field, err := settingField(&current, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "%t\n", *field)
				return nil
			}

			value, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("setting %s: %q is not a boolean", args[0], args[1])
			}
			if _, err := settingField(&current, args[0]); err != nil {
				return err
			}
			_, err = svc.UpdateSettings(cmd.Context(), func(s *app.Settings) {
				field, _ := settingField(s, args[0])
				*field = value
			})
			return err
		},
	}
}

func newDoctorCmd(cli *cliApp) *cobra.Command {
	var prune bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check stored items for orphans and hierarchy problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			if prune {
				n, err := svc.PruneOrphans(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pruned %d orphan(s)\n", n)
			}
			report := svc.Diagnose()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), render.DoctorReport(report))
			if report.HasErrors() {
				return errors.New("doctor found errors; rerun with --prune to delete orphans")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete orphaned items before checking")
	return cmd
}

func newServeCmd(cli *cliApp) *cobra.Command {
	var bind, apiEndpoint, mcpEndpoint string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and MCP tools over the list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			cfg := server.Config{
				HTTPBind:      cli.cfg.Serve.Bind,
				APIEndpoint:   cli.cfg.Serve.APIEndpoint,
				MCPEndpoint:   cli.cfg.Serve.MCPEndpoint,
				ServerName:    cli.AppName,
				ServerVersion: version,
			}
			if cmd.Flags().Changed("bind") {
				cfg.HTTPBind = bind
			}
			if cmd.Flags().Changed("api-endpoint") {
				cfg.APIEndpoint = apiEndpoint
			}
			if cmd.Flags().Changed("mcp-endpoint") {
				cfg.MCPEndpoint = mcpEndpoint
			}

			adapter := common.NewAppServiceAdapter(svc)
			return serveCommandRunner(cmd.Context(), cfg, server.Dependencies{
				Lists:  adapter,
				Items:  adapter,
				Logger: cli.logger,
			})
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from [serve] bind)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "HTTP API path prefix (default from [serve] api_endpoint)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP path (default from [serve] mcp_endpoint)")
	return cmd
}
