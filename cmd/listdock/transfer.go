package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hylla/listdock/internal/app"
	"github.com/hylla/listdock/internal/domain"
)

func newUndoCmd(cli *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the last tracked change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			restored, err := svc.Undo(cmd.Context())
			if err != nil {
				return err
			}
			if !restored {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing to undo")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "undone, %d step(s) left\n", svc.UndoLen())
			return nil
		},
	}
}

func newPasteCmd(cli *cliApp) *cobra.Command {
	var (
		file     string
		fromClip bool
		parent   string
	)
	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Add items from an indented outline read from stdin, a file, or the clipboard",
		Long: strings.TrimSpace(`
Each non-blank line becomes one item. Lines indented deeper than the line
above become its subtasks. List markers (-, *, +, 1.), checkboxes, and
heading marks are stripped; [x] marks the item done. Prints the new item ids.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}

			var created []domain.Item
			switch {
			case fromClip:
				created, err = svc.PasteFromClipboard(cmd.Context())
			default:
				text, readErr := readInput(cmd, file)
				if readErr != nil {
					return readErr
				}
				if strings.TrimSpace(parent) == "" {
					created, err = svc.Paste(cmd.Context(), text)
					break
				}
				parentID, resolveErr := svc.ResolveID(parent)
				if resolveErr != nil {
					return resolveErr
				}
				created, err = svc.PasteUnder(cmd.Context(), parentID, text)
			}
			if err != nil {
				return err
			}
			for _, it := range created {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), it.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read the outline from this file instead of stdin")
	cmd.Flags().BoolVar(&fromClip, "clipboard", false, "Read the outline from the system clipboard")
	cmd.Flags().StringVar(&parent, "parent", "", "Folder or task id (or prefix) to paste under")
	cmd.MarkFlagsMutuallyExclusive("file", "clipboard")
	cmd.MarkFlagsMutuallyExclusive("parent", "clipboard")
	return cmd
}

func newCopyCmd(cli *cliApp) *cobra.Command {
	var (
		withSubtasks bool
		toStdout     bool
	)
	cmd := &cobra.Command{
		Use:   "copy [ID...]",
		Short: "Copy items to the clipboard as an indented outline",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			ids, err := targetIDs(svc, args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("with-subtasks") {
				withSubtasks = svc.Settings().CopyWithSubtasks
			}

			text, err := svc.Copy(cmd.Context(), ids, withSubtasks)
			if err != nil && !(toStdout && errors.Is(err, app.ErrClipboard)) {
				return err
			}
			if toStdout {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withSubtasks, "with-subtasks", false, "Include each task's subtasks (default from settings)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Also print the copied text")
	return cmd
}

func newExportCmd(cli *cliApp) *cobra.Command {
	var (
		out              string
		excludeCompleted bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every item as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			data, err := svc.Export(excludeCompleted)
			if err != nil {
				return err
			}

			if out == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if strings.TrimSpace(out) == "" {
				out = app.ExportFileName(time.Now())
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write export %q: %w", out, err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file; - writes to stdout (default listdock-export-<date>.json)")
	cmd.Flags().BoolVar(&excludeCompleted, "exclude-completed", false, "Leave completed items out")
	return cmd
}

func newImportCmd(cli *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace every item with an exported JSON array (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			path := args[0]
			if path == "-" {
				path = ""
			}
			data, err := readInput(cmd, path)
			if err != nil {
				return err
			}
			n, err := svc.Import(cmd.Context(), []byte(data))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d item(s)\n", n)
			return nil
		},
	}
}

func newClearCmd(cli *cliApp) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every item and the undo history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("clear deletes every item and cannot be undone; pass --yes")
			}
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			return svc.ClearAll(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting everything")
	return cmd
}

// readInput reads path, or the command's stdin when path is empty.
func readInput(cmd *cobra.Command, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	return string(data), nil
}
