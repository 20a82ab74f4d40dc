package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hylla/listdock/internal/app"
	"github.com/hylla/listdock/internal/domain"
)

func newAddCmd(cli *cliApp) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Add a task to the current view, the selection, or --parent",
		Long: strings.TrimSpace(`
Add one task. With --parent the task lands under that folder, or becomes a
subtask of that task. Without it the selection decides: one selected task
takes the new item as a subtask, otherwise it goes to the current view.
Prints the new item id.`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			title := strings.Join(args, " ")

			var item domain.Item
			if strings.TrimSpace(parent) == "" {
				item, err = svc.AddTask(cmd.Context(), title)
			} else {
				parentID, resolveErr := svc.ResolveID(parent)
				if resolveErr != nil {
					return resolveErr
				}
				item, err = svc.AddTaskUnder(cmd.Context(), parentID, title)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), item.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Folder or task id (or prefix) to add under")
	return cmd
}

func newFolderCmd(cli *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Create, convert, and style folders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add TITLE...",
		Short: "Add a root folder and print its id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			folder, err := svc.AddFolder(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), folder.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "convert TASK_ID",
		Short: "Turn a task into a folder; its subtasks become the folder's tasks",
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
			return svc.ConvertTaskToFolder(cmd.Context(), id)
		},
	})

	var color, icon string
	style := &cobra.Command{
		Use:   "style FOLDER_ID",
		Short: "Set a folder's color and icon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("color") && !cmd.Flags().Changed("icon") {
				return errors.New("pass --color, --icon, or both")
			}
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			id, err := svc.ResolveID(args[0])
			if err != nil {
				return err
			}
			current, err := svc.Item(id)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("color") {
				color = current.Color
			}
			if !cmd.Flags().Changed("icon") {
				icon = current.Icon
			}
			_, err = svc.StyleFolder(cmd.Context(), id, color, icon)
			return err
		},
	}
	style.Flags().StringVar(&color, "color", "", "Color as #rrggbb")
	style.Flags().StringVar(&icon, "icon", "", "Icon name")
	cmd.AddCommand(style)

	return cmd
}

func newRenameCmd(cli *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID TITLE...",
		Short: "Change an item's title",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			id, err := svc.ResolveID(args[0])
			if err != nil {
				return err
			}
			_, err = svc.Rename(cmd.Context(), id, strings.Join(args[1:], " "))
			return err
		},
	}
}

// newCompleteCmd builds `complete` (done=true) or `reopen` (done=false).
func newCompleteCmd(cli *cliApp, done bool) *cobra.Command {
	use, short := "complete [ID...]", "Mark items done"
	if !done {
		use, short = "reopen [ID...]", "Mark items not done"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			ids, err := targetIDs(svc, args)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if _, err := svc.SetCompleted(cmd.Context(), id, done); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// newExpandCmd builds `expand` or `collapse`.
func newExpandCmd(cli *cliApp, expanded bool) *cobra.Command {
	use, short := "expand TASK_ID", "Show a task's subtasks"
	if !expanded {
		use, short = "collapse TASK_ID", "Hide a task's subtasks"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
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
			_, err = svc.SetExpanded(cmd.Context(), id, expanded)
			return err
		},
	}
}

func newRemoveCmd(cli *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:     "rm [ID...]",
		Aliases: []string{"delete"},
		Short:   "Delete items in one undo step; a folder takes its tasks with it",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			ids, err := targetIDs(svc, args)
			if err != nil {
				return err
			}
			removed, err := svc.RemoveMany(cmd.Context(), ids)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d item(s)\n", removed)
			return nil
		},
	}
}

// moveFlags holds `mv` destination flags.
type moveFlags struct {
	toFolder    string
	toRoot      bool
	under       string
	folderOrder bool
	before      string
	after       string
}

// destination resolves the flags into a move destination.
func (f moveFlags) destination(svc *app.Service) (app.Destination, error) {
	var dest app.Destination
	switch {
	case f.toRoot:
		dest = app.ToRoot()
	case f.folderOrder:
		dest = app.FolderOrder()
	case f.toFolder != "":
		id, err := svc.ResolveID(f.toFolder)
		if err != nil {
			return app.Destination{}, err
		}
		dest = app.ToFolder(id)
	case f.under != "":
		id, err := svc.ResolveID(f.under)
		if err != nil {
			return app.Destination{}, err
		}
		dest = app.UnderTask(id)
	default:
		return app.Destination{}, errors.New("pick a destination: --to-folder, --to-root, --under, or --folder-order")
	}

	if f.before != "" {
		id, err := svc.ResolveID(f.before)
		if err != nil {
			return app.Destination{}, err
		}
		dest.BeforeID = id
	}
	if f.after != "" {
		id, err := svc.ResolveID(f.after)
		if err != nil {
			return app.Destination{}, err
		}
		dest.AfterID = id
	}
	return dest, nil
}

func newMoveCmd(cli *cliApp) *cobra.Command {
	var flags moveFlags
	cmd := &cobra.Command{
		Use:   "mv [ID...]",
		Short: "Move items to a folder, the root list, under a task, or reorder folders",
		Example: strings.TrimSpace(`
  listdock mv 1a2b --to-folder 9f8e
  listdock mv 1a2b 3c4d --under 5e6f --before 7a8b
  listdock mv 9f8e --folder-order --after 0c1d
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			ids, err := targetIDs(svc, args)
			if err != nil {
				return err
			}
			dest, err := flags.destination(svc)
			if err != nil {
				return err
			}
			return svc.MoveMultipleItems(cmd.Context(), ids, dest)
		},
	}
	cmd.Flags().StringVar(&flags.toFolder, "to-folder", "", "Folder id to file the items in")
	cmd.Flags().BoolVar(&flags.toRoot, "to-root", false, "Move the items to the root list")
	cmd.Flags().StringVar(&flags.under, "under", "", "Task id to nest the items under")
	cmd.Flags().BoolVar(&flags.folderOrder, "folder-order", false, "Reorder root folders")
	cmd.Flags().StringVar(&flags.before, "before", "", "Place the items before this sibling")
	cmd.Flags().StringVar(&flags.after, "after", "", "Place the items after this sibling")
	cmd.MarkFlagsMutuallyExclusive("to-folder", "to-root", "under", "folder-order")
	cmd.MarkFlagsOneRequired("to-folder", "to-root", "under", "folder-order")
	cmd.MarkFlagsMutuallyExclusive("before", "after")
	return cmd
}
