package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/storage"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore, and delete database checkpoints.

Checkpoints save the current state of your database before risky changes so
it can be restored later. Imports and scheduled processing take one
automatically unless checkpoint.auto is false.`,
		Example: `  # Create a checkpoint before a big import
  tally checkpoint create --tag "pre-2024-import"

  # List all checkpoints
  tally checkpoint list

  # Restore from a checkpoint
  tally checkpoint restore pre-2024-import`,
	}

	cmd.AddCommand(createCheckpointCmd())
	cmd.AddCommand(listCheckpointsCmd())
	cmd.AddCommand(restoreCheckpointCmd())
	cmd.AddCommand(deleteCheckpointCmd())

	return cmd
}

// withCheckpoints runs fn with a checkpoint manager for the configured database.
func withCheckpoints(ctx context.Context, fn func(*storage.CheckpointManager) error) error {
	store, _, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	manager, err := store.NewCheckpointManager()
	if err != nil {
		return fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	return fn(manager)
}

func createCheckpointCmd() *cobra.Command {
	var tag string
	var description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		Long:  `Create a snapshot of the current database state.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withCheckpoints(ctx, func(manager *storage.CheckpointManager) error {
				info, err := manager.Create(ctx, tag, description)
				if err != nil {
					return fmt.Errorf("failed to create checkpoint: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s Created checkpoint %s (%s)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(info.ID),
					formatFileSize(info.FileSize))
				if info.Description != "" {
					fmt.Fprintf(out, "  Description: %s\n", info.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Checkpoint tag/name (auto-generated if not provided)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the checkpoint")

	return cmd
}

func listCheckpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		Long:  `Display all available checkpoints with their metadata.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withCheckpoints(ctx, func(manager *storage.CheckpointManager) error {
				checkpoints, err := manager.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list checkpoints: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(checkpoints) == 0 {
					fmt.Fprintln(out, cli.SubtleStyle.Render("No checkpoints found."))
					return nil
				}

				now := time.Now()
				w := newTable(out, "NAME", "CREATED", "SIZE", "ACCOUNTS", "TRANSACTIONS", "BILLS", "TYPE")
				for _, cp := range checkpoints {
					typeLabel := "manual"
					if cp.IsAuto {
						typeLabel = "auto"
					}

					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
						cli.InfoStyle.Render(cp.ID),
						formatRelativeTime(cp.CreatedAt, now),
						formatFileSize(cp.FileSize),
						cp.Accounts,
						cp.Transactions,
						cp.Bills,
						cli.SubtleStyle.Render(typeLabel),
					)
				}
				return w.Flush()
			})
		},
	}
}

// confirm asks a yes/no question; anything but an answer starting with y is no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "\n%s (y/N) ", question)
	response, _ := bufio.NewReader(in).ReadString('\n')
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(response)), "y")
}

func restoreCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Restore database from a checkpoint",
		Long:  `Replace the current database with a checkpoint.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			checkpointID := args[0]

			return withCheckpoints(ctx, func(manager *storage.CheckpointManager) error {
				info, err := manager.Info(ctx, checkpointID)
				if err != nil {
					return fmt.Errorf("failed to get checkpoint info: %w", err)
				}

				out := cmd.OutOrStdout()
				if !force {
					fmt.Fprintf(out, "%s This will replace your current database with checkpoint %s.\n",
						cli.WarningStyle.Render(cli.WarningIcon),
						cli.InfoStyle.Render(checkpointID))
					fmt.Fprintf(out, "  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
					if info.Description != "" {
						fmt.Fprintf(out, "  Description: %s\n", info.Description)
					}
					if !confirm(cmd.InOrStdin(), out, "Continue?") {
						fmt.Fprintln(out, cli.SubtleStyle.Render("Restore cancelled."))
						return nil
					}
				}

				if err := manager.Restore(ctx, checkpointID); err != nil {
					return fmt.Errorf("failed to restore checkpoint: %w", err)
				}

				fmt.Fprintf(out, "%s Restored from checkpoint %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(checkpointID))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func deleteCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a checkpoint",
		Long:  `Permanently remove a checkpoint.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			checkpointID := args[0]

			return withCheckpoints(ctx, func(manager *storage.CheckpointManager) error {
				info, err := manager.Info(ctx, checkpointID)
				if err != nil {
					return fmt.Errorf("failed to get checkpoint info: %w", err)
				}

				out := cmd.OutOrStdout()
				if !force {
					fmt.Fprintf(out, "%s This will permanently delete checkpoint %s.\n",
						cli.WarningStyle.Render(cli.WarningIcon),
						cli.InfoStyle.Render(checkpointID))
					fmt.Fprintf(out, "  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
					fmt.Fprintf(out, "  Size: %s\n", formatFileSize(info.FileSize))
					if !confirm(cmd.InOrStdin(), out, "Continue?") {
						fmt.Fprintln(out, cli.SubtleStyle.Render("Deletion cancelled."))
						return nil
					}
				}

				if err := manager.Delete(ctx, checkpointID); err != nil {
					return fmt.Errorf("failed to delete checkpoint: %w", err)
				}

				fmt.Fprintf(out, "%s Deleted checkpoint %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(checkpointID))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
