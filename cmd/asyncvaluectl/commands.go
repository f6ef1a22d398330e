package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/petrijr/asyncvalue/pkg/api"
)

func listCmd(o *backendOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshot keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, o, func(ctx context.Context, store api.SnapshotStore) error {
				keys, err := store.ListSnapshotKeys(ctx)
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			})
		},
	}
}

func showCmd(o *backendOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Show snapshot metadata",
		Long: `Show the version, save time and size of one snapshot.
With --raw the encoded snapshot bytes are written to stdout instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, o, func(ctx context.Context, store api.SnapshotStore) error {
				snap, err := store.LoadSnapshot(ctx, args[0])
				if errors.Is(err, api.ErrSnapshotNotFound) {
					return fmt.Errorf("snapshot %q not found", args[0])
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if raw {
					_, err := out.Write(snap.Data)
					return err
				}

				savedAt := "never"
				if !snap.SavedAt.IsZero() {
					savedAt = snap.SavedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(out, "Key:      %s\n", snap.Key)
				fmt.Fprintf(out, "Version:  %d\n", snap.Version)
				fmt.Fprintf(out, "Saved at: %s\n", savedAt)
				fmt.Fprintf(out, "Size:     %d bytes\n", len(snap.Data))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Write the encoded snapshot bytes")

	return cmd
}

func deleteCmd(o *backendOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>...",
		Short: "Delete snapshots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, o, func(ctx context.Context, store api.SnapshotStore) error {
				for _, key := range args {
					if err := store.DeleteSnapshot(ctx, key); err != nil {
						return fmt.Errorf("delete %q: %w", key, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", key)
				}
				return nil
			})
		},
	}
}

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print version, commit, and build information for asyncvaluectl.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, version)
				return
			}

			fmt.Fprintf(out, "  Version:    %s\n", version)
			fmt.Fprintf(out, "  Commit:     %s\n", commit)
			fmt.Fprintf(out, "  Built:      %s\n", date)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}
