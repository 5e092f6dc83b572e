package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"voltcheck/internal/records"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and manage the analysis queue",
	}
	cmd.AddCommand(newRecordsListCommand(ctx))
	cmd.AddCommand(newRecordsShowCommand(ctx))
	cmd.AddCommand(newRecordsRetryCommand(ctx))
	cmd.AddCommand(newRecordsClearCommand(ctx))
	cmd.AddCommand(newRecordsHealthCommand(ctx))
	return cmd
}

func withStore(ctx *commandContext, fn func(*cobra.Command, *records.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return err
		}
		store, err := records.Open(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(cmd, store)
	}
}

func newRecordsListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List inspection records",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withStore(ctx, func(cmd *cobra.Command, store *records.Store) error {
		var statuses []records.Status
		if statusFilter != "" {
			status, ok := records.ParseStatus(statusFilter)
			if !ok {
				return fmt.Errorf("unknown status %q", statusFilter)
			}
			statuses = append(statuses, status)
		}
		items, err := store.List(cmd.Context(), statuses...)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No records found")
			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, item := range items {
			rows = append(rows, []string{
				strconv.FormatInt(item.ID, 10),
				string(item.MediaKind),
				string(item.Status),
				item.SourcePath,
				item.CreatedAt.Local().Format(time.RFC3339),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"ID", "Kind", "Status", "Source", "Created"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
		))
		return nil
	})
	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status (pending, analyzing, completed, failed, review)")
	return cmd
}

func newRecordsShowCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record including its verdict JSON",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cobraCmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid record id %q", args[0])
		}
		return withStore(ctx, func(cmd *cobra.Command, store *records.Store) error {
			item, err := store.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("record %d not found", id)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %d\n", item.ID)
			fmt.Fprintf(out, "Kind:     %s\n", item.MediaKind)
			fmt.Fprintf(out, "Status:   %s\n", item.Status)
			fmt.Fprintf(out, "Source:   %s\n", item.SourcePath)
			fmt.Fprintf(out, "Review:   %s\n", yesNo(item.NeedsReview))
			if item.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:    %s\n", item.ErrorMessage)
			}
			if item.ResultJSON != "" {
				fmt.Fprintln(out, item.ResultJSON)
			}
			return nil
		})(cobraCmd, args)
	}
	return cmd
}

func newRecordsRetryCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retry [id...]",
		Short: "Requeue failed records",
	}
	cmd.RunE = func(cobraCmd *cobra.Command, args []string) error {
		ids := make([]int64, 0, len(args))
		for _, arg := range args {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid record id %q", arg)
			}
			ids = append(ids, id)
		}
		return withStore(ctx, func(cmd *cobra.Command, store *records.Store) error {
			count, err := store.RetryFailed(cmd.Context(), ids...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d record(s)\n", count)
			return nil
		})(cobraCmd, args)
	}
	return cmd
}

func newRecordsClearCommand(ctx *commandContext) *cobra.Command {
	var completedOnly, failedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete records",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withStore(ctx, func(cmd *cobra.Command, store *records.Store) error {
		var (
			count int64
			err   error
		)
		switch {
		case completedOnly:
			count, err = store.ClearCompleted(cmd.Context())
		case failedOnly:
			count, err = store.ClearFailed(cmd.Context())
		default:
			count, err = store.Clear(cmd.Context())
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d record(s)\n", count)
		return nil
	})
	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Only remove completed records")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only remove failed records")
	cmd.MarkFlagsMutuallyExclusive("completed", "failed")
	return cmd
}

func newRecordsHealthCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show record counts per lifecycle state",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withStore(ctx, func(cmd *cobra.Command, store *records.Store) error {
		health, err := store.Health(cmd.Context())
		if err != nil {
			return err
		}
		rows := [][]string{
			{"total", strconv.Itoa(health.Total)},
			{"pending", strconv.Itoa(health.Pending)},
			{"analyzing", strconv.Itoa(health.Analyzing)},
			{"completed", strconv.Itoa(health.Completed)},
			{"failed", strconv.Itoa(health.Failed)},
			{"review", strconv.Itoa(health.Review)},
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"State", "Count"},
			rows,
			[]columnAlignment{alignLeft, alignRight},
		))
		return nil
	})
	return cmd
}
