package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/TAKIS21345/techsteps-sub005/internal/core/config"
	"github.com/TAKIS21345/techsteps-sub005/internal/core/domain"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/storage"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect or clear the persisted action queue",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List actions waiting for connectivity",
	Run:   runQueueList,
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all queued actions",
	Run:   runQueueClear,
}

func init() {
	queueCmd.AddCommand(queueListCmd, queueClearCmd)
	rootCmd.AddCommand(queueCmd)
}

func runQueueList(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close()
	}()

	var actions []*domain.QueuedAction
	ok, err := storage.NewAdapter(store).GetJSON(ctx, storage.QueueKey, &actions)
	if err != nil {
		slog.Error("Failed to read queue", "error", err)
		os.Exit(1)
	}
	if !ok || len(actions) == 0 {
		fmt.Println("Queue is empty.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tRETRIES\tQUEUED")
	for _, a := range actions {
		age := time.Since(time.UnixMilli(a.Timestamp)).Round(time.Second)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s ago\n", a.ID, a.Type, a.RetryCount, a.MaxRetries, age)
	}
	_ = w.Flush()
}

func runQueueClear(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close()
	}()

	if err := store.Delete(ctx, storage.QueueKey); err != nil {
		slog.Error("Failed to clear queue", "error", err)
		os.Exit(1)
	}
	fmt.Println("Queue cleared.")
}
