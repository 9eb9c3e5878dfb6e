package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/TAKIS21345/techsteps-sub005/internal/core/config"
	"github.com/TAKIS21345/techsteps-sub005/internal/core/domain"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/storage"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or clear the persisted session snapshot",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored session snapshot",
	Run:   runSessionShow,
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored session snapshot",
	Run:   runSessionClear,
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd, sessionClearCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionShow(cmd *cobra.Command, args []string) {
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

	var data domain.SessionData
	ok, err := storage.NewAdapter(store).GetJSON(ctx, storage.SessionKey, &data)
	if err != nil {
		slog.Error("Failed to read session", "error", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Println("No session stored.")
		return
	}

	saved := time.UnixMilli(data.Timestamp)
	fmt.Printf("User:    %s\n", data.UserID)
	fmt.Printf("Page:    %s\n", data.CurrentPage)
	fmt.Printf("Scroll:  %d\n", data.ScrollPosition)
	fmt.Printf("Saved:   %s (%s ago)\n", saved.Format(time.RFC3339), time.Since(saved).Round(time.Second))
	fmt.Printf("Forms:   %d\n", len(data.FormData))
}

func runSessionClear(cmd *cobra.Command, args []string) {
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

	if err := store.Delete(ctx, storage.SessionKey); err != nil {
		slog.Error("Failed to clear session", "error", err)
		os.Exit(1)
	}
	fmt.Println("Session cleared.")
}
