package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/clubops/ticket-desk/internal/config"
	"github.com/clubops/ticket-desk/internal/database"
	"github.com/clubops/ticket-desk/internal/notify"
	"github.com/clubops/ticket-desk/internal/service"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run one reminder sweep from the CLI (same policy as /cron/remind)",
	RunE:  runRemind,
}

func runRemind(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}

	bot := notify.NewClient(cfg.TelegramToken, cfg.TelegramChatID)
	svc := service.NewTicketService(db, bot, cfg.RemindInterval)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()
	sent, err := svc.RemindSweep(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("remind sweep: %w", err)
	}
	log.Printf("remind: sent %d reminders", sent)
	return nil
}
