package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/clubops/ticket-desk/internal/config"
	"github.com/clubops/ticket-desk/internal/database"
	"github.com/clubops/ticket-desk/internal/handler"
	"github.com/clubops/ticket-desk/internal/notify"
	"github.com/clubops/ticket-desk/internal/router"
	"github.com/clubops/ticket-desk/internal/service"
)

// API is the ticket-desk HTTP application.
type API struct {
	cfg     *config.Config
	httpSrv *http.Server
}

func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	if !cfg.TelegramEnabled() {
		log.Println("telegram: TELEGRAM_BOT_TOKEN not set, notifications disabled")
	} else if cfg.TelegramChatID == 0 {
		log.Println("telegram: TELEGRAM_CHAT_ID not set, outbound sends skipped")
	}
	if cfg.WebhookSecret == "" {
		log.Println("warning: TELEGRAM_WEBHOOK_SECRET not set, webhook accepts unauthenticated requests")
	}
	if cfg.CronSecret == "" {
		log.Println("warning: CRON_SECRET not set, /cron/remind accepts unauthenticated requests")
	}

	bot := notify.NewClient(cfg.TelegramToken, cfg.TelegramChatID)
	ticketSvc := service.NewTicketService(db, bot, cfg.RemindInterval)

	tickets := handler.NewTicketHandler(ticketSvc)
	webhook := handler.NewWebhookHandler(ticketSvc, bot, cfg.WebhookSecret)
	cron := handler.NewCronHandler(ticketSvc, cfg.CronSecret)

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(cfg.FrontendOrigin, tickets, webhook, cron),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, httpSrv: httpSrv}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", a.httpSrv.Addr)
	log.Printf("  Swagger UI: %s/swagger", base)
	log.Printf("  Health:     %s/health", base)
	log.Printf("  API:        %s/api/tickets", base)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
