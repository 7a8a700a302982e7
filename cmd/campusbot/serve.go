package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/campusbot/internal/auth"
	"github.com/gosuda/campusbot/internal/config"
	"github.com/gosuda/campusbot/internal/docs"
	"github.com/gosuda/campusbot/internal/knowledge"
	"github.com/gosuda/campusbot/internal/llm"
	"github.com/gosuda/campusbot/internal/mail"
	cbslack "github.com/gosuda/campusbot/internal/messenger/slack"
	"github.com/gosuda/campusbot/internal/notify"
	"github.com/gosuda/campusbot/internal/resolver"
	"github.com/gosuda/campusbot/internal/server"
	redisstore "github.com/gosuda/campusbot/internal/store/redis"
	"github.com/gosuda/campusbot/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer pubsub.Close()

	dataset, err := knowledge.LoadDataset(cfg.SeedFile)
	if err != nil {
		return err
	}

	// Mail: queued through Redis, drained by workers, SendGrid first then SMTP.
	sender := mail.NewFallbackSender(
		mail.NewSendGridSender(cfg.Mail.SendGridAPIKey, cfg.Mail.From),
		mail.NewSMTPSender(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.SMTPUser, cfg.Mail.SMTPPassword, cfg.Mail.From),
	)
	queue := pubsub.Queue(mail.QueueKey)
	dispatcher := mail.NewDispatcher(queue, sender)
	worker := mail.NewWorker(queue, sender, cfg.Mail.MaxRetries)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		worker.Run(workerCtx, cfg.Mail.Workers)
	}()

	// Outbound notifications and the optional Slack app.
	notifyOpts := []notify.Option{notify.WithMailer(dispatcher), notify.WithPublisher(pubsub)}
	var slackMessenger *cbslack.SlackMessenger
	if cfg.Slack.BotToken != "" {
		slackMessenger = cbslack.New(cfg.Slack.BotToken)
		registry := notify.NewRegistry()
		registry.Register(slackMessenger)
		notifyOpts = append(notifyOpts, notify.WithMessengers(registry, cfg.Slack.AlertChannel))
	}
	notifier := notify.New(store.Tenants(), notifyOpts...)

	resolverOpts := []resolver.Option{resolver.WithForwarder(notifier)}
	if cfg.LLM.Enabled() {
		client, llmErr := llm.NewClient(cfg.LLM.Provider, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout)
		if llmErr != nil {
			return llmErr
		}
		resolverOpts = append(resolverOpts, resolver.WithGenerator(client, cfg.LLM.Timeout))
		log.Info().Str("provider", cfg.LLM.Provider).Msg("generative fallback enabled")
	}
	res := resolver.New(store.QA(), store.Knowledge(), store.MissLog(), resolverOpts...)

	var archiver docs.Archiver
	if cfg.Storage.Endpoint != "" {
		minioArchiver, archErr := docs.DialMinio(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.UseSSL)
		if archErr != nil {
			return archErr
		}
		archiver = minioArchiver
	}
	ingester := docs.NewIngester(store.QA(), archiver)

	authSvc := auth.NewService(store.Tenants(), store.Users(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL, auth.SuperAdmin{
		Email:        cfg.SuperAdmin.Email,
		PasswordHash: cfg.SuperAdmin.PasswordHash,
	})

	deps := server.Deps{
		Store:    store,
		Auth:     authSvc,
		Resolver: res,
		Notifier: notifier,
		Ingester: ingester,
		Dataset:  dataset,
		PubSub:   pubsub,
		Checks: map[string]server.Pinger{
			"postgres": store,
			"redis":    pubsub,
		},
	}
	if cfg.Slack.SigningSecret != "" && slackMessenger != nil && cfg.Slack.TenantID != "" {
		deps.Slack = cbslack.NewHandler(cfg.Slack.SigningSecret, res, slackMessenger, cfg.Slack.TenantID)
	}

	srv := server.New(ctx, cfg, deps, web.Assets())

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)
	res.Wait()
	stopWorkers()
	<-workersDone

	if shutdownErr != nil {
		return fmt.Errorf("serve: %w", shutdownErr)
	}
	log.Info().Msg("stopped")
	return nil
}
