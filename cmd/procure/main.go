package main

import (
	"context"
	"log/slog"
	"os"

	"procure/config"
	"procure/internal/delivery"
	"procure/internal/delivery/http"
	"procure/internal/delivery/http/middleware"
	"procure/internal/delivery/http/router/handler"
	"procure/internal/domain/repository"
	"procure/internal/domain/service"
	"procure/internal/infra/auth"
	logs "procure/internal/infra/log"
	"procure/internal/infra/mail"
	"procure/internal/infra/persistence/dynamo"
	"procure/internal/infra/persistence/fallback"
	"procure/internal/infra/persistence/local"
	"procure/internal/infra/qrcode"
	"procure/internal/usecase/impl"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		newStore,
		newDynamoClient,
	)
}

func newStore(cfg *config.Config) (*local.Store, error) {
	return local.NewStore(cfg.LocalStore.Path)
}

// newDynamoClient returns nil when the mirror is disabled; the repository
// providers fall back to the plain local implementations.
func newDynamoClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	if cfg.Dynamo == nil || !cfg.Dynamo.Enabled {
		return nil, nil
	}

	return dynamo.NewClient(ctx, cfg.Dynamo)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			newUserRepository,
			newCredentialRepository,
			newSessionRepository,
			local.NewResetTokenRepository,
			local.NewTwoFactorRepository,
		),
	)
}

func newUserRepository(store *local.Store, client *dynamodb.Client, cfg *config.Config, logger *slog.Logger) repository.UserRepository {
	localRepo := local.NewUserRepository(store)
	if client == nil {
		return localRepo
	}

	return fallback.NewUserRepository(localRepo, dynamo.NewUserRepository(client, cfg.Dynamo.Tables.Users), logger)
}

func newCredentialRepository(store *local.Store, client *dynamodb.Client, cfg *config.Config, logger *slog.Logger) repository.CredentialRepository {
	localRepo := local.NewCredentialRepository(store)
	if client == nil {
		return localRepo
	}

	return fallback.NewCredentialRepository(localRepo, dynamo.NewCredentialRepository(client, cfg.Dynamo.Tables.Users), logger)
}

func newSessionRepository(store *local.Store, client *dynamodb.Client, cfg *config.Config, logger *slog.Logger) repository.SessionRepository {
	localRepo := local.NewSessionRepository(store)
	if client == nil {
		return localRepo
	}

	return fallback.NewSessionRepository(localRepo, dynamo.NewSessionMirror(client, cfg.Dynamo.Tables.Sessions), logger)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewPBKDF2Hasher,
			newTOTPService,
			newQRCodeService,
			newMailSender,
		),
	)
}

func newTOTPService(cfg *config.Config) service.TwoFactorService {
	return auth.NewTOTPService(cfg.Auth.TOTPIssuer)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

// newMailSender selects the outbound mail provider. Missing or unknown
// configuration degrades to the logging sender so local development works
// without a relay.
func newMailSender(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.MailSender, error) {
	if cfg.Mail == nil {
		return mail.NewLogSender(logger), nil
	}

	switch cfg.Mail.Provider {
	case "ses":
		return mail.NewSESSender(ctx, cfg.Mail, logger)
	case "smtp":
		return mail.NewSMTPSender(cfg.Mail)
	default:
		return mail.NewLogSender(logger), nil
	}
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewSessionService,
			impl.NewAuthService,
			impl.NewTwoFactorService,
			impl.NewAccountService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewSessionMiddleware,
			middleware.NewLoggerMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewTwoFactorHandler,
			handler.NewAccountHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
