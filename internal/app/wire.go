//go:build wireinject
// +build wireinject

package app

import (
	"context"
	"fmt"
	"os"

	"checkout/internal/gateway/mail/resend"
	"checkout/internal/gateway/mail/smtp"
	"checkout/internal/gateway/mercadopago"
	"checkout/internal/handlers/tasks/payment_resync"
	"checkout/internal/pkg/config"
	"checkout/internal/pkg/factory/notification_handle"
	"checkout/internal/service/fulfillment"
	"checkout/internal/service/notification"
	orderService "checkout/internal/service/order"
	"checkout/internal/service/reconciliation"
	"checkout/pkg/background"
	"checkout/pkg/logger"

	"github.com/google/wire"
)

const maxConflictRetries = 5

type Application struct {
	Orders            *orderService.Service
	Reconciliation    *reconciliation.Service
	Notifications     *notification.Service
	BackgroundWorkers *background.Worker
}

// InitializeApplication wires the HTTP service (cmd/service).
func InitializeApplication(
	ctx context.Context,
	log logger.Logger,
	storage Storage,
	cfg *config.Config,
) (*Application, error) {
	wire.Build(
		wire.FieldsOf(new(Storage), "Store", "TxManager"),

		provideGateway,
		provideMailer,
		provideCatalog,
		provideDispatcher,

		provideOrderService,
		provideReconciliationService,
		provideTopicHandlerFactory,
		provideNotificationService,

		providePaymentResyncTask,
		provideTaskList,
		provideBackgroundWorkers,

		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}

type KafkaWorkerApp struct {
	Notifications *notification.Service
}

// InitializeKafkaWorkerApp wires the notification consumer (cmd/worker-payment-notification).
func InitializeKafkaWorkerApp(
	ctx context.Context,
	log logger.Logger,
	storage Storage,
	cfg *config.Config,
) (*KafkaWorkerApp, error) {
	wire.Build(
		wire.FieldsOf(new(Storage), "Store", "TxManager"),

		provideGateway,
		provideMailer,
		provideCatalog,
		provideDispatcher,

		provideReconciliationService,
		provideTopicHandlerFactory,
		provideNotificationService,

		wire.Struct(new(KafkaWorkerApp), "*"),
	)
	return nil, nil
}

func provideGateway(cfg *config.Config) *mercadopago.Gateway {
	return mercadopago.New(mercadopago.Config{
		AccessToken:         cfg.MercadoPago.AccessToken,
		BaseURL:             cfg.MercadoPago.BaseURL,
		Timeout:             cfg.MercadoPago.Timeout,
		MaxRetries:          cfg.MercadoPago.MaxRetries,
		CurrencyID:          cfg.Checkout.CurrencyID,
		StatementDescriptor: cfg.Checkout.StatementDescriptor,
		NotificationURL:     cfg.Checkout.NotificationURL,
	})
}

func provideMailer(cfg *config.Config) (fulfillment.Mailer, error) {
	switch cfg.Mail.Provider {
	case config.MailResend:
		return resend.New(resend.Config{
			APIKey:    cfg.Mail.ResendAPIKey,
			BaseURL:   cfg.Mail.ResendBaseURL,
			FromName:  cfg.Mail.FromName,
			FromEmail: cfg.Mail.FromEmail,
			ReplyTo:   cfg.Mail.ReplyTo,
			Timeout:   cfg.Mail.Timeout,
		}), nil
	case config.MailSMTP:
		return smtp.New(smtp.Config{
			Host:      cfg.Mail.SMTP.Host,
			Port:      cfg.Mail.SMTP.Port,
			Username:  cfg.Mail.SMTP.User,
			Password:  cfg.Mail.SMTP.Password,
			UseTLS:    cfg.Mail.SMTP.UseTLS,
			FromName:  cfg.Mail.FromName,
			FromEmail: cfg.Mail.FromEmail,
			ReplyTo:   cfg.Mail.ReplyTo,
			Timeout:   cfg.Mail.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}
}

func provideCatalog(cfg *config.Config) *fulfillment.Catalog {
	return fulfillment.NewCatalog(os.DirFS(cfg.Fulfillment.FilesDir), fulfillment.DefaultProducts)
}

func provideDispatcher(
	log logger.Logger,
	mailer fulfillment.Mailer,
	catalog *fulfillment.Catalog,
) *fulfillment.Dispatcher {
	return fulfillment.New(log, mailer, catalog)
}

func provideOrderService(
	store Store,
	gateway *mercadopago.Gateway,
	catalog *fulfillment.Catalog,
	cfg *config.Config,
) *orderService.Service {
	return orderService.New(store, gateway, catalog, orderService.Config{
		FrontendURL: cfg.Checkout.FrontendURL,
	})
}

func provideReconciliationService(
	log logger.Logger,
	gateway *mercadopago.Gateway,
	store Store,
	dispatcher *fulfillment.Dispatcher,
	txManager TxManager,
	cfg *config.Config,
) *reconciliation.Service {
	return reconciliation.New(log, gateway, store, dispatcher, txManager, reconciliation.Config{
		MaxConflictRetries: maxConflictRetries,
		StaleAfter:         cfg.Tasks.PaymentResyncStaleAfter,
		ResyncBatchSize:    cfg.Tasks.PaymentResyncBatchSize,
		ClaimLease:         cfg.Fulfillment.ClaimLease,
		SearchWindow:       cfg.Tasks.PaymentResyncSearchWindow,
	})
}

func provideTopicHandlerFactory(
	reconciler *reconciliation.Service,
	gateway *mercadopago.Gateway,
) *notification_handle.TopicHandlerFactory {
	return notification_handle.NewTopicHandlerFactory(reconciler, gateway)
}

func provideNotificationService(factory *notification_handle.TopicHandlerFactory) *notification.Service {
	return notification.New(factory)
}

func providePaymentResyncTask(
	service *reconciliation.Service,
	cfg *config.Config,
) *payment_resync.PaymentResync {
	return payment_resync.NewPaymentResync(service, cfg.Tasks.PaymentResyncInterval)
}

// provideTaskList schedules the resync only when an interval is configured;
// stateless deployments have nothing to list.
func provideTaskList(
	cfg *config.Config,
	paymentResyncTask *payment_resync.PaymentResync,
) []background.Task {
	if cfg.Tasks.PaymentResyncInterval <= 0 {
		return nil
	}
	return []background.Task{
		paymentResyncTask,
	}
}

func provideBackgroundWorkers(ctx context.Context, log logger.Logger, tasks []background.Task) (*background.Worker, error) {
	return background.New(ctx, log, tasks)
}
