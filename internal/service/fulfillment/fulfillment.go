package fulfillment

import (
	"context"

	"checkout/internal/entities"
	"checkout/internal/pkg/metrics"
	"checkout/pkg/logger"
)

type Dispatcher struct {
	log     dispatcherLogger
	mailer  Mailer
	catalog *Catalog
}

func New(log dispatcherLogger, mailer Mailer, catalog *Catalog) *Dispatcher {
	return &Dispatcher{
		log:     log.With(logger.NewField("component", "fulfillment")),
		mailer:  mailer,
		catalog: catalog,
	}
}

// Dispatch emails the purchased artifacts. It never returns an error: every
// failure is logged and reported as false.
func (d *Dispatcher) Dispatch(ctx context.Context, order *entities.Order) bool {
	log := d.log.With(
		logger.NewField("order_id", order.ID),
		logger.NewField("course_id", order.Product.CourseID),
	)

	if order.Status != entities.OrderApproved {
		log.Error("refusing to fulfill order that is not approved", logger.NewField("status", order.Status.String()))
		metrics.FulfillmentsTotal.WithLabelValues("not_approved").Inc()
		return false
	}

	attachments, err := d.catalog.Artifacts(order.Product.CourseID)
	if err != nil {
		log.Error("no artifacts to deliver", logger.NewField("error", err))
		metrics.FulfillmentsTotal.WithLabelValues("no_artifacts").Inc()
		return false
	}

	email, err := composeEmail(order, attachments)
	if err != nil {
		log.Error("compose email", logger.NewField("error", err))
		metrics.FulfillmentsTotal.WithLabelValues("compose_failed").Inc()
		return false
	}

	if err := d.mailer.Send(ctx, email); err != nil {
		log.Error("send purchase email", logger.NewField("error", err))
		metrics.FulfillmentsTotal.WithLabelValues("send_failed").Inc()
		return false
	}

	log.Info("purchase email sent", logger.NewField("attachments", len(attachments)))
	metrics.FulfillmentsTotal.WithLabelValues("sent").Inc()
	return true
}
