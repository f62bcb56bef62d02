package order

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"

	"checkout/internal/entities"

	"github.com/AlekSi/pointer"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeZip  = "application/zip"
)

type Config struct {
	FrontendURL string
}

type Service struct {
	store   OrderStore
	gateway PaymentGateway
	catalog Catalog
	cfg     Config
}

func New(store OrderStore, gateway PaymentGateway, catalog Catalog, cfg Config) *Service {
	return &Service{
		store:   store,
		gateway: gateway,
		catalog: catalog,
		cfg:     cfg,
	}
}

// CreatePreference validates the buyer input, persists a pending order and asks the
// gateway for a checkout preference. If the gateway fails the order is cancelled.
func (s *Service) CreatePreference(ctx context.Context, req entities.CheckoutRequest) (*entities.Checkout, error) {
	if err := validateCheckout(&req, s.catalog); err != nil {
		return nil, err
	}

	order := &entities.Order{
		Customer: entities.Customer{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Document:  req.Document,
			Email:     req.Email,
		},
		Product: entities.Product{
			CourseID:    req.CourseID,
			CourseTitle: req.CourseTitle,
			Price:       req.Price,
			Quantity:    req.Quantity,
		},
		Status:      entities.OrderPending,
		Fulfillment: entities.FulfillmentNone,
	}

	id, err := s.store.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	order.ID = id

	preference, err := s.gateway.CreatePreference(ctx, order, s.returnURLs())
	if err != nil {
		_, cancelErr := s.store.Update(ctx, entities.OrderModify{
			ID:     id,
			Status: pointer.To(entities.OrderCancelled),
		})
		return nil, errors.Join(fmt.Errorf("create preference: %w", err), cancelErr)
	}

	if _, err := s.store.Update(ctx, entities.OrderModify{
		ID:           id,
		PreferenceID: pointer.To(preference.ID),
	}); err != nil {
		return nil, fmt.Errorf("store preference id: %w", err)
	}

	return &entities.Checkout{
		OrderID:          id,
		PreferenceID:     preference.ID,
		InitPoint:        preference.InitPoint,
		SandboxInitPoint: preference.SandboxInitPoint,
	}, nil
}

// GetDownload authorizes with the payment id as token and returns the artifact.
// Several files are bundled into one zip archive.
func (s *Service) GetDownload(ctx context.Context, orderID int64, token string) (*entities.Download, error) {
	if orderID <= 0 {
		return nil, ErrInvalidOrderID
	}

	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if token == "" || order.PaymentID == nil || *order.PaymentID != token {
		return nil, entities.ErrUnauthorized
	}
	if order.Status != entities.OrderApproved {
		return nil, fmt.Errorf("%w: status %s", entities.ErrNotApproved, order.Status)
	}

	files, err := s.catalog.Artifacts(order.Product.CourseID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactsGone, err)
	}

	if len(files) == 1 {
		return &entities.Download{
			Filename:    files[0].Filename,
			ContentType: contentTypeXLSX,
			Content:     files[0].Content,
		}, nil
	}

	archive, err := zipFiles(files)
	if err != nil {
		return nil, fmt.Errorf("bundle artifacts: %w", err)
	}
	return &entities.Download{
		Filename:    order.Product.CourseID + ".zip",
		ContentType: contentTypeZip,
		Content:     archive,
	}, nil
}

func (s *Service) returnURLs() entities.ReturnURLs {
	return entities.ReturnURLs{
		Success: s.cfg.FrontendURL + "/pago-exitoso",
		Failure: s.cfg.FrontendURL + "/pago-fallido",
		Pending: s.cfg.FrontendURL + "/pago-pendiente",
	}
}

func zipFiles(files []entities.Attachment) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Filename)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(f.Content); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
