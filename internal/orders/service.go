package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ezoostore/storefront-backend/internal/cart"
	"github.com/ezoostore/storefront-backend/internal/media"
	"github.com/ezoostore/storefront-backend/internal/pricing"
	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"github.com/ezoostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
)

// Caller identifies the authenticated user acting on orders.
type Caller struct {
	UserID string
	Role   enums.UserRole
}

func (c Caller) IsAdmin() bool {
	return c.Role == enums.UserRoleAdmin
}

// Service is the checkout and order management surface.
type Service interface {
	Create(ctx context.Context, caller Caller, req CreateOrderRequest) (*OrderDTO, error)
	List(ctx context.Context) ([]OrderDTO, error)
	ListByUser(ctx context.Context, caller Caller, userID string) ([]OrderDTO, error)
	Get(ctx context.Context, caller Caller, id string) (*OrderDTO, error)
	AdminUpdate(ctx context.Context, id string, req UpdateOrderRequest) (*OrderDTO, error)
	Cancel(ctx context.Context, caller Caller, id string) (*OrderDTO, error)
	RequestReturn(ctx context.Context, caller Caller, id string) (*OrderDTO, error)
	Delete(ctx context.Context, id string) error
}

type cartPricer interface {
	Quote(ctx context.Context, c cart.Cart) (cart.Cart, pricing.Quote, error)
}

type assetHost interface {
	UploadDataURI(ctx context.Context, folder, dataURI string) (media.Asset, error)
	InFolder(url, folder string) bool
	Cleanup(ctx context.Context, reason string, urls []string) int
}

type orderMetrics interface {
	IncCreated(store string)
	IncTransition(from, to string)
	IncUploadFailure()
	AddCleanupFailures(n int)
}

// ServiceParams wires the order service.
type ServiceParams struct {
	Repo        Repository
	Pricer      cartPricer
	Media       assetHost
	Metrics     orderMetrics
	Logger      *logger.Logger
	StoreName   string
	AssetFolder string
}

type service struct {
	repo      Repository
	pricer    cartPricer
	media     assetHost
	metrics   orderMetrics
	logg      *logger.Logger
	storeName string
	folder    string
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Pricer == nil {
		return nil, fmt.Errorf("cart pricer required")
	}
	if params.Media == nil {
		return nil, fmt.Errorf("media service required")
	}
	if params.Metrics == nil {
		return nil, fmt.Errorf("order metrics required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	folder := params.AssetFolder
	if folder == "" {
		folder = "tshirt-logos"
	}
	return &service{
		repo:      params.Repo,
		pricer:    params.Pricer,
		media:     params.Media,
		metrics:   params.Metrics,
		logg:      params.Logger,
		storeName: params.StoreName,
		folder:    folder,
	}, nil
}

// Create validates the request, prices it on the server, uploads customer
// logos and persists the order. Uploads are removed again when a later step
// fails.
func (s *service) Create(ctx context.Context, caller Caller, req CreateOrderRequest) (*OrderDTO, error) {
	ownerID := caller.UserID
	if caller.IsAdmin() && strings.TrimSpace(req.UserID) != "" {
		ownerID = strings.TrimSpace(req.UserID)
	}
	if ownerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}

	draft := Normalize(req)
	if err := Validate(draft); err != nil {
		return nil, err
	}

	priced, quote, err := s.pricer.Quote(ctx, draft.Cart())
	if err != nil {
		return nil, err
	}

	images, hosted, err := s.uploadLogos(ctx, priced)
	if err != nil {
		s.metrics.IncUploadFailure()
		s.metrics.AddCleanupFailures(s.media.Cleanup(ctx, "order.create.upload_failed", hosted))
		return nil, err
	}

	order, err := Build(draft.Customer, ownerID, priced, quote, images, hosted)
	if err != nil {
		s.metrics.AddCleanupFailures(s.media.Cleanup(ctx, "order.create.build_failed", hosted))
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order")
	}
	if err := s.repo.Create(ctx, order); err != nil {
		s.metrics.AddCleanupFailures(s.media.Cleanup(ctx, "order.create.persist_failed", hosted))
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	s.metrics.IncCreated(s.storeName)
	logCtx := s.logg.WithOrderID(s.logg.WithUserID(ctx, ownerID), order.ID)
	s.logg.Info(logCtx, "order.created")
	dto := FromModel(*order)
	return &dto, nil
}

// uploadLogos hosts customer uploads one at a time, front before back. On
// failure it returns what was already hosted so the caller can remove it.
func (s *service) uploadLogos(ctx context.Context, priced cart.Cart) ([]ItemImages, []string, error) {
	lines := priced.Lines()
	images := make([]ItemImages, len(lines))
	var hosted []string

	host := func(src cart.LogoSource) (string, error) {
		if !src.HasUpload() {
			return strings.TrimSpace(src.PresetURL), nil
		}
		asset, err := s.media.UploadDataURI(ctx, s.folder, src.Upload)
		if err != nil {
			return "", err
		}
		hosted = append(hosted, asset.URL)
		return asset.URL, nil
	}

	for i, line := range lines {
		if !line.IsCustom() {
			continue
		}
		front, err := host(line.FrontLogo)
		if err != nil {
			return nil, hosted, err
		}
		back, err := host(line.BackLogo)
		if err != nil {
			return nil, hosted, err
		}
		images[i] = ItemImages{Front: front, Back: back}
	}
	return images, hosted, nil
}

func (s *service) List(ctx context.Context) ([]OrderDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return fromModels(rows), nil
}

func (s *service) ListByUser(ctx context.Context, caller Caller, userID string) ([]OrderDTO, error) {
	if !caller.IsAdmin() && caller.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "orders belong to another user")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list user orders")
	}
	return fromModels(rows), nil
}

func (s *service) Get(ctx context.Context, caller Caller, id string) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && order.UserID != caller.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	dto := FromModel(*order)
	return &dto, nil
}

// AdminUpdate applies a partial status/customer update. Without a version the
// stored revision is used as the expected one.
func (s *service) AdminUpdate(ctx context.Context, id string, req UpdateOrderRequest) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := order.Version
	if req.Version != nil {
		expected = *req.Version
	}

	var patch Patch
	if req.Status != nil {
		next, err := enums.ParseOrderStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
		}
		if next != order.Status {
			if err := CheckTransition(ActorAdmin, order.Status, next); err != nil {
				return nil, err
			}
			patch.Status = &next
		}
	}
	if req.Customer != nil {
		customer, err := ValidateCustomer(*req.Customer)
		if err != nil {
			return nil, err
		}
		patch.Customer = &customer
	}

	if patch.IsEmpty() {
		if expected != order.Version {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, db.ErrStaleVersion, "order was modified concurrently")
		}
		dto := FromModel(*order)
		return &dto, nil
	}
	return s.apply(ctx, order, expected, patch)
}

func (s *service) Cancel(ctx context.Context, caller Caller, id string) (*OrderDTO, error) {
	return s.customerTransition(ctx, caller, id, enums.OrderStatusCancelled)
}

func (s *service) RequestReturn(ctx context.Context, caller Caller, id string) (*OrderDTO, error) {
	return s.customerTransition(ctx, caller, id, enums.OrderStatusReturnRequested)
}

func (s *service) customerTransition(ctx context.Context, caller Caller, id string, next enums.OrderStatus) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != caller.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	if err := CheckTransition(ActorCustomer, order.Status, next); err != nil {
		return nil, err
	}
	return s.apply(ctx, order, order.Version, Patch{Status: &next})
}

func (s *service) apply(ctx context.Context, current *models.Order, expected int, patch Patch) (*OrderDTO, error) {
	updated, err := s.repo.Update(ctx, current.ID, expected, patch)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrStaleVersion):
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order was modified concurrently")
		case errors.Is(err, db.ErrNotFound):
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
		}
	}

	logCtx := s.logg.WithOrderID(ctx, updated.ID)
	if patch.Status != nil {
		s.metrics.IncTransition(current.Status.String(), patch.Status.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{"from": current.Status, "to": *patch.Status})
	}
	s.logg.Info(logCtx, "order.updated")
	dto := FromModel(*updated)
	return &dto, nil
}

// Delete removes the order first and then its customer uploads, one delete
// per distinct asset. Cleanup failures are logged and counted only.
func (s *service) Delete(ctx context.Context, id string) error {
	order, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order")
	}

	failed := s.media.Cleanup(s.logg.WithOrderID(ctx, id), "order.deleted", s.cleanupURLs(order))
	s.metrics.AddCleanupFailures(failed)
	s.logg.Info(s.logg.WithOrderID(ctx, id), "order.deleted")
	return nil
}

// cleanupURLs lists the customer uploads an order owns. Orders written before
// uploads were tracked fall back to item images inside the upload folder, so
// preset logos and product images are never touched.
func (s *service) cleanupURLs(order *models.Order) []string {
	urls := append([]string(nil), order.HostedAssets...)
	for _, item := range order.Items {
		for _, url := range []string{item.ImageURL, item.BackImageURL} {
			if url != "" && s.media.InFolder(url, s.folder) {
				urls = append(urls, url)
			}
		}
	}
	return urls
}

func (s *service) load(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}
