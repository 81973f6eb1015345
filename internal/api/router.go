package api

import (
	"context"
	"net/http"
	"time"

	"spalena53-be/internal/address"
	"spalena53-be/internal/auth"
	"spalena53-be/internal/cart"
	"spalena53-be/internal/category"
	"spalena53-be/internal/delivery"
	"spalena53-be/internal/logger"
	"spalena53-be/internal/metrics"
	"spalena53-be/internal/middleware"
	"spalena53-be/internal/order"
	"spalena53-be/internal/payment"
	"spalena53-be/internal/product"
	"spalena53-be/internal/redisx"
	"spalena53-be/internal/user"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const requestTimeout = 30 * time.Second

// DeliveryService is the part of delivery.Service the API exposes.
type DeliveryService interface {
	Methods() []delivery.MethodInfo
	Points(ctx context.Context, provider delivery.Method, city, postalCode string) ([]delivery.Point, error)
	Track(ctx context.Context, trackingNumber string) (*delivery.Tracking, error)
}

// Idempotency guards order placement; nil disables the Idempotency-Key header.
type Idempotency interface {
	ClaimOrder(ctx context.Context, userID uuid.UUID, key string) (redisx.Claim, error)
	CompleteOrder(ctx context.Context, userID uuid.UUID, key string, orderID uuid.UUID) error
	ReleaseOrder(ctx context.Context, userID uuid.UUID, key string) error
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Users      user.Service
	Products   product.Service
	Categories category.Service
	Carts      cart.Service
	Addresses  address.Service
	Delivery   DeliveryService
	Orders     order.Service
	Payments   payment.Service

	Tokens       *auth.TokenManager
	Limiter      *middleware.Limiter
	Idempotency  Idempotency
	Metrics      *metrics.Registry
	DB           Pinger
	CORSOrigin   string
	SecureCookie bool
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.CORS(d.CORSOrigin))
	r.Use(middleware.Authenticate(d.Tokens))
	r.Use(logger.LoggingMiddleware)
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware)
	}
	r.Use(chimw.Timeout(requestTimeout))

	health := &healthHandler{db: d.DB, metrics: d.Metrics}
	r.Get("/healthz", health.get)

	r.Route("/api", func(r chi.Router) {
		authH := &authHandler{users: d.Users, tokens: d.Tokens, secure: d.SecureCookie}
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authH.register)
			r.Post("/login", authH.login)
			r.Post("/logout", authH.logout)
			r.With(middleware.RequireAuth).Get("/session", authH.session)
		})

		catalog := &catalogHandler{products: d.Products, categories: d.Categories}
		r.Get("/products", catalog.listProducts)
		r.Get("/products/{id}", catalog.getProduct)
		r.With(middleware.RequireAdmin).Post("/products", catalog.createProduct)
		r.Get("/categories", catalog.listCategories)
		r.Get("/categories/{slug}", catalog.getCategory)

		deliveryH := &deliveryHandler{delivery: d.Delivery}
		r.Route("/delivery", func(r chi.Router) {
			r.Get("/methods", deliveryH.methods)
			r.Get("/points", deliveryH.points)
			r.Get("/track/{trackingNumber}", deliveryH.track)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			cartH := &cartHandler{carts: d.Carts}
			r.Get("/cart", cartH.get)
			r.Post("/cart", cartH.add)
			r.Delete("/cart", cartH.clear)
			r.Put("/cart/items/{productId}", cartH.update)
			r.Delete("/cart/items/{productId}", cartH.remove)

			addrH := &addressHandler{addresses: d.Addresses}
			r.Get("/addresses", addrH.list)
			r.Post("/addresses", addrH.create)
			r.Put("/addresses/{id}", addrH.update)
			r.Delete("/addresses/{id}", addrH.delete)
			r.Put("/addresses/{id}/default", addrH.setDefault)

			orderH := &orderHandler{orders: d.Orders, idem: d.Idempotency}
			r.Post("/orders", orderH.place)
			r.Get("/orders", orderH.list)
			r.Get("/orders/{id}", orderH.get)
			r.Put("/orders/{id}/status", orderH.updateStatus)

			payH := &paymentHandler{payments: d.Payments}
			r.Post("/payment/create-intent", payH.createIntent)
			r.Post("/payment/confirm", payH.confirm)
		})
	})

	return r
}
