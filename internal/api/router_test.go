package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spalena53-be/internal/auth"
	"spalena53-be/internal/cart"
	"spalena53-be/internal/delivery"
	"spalena53-be/internal/metrics"
	"spalena53-be/internal/order"
	"spalena53-be/internal/payment"
	"spalena53-be/internal/product"
	"spalena53-be/internal/user"
	"spalena53-be/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	users      *MockUserService
	products   *MockProductService
	categories *MockCategoryService
	carts      *MockCartService
	addresses  *MockAddressService
	orders     *MockOrderService
	payments   *MockPaymentService
	idem       *fakeIdempotency
	metrics    *metrics.Registry
	tokens     *auth.TokenManager

	handler http.Handler
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("connection refused") }

func newTestServer(t *testing.T, mutate ...func(*Deps)) *testServer {
	t.Helper()
	s := &testServer{
		users:      new(MockUserService),
		products:   new(MockProductService),
		categories: new(MockCategoryService),
		carts:      new(MockCartService),
		addresses:  new(MockAddressService),
		orders:     new(MockOrderService),
		payments:   new(MockPaymentService),
		idem:       newFakeIdempotency(),
		metrics:    metrics.NewRegistry(),
		tokens:     auth.NewTokenManager("test-secret", time.Hour),
	}
	d := Deps{
		Users:       s.users,
		Products:    s.products,
		Categories:  s.categories,
		Carts:       s.carts,
		Addresses:   s.addresses,
		Delivery:    delivery.NewService(),
		Orders:      s.orders,
		Payments:    s.payments,
		Tokens:      s.tokens,
		Idempotency: s.idem,
		Metrics:     s.metrics,
		CORSOrigin:  "http://localhost:3000",
	}
	for _, fn := range mutate {
		fn(&d)
	}
	s.handler = NewRouter(d)
	return s
}

func (s *testServer) token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	tok, err := s.tokens.Generate(userID, "jana@example.com", role)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, body, token string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		s := newTestServer(t)
		s.metrics.Counter(order.MetricOrdersPlaced).Inc()

		rr := s.do(t, http.MethodGet, "/healthz", "", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "ok", body["status"])
		counters := body["metrics"].(map[string]any)["counters"].(map[string]any)
		assert.EqualValues(t, 1, counters[order.MetricOrdersPlaced])
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("DatabaseDown", func(t *testing.T) {
		s := newTestServer(t, func(d *Deps) { d.DB = failingPinger{} })

		rr := s.do(t, http.MethodGet, "/healthz", "", "")

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "down", decodeBody(t, rr)["database"])
	})
}

func TestAuthHandlers(t *testing.T) {
	t.Run("RegisterSetsCookie", func(t *testing.T) {
		s := newTestServer(t)
		u := &user.User{ID: uuid.New(), Email: "jana@example.com", Role: user.RoleCustomer}
		s.users.On("Register", mock.Anything, mock.MatchedBy(func(in user.RegisterInput) bool {
			return in.Email == "jana@example.com" && in.Password == "secret1"
		})).Return(&user.AuthResult{User: u, Token: "tok"}, nil)

		rr := s.do(t, http.MethodPost, "/api/auth/register",
			`{"email":"jana@example.com","password":"secret1","firstName":"Jana","lastName":"Nováková"}`, "")

		assert.Equal(t, http.StatusCreated, rr.Code)
		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.CookieName, cookies[0].Name)
		assert.Equal(t, "tok", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, 3600, cookies[0].MaxAge)
		assert.Equal(t, "tok", decodeBody(t, rr)["token"])
	})

	t.Run("RegisterDuplicate", func(t *testing.T) {
		s := newTestServer(t)
		s.users.On("Register", mock.Anything, mock.Anything).Return(nil, user.ErrUserExists)

		rr := s.do(t, http.MethodPost, "/api/auth/register",
			`{"email":"jana@example.com","password":"secret1","firstName":"Jana","lastName":"N"}`, "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "user_exists", decodeBody(t, rr)["error"])
	})

	t.Run("LoginInvalidCredentials", func(t *testing.T) {
		s := newTestServer(t)
		s.users.On("Login", mock.Anything, mock.Anything).Return(nil, user.ErrInvalidCredentials)

		rr := s.do(t, http.MethodPost, "/api/auth/login", `{"email":"x@example.com","password":"nope"}`, "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "invalid_credentials", decodeBody(t, rr)["error"])
	})

	t.Run("SessionRequiresAuth", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.do(t, http.MethodGet, "/api/auth/session", "", "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		s.users.AssertNotCalled(t, "Session", mock.Anything)
	})

	t.Run("SessionRejectsBadToken", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.do(t, http.MethodGet, "/api/auth/session", "", "not-a-jwt")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Session", func(t *testing.T) {
		s := newTestServer(t)
		userID := uuid.New()
		s.users.On("Session", mock.Anything).Return(&user.Session{
			User:            &user.User{ID: userID},
			IsAuthenticated: true,
		}, nil)

		rr := s.do(t, http.MethodGet, "/api/auth/session", "", s.token(t, userID, utils.RoleCustomer))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, true, decodeBody(t, rr)["isAuthenticated"])
	})

	t.Run("LogoutClearsCookie", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.do(t, http.MethodPost, "/api/auth/logout", "", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})
}

func TestCatalogHandlers(t *testing.T) {
	t.Run("ListParsesFilter", func(t *testing.T) {
		s := newTestServer(t)
		s.products.On("List", mock.Anything, mock.MatchedBy(func(f product.ListFilter) bool {
			return f.CategorySlug == "fiction" &&
				f.Type == product.TypeBook &&
				f.MinPrice != nil && f.MinPrice.Equal(decimal.NewFromInt(100)) &&
				f.MaxPrice == nil &&
				f.Page == 2 && f.Limit == 10 && f.Sort == "-price"
		})).Return(&product.ListResult{Products: []*product.Product{}}, nil)

		rr := s.do(t, http.MethodGet, "/api/products?category=fiction&type=book&minPrice=100&page=2&limit=10&sort=-price", "", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		s.products.AssertExpectations(t)
	})

	t.Run("ListRejectsBadNumbers", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.do(t, http.MethodGet, "/api/products?minPrice=cheap&page=two", "", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "invalid_data", body["error"])
		details := body["details"].(map[string]any)
		assert.Contains(t, details, "minPrice")
		assert.Contains(t, details, "page")
	})

	t.Run("GetNotFound", func(t *testing.T) {
		s := newTestServer(t)
		id := uuid.New()
		s.products.On("GetByID", mock.Anything, id).Return(nil, product.ErrProductNotFound)

		rr := s.do(t, http.MethodGet, "/api/products/"+id.String(), "", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "not_found", decodeBody(t, rr)["error"])
	})

	t.Run("GetInvalidID", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.do(t, http.MethodGet, "/api/products/not-a-uuid", "", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("CreateRequiresAdmin", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.do(t, http.MethodPost, "/api/products", `{"sku":"B1"}`, s.token(t, uuid.New(), utils.RoleCustomer))

		assert.Equal(t, http.StatusForbidden, rr.Code)
		s.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("CreateAsAdmin", func(t *testing.T) {
		s := newTestServer(t)
		s.products.On("Create", mock.Anything, mock.MatchedBy(func(in product.CreateInput) bool {
			return in.SKU == "BOOK009" && in.Price.Equal(decimal.NewFromInt(199))
		})).Return(&product.Product{ID: uuid.New(), SKU: "BOOK009"}, nil)

		rr := s.do(t, http.MethodPost, "/api/products", `{"sku":"BOOK009","title":"R.U.R.","price":"199","stock":3}`,
			s.token(t, uuid.New(), utils.RoleAdmin))

		assert.Equal(t, http.StatusCreated, rr.Code)
	})
}

func TestCartHandlers(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()

	t.Run("AddDefaultsQuantity", func(t *testing.T) {
		s := newTestServer(t)
		s.carts.On("AddToCart", mock.Anything, cart.AddToCartParams{
			UserID: userID, ProductID: productID, Quantity: 1,
		}).Return(&cart.Cart{UserID: userID, Items: []*cart.Item{}}, nil)

		rr := s.do(t, http.MethodPost, "/api/cart", `{"productId":"`+productID.String()+`"}`, s.token(t, userID, utils.RoleCustomer))

		assert.Equal(t, http.StatusOK, rr.Code)
		s.carts.AssertExpectations(t)
	})

	t.Run("AddInsufficientStock", func(t *testing.T) {
		s := newTestServer(t)
		s.carts.On("AddToCart", mock.Anything, mock.Anything).Return(nil, cart.ErrInsufficientStock)

		rr := s.do(t, http.MethodPost, "/api/cart", `{"productId":"`+productID.String()+`","quantity":9}`, s.token(t, userID, utils.RoleCustomer))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "insufficient_stock", decodeBody(t, rr)["error"])
	})

	t.Run("AnonymousRejected", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.do(t, http.MethodGet, "/api/cart", "", "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("ClearEmpty", func(t *testing.T) {
		s := newTestServer(t)
		s.carts.On("ClearCart", mock.Anything, userID).Return(cart.ErrCartEmpty)

		rr := s.do(t, http.MethodDelete, "/api/cart", "", s.token(t, userID, utils.RoleCustomer))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Cart already empty", decodeBody(t, rr)["message"])
	})

	t.Run("UpdateQuantity", func(t *testing.T) {
		s := newTestServer(t)
		s.carts.On("UpdateQuantity", mock.Anything, cart.UpdateQuantityParams{
			UserID: userID, ProductID: productID, Quantity: 0,
		}).Return(&cart.Cart{UserID: userID, Items: []*cart.Item{}}, nil)

		rr := s.do(t, http.MethodPut, "/api/cart/items/"+productID.String(), `{"quantity":0}`, s.token(t, userID, utils.RoleCustomer))

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

const placeBody = `{"deliveryMethod":"CZECH_POST","paymentMethod":"CARD","useExistingAddress":true}`

func placedFixture(userID uuid.UUID) *order.PlaceOrderResult {
	tn := "CP1760000000000CZ"
	o := &order.Order{
		ID:             uuid.New(),
		OrderNumber:    "ORD2026000001",
		UserID:         userID,
		DeliveryMethod: delivery.MethodCzechPost,
		Total:          decimal.NewFromInt(786),
		TrackingNumber: &tn,
	}
	return &order.PlaceOrderResult{Order: o, TrackingNumber: &tn, Shipment: order.ShipmentRegistered}
}

func TestOrderHandlers_Place(t *testing.T) {
	userID := uuid.New()

	t.Run("Created", func(t *testing.T) {
		s := newTestServer(t)
		res := placedFixture(userID)
		s.orders.On("PlaceOrder", mock.Anything, userID, mock.MatchedBy(func(in order.PlaceOrderInput) bool {
			return in.DeliveryMethod == delivery.MethodCzechPost && in.UseExistingAddress
		})).Return(res, nil)

		rr := s.do(t, http.MethodPost, "/api/orders", placeBody, s.token(t, userID, utils.RoleCustomer))

		assert.Equal(t, http.StatusCreated, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "Order created successfully", body["message"])
		o := body["order"].(map[string]any)
		assert.Equal(t, "ORD2026000001", o["orderNumber"])
		assert.Equal(t, "REGISTERED", o["shipment"])
		assert.Equal(t, "CP1760000000000CZ", o["trackingNumber"])
	})

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"EmptyCart", order.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
		{"NoAddress", order.ErrNoAddressAvailable, http.StatusBadRequest, "no_address"},
		{"InsufficientStock", &order.InsufficientStockError{ProductID: uuid.New(), ProductName: "1984"}, http.StatusBadRequest, "insufficient_stock"},
		{"Timeout", order.ErrPlacementTimeout, http.StatusServiceUnavailable, "timeout"},
		{"Conflict", order.ErrOrderNumberConflict, http.StatusConflict, "conflict"},
		{"Internal", errors.New("pq: connection reset"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			s.orders.On("PlaceOrder", mock.Anything, userID, mock.Anything).Return(nil, tc.err)

			rr := s.do(t, http.MethodPost, "/api/orders", placeBody, s.token(t, userID, utils.RoleCustomer))

			assert.Equal(t, tc.status, rr.Code)
			body := decodeBody(t, rr)
			assert.Equal(t, tc.code, body["error"])
			assert.NotContains(t, body["message"], "pq:")
		})
	}

	t.Run("InsufficientStockNamesProduct", func(t *testing.T) {
		s := newTestServer(t)
		pid := uuid.New()
		s.orders.On("PlaceOrder", mock.Anything, userID, mock.Anything).
			Return(nil, &order.InsufficientStockError{ProductID: pid, ProductName: "1984"})

		rr := s.do(t, http.MethodPost, "/api/orders", placeBody, s.token(t, userID, utils.RoleCustomer))

		body := decodeBody(t, rr)
		assert.Equal(t, "Insufficient stock for 1984", body["message"])
		assert.Equal(t, pid.String(), body["details"].(map[string]any)["productId"])
	})

	t.Run("UnknownField", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.do(t, http.MethodPost, "/api/orders", `{"deliveryMethod":"PPL","coupon":"X"}`, s.token(t, userID, utils.RoleCustomer))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "unknown field", decodeBody(t, rr)["details"].(map[string]any)["coupon"])
		s.orders.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderHandlers_Idempotency(t *testing.T) {
	userID := uuid.New()

	t.Run("ReplaysCompletedKey", func(t *testing.T) {
		s := newTestServer(t)
		res := placedFixture(userID)
		s.orders.On("PlaceOrder", mock.Anything, userID, mock.Anything).Return(res, nil).Once()
		s.orders.On("Get", mock.Anything, userID, res.Order.ID).Return(res.Order, nil)
		tok := s.token(t, userID, utils.RoleCustomer)

		first := s.do(t, http.MethodPost, "/api/orders", placeBody, tok, idempotencyHeader, "checkout-1")
		second := s.do(t, http.MethodPost, "/api/orders", placeBody, tok, idempotencyHeader, "checkout-1")

		assert.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, "Order already created", decodeBody(t, second)["message"])
		s.orders.AssertNumberOfCalls(t, "PlaceOrder", 1)
	})

	t.Run("InFlightKey", func(t *testing.T) {
		s := newTestServer(t)
		s.idem.keys[userID.String()+":checkout-2"] = nil

		rr := s.do(t, http.MethodPost, "/api/orders", placeBody, s.token(t, userID, utils.RoleCustomer), idempotencyHeader, "checkout-2")

		assert.Equal(t, http.StatusConflict, rr.Code)
		s.orders.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("FailureReleasesKey", func(t *testing.T) {
		s := newTestServer(t)
		s.orders.On("PlaceOrder", mock.Anything, userID, mock.Anything).Return(nil, order.ErrEmptyCart)

		rr := s.do(t, http.MethodPost, "/api/orders", placeBody, s.token(t, userID, utils.RoleCustomer), idempotencyHeader, "checkout-3")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, []string{"checkout-3"}, s.idem.released)
		assert.NotContains(t, s.idem.keys, userID.String()+":checkout-3")
	})

	t.Run("StoreDownStillPlaces", func(t *testing.T) {
		s := newTestServer(t)
		s.idem.claimErr = errors.New("dial tcp: connection refused")
		s.orders.On("PlaceOrder", mock.Anything, userID, mock.Anything).Return(placedFixture(userID), nil)

		rr := s.do(t, http.MethodPost, "/api/orders", placeBody, s.token(t, userID, utils.RoleCustomer), idempotencyHeader, "checkout-4")

		assert.Equal(t, http.StatusCreated, rr.Code)
	})
}

func TestOrderHandlers_ReadAndStatus(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("GetForeignOrder", func(t *testing.T) {
		s := newTestServer(t)
		s.orders.On("Get", mock.Anything, userID, orderID).Return(nil, order.ErrOrderNotFound)

		rr := s.do(t, http.MethodGet, "/api/orders/"+orderID.String(), "", s.token(t, userID, utils.RoleCustomer))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		s := newTestServer(t)
		s.orders.On("UpdateStatus", mock.Anything, userID, orderID, mock.MatchedBy(func(u order.StatusUpdate) bool {
			return u.Status == nil && u.PaymentStatus != nil && *u.PaymentStatus == order.PaymentCompleted
		})).Return(&order.Order{ID: orderID, PaymentStatus: order.PaymentCompleted}, nil)

		rr := s.do(t, http.MethodPut, "/api/orders/"+orderID.String()+"/status", `{"paymentStatus":"COMPLETED"}`,
			s.token(t, userID, utils.RoleCustomer))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "COMPLETED", decodeBody(t, rr)["paymentStatus"])
	})
}

func TestPaymentHandlers(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("CreateIntent", func(t *testing.T) {
		s := newTestServer(t)
		s.payments.On("CreateIntent", mock.Anything, userID, orderID).Return(&payment.IntentResult{
			ClientSecret: "pi_1_secret", Amount: decimal.NewFromInt(786), OrderNumber: "ORD2026000001",
		}, nil)

		rr := s.do(t, http.MethodPost, "/api/payment/create-intent", `{"orderId":"`+orderID.String()+`"}`,
			s.token(t, userID, utils.RoleCustomer))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "pi_1_secret", decodeBody(t, rr)["clientSecret"])
	})

	t.Run("CreateIntentAlreadyPaid", func(t *testing.T) {
		s := newTestServer(t)
		s.payments.On("CreateIntent", mock.Anything, userID, orderID).Return(nil, payment.ErrAlreadyPaid)

		rr := s.do(t, http.MethodPost, "/api/payment/create-intent", `{"orderId":"`+orderID.String()+`"}`,
			s.token(t, userID, utils.RoleCustomer))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "already_paid", decodeBody(t, rr)["error"])
	})

	t.Run("ConfirmNotSucceeded", func(t *testing.T) {
		s := newTestServer(t)
		s.payments.On("Confirm", mock.Anything, "pi_1").Return(nil, payment.ErrPaymentNotSuccessful)

		rr := s.do(t, http.MethodPost, "/api/payment/confirm", `{"paymentIntentId":"pi_1"}`,
			s.token(t, userID, utils.RoleCustomer))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "payment_not_successful", decodeBody(t, rr)["error"])
	})

	t.Run("Confirm", func(t *testing.T) {
		s := newTestServer(t)
		s.payments.On("Confirm", mock.Anything, "pi_1").Return(&order.Order{ID: orderID, Status: order.StatusConfirmed}, nil)

		rr := s.do(t, http.MethodPost, "/api/payment/confirm", `{"paymentIntentId":"pi_1"}`,
			s.token(t, userID, utils.RoleCustomer))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, true, decodeBody(t, rr)["success"])
	})
}

func TestDeliveryHandlers(t *testing.T) {
	t.Run("Methods", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.do(t, http.MethodGet, "/api/delivery/methods", "", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var methods []delivery.MethodInfo
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &methods))
		assert.Len(t, methods, 5)
	})

	t.Run("PointsForZasilkovna", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.do(t, http.MethodGet, "/api/delivery/points?provider=zasilkovna&city=Praha", "", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var pts []delivery.Point
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pts))
		assert.NotEmpty(t, pts)
	})

	t.Run("PointsInvalidProvider", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.do(t, http.MethodGet, "/api/delivery/points?provider=CZECH_POST", "", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid_provider", decodeBody(t, rr)["error"])
	})
}
