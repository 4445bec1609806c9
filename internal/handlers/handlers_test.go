package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/imrishuroy/avenge-storefront/internal/cart"
	"github.com/imrishuroy/avenge-storefront/internal/catalog"
	"github.com/imrishuroy/avenge-storefront/internal/checkout"
	"github.com/imrishuroy/avenge-storefront/internal/idempotency"
	"github.com/imrishuroy/avenge-storefront/internal/slot"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	slot   *slot.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.Load()
	require.NoError(t, err)

	mem := slot.NewMemory()
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	RegisterRoutes(r, HandlerConfig{
		Catalog:  cat,
		Carts:    cart.NewProvider(mem, "avenge-cart", time.Minute),
		Checkout: checkout.NewService(idempotency.NewMemory(time.Hour), nil, checkout.WithDelay(0)),
		Logger:   zerolog.Nop(),
	})
	return &testServer{router: r, slot: mem}
}

func (s *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type cartBody struct {
	Cart struct {
		Lines []struct {
			ProductID int    `json:"productId"`
			Quantity  int    `json:"quantity"`
			Name      string `json:"name"`
		} `json:"lines"`
		TotalItems int             `json:"totalItems"`
		TotalPrice decimal.Decimal `json:"totalPrice"`
	} `json:"cart"`
	Summary struct {
		Shipping decimal.Decimal `json:"shipping"`
		Tax      decimal.Decimal `json:"tax"`
		Total    decimal.Decimal `json:"total"`
	} `json:"summary"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/home", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	home := decode[struct {
		Featured    []catalog.Product `json:"featured"`
		Bestsellers []catalog.Product `json:"bestsellers"`
	}](t, w)
	require.Len(t, home.Featured, HomeFeaturedLimit)
	require.Len(t, home.Bestsellers, HomeBestsellersLimit)

	w = s.do(http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"categories":["floral","fresh","oriental","woody"]}`, w.Body.String())

	w = s.do(http.MethodGet, "/products?category=woody&sort=price-asc&price=bogus", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Products []catalog.Product `json:"products"`
		Count    int               `json:"count"`
		Filter   catalog.Filter    `json:"filter"`
	}](t, w)
	require.Equal(t, 3, list.Count)
	ids := []int{}
	for _, p := range list.Products {
		ids = append(ids, p.ID)
	}
	require.Equal(t, []int{3, 11, 7}, ids)
	require.Equal(t, catalog.PriceAll, list.Filter.Price)

	w = s.do(http.MethodGet, "/products/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[struct {
		Product catalog.Product   `json:"product"`
		Related []catalog.Product `json:"related"`
	}](t, w)
	require.Equal(t, 1, detail.Product.ID)
	require.NotEmpty(t, detail.Related)
	require.LessOrEqual(t, len(detail.Related), RelatedLimit)
	for _, p := range detail.Related {
		require.Equal(t, detail.Product.Category, p.Category)
		require.NotEqual(t, detail.Product.ID, p.ID)
	}

	require.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/products/999", "", nil).Code)
	require.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/products/abc", "", nil).Code)
}

func TestSessionCookieCarriesCart(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/cart/items", `{"productId":2}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie issued")
	require.True(t, cookie.HttpOnly)

	w = s.do(http.MethodGet, "/cart", "", map[string]string{"Cookie": SessionCookie + "=" + cookie.Value})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[cartBody](t, w)
	require.Equal(t, 1, body.Cart.TotalItems)
	require.Empty(t, w.Result().Cookies(), "no new cookie for a known session")
}

func TestCartLifecycle(t *testing.T) {
	s := newTestServer(t)
	h := map[string]string{sessionHeader: "sess-1"}

	w := s.do(http.MethodPost, "/cart/items", `{"productId":1,"quantity":3}`, h)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[cartBody](t, w)
	require.Equal(t, 3, body.Cart.TotalItems)
	require.Equal(t, "Midnight Oud", body.Cart.Lines[0].Name)
	require.Equal(t, "1035", body.Cart.TotalPrice.String())
	require.Equal(t, "15", body.Summary.Shipping.String())
	require.Equal(t, "82.8", body.Summary.Tax.String())
	require.Equal(t, "1132.8", body.Summary.Total.String())

	// capped at ten
	w = s.do(http.MethodPost, "/cart/items", `{"productId":1,"quantity":10}`, h)
	require.Equal(t, 10, decode[cartBody](t, w).Cart.TotalItems)

	w = s.do(http.MethodPost, "/cart/items", `{"productId":4}`, h)
	body = decode[cartBody](t, w)
	require.Len(t, body.Cart.Lines, 2)
	require.Equal(t, 4, body.Cart.Lines[1].ProductID)

	w = s.do(http.MethodPut, "/cart/items/1", `{"quantity":2}`, h)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 3, decode[cartBody](t, w).Cart.TotalItems)

	w = s.do(http.MethodPut, "/cart/items/1", `{"quantity":0}`, h)
	body = decode[cartBody](t, w)
	require.Len(t, body.Cart.Lines, 1)
	require.Equal(t, 4, body.Cart.Lines[0].ProductID)

	// persisted under the session key
	payload, found, err := s.slot.Get(context.Background(), "avenge-cart:sess-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Contains(t, payload, `"productId":4`)

	w = s.do(http.MethodDelete, "/cart/items/4", "", h)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decode[cartBody](t, w).Cart.Lines)

	s.do(http.MethodPost, "/cart/items", `{"productId":5}`, h)
	w = s.do(http.MethodDelete, "/cart", "", h)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t,
		`{"cart":{"lines":[],"totalItems":0,"totalPrice":0},"summary":{"subtotal":"0","shipping":"0","tax":"0","total":"0"}}`,
		w.Body.String())
}

func TestCartRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	h := map[string]string{sessionHeader: "sess-2"}

	w := s.do(http.MethodPost, "/cart/items", `{"productId":999}`, h)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"product_not_found"}`, w.Body.String())

	w = s.do(http.MethodPost, "/cart/items", `{"productId":1,"quantity":11}`, h)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "validation_failed")

	w = s.do(http.MethodPut, "/cart/items/1", `{}`, h)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/cart/items/x", `{"quantity":1}`, h)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// unknown ids are a silent no-op
	w = s.do(http.MethodDelete, "/cart/items/77", "", h)
	require.Equal(t, http.StatusOK, w.Code)
}

const checkoutBody = `{
	"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com", "phone": "555-0100",
	"address": "12 Analytical Way", "city": "Boston", "state": "MA", "zipCode": "02110",
	"cardNumber": "4242 4242 4242 4242", "cardExpiry": "12/99", "cardCVC": "123"
}`

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	h := map[string]string{sessionHeader: "sess-3", idempotencyKeyHeader: "attempt-1"}

	w := s.do(http.MethodPost, "/checkout", checkoutBody, h)
	require.Equal(t, http.StatusConflict, w.Code)
	require.JSONEq(t, `{"error":"empty_cart"}`, w.Body.String())

	s.do(http.MethodPost, "/cart/items", `{"productId":3,"quantity":2}`, h)

	w = s.do(http.MethodPost, "/checkout", `{"email":"ada@example.com"}`, h)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "cardNumber")

	w = s.do(http.MethodPost, "/checkout", checkoutBody, h)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	conf := decode[checkout.Confirmation](t, w)
	require.NotEmpty(t, conf.OrderNumber)
	require.Equal(t, "4242", conf.CardLast4)
	require.Equal(t, "United States", conf.ShipTo.Country)
	require.Equal(t, "533.4", conf.Summary.Total.String())
	require.NotContains(t, w.Body.String(), "4242424242424242")

	w = s.do(http.MethodGet, "/cart", "", h)
	require.Equal(t, 0, decode[cartBody](t, w).Cart.TotalItems)

	w = s.do(http.MethodPost, "/checkout", checkoutBody, h)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "true", w.Header().Get(replayedHeader))
	require.Equal(t, conf.OrderNumber, decode[checkout.Confirmation](t, w).OrderNumber)
}

func TestContact(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/contact", `{"name":"Ada","email":"ada@example.com","subject":"Samples","message":"Do you ship samples?"}`, nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = s.do(http.MethodPost, "/contact", `{"name":"Ada"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/categories", "", map[string]string{requestIDHeader: "req-42"})
	require.Equal(t, "req-42", w.Header().Get(requestIDHeader))

	w = s.do(http.MethodGet, "/categories", "", nil)
	require.NotEmpty(t, w.Header().Get(requestIDHeader))
}
