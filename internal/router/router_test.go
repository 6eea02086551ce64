package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v74"

	"github.com/ultrulas16/sinekapar/internal/config"
	"github.com/ultrulas16/sinekapar/internal/i18n"
	"github.com/ultrulas16/sinekapar/internal/models"
	"github.com/ultrulas16/sinekapar/internal/repository"
	"github.com/ultrulas16/sinekapar/internal/utils"
)

type stubGateway struct {
	intents map[string]*stripe.PaymentIntent
}

func (g *stubGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	pi := &stripe.PaymentIntent{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret",
		Amount:       amountMinor,
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
		Metadata:     metadata,
	}
	g.intents[pi.ID] = pi
	return pi, nil
}

func (g *stubGateway) GetIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	return g.intents[id], nil
}

func (g *stubGateway) Refund(ctx context.Context, intentID string) error {
	return nil
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	Meta json.RawMessage `json:"meta"`
}

type APITestSuite struct {
	suite.Suite
	store   *repository.MemoryStore
	gateway *stubGateway
	router  *gin.Engine

	buyerID    uuid.UUID
	buyerToken string
	adminToken string
	dealerID   uuid.UUID
	product    *models.Product
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Host: "localhost", Port: "8080"},
		Auth:        config.AuthConfig{JWTSecret: "test-secret"},
		Payment:     config.PaymentConfig{Currency: "try"},
		Shipping: config.ShippingConfig{
			StandardFee: "15.00",
			ExpressFee:  "45.00",
			PickupFee:   "0",
			FreeFee:     "0",
		},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000, CartPerMinute: 6000},
	}
}

func (s *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(i18n.Initialize("en"))
}

func (s *APITestSuite) SetupTest() {
	s.store = repository.NewMemoryStore()
	s.gateway = &stubGateway{intents: make(map[string]*stripe.PaymentIntent)}

	r, err := Initialize(Dependencies{Store: s.store, Gateway: s.gateway}, testConfig())
	s.Require().NoError(err)
	s.router = r

	s.buyerID = uuid.New()
	s.buyerToken = s.token(s.buyerID)

	adminID := uuid.New()
	s.store.PutProfile(models.Profile{ID: adminID, Role: models.RoleAdmin, FullName: "Admin"})
	s.adminToken = s.token(adminID)

	dealerUser := uuid.New()
	s.store.PutProfile(models.Profile{ID: dealerUser, Role: models.RoleDealer, FullName: "Bayi"})
	s.dealerID = s.store.PutDealer(models.Dealer{UserID: dealerUser, CompanyName: "Bayi", Tier: 2}).ID

	s.product = &models.Product{
		Name:             "UV Trap",
		BasePrice:        decimal.RequireFromString("100.00"),
		DealerTier1Price: decimal.NewNullDecimal(decimal.RequireFromString("70.00")),
		DealerTier2Price: decimal.NewNullDecimal(decimal.RequireFromString("80.00")),
		DealerTier3Price: decimal.NewNullDecimal(decimal.RequireFromString("90.00")),
		StockQuantity:    5,
		VATRate:          20,
		VATIncluded:      false,
		IsActive:         true,
		ShippingOption:   models.ShippingStandard,
	}
	s.Require().NoError(s.store.CreateProduct(context.Background(), s.product))
}

func (s *APITestSuite) token(userID uuid.UUID) string {
	token, err := utils.GenerateJWT(userID, "buyer@example.com", time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *APITestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	var reader *bytes.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(jsonData)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var response apiResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w, response
}

func (s *APITestSuite) addressID() uuid.UUID {
	w, resp := s.do(http.MethodPost, "/v1/addresses", s.buyerToken, map[string]interface{}{
		"title":        "Office",
		"full_name":    "Deniz Kaya",
		"phone":        "+90 555 000 00 00",
		"city":         "Izmir",
		"full_address": "Alsancak",
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	var address models.Address
	s.Require().NoError(json.Unmarshal(resp.Data, &address))
	return address.ID
}

func (s *APITestSuite) addToCart(qty int) uuid.UUID {
	w, resp := s.do(http.MethodPost, "/v1/cart/items", s.buyerToken, map[string]interface{}{
		"product_id": s.product.ID,
		"quantity":   qty,
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	var data struct {
		Line struct {
			ID uuid.UUID `json:"id"`
		} `json:"line"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &data))
	return data.Line.ID
}

func (s *APITestSuite) TestHealth() {
	w, _ := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APITestSuite) TestProductsPricedPerBuyer() {
	w, resp := s.do(http.MethodGet, "/v1/products/"+s.product.ID.String(), "", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var view struct {
		DisplayPrice     decimal.Decimal     `json:"display_price"`
		DealerTier2Price decimal.NullDecimal `json:"dealer_tier2_price"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &view))
	s.True(view.DisplayPrice.Equal(decimal.RequireFromString("120")))
	s.False(view.DealerTier2Price.Valid)

	// an invalid token still gets public prices
	w, _ = s.do(http.MethodGet, "/v1/products", "not-a-token", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APITestSuite) TestProductListPagination() {
	second := *s.product
	second.ID = uuid.Nil
	second.Name = "Glue Board"
	s.Require().NoError(s.store.CreateProduct(context.Background(), &second))

	w, resp := s.do(http.MethodGet, "/v1/products?page=2&limit=1", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	s.Equal("2", w.Header().Get("X-Total-Count"))
	s.Equal("2", w.Header().Get("X-Page"))
	s.Equal("1", w.Header().Get("X-Per-Page"))
	s.Equal("2", w.Header().Get("X-Total-Pages"))
	s.JSONEq(`{"pagination":{"page":2,"limit":1,"total":2,"total_pages":2}}`, string(resp.Meta))
}

func (s *APITestSuite) TestCartRequiresAuth() {
	w, resp := s.do(http.MethodGet, "/v1/cart", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.False(resp.Success)
	s.Equal("UNAUTHORIZED", resp.Error.Code)
}

func (s *APITestSuite) TestCartLifecycle() {
	lineID := s.addToCart(1)
	again := s.addToCart(1)
	s.Equal(lineID, again)

	w, resp := s.do(http.MethodPut, "/v1/cart/items/"+lineID.String(), s.buyerToken, map[string]int{"quantity": 0})
	s.Equal(http.StatusBadRequest, w.Code)
	s.False(resp.Success)

	w, resp = s.do(http.MethodPut, "/v1/cart/items/"+lineID.String(), s.buyerToken, map[string]int{"quantity": 9})
	s.Require().Equal(http.StatusOK, w.Code)
	var updated struct {
		Warning string `json:"warning"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &updated))
	s.NotEmpty(updated.Warning)

	w, resp = s.do(http.MethodGet, "/v1/cart", s.buyerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var summary struct {
		ItemCount  int             `json:"item_count"`
		GrandTotal decimal.Decimal `json:"grand_total"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &summary))
	s.Equal(9, summary.ItemCount)
	s.True(summary.GrandTotal.Equal(decimal.RequireFromString("1080")))

	w, _ = s.do(http.MethodDelete, "/v1/cart/items/"+lineID.String(), s.buyerToken, nil)
	s.Equal(http.StatusOK, w.Code)
	w, _ = s.do(http.MethodDelete, "/v1/cart/items/"+lineID.String(), s.buyerToken, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APITestSuite) TestCheckoutEmptyCart() {
	w, resp := s.do(http.MethodGet, "/v1/checkout", s.buyerToken, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("EMPTY_CART", resp.Error.Code)
	s.JSONEq(`{"redirect":"/products"}`, string(resp.Error.Details))
}

func (s *APITestSuite) TestCheckoutSubmit() {
	s.addressID()
	s.addToCart(2)

	w, resp := s.do(http.MethodPost, "/v1/checkout/quote", s.buyerToken, map[string]string{"shipping_option": "express"})
	s.Require().Equal(http.StatusOK, w.Code)
	var quote struct {
		Totals struct {
			Total decimal.Decimal `json:"total"`
		} `json:"totals"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &quote))
	s.True(quote.Totals.Total.Equal(decimal.RequireFromString("285")))

	w, resp = s.do(http.MethodPost, "/v1/checkout", s.buyerToken, map[string]string{"shipping_option": "standard"})
	s.Require().Equal(http.StatusCreated, w.Code, string(resp.Data))

	var placed struct {
		Order models.Order `json:"order"`
		State string       `json:"state"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &placed))
	s.Equal("completed", placed.State)
	s.True(placed.Order.TotalAmount.Equal(decimal.RequireFromString("255")))
	s.Equal("buyer@example.com", placed.Order.ContactEmail)

	w, resp = s.do(http.MethodGet, "/v1/cart", s.buyerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var summary struct {
		Lines []json.RawMessage `json:"lines"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &summary))
	s.Empty(summary.Lines)

	w, resp = s.do(http.MethodGet, "/v1/orders/"+placed.Order.ID.String(), s.buyerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var order models.Order
	s.Require().NoError(json.Unmarshal(resp.Data, &order))
	s.Require().Len(order.Items, 1)
	s.Equal(2, order.Items[0].Quantity)

	w, _ = s.do(http.MethodGet, "/v1/orders/"+placed.Order.ID.String(), s.adminToken, nil)
	s.Equal(http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/v1/orders/"+placed.Order.ID.String(), s.token(uuid.New()), nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APITestSuite) TestCheckoutInsufficientStock() {
	s.addressID()
	s.addToCart(6)

	w, resp := s.do(http.MethodPost, "/v1/checkout", s.buyerToken, map[string]string{})
	s.Require().Equal(http.StatusConflict, w.Code)
	s.Equal("INSUFFICIENT_STOCK", resp.Error.Code)

	var lines []struct {
		Requested int `json:"requested"`
		Available int `json:"available"`
	}
	s.Require().NoError(json.Unmarshal(resp.Error.Details, &lines))
	s.Require().Len(lines, 1)
	s.Equal(6, lines[0].Requested)
	s.Equal(5, lines[0].Available)

	orders, _, err := s.store.ListOrders(context.Background(), nil, 0, 0)
	s.Require().NoError(err)
	s.Empty(orders)
}

func (s *APITestSuite) TestCheckoutRejectsUnknownShipping() {
	s.addressID()
	s.addToCart(1)

	w, resp := s.do(http.MethodPost, "/v1/checkout", s.buyerToken, map[string]string{"shipping_option": "drone"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("VALIDATION_ERROR", resp.Error.Code)
}

func (s *APITestSuite) TestPaymentIntent() {
	s.addressID()
	s.addToCart(2)

	_, resp := s.do(http.MethodPost, "/v1/checkout", s.buyerToken, map[string]string{})
	var placed struct {
		Order models.Order `json:"order"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &placed))

	w, resp := s.do(http.MethodPost, "/v1/payments/intent", s.buyerToken, map[string]interface{}{"order_id": placed.Order.ID})
	s.Require().Equal(http.StatusOK, w.Code)
	var intent struct {
		Amount int64 `json:"amount"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &intent))
	s.Equal(int64(25500), intent.Amount)

	s.gateway.intents["pi_test"].Status = stripe.PaymentIntentStatusSucceeded
	w, resp = s.do(http.MethodPost, "/v1/payments/confirm", s.buyerToken, map[string]interface{}{
		"order_id":          placed.Order.ID,
		"payment_intent_id": "pi_test",
	})
	s.Require().Equal(http.StatusOK, w.Code)
	var confirmed struct {
		PaymentStatus string `json:"payment_status"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &confirmed))
	s.Equal("paid", confirmed.PaymentStatus)
}

func (s *APITestSuite) TestAdminRoutes() {
	w, _ := s.do(http.MethodPut, "/v1/admin/dealers/"+s.dealerID.String()+"/tier", s.buyerToken, map[string]int{"tier": 1})
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPut, "/v1/admin/dealers/"+s.dealerID.String()+"/tier", s.adminToken, map[string]int{"tier": 4})
	s.Equal(http.StatusBadRequest, w.Code)

	w, resp := s.do(http.MethodPut, "/v1/admin/dealers/"+s.dealerID.String()+"/tier", s.adminToken, map[string]int{"tier": 1})
	s.Require().Equal(http.StatusOK, w.Code)
	var dealer models.Dealer
	s.Require().NoError(json.Unmarshal(resp.Data, &dealer))
	s.Equal(1, dealer.Tier)

	w, resp = s.do(http.MethodPost, "/v1/admin/products", s.adminToken, map[string]interface{}{
		"name":           "Glue Board",
		"base_price":     "250.00",
		"stock_quantity": 100,
	})
	s.Require().Equal(http.StatusCreated, w.Code, string(resp.Data))
}

func (s *APITestSuite) TestAdminClearsTierPrice() {
	path := "/v1/admin/products/" + s.product.ID.String()
	w, resp := s.do(http.MethodPut, path, s.adminToken, map[string]interface{}{
		"dealer_tier2_price": nil,
	})
	s.Require().Equal(http.StatusOK, w.Code, string(resp.Data))

	stored, err := s.store.GetProduct(context.Background(), s.product.ID)
	s.Require().NoError(err)
	s.False(stored.DealerTier2Price.Valid)
	s.True(stored.DealerTier1Price.Valid)
}

func (s *APITestSuite) TestAdminOrderStatus() {
	s.addressID()
	s.addToCart(1)
	_, resp := s.do(http.MethodPost, "/v1/checkout", s.buyerToken, map[string]string{})
	var placed struct {
		Order models.Order `json:"order"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &placed))
	path := "/v1/admin/orders/" + placed.Order.ID.String() + "/status"

	w, _ := s.do(http.MethodPut, path, s.adminToken, map[string]string{"status": "delivered"})
	s.Equal(http.StatusConflict, w.Code)

	w, _ = s.do(http.MethodPut, path, s.adminToken, map[string]string{"status": "processing"})
	s.Equal(http.StatusOK, w.Code)

	w, resp = s.do(http.MethodGet, "/v1/admin/orders", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(resp.Meta), `"total":1`)
}

func (s *APITestSuite) TestMe() {
	w, resp := s.do(http.MethodGet, "/v1/me", s.buyerToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Require().NotNil(resp.Error)
	s.Equal("NOT_FOUND", resp.Error.Code)

	s.store.PutProfile(models.Profile{ID: s.buyerID, Role: models.RoleEndUser, FullName: "Deniz"})

	w, resp = s.do(http.MethodPut, "/v1/me", s.buyerToken, map[string]string{"full_name": "Deniz Kaya", "phone": "555"})
	s.Require().Equal(http.StatusOK, w.Code, string(resp.Data))

	w, resp = s.do(http.MethodGet, "/v1/me", s.buyerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var me struct {
		Profile models.Profile `json:"profile"`
		Buyer   struct {
			Role string `json:"role"`
		} `json:"buyer"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &me))
	s.Equal("Deniz Kaya", me.Profile.FullName)
	s.Equal("555", me.Profile.Phone)
	s.Equal("end_user", me.Buyer.Role)

	w, _ = s.do(http.MethodGet, "/v1/me", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestAdminStats() {
	w, _ := s.do(http.MethodGet, "/v1/admin/stats", s.buyerToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w, resp := s.do(http.MethodGet, "/v1/admin/stats", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var stats struct {
		TotalProducts int64 `json:"total_products"`
		TotalDealers  int64 `json:"total_dealers"`
		TotalProfiles int64 `json:"total_profiles"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &stats))
	s.EqualValues(1, stats.TotalProducts)
	s.EqualValues(1, stats.TotalDealers)
	s.EqualValues(2, stats.TotalProfiles)
}

func (s *APITestSuite) TestAdminProfileRole() {
	s.store.PutProfile(models.Profile{ID: s.buyerID, Role: models.RoleEndUser, FullName: "Deniz"})
	path := "/v1/admin/profiles/" + s.buyerID.String() + "/role"

	w, _ := s.do(http.MethodPut, path, s.adminToken, map[string]string{"role": "wizard"})
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPut, "/v1/admin/profiles/"+uuid.NewString()+"/role", s.adminToken, map[string]string{"role": "dealer"})
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPut, path, s.adminToken, map[string]string{"role": "admin"})
	s.Require().Equal(http.StatusOK, w.Code)

	// The buyer is an admin from the next request on.
	w, _ = s.do(http.MethodGet, "/v1/admin/stats", s.buyerToken, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APITestSuite) TestMutationsAreAudited() {
	s.addToCart(1)

	s.Eventually(func() bool {
		for _, entry := range s.store.AuditEntries() {
			if entry.Action == "POST /v1/cart/items" && entry.UserID != nil && *entry.UserID == s.buyerID {
				return entry.ResourceType == "cart" && entry.Status == http.StatusCreated
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
