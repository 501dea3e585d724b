package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/auth"
	"github.com/honeynil/ShopLedgerService/internal/models"
	"github.com/honeynil/ShopLedgerService/internal/providers/momo"
	service "github.com/honeynil/ShopLedgerService/internal/services"
	"github.com/honeynil/ShopLedgerService/internal/services/mocks"
	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "2b0e7d6c-5a41-4a8f-9f3e-6d2c1b0a9e87"

type handlerFixture struct {
	auth     *mocks.MockAuthService
	purchase *mocks.MockPurchaseService
	topup    *mocks.MockTopupService
	router   *mux.Router
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	ctrl := gomock.NewController(t)
	f := &handlerFixture{
		auth:     mocks.NewMockAuthService(ctrl),
		purchase: mocks.NewMockPurchaseService(ctrl),
		topup:    mocks.NewMockTopupService(ctrl),
	}
	h := NewHandler(f.auth, f.purchase, f.topup)

	f.router = mux.NewRouter()
	api := f.router.PathPrefix("/api").Subrouter()
	h.RegisterPublicRoutes(api)
	h.RegisterProviderRoutes(api)
	protected := api.NewRoute().Subrouter()
	protected.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), testUserID)))
		})
	})
	h.RegisterProtectedRoutes(protected)
	return f
}

func (f *handlerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestRegister(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.auth.EXPECT().Register(gomock.Any(), "alice", "secret1").Return("acc-1", nil)

		rr := f.do(jsonRequest(http.MethodPost, "/api/auth/register", `{"username":"alice","password":"secret1"}`))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "acc-1", decodeBody(t, rr)["id"])
	})

	t.Run("username taken", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.auth.EXPECT().Register(gomock.Any(), "alice", "secret1").Return("", pkgerrors.ErrUsernameExists)

		rr := f.do(jsonRequest(http.MethodPost, "/api/auth/register", `{"username":"alice","password":"secret1"}`))

		assert.Equal(t, http.StatusConflict, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, false, body["ok"])
		assert.Equal(t, pkgerrors.ErrUsernameExists.Error(), body["message"])
	})

	t.Run("short password never reaches the service", func(t *testing.T) {
		f := newHandlerFixture(t)

		rr := f.do(jsonRequest(http.MethodPost, "/api/auth/register", `{"username":"alice","password":"123"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeBody(t, rr)["message"], "password")
	})
}

func TestLogin(t *testing.T) {
	f := newHandlerFixture(t)
	f.auth.EXPECT().Login(gomock.Any(), "alice", "wrong").Return("", pkgerrors.ErrInvalidCredentials)
	f.auth.EXPECT().Login(gomock.Any(), "alice", "secret1").Return("jwt-token", nil)

	rr := f.do(jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"wrong"}`))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"secret1"}`))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "jwt-token", decodeBody(t, rr)["token"])
}

func TestPurchase(t *testing.T) {
	t.Run("receipt", func(t *testing.T) {
		f := newHandlerFixture(t)
		coupon := "HVH10"
		f.purchase.EXPECT().Purchase(gomock.Any(), testUserID, service.PurchaseRequest{
			ItemID:         "bio-pro",
			Quantity:       1,
			Coupon:         &coupon,
			IdempotencyKey: "k-1",
		}).Return(&models.Receipt{
			OrderID:       "ord-1",
			ItemID:        "bio-pro",
			Quantity:      1,
			Subtotal:      49000,
			Discount:      4900,
			Payable:       44100,
			AppliedCoupon: &coupon,
			NewBalance:    55900,
		}, nil)

		req := jsonRequest(http.MethodPost, "/api/purchase", `{"itemId":"bio-pro","quantity":1,"coupon":"HVH10"}`)
		req.Header.Set("Idempotency-Key", "k-1")
		rr := f.do(req)

		require.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, float64(44100), body["paid"])
		assert.Equal(t, float64(49000), body["total"])
		assert.Equal(t, float64(4900), body["discount"])
		assert.Equal(t, "HVH10", body["coupon"])
		assert.Equal(t, float64(55900), body["newBalance"])
		assert.Equal(t, "ord-1", body["orderId"])
	})

	t.Run("quantity out of range", func(t *testing.T) {
		f := newHandlerFixture(t)

		rr := f.do(jsonRequest(http.MethodPost, "/api/purchase", `{"itemId":"bio-pro","quantity":100}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeBody(t, rr)["message"], "quantity")
	})

	t.Run("unknown field", func(t *testing.T) {
		f := newHandlerFixture(t)

		rr := f.do(jsonRequest(http.MethodPost, "/api/purchase", `{"itemId":"bio-pro","quantity":1,"price":1}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	errorCases := []struct {
		err    error
		status int
	}{
		{pkgerrors.ErrInsufficientBalance, http.StatusBadRequest},
		{pkgerrors.ErrItemNotFound, http.StatusNotFound},
		{pkgerrors.ErrAccountLocked, http.StatusForbidden},
		{pkgerrors.ErrRequestAlreadyProcessed, http.StatusConflict},
		{fmt.Errorf("%w: db down", pkgerrors.ErrInternal), http.StatusInternalServerError},
	}
	for _, tc := range errorCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			f := newHandlerFixture(t)
			f.purchase.EXPECT().Purchase(gomock.Any(), testUserID, gomock.Any()).Return(nil, tc.err)

			rr := f.do(jsonRequest(http.MethodPost, "/api/purchase", `{"itemId":"bio-pro","quantity":2}`))

			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, false, decodeBody(t, rr)["ok"])
		})
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	f := newHandlerFixture(t)
	f.purchase.EXPECT().GetBalance(gomock.Any(), testUserID).Return(int64(0), fmt.Errorf("pq: connection refused to 10.0.0.5"))

	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/balance", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal server error", decodeBody(t, rr)["message"])
}

func TestListOrders(t *testing.T) {
	f := newHandlerFixture(t)
	f.purchase.EXPECT().ListOrders(gomock.Any(), testUserID, 5).Return([]models.Order{{ID: "ord-1"}}, nil)

	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/orders?limit=5", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	orders := decodeBody(t, rr)["orders"].([]any)
	assert.Len(t, orders, 1)

	rr = f.do(httptest.NewRequest(http.MethodGet, "/api/orders?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetBalance(t *testing.T) {
	f := newHandlerFixture(t)
	f.purchase.EXPECT().GetBalance(gomock.Any(), testUserID).Return(int64(104000), nil)

	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/balance", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(104000), decodeBody(t, rr)["balance"])
}

func TestSubmitCard(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.topup.EXPECT().SubmitCard(gomock.Any(), testUserID, service.CardRequest{
			Telco: "viettel", Amount: 50000, Serial: "10004783347874", Pin: "312821445892982",
		}).Return(&service.CardSubmission{
			TopupID:     "t-1",
			CallbackURL: "https://shop.example/api/topup/card/callback",
			Message:     "card is being processed",
		}, nil)

		rr := f.do(jsonRequest(http.MethodPost, "/api/topup/card",
			`{"telco":"viettel","amount":50000,"serial":"10004783347874","pin":"312821445892982"}`))

		require.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "t-1", body["topupId"])
		assert.Equal(t, "https://shop.example/api/topup/card/callback", body["callbackUrl"])
	})

	t.Run("provider rejection surfaces provider message", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.topup.EXPECT().SubmitCard(gomock.Any(), testUserID, gomock.Any()).
			Return(nil, &pkgerrors.ProviderError{Provider: "card", Code: "3", Message: "the card has been used"})

		rr := f.do(jsonRequest(http.MethodPost, "/api/topup/card",
			`{"telco":"viettel","amount":50000,"serial":"1","pin":"2"}`))

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Equal(t, "the card has been used", decodeBody(t, rr)["message"])
	})

	t.Run("missing pin", func(t *testing.T) {
		f := newHandlerFixture(t)

		rr := f.do(jsonRequest(http.MethodPost, "/api/topup/card", `{"telco":"viettel","amount":50000,"serial":"1"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeBody(t, rr)["message"], "pin is required")
	})
}

func TestCardCallback(t *testing.T) {
	t.Run("query string", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.topup.EXPECT().HandleCardCallback(gomock.Any(), map[string]string{
			"request_id": "t-1", "status": "1", "value": "50000",
		}).Return(nil)

		rr := f.do(httptest.NewRequest(http.MethodGet, "/api/topup/card/callback?request_id=t-1&status=1&value=50000", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", rr.Body.String())
		assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("form body", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.topup.EXPECT().HandleCardCallback(gomock.Any(), map[string]string{
			"request_id": "t-1", "status": "3", "message": "used card",
		}).Return(nil)

		form := url.Values{"request_id": {"t-1"}, "status": {"3"}, "message": {"used card"}}
		req := httptest.NewRequest(http.MethodPost, "/api/topup/card/callback", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := f.do(req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("json body with numbers", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.topup.EXPECT().HandleCardCallback(gomock.Any(), map[string]string{
			"request_id": "t-1", "status": "1", "value": "50000",
		}).Return(nil)

		rr := f.do(jsonRequest(http.MethodPost, "/api/topup/card/callback", `{"request_id":"t-1","status":1,"value":50000,"extra":null}`))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.topup.EXPECT().HandleCardCallback(gomock.Any(), gomock.Any()).Return(pkgerrors.ErrInvalidSignature)

		rr := f.do(httptest.NewRequest(http.MethodGet, "/api/topup/card/callback?request_id=t-1", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("storage failure asks for a retry", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.topup.EXPECT().HandleCardCallback(gomock.Any(), gomock.Any()).Return(fmt.Errorf("db down"))

		rr := f.do(httptest.NewRequest(http.MethodGet, "/api/topup/card/callback?request_id=t-1", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestCreateMomoPayment(t *testing.T) {
	f := newHandlerFixture(t)
	f.topup.EXPECT().CreateMomoPayment(gomock.Any(), testUserID, int64(100000)).Return(&service.MomoPayment{
		OrderID:   "o-1",
		RequestID: "r-1",
		PayURL:    "https://test-payment.momo.vn/pay",
		Deeplink:  "momo://pay",
		QRData:    "2|99|0900000000",
	}, nil)

	rr := f.do(jsonRequest(http.MethodPost, "/api/topup/momo/create", `{"amount":100000}`))

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "o-1", body["orderId"])
	assert.Equal(t, "r-1", body["requestId"])
	assert.Equal(t, "https://test-payment.momo.vn/pay", body["payUrl"])
	assert.Equal(t, "momo://pay", body["deeplink"])
	assert.Equal(t, "2|99|0900000000", body["qrData"])
}

func TestMomoIPN(t *testing.T) {
	const payload = `{"partnerCode":"MOMO","orderId":"o-1","requestId":"r-1","amount":100000,"transId":4088878653,"resultCode":0,"message":"Successful.","responseTime":1721720663942,"signature":"abc"}`

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"settled", nil, http.StatusNoContent},
		{"forged", pkgerrors.ErrInvalidSignature, http.StatusBadRequest},
		{"unknown order", pkgerrors.ErrTopupNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			f.topup.EXPECT().HandleMomoIPN(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, ipn momo.IPN) error {
				assert.Equal(t, "o-1", ipn.OrderID)
				assert.Equal(t, "100000", ipn.Amount.String())
				assert.Equal(t, "0", ipn.ResultCode.String())
				return tc.err
			})

			rr := f.do(jsonRequest(http.MethodPost, "/api/topup/momo/ipn", payload))

			assert.Equal(t, tc.status, rr.Code)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		f := newHandlerFixture(t)

		rr := f.do(jsonRequest(http.MethodPost, "/api/topup/momo/ipn", `{not json`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListTopups(t *testing.T) {
	f := newHandlerFixture(t)
	f.topup.EXPECT().ListTopups(gomock.Any(), testUserID, "success", 0).Return([]models.Topup{{ID: "t-1", Raw: json.RawMessage(`{"pin":"x"}`)}}, nil)

	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/topup/history?status=success", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "pin\":\"x")
}

func TestProtectedRoutesRequireUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewHandler(mocks.NewMockAuthService(ctrl), mocks.NewMockPurchaseService(ctrl), mocks.NewMockTopupService(ctrl))

	rr := httptest.NewRecorder()
	h.GetBalance(rr, httptest.NewRequest(http.MethodGet, "/api/balance", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
