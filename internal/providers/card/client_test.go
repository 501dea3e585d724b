package card

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Sign(t *testing.T) {
	c := NewClient(Config{PartnerKey: "key"})
	sum := md5.Sum([]byte("key" + "123456789" + "SER0001"))
	assert.Equal(t, hex.EncodeToString(sum[:]), c.Sign("123456789", "SER0001"))
}

func TestClient_VerifyCallback(t *testing.T) {
	c := NewClient(Config{PartnerKey: "key"})
	sign := c.Sign("pin", "serial")

	assert.True(t, c.VerifyCallback("pin", "serial", sign))
	assert.False(t, c.VerifyCallback("pin", "serial", ""))
	assert.False(t, c.VerifyCallback("pin", "other", sign))
}

func TestClient_Charge(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, chargePath, r.URL.Path)
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"trans_id":8812,"request_id":"t-1","status":99,"message":"PENDING"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, PartnerID: "p-1", PartnerKey: "key"})
	resp, err := c.Charge(context.Background(), ChargeRequest{
		Telco: "VIETTEL", Code: "pin", Serial: "serial", Amount: 50000, RequestID: "t-1", CallbackURL: "https://shop/cb",
	})
	require.NoError(t, err)
	assert.True(t, resp.Accepted())
	assert.Equal(t, "8812", resp.Reference())
	assert.NotEmpty(t, resp.Raw)

	assert.Equal(t, "charging", form["command"])
	assert.Equal(t, "t-1", form["request_id"])
	assert.Equal(t, "50000", form["amount"])
	assert.Equal(t, "p-1", form["partner_id"])
	assert.Equal(t, "https://shop/cb", form["callback_url"])
	assert.Equal(t, c.Sign("pin", "serial"), form["sign"])
}

func TestClient_ChargeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"3","message":"card used"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	resp, err := c.Charge(context.Background(), ChargeRequest{RequestID: "t-1"})
	require.NoError(t, err)
	assert.False(t, resp.Accepted())
	assert.Equal(t, "card used", resp.Message)
}

func TestClient_ChargeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Charge(context.Background(), ChargeRequest{RequestID: "t-1"})
	assert.ErrorIs(t, err, pkgerrors.ErrProviderRejected)

	var perr *pkgerrors.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "502", perr.Code)
}

func TestClient_ChargeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Charge(context.Background(), ChargeRequest{RequestID: "t-1"})
	assert.ErrorIs(t, err, pkgerrors.ErrProviderUnavailable)
	assert.NotErrorIs(t, err, pkgerrors.ErrProviderRejected)
}
