// Package momo implements the MoMo wallet v2 gateway: signed payment creation
// and verification of instant payment notifications.
package momo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
)

const (
	createPath  = "/v2/gateway/api/create"
	requestType = "captureWallet"

	ResultSuccess    = "0"
	ResultAuthorized = "9000"
)

type Config struct {
	Endpoint    string
	PartnerCode string
	AccessKey   string
	SecretKey   string
	RedirectURL string
	IPNURL      string
	Lang        string
	Timeout     time.Duration
}

type CreateRequest struct {
	OrderID   string
	RequestID string
	Amount    int64
	OrderInfo string
	ExtraData string
}

type createBody struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	Lang        string `json:"lang"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
}

type CreateResponse struct {
	PartnerCode  string      `json:"partnerCode"`
	OrderID      string      `json:"orderId"`
	RequestID    string      `json:"requestId"`
	Amount       json.Number `json:"amount"`
	ResponseTime json.Number `json:"responseTime"`
	Message      string      `json:"message"`
	ResultCode   json.Number `json:"resultCode"`
	PayURL       string      `json:"payUrl"`
	Deeplink     string      `json:"deeplink"`
	QRCodeURL    string      `json:"qrCodeUrl"`
	Raw          []byte      `json:"-"`
}

// IPN is the notification MoMo posts to ipnUrl. Numeric fields stay
// json.Number so the signature is checked against the exact text received.
type IPN struct {
	PartnerCode  string      `json:"partnerCode"`
	OrderID      string      `json:"orderId"`
	RequestID    string      `json:"requestId"`
	Amount       json.Number `json:"amount"`
	OrderInfo    string      `json:"orderInfo"`
	OrderType    string      `json:"orderType"`
	TransID      json.Number `json:"transId"`
	ResultCode   json.Number `json:"resultCode"`
	Message      string      `json:"message"`
	PayType      string      `json:"payType"`
	ResponseTime json.Number `json:"responseTime"`
	ExtraData    string      `json:"extraData"`
	Signature    string      `json:"signature"`
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Lang == "" {
		cfg.Lang = "vi"
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

func (c *Client) PartnerCode() string {
	return c.cfg.PartnerCode
}

// CreateSignaturePayload lists the fields in the order MoMo hashes them.
// Any other order produces a signature the gateway silently rejects.
func (c *Client) CreateSignaturePayload(req CreateRequest) string {
	return "accessKey=" + c.cfg.AccessKey +
		"&amount=" + strconv.FormatInt(req.Amount, 10) +
		"&extraData=" + req.ExtraData +
		"&ipnUrl=" + c.cfg.IPNURL +
		"&orderId=" + req.OrderID +
		"&orderInfo=" + req.OrderInfo +
		"&partnerCode=" + c.cfg.PartnerCode +
		"&redirectUrl=" + c.cfg.RedirectURL +
		"&requestId=" + req.RequestID +
		"&requestType=" + requestType
}

func (c *Client) IPNSignaturePayload(n IPN) string {
	return "accessKey=" + c.cfg.AccessKey +
		"&amount=" + n.Amount.String() +
		"&extraData=" + n.ExtraData +
		"&message=" + n.Message +
		"&orderId=" + n.OrderID +
		"&orderInfo=" + n.OrderInfo +
		"&orderType=" + n.OrderType +
		"&partnerCode=" + n.PartnerCode +
		"&payType=" + n.PayType +
		"&requestId=" + n.RequestID +
		"&responseTime=" + n.ResponseTime.String() +
		"&resultCode=" + n.ResultCode.String() +
		"&transId=" + n.TransID.String()
}

func (c *Client) Sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.SecretKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyIPN checks the partner code and the HMAC signature of n.
func (c *Client) VerifyIPN(n IPN) bool {
	if n.Signature == "" || n.PartnerCode != c.cfg.PartnerCode {
		return false
	}
	want := c.Sign(c.IPNSignaturePayload(n))
	return hmac.Equal([]byte(want), []byte(strings.ToLower(n.Signature)))
}

// Create asks the gateway for a payment link. A non-zero resultCode is a
// ProviderError carrying the gateway message; transport failures wrap
// ErrProviderUnavailable.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	body := createBody{
		PartnerCode: c.cfg.PartnerCode,
		RequestID:   req.RequestID,
		Amount:      req.Amount,
		OrderID:     req.OrderID,
		OrderInfo:   req.OrderInfo,
		RedirectURL: c.cfg.RedirectURL,
		IPNURL:      c.cfg.IPNURL,
		Lang:        c.cfg.Lang,
		ExtraData:   req.ExtraData,
		RequestType: requestType,
		Signature:   c.Sign(c.CreateSignaturePayload(req)),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal momo request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.Endpoint, "/")+createPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build momo request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		slog.Error("momo create call failed", "order_id", req.OrderID, "error", err)
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", pkgerrors.ErrProviderUnavailable, err)
	}

	var out CreateResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.ResultCode == "" {
		return nil, &pkgerrors.ProviderError{Provider: "momo", Code: strconv.Itoa(resp.StatusCode), Message: "momo returned an unreadable response"}
	}
	out.Raw = raw
	if out.ResultCode.String() != ResultSuccess {
		return &out, &pkgerrors.ProviderError{Provider: "momo", Code: out.ResultCode.String(), Message: out.Message}
	}
	return &out, nil
}
