// Package card talks to the scratch-card charging aggregator.
package card

import (
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
)

const chargePath = "/chargingws/v2"

type Config struct {
	BaseURL    string
	PartnerID  string
	PartnerKey string
	Timeout    time.Duration
}

type ChargeRequest struct {
	Telco       string
	Code        string
	Serial      string
	Amount      int64
	RequestID   string
	CallbackURL string
}

// ChargeResponse is the synchronous answer to a charging call. The final
// outcome arrives later on the callback URL.
type ChargeResponse struct {
	TransID   any         `json:"trans_id"`
	RequestID string      `json:"request_id"`
	Status    json.Number `json:"status"`
	Message   string      `json:"message"`
	Raw       []byte      `json:"-"`
}

// Accepted reports whether the aggregator took the card for processing.
// 1 and 2 are immediate outcomes, 99 means the result will be called back.
func (r *ChargeResponse) Accepted() bool {
	switch r.Status.String() {
	case "1", "2", "99":
		return true
	}
	return false
}

func (r *ChargeResponse) Reference() string {
	if r.TransID == nil {
		return ""
	}
	switch v := r.TransID.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// Sign is md5(partner_key + code + serial) in lower-case hex. The aggregator
// uses the same value as callback_sign on its notifications.
func (c *Client) Sign(code, serial string) string {
	sum := md5.Sum([]byte(c.cfg.PartnerKey + code + serial))
	return hex.EncodeToString(sum[:])
}

func (c *Client) VerifyCallback(code, serial, sign string) bool {
	if sign == "" {
		return false
	}
	want := c.Sign(code, serial)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(sign))) == 1
}

// Charge submits a card. Transport failures and timeouts wrap
// ErrProviderUnavailable; an HTTP error status or an unparseable body is a
// ProviderError.
func (c *Client) Charge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	form := url.Values{}
	form.Set("telco", req.Telco)
	form.Set("code", req.Code)
	form.Set("serial", req.Serial)
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("request_id", req.RequestID)
	form.Set("partner_id", c.cfg.PartnerID)
	form.Set("command", "charging")
	form.Set("callback_url", req.CallbackURL)
	form.Set("sign", c.Sign(req.Code, req.Serial))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+chargePath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build charging request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		slog.Error("card provider call failed", "request_id", req.RequestID, "timeout", isTimeout(err), "error", err)
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", pkgerrors.ErrProviderUnavailable, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &pkgerrors.ProviderError{Provider: "card", Code: strconv.Itoa(resp.StatusCode), Message: "card provider returned HTTP " + strconv.Itoa(resp.StatusCode)}
	}

	var out ChargeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &pkgerrors.ProviderError{Provider: "card", Code: "bad_response", Message: "card provider returned an unreadable response"}
	}
	out.Raw = body
	return &out, nil
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
