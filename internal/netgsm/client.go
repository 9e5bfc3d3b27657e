// Package netgsm talks to the NETGSM HTTP SMS API.
package netgsm

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Category classifies a failed delivery attempt.
type Category string

const (
	CategoryInvalidPhone Category = "invalid_phone_number"
	CategoryUnreachable  Category = "gateway_unreachable"
	CategoryRejected     Category = "delivery_rejected"
	CategoryNoContact    Category = "missing_contact_info"
)

// Result is the outcome of a send attempt. Delivery failures are reported
// here as values; Send never returns an error, so a failed SMS cannot abort
// the operation that triggered it.
type Result struct {
	OK        bool
	MessageID string
	Category  Category
	Reason    string
}

// Failure builds a failed result.
func Failure(cat Category, reason string) Result {
	return Result{Category: cat, Reason: reason}
}

// Balance is the provider account balance.
type Balance struct {
	Amount   float64
	Currency string
}

// Provider error codes, as documented by NETGSM.
var errorCodes = map[string]string{
	"20": "Mesaj metnindeki problemden dolayı gönderilemedi",
	"30": "Geçersiz kullanıcı adı, şifre veya API erişim izni yok",
	"40": "Mesaj başlığı (gönderici adı) sistemde tanımlı değil",
	"50": "Abone olunmayan hesaba ait şifre hatalı",
	"51": "Bakiye yetersiz",
	"60": "Gönderim sırasında numara hatası alındı",
	"70": "Hatalı sorgulama, parametre hatalı veya zorunlu alan eksik",
	"80": "Gönderim sırasında sistem hatası oluştu",
	"85": "Mesajda izin verilmeyen karakter bulunuyor",
}

// Config holds provider endpoints and credentials.
type Config struct {
	SendURL    string
	BalanceURL string
	Usercode   string
	Password   string
	Header     string
	Timeout    time.Duration
}

// Client calls the NETGSM API. Construct one and pass it where needed;
// there is deliberately no package-level instance.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

// New creates a client. Timeout defaults to 30 seconds.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger.With("component", "netgsm"),
	}
}

// NormalizePhone reduces a raw phone number to the 10-digit Turkish mobile
// form: digits only, the 90 country code and a single leading zero removed.
// ok is false when the result is not 10 digits starting with 5.
func NormalizePhone(raw string) (clean string, ok bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	clean = b.String()

	clean = strings.TrimPrefix(clean, "90")
	if strings.HasPrefix(clean, "0") {
		clean = clean[1:]
	}

	if len(clean) != 10 || !strings.HasPrefix(clean, "5") {
		return clean, false
	}
	return clean, true
}

// Send delivers one message. The phone number may carry a country code,
// leading zero or separators; it is normalized before anything is sent.
func (c *Client) Send(ctx context.Context, phone, message string) Result {
	clean, ok := NormalizePhone(phone)
	if !ok {
		return Failure(CategoryInvalidPhone, "Geçersiz telefon numarası formatı")
	}

	params := url.Values{}
	params.Set("usercode", c.cfg.Usercode)
	params.Set("password", c.cfg.Password)
	params.Set("gsmno", clean)
	params.Set("message", message)
	params.Set("msgheader", c.cfg.Header)
	params.Set("filter", "0")
	params.Set("startdate", "")
	params.Set("stopdate", "")

	body, err := c.get(ctx, c.cfg.SendURL, params)
	if err != nil {
		c.log.Error("sms send failed", "phone", clean, "err", err)
		return Failure(CategoryUnreachable, "API bağlantı hatası: "+err.Error())
	}

	result := parseSendResponse(body)
	if result.OK {
		c.log.Info("sms sent", "phone", clean, "message_id", result.MessageID)
	} else {
		c.log.Error("sms rejected", "phone", clean, "reason", result.Reason)
	}
	return result
}

// parseSendResponse interprets the provider's plain-text reply. A purely
// numeric body longer than 5 characters is the message ID of an accepted
// send; anything else is an error code.
func parseSendResponse(body string) Result {
	body = strings.TrimSpace(body)

	if len(body) > 5 && isDigits(body) {
		return Result{OK: true, MessageID: body}
	}

	reason, known := errorCodes[body]
	if !known {
		reason = "Bilinmeyen hata kodu: " + body
	}
	return Failure(CategoryRejected, reason)
}

// QueryBalance fetches the remaining credit on the provider account.
func (c *Client) QueryBalance(ctx context.Context) (Balance, error) {
	params := url.Values{}
	params.Set("usercode", c.cfg.Usercode)
	params.Set("password", c.cfg.Password)

	body, err := c.get(ctx, c.cfg.BalanceURL, params)
	if err != nil {
		return Balance{}, err
	}

	body = strings.TrimSpace(body)
	amount, err := strconv.ParseFloat(body, 64)
	if err != nil || !isDigits(strings.ReplaceAll(body, ".", "")) {
		return Balance{}, &BalanceError{Body: body}
	}
	return Balance{Amount: amount, Currency: "TL"}, nil
}

// BalanceError reports a non-numeric balance response.
type BalanceError struct {
	Body string
}

func (e *BalanceError) Error() string {
	return "bakiye sorgulanamadı: " + e.Body
}

func (c *Client) get(ctx context.Context, rawURL string, params url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
