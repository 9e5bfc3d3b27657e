package netgsm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := New(Config{
		SendURL:    srv.URL + "/sms/send/get",
		BalanceURL: srv.URL + "/balance/list/get",
		Usercode:   "testuser",
		Password:   "testpass",
		Header:     "TESTHEADER",
		Timeout:    2 * time.Second,
	}, nil)
	return client, srv
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"+905551234567", "5551234567", true},
		{"905551234567", "5551234567", true},
		{"05551234567", "5551234567", true},
		{"5551234567", "5551234567", true},
		{"0555 123 45 67", "5551234567", true},
		{"(0555) 123-45-67", "5551234567", true},
		{"4441234567", "4441234567", false},
		{"555123456", "555123456", false},
		{"", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizePhone(tt.in)
		assert.Equalf(t, tt.wantOK, ok, "NormalizePhone(%q) ok", tt.in)
		assert.Equalf(t, tt.want, got, "NormalizePhone(%q)", tt.in)
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	first, ok := NormalizePhone("+90 (555) 123 45 67")
	require.True(t, ok)
	second, ok := NormalizePhone(first)
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestSendSuccess(t *testing.T) {
	var gotQuery map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte("1234567"))
	})

	res := client.Send(context.Background(), "05551234567", "deneme mesajı")
	assert.True(t, res.OK)
	assert.Equal(t, "1234567", res.MessageID)
	assert.Empty(t, res.Reason)

	assert.Equal(t, "testuser", gotQuery["usercode"])
	assert.Equal(t, "testpass", gotQuery["password"])
	assert.Equal(t, "5551234567", gotQuery["gsmno"])
	assert.Equal(t, "deneme mesajı", gotQuery["message"])
	assert.Equal(t, "TESTHEADER", gotQuery["msgheader"])
	assert.Equal(t, "0", gotQuery["filter"])
}

func TestSendProviderErrorCodes(t *testing.T) {
	tests := []struct {
		code   string
		reason string
	}{
		{"51", "Bakiye yetersiz"},
		{"30", "Geçersiz kullanıcı adı, şifre veya API erişim izni yok"},
		{"40", "Mesaj başlığı (gönderici adı) sistemde tanımlı değil"},
	}
	for _, tt := range tests {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(tt.code))
		})
		res := client.Send(context.Background(), "5551234567", "x")
		assert.False(t, res.OK)
		assert.Equal(t, CategoryRejected, res.Category)
		assert.Equal(t, tt.reason, res.Reason)
	}
}

func TestSendUnknownErrorCode(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("99"))
	})
	res := client.Send(context.Background(), "5551234567", "x")
	assert.False(t, res.OK)
	assert.Equal(t, CategoryRejected, res.Category)
	assert.Equal(t, "Bilinmeyen hata kodu: 99", res.Reason)
}

func TestSendShortNumericBodyIsNotAMessageID(t *testing.T) {
	// Five digits or fewer is an error code, not an accepted send.
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("12345"))
	})
	res := client.Send(context.Background(), "5551234567", "x")
	assert.False(t, res.OK)
	assert.Equal(t, CategoryRejected, res.Category)
}

func TestSendInvalidPhoneSkipsRequest(t *testing.T) {
	hits := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte("1234567"))
	})

	res := client.Send(context.Background(), "12345", "x")
	assert.False(t, res.OK)
	assert.Equal(t, CategoryInvalidPhone, res.Category)
	assert.Equal(t, 0, hits, "invalid numbers must never reach the provider")
}

func TestSendGatewayUnreachable(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("1234567"))
	})
	srv.Close()

	res := client.Send(context.Background(), "5551234567", "x")
	assert.False(t, res.OK)
	assert.Equal(t, CategoryUnreachable, res.Category)
	assert.NotEmpty(t, res.Reason)
}

func TestQueryBalance(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("150.75"))
	})

	bal, err := client.QueryBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 150.75, bal.Amount)
	assert.Equal(t, "TL", bal.Currency)
}

func TestQueryBalanceNonNumeric(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("60 user not found"))
	})

	_, err := client.QueryBalance(context.Background())
	require.Error(t, err)
	var balErr *BalanceError
	assert.ErrorAs(t, err, &balErr)
}

func TestParseSendResponseTrimsWhitespace(t *testing.T) {
	res := parseSendResponse("  8812345 \n")
	assert.True(t, res.OK)
	assert.Equal(t, "8812345", res.MessageID)
}
