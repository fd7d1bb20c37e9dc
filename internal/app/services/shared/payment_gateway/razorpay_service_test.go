package payment_gateway

import (
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sign(secret, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestRazorpayService_CreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 50000, body["amount"])
		assert.Equal(t, "INR", body["currency"])

		w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
		_, _ = w.Write([]byte(`{"id":"order_ABC123","amount":50000,"currency":"INR","receipt":"receipt_a1","status":"created"}`))
	}))
	defer server.Close()

	svc := NewRazorpayService(server.URL+"/", "rzp_test_key", "secret", 0, 0, zap.NewNop(), WithHTTPClient(server.Client()))

	order, err := svc.CreateOrder(context.Background(), 50000, "INR", "receipt_a1")
	require.NoError(t, err)
	assert.Equal(t, "order_ABC123", order.ID)
	assert.Equal(t, int64(50000), order.Amount)
}

func TestRazorpayService_CreateOrderNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer server.Close()

	svc := NewRazorpayService(server.URL, "key", "secret", 0, 0, zap.NewNop(), WithHTTPClient(server.Client()))

	_, err := svc.CreateOrder(context.Background(), 1, "INR", "receipt")
	require.Error(t, err)
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeTransientGatewayError))
}

func TestRazorpayService_CreateOrderTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	svc := NewRazorpayService(server.URL, "key", "secret", 0, 0, zap.NewNop(), WithHTTPClient(server.Client()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.CreateOrder(ctx, 50000, "INR", "receipt")
	require.Error(t, err)
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeGatewayOutcomeUnknown))
	assert.True(t, exceptions.IsRetryable(err))
}

func TestRazorpayService_VerifySignature(t *testing.T) {
	svc := NewRazorpayService("http://localhost", "key", "secret", 0, 0, zap.NewNop())

	valid := sign("secret", "order_1", "pay_1")

	ok, err := svc.VerifySignature("order_1", "pay_1", valid)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifySignature("order_1", "pay_2", valid)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.VerifySignature("order_1", "pay_1", sign("other", "order_1", "pay_1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRazorpayService_VerifySignatureWithoutSecret(t *testing.T) {
	svc := NewRazorpayService("http://localhost", "key", "", 0, 0, zap.NewNop())

	ok, err := svc.VerifySignature("order_1", "pay_1", "00")
	assert.False(t, ok)
	assert.Error(t, err)
}
