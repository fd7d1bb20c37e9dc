package payment_gateway

import (
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/dto/requests"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"ambica-diagnostic-service/internal/pkg/utils"
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const razorpayOrdersPath = "/orders"

type razorpayGatewayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

type razorpayService struct {
	BaseUrl    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	limiter    *rate.Limiter
	Log        *zap.Logger
}

type Option func(*razorpayService)

func WithHTTPClient(client *http.Client) Option {
	return func(s *razorpayService) {
		s.httpClient = client
	}
}

func NewRazorpayService(baseUrl, keyID, keySecret string, requestsPerSecond float64, burst int, logger *zap.Logger, opts ...Option) contracts.PaymentGateway {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	s := &razorpayService{
		BaseUrl:   strings.TrimRight(baseUrl, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(limit, burst),
		Log:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder registers an order with the gateway. The caller bounds ctx;
// a deadline hit after the request was sent means the order may exist.
func (s *razorpayService) CreateOrder(ctx context.Context, amountInMinorUnits int64, currency, receipt string) (*models.GatewayOrder, error) {
	requestID := utils.GetRequestID(ctx)
	s.Log.Info("razorpayService.CreateOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAmountKey, amountInMinorUnits),
	)

	if err := s.limiter.Wait(ctx); err != nil {
		s.Log.Warn("razorpayService.CreateOrder rate limiter wait aborted",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPaymentGatewayRequest(err)
	}

	requestJSON, err := json.Marshal(&requests.GatewayCreateOrder{
		Amount:         amountInMinorUnits,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, s.BaseUrl+razorpayOrdersPath, bytes.NewBuffer(requestJSON))
	if err != nil {
		return nil, exceptions.ErrPaymentGatewayRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	req.SetBasicAuth(s.keyID, s.keySecret)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			s.Log.Error("razorpayService.CreateOrder request timed out",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
				zap.Error(err),
			)
			return nil, exceptions.ErrPaymentGatewayTimeout(err)
		}
		s.Log.Error("razorpayService.CreateOrder error sending request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPaymentGatewayRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		var body razorpayGatewayErrorBody
		_ = json.NewDecoder(resp.Body).Decode(&body)
		s.Log.Error("razorpayService.CreateOrder gateway returned non-OK status",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
			zap.String(constvars.LoggingErrorTypeKey, body.Error.Code),
			zap.String("description", body.Error.Description),
		)
		return nil, exceptions.ErrPaymentGatewayStatus(fmt.Errorf("%s: %s", body.Error.Code, body.Error.Description), resp.StatusCode)
	}

	order := new(models.GatewayOrder)
	err = json.NewDecoder(resp.Body).Decode(order)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, exceptions.ErrPaymentGatewayTimeout(err)
		}
		return nil, exceptions.ErrPaymentGatewayDecode(err)
	}
	if order.ID == "" {
		return nil, exceptions.ErrPaymentGatewayDecode(errors.New("gateway order id is empty"))
	}

	s.Log.Info("razorpayService.CreateOrder succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderRefKey, order.ID),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	return order, nil
}

// VerifySignature checks hex(HMAC-SHA256(orderRef|paymentRef, keySecret))
// against signature in constant time.
func (s *razorpayService) VerifySignature(orderRef, paymentRef, signature string) (bool, error) {
	if s.keySecret == "" {
		return false, exceptions.ErrSignatureVerifier(errors.New("gateway key secret is not configured"))
	}

	mac := hmac.New(sha256.New, []byte(s.keySecret))
	if _, err := mac.Write([]byte(orderRef + "|" + paymentRef)); err != nil {
		return false, exceptions.ErrSignatureVerifier(err)
	}
	expectedSignature := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(expectedSignature)), nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
