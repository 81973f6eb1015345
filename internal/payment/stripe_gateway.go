package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spalena53-be/internal/logger"

	"go.uber.org/zap"
)

const (
	stripeBaseURL = "https://api.stripe.com"
	stripeVersion = "2025-08-27.basil"
)

type stripeGateway struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// ----------------- Constructor -----------------

func NewStripeGateway(apiKey string) Gateway {
	if apiKey == "" {
		logger.L().Warn("Stripe secret key is empty")
	}

	return &stripeGateway{
		apiKey:  apiKey,
		baseURL: stripeBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ----------------- CreateIntent -----------------

func (s *stripeGateway) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("gateway", "stripe"),
		zap.String("method", "CreateIntent"),
		zap.Int64("amount", params.Amount),
	)

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.Amount, 10))
	form.Set("currency", strings.ToLower(params.Currency))
	if params.Description != "" {
		form.Set("description", params.Description)
	}
	if params.ReceiptEmail != "" {
		form.Set("receipt_email", params.ReceiptEmail)
	}

	for k, v := range params.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	log.Info("Sending payment intent request to Stripe")

	intent, err := s.do(ctx, http.MethodPost, "/v1/payment_intents", form)
	if err != nil {
		log.Error("Stripe create intent failed", zap.Error(err))
		return nil, err
	}

	log.Info("Stripe payment intent created",
		zap.String("intent_id", intent.ID),
		zap.String("status", intent.Status),
	)
	return intent, nil
}

// ----------------- RetrieveIntent -----------------

func (s *stripeGateway) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	if intentID == "" || strings.ContainsAny(intentID, "/?#") {
		return nil, fmt.Errorf("%w: invalid intent id", ErrGateway)
	}

	intent, err := s.do(ctx, http.MethodGet, "/v1/payment_intents/"+intentID, nil)
	if err != nil {
		logger.FromCtx(ctx).Error("Stripe retrieve intent failed",
			zap.String("intent_id", intentID),
			zap.Error(err),
		)
		return nil, err
	}
	return intent, nil
}

func (s *stripeGateway) do(ctx context.Context, method, path string, form url.Values) (*Intent, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Stripe-Version", stripeVersion)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read stripe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var se stripeError
		if json.Unmarshal(bodyBytes, &se) == nil && se.Error.Message != "" {
			return nil, fmt.Errorf("%w: %s (%s)", ErrGateway, se.Error.Message, se.Error.Type)
		}
		return nil, fmt.Errorf("%w: http %d", ErrGateway, resp.StatusCode)
	}

	var intent Intent
	if err := json.Unmarshal(bodyBytes, &intent); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrGateway, err)
	}
	intent.Raw = json.RawMessage(bodyBytes)
	return &intent, nil
}
