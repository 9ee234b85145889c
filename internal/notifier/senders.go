package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

//go:generate mockery --name Publisher --filename publisher.go

// ErrUnexpectedStatus is returned when notification endpoint responds with non 2xx status.
var ErrUnexpectedStatus = errors.New("unexpected notification endpoint response status")

// maxResponseSize limits how much of endpoint response is read for the receipt.
const maxResponseSize = 64 << 10

// endpointResponse is optional JSON body of accepted delivery.
type endpointResponse struct {
	Notified *int32 `json:"notified"`
}

// HTTPSender posts restock payloads as JSON to notification endpoint.
type HTTPSender struct {
	client    *http.Client
	url       string
	userAgent string
}

// NewHTTPSender returns new HTTPSender.
func NewHTTPSender(client *http.Client, url, userAgent string) HTTPSender {
	return HTTPSender{
		client:    client,
		url:       url,
		userAgent: userAgent,
	}
}

// Send posts payload to the endpoint. Only 2xx responses are treated as delivered.
// Subscribers count is taken from "notified" field of JSON response, other bodies leave it unknown.
func (s HTTPSender) Send(ctx context.Context, payload models.RestockPayload) (Receipt, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Receipt{}, fmt.Errorf("can't marshal restock payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("can't build http request: %w", err)
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("can't get http response: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Receipt{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var response endpointResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&response); err != nil {
		return Receipt{}, nil
	}
	if response.Notified != nil && *response.Notified < 0 {
		return Receipt{}, nil
	}

	return Receipt{Notified: response.Notified}, nil
}

// Publisher is RabbitMQ messages publisher.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message []byte) error
}

// RabbitMQSender publishes restock payloads to routing key.
type RabbitMQSender struct {
	publisher  Publisher
	routingKey string
}

// NewRabbitMQSender returns new RabbitMQSender.
func NewRabbitMQSender(publisher Publisher, routingKey string) RabbitMQSender {
	return RabbitMQSender{
		publisher:  publisher,
		routingKey: routingKey,
	}
}

// Send publishes payload as JSON message.
// Publishing doesn't tell how many subscribers were reached, so receipt is always empty.
func (s RabbitMQSender) Send(ctx context.Context, payload models.RestockPayload) (Receipt, error) {
	msg, err := json.Marshal(payload)
	if err != nil {
		return Receipt{}, fmt.Errorf("can't marshal restock payload: %w", err)
	}

	if err := s.publisher.Publish(ctx, s.routingKey, msg); err != nil {
		return Receipt{}, fmt.Errorf("can't publish restock payload: %w", err)
	}

	return Receipt{}, nil
}

// LogSender only logs payloads. It's used in test mode.
type LogSender struct {
	logger *zerolog.Logger
}

// NewLogSender returns new LogSender.
func NewLogSender(logger *zerolog.Logger) LogSender {
	return LogSender{
		logger: logger,
	}
}

// Send logs payload without credential.
func (s LogSender) Send(_ context.Context, payload models.RestockPayload) (Receipt, error) {
	s.logger.Info().
		Str("brand", payload.Brand).
		Strs("products", lo.Map(payload.Products, func(p models.PayloadProduct, _ int) string { return p.Name })).
		Strs("urls", lo.Map(payload.Products, func(p models.PayloadProduct, _ int) string { return p.URL })).
		Msg("restock notification not sent in test mode")

	return Receipt{}, nil
}
