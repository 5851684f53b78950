package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/net/http/httpguts"

	"github.com/suar-net/suar-relay/internal/config"
	"github.com/suar-net/suar-relay/internal/model"
)

var allowedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodPatch:   true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// IsAllowedMethod reports whether method, in any case, may be relayed.
func IsAllowedMethod(method string) bool {
	return allowedMethods[strings.ToUpper(method)]
}

type OutboundRequest struct {
	Method  string
	URL     *url.URL
	Headers http.Header
	Body    []byte
}

func newOutboundRequest(dto *model.DTOProxyRequest) (*OutboundRequest, error) {
	// Scheme check comes first: an unsafe target never reaches the network.
	if !IsSafeURL(dto.URL) {
		return nil, ErrInvalidTarget
	}
	parsedURL, err := url.Parse(dto.URL)
	if err != nil {
		return nil, ErrInvalidTarget
	}

	method := strings.ToUpper(strings.TrimSpace(dto.Method))
	if method == "" {
		method = http.MethodGet
	}
	if !allowedMethods[method] {
		return nil, fmt.Errorf("%w: invalid or unsupported HTTP method: %s", ErrInvalidInput, method)
	}

	if len(dto.Params) > 0 {
		q := parsedURL.Query()
		for key, value := range dto.Params {
			addQueryParam(q, key, value)
		}
		parsedURL.RawQuery = q.Encode()
	}

	headers := make(http.Header, len(dto.Headers))
	for key, value := range dto.Headers {
		if !httpguts.ValidHeaderFieldName(key) {
			return nil, fmt.Errorf("%w: invalid header name %q", ErrInvalidInput, key)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, fmt.Errorf("%w: invalid value for header %q", ErrInvalidInput, key)
		}
		headers.Set(key, value)
	}

	body, contentType, err := encodeBody(dto.Body)
	if err != nil {
		return nil, err
	}
	if contentType != "" && headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", contentType)
	}

	return &OutboundRequest{
		Method:  method,
		URL:     parsedURL,
		Headers: headers,
		Body:    body,
	}, nil
}

// addQueryParam merges one params entry into q. Null values are dropped and
// arrays become repeated keys.
func addQueryParam(q url.Values, key string, value any) {
	switch v := value.(type) {
	case nil:
		return
	case []any:
		q.Del(key)
		for _, elem := range v {
			if elem != nil {
				q.Add(key, paramString(elem))
			}
		}
	default:
		q.Set(key, paramString(v))
	}
}

func paramString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// encodeBody turns the JSON body of a relay description into the bytes sent
// upstream. A JSON string is sent as raw text; any other JSON value is sent
// as JSON.
func encodeBody(raw json.RawMessage) ([]byte, string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, "", nil
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, "", fmt.Errorf("%w: malformed body: %v", ErrInvalidInput, err)
		}
		return []byte(text), "", nil
	}
	return trimmed, "application/json", nil
}

// HTTPProxyService is the relay engine. Each call makes exactly one outbound
// attempt bounded by the configured timeout and body ceiling.
type HTTPProxyService struct {
	httpClient *http.Client
	cfg        config.RelayConfig
	recorder   *HistoryRecorder
}

func NewHTTPProxyService(cfg config.RelayConfig, recorder *HistoryRecorder) *HTTPProxyService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultRelayTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = config.DefaultRelayMaxBodyBytes
	}

	// Create a custom transport with optimized settings
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	s := &HTTPProxyService{
		cfg:      cfg,
		recorder: recorder,
	}
	s.httpClient = &http.Client{
		// Spans are recorded but no trace context is injected, so the caller's
		// headers reach the target exactly as given.
		Transport: otelhttp.NewTransport(transport,
			otelhttp.WithPropagators(propagation.NewCompositeTextMapPropagator()),
		),
		CheckRedirect: s.checkRedirect,
	}
	return s
}

func (s *HTTPProxyService) checkRedirect(req *http.Request, via []*http.Request) error {
	if s.cfg.MaxRedirects <= 0 {
		return http.ErrUseLastResponse
	}
	if len(via) >= s.cfg.MaxRedirects {
		return fmt.Errorf("stopped after %d redirects", len(via))
	}
	if !IsSafeURL(req.URL.String()) {
		return ErrUnsafeRedirect
	}
	return nil
}

// Relay validates dto, executes it on behalf of identity and hands a history
// record to the recorder. Any status the target answers with is a successful
// relay; only transport failures return an error.
func (s *HTTPProxyService) Relay(ctx context.Context, identity *model.Identity, dto *model.DTOProxyRequest) (*model.DTOProxyResponse, error) {
	outboundRequest, err := newOutboundRequest(dto)
	if err != nil {
		return nil, err
	}

	dtoResponse, err := s.Execute(ctx, outboundRequest)
	if err != nil {
		return nil, err
	}

	if s.recorder != nil && identity != nil {
		s.recorder.Record(ctx, newHistoryRecord(identity, dto, outboundRequest, dtoResponse))
	}

	return dtoResponse, nil
}

func (s *HTTPProxyService) Execute(ctx context.Context, outboundRequest *OutboundRequest) (*model.DTOProxyResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var bodyReader io.Reader
	if len(outboundRequest.Body) > 0 {
		bodyReader = bytes.NewReader(outboundRequest.Body)
	}

	httpRequest, err := http.NewRequestWithContext(
		reqCtx,
		outboundRequest.Method,
		outboundRequest.URL.String(),
		bodyReader,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create http request: %v", ErrRelayFailed, err)
	}
	httpRequest.Header = outboundRequest.Headers
	if host := outboundRequest.Headers.Get("Host"); host != "" {
		httpRequest.Host = host
	}

	startTime := time.Now()
	httpResponse, err := s.httpClient.Do(httpRequest)
	if err != nil {
		return nil, transportError(err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.ContentLength > s.cfg.MaxBodyBytes {
		return nil, fmt.Errorf("%w: %w: content-length %d", ErrRelayFailed, ErrResponseTooLarge, httpResponse.ContentLength)
	}

	// Read one byte past the ceiling so an oversize body is detected, not truncated.
	bodyBytes, err := io.ReadAll(io.LimitReader(httpResponse.Body, s.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, transportError(err)
	}
	if int64(len(bodyBytes)) > s.cfg.MaxBodyBytes {
		return nil, fmt.Errorf("%w: %w: more than %d bytes", ErrRelayFailed, ErrResponseTooLarge, s.cfg.MaxBodyBytes)
	}
	duration := time.Since(startTime)

	body, bodyEncoding := decodeBody(bodyBytes)
	return &model.DTOProxyResponse{
		Status:       httpResponse.StatusCode,
		StatusText:   statusText(httpResponse),
		Headers:      flattenHeaders(httpResponse.Header),
		Body:         body,
		BodyEncoding: bodyEncoding,
		Time:         duration.Milliseconds(),
	}, nil
}

func transportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w: %v", ErrRelayFailed, ErrRequestTimeout, err)
	case errors.Is(err, ErrUnsafeRedirect):
		return fmt.Errorf("%w: %w", ErrRelayFailed, err)
	default:
		return fmt.Errorf("%w: failed to execute request to target server: %v", ErrRelayFailed, err)
	}
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func flattenHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for key, values := range h {
		headers[strings.ToLower(key)] = strings.Join(values, ", ")
	}
	return headers
}

// decodeBody returns a JSON payload as-is and wraps text as a JSON string.
// Binary payloads, and text Postgres cannot hold in jsonb (NUL), are returned
// as a base64 JSON string with encoding "base64".
func decodeBody(body []byte) (json.RawMessage, string) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) && !bytes.Contains(trimmed, nulEscape) {
		return json.RawMessage(trimmed), ""
	}
	if utf8.Valid(body) && bytes.IndexByte(body, 0) < 0 {
		encoded, _ := json.Marshal(string(body))
		return encoded, ""
	}
	encoded, _ := json.Marshal(base64.StdEncoding.EncodeToString(body))
	return encoded, BodyEncodingBase64
}

// BodyEncodingBase64 marks a body carried as base64 text.
const BodyEncodingBase64 = "base64"

var nulEscape = []byte(`\u0000`)

func newHistoryRecord(identity *model.Identity, dto *model.DTOProxyRequest, out *OutboundRequest, resp *model.DTOProxyResponse) *model.HistoryRecord {
	record := &model.HistoryRecord{
		UserID:               identity.ID,
		URL:                  dto.URL,
		Method:               out.Method,
		RequestBody:          storableJSON(nonNullJSON(dto.Body)),
		Status:               resp.Status,
		StatusText:           resp.StatusText,
		ResponseBody:         resp.Body,
		ResponseBodyEncoding: resp.BodyEncoding,
		TimeMs:               resp.Time,
	}
	if len(dto.Headers) > 0 {
		headers, _ := json.Marshal(dto.Headers)
		record.RequestHeaders = storableJSON(headers)
	}
	if len(dto.Params) > 0 {
		params, _ := json.Marshal(dto.Params)
		record.RequestParams = storableJSON(params)
	}
	responseHeaders, _ := json.Marshal(resp.Headers)
	record.ResponseHeaders = storableJSON(responseHeaders)
	return record
}

func nonNullJSON(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return trimmed
}

// storableJSON re-encodes a JSON value holding a \u0000 escape as a JSON
// string of its text, which jsonb accepts.
func storableJSON(raw json.RawMessage) json.RawMessage {
	if !bytes.Contains(raw, nulEscape) {
		return raw
	}
	encoded, _ := json.Marshal(string(raw))
	return encoded
}
