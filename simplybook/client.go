package simplybook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"schallwerk/apperr"
	"schallwerk/logger"
	"schallwerk/model"
)

// Client speaks SimplyBook's JSON-RPC 2.0 API. Two independent bearer tokens
// are kept: the service token (API-key grant) for public catalog methods and
// the user token (credential grant) for admin booking methods.
type Client struct {
	endpoint   string
	company    string
	httpClient *http.Client

	serviceToken *tokenCache
	userToken    *tokenCache

	now func() time.Time
}

// Config carries the SimplyBook credentials.
type Config struct {
	Endpoint string
	Company  string
	APIKey   string
	User     string
	Password string
}

// NewClient builds a SimplyBook client with both token grants wired.
func NewClient(cfg Config) *Client {
	c := &Client{
		endpoint:   cfg.Endpoint,
		company:    cfg.Company,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
	c.serviceToken = &tokenCache{fetch: func(ctx context.Context) (string, error) {
		return c.obtainToken(ctx, "getToken", []interface{}{cfg.Company, cfg.APIKey})
	}}
	c.userToken = &tokenCache{fetch: func(ctx context.Context) (string, error) {
		return c.obtainToken(ctx, "getUserToken", []interface{}{cfg.Company, cfg.User, cfg.Password})
	}}
	return c
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one JSON-RPC round trip against path with the given headers.
func (c *Client) call(ctx context.Context, path string, headers map[string]string, method string, params []interface{}, out interface{}) error {
	reqBody := rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1}
	buf, err := json.Marshal(reqBody)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to encode simplybook request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(buf))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to build simplybook request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "simplybook request failed", err)
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "failed to decode simplybook response", err)
	}
	if rpcResp.Error != nil {
		logger.Warn("[SimplyBook] rpc error",
			logger.String("method", method),
			logger.Int("code", rpcResp.Error.Code),
			logger.String("message", rpcResp.Error.Message))
		return apperr.Ef(apperr.KindUnavailable, "simplybook error: %s", rpcResp.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return apperr.Wrap(apperr.KindUnavailable, "failed to decode simplybook result", err)
		}
	}
	return nil
}

// obtainToken runs one of the two grant methods on the /login endpoint.
func (c *Client) obtainToken(ctx context.Context, method string, params []interface{}) (string, error) {
	var token string
	headers := map[string]string{"X-Company-Login": c.company}
	if err := c.call(ctx, "/login", headers, method, params, &token); err != nil {
		return "", err
	}
	if token == "" {
		return "", apperr.Ef(apperr.KindUnavailable, "simplybook %s returned an empty token", method)
	}
	return token, nil
}

// adminCall authenticates with the user token and invokes an admin method.
func (c *Client) adminCall(ctx context.Context, method string, params []interface{}, out interface{}) error {
	token, err := c.userToken.getOrRefresh(ctx, c.now())
	if err != nil {
		return err
	}
	headers := map[string]string{
		"X-Company-Login": c.company,
		"X-User-Token":    token,
	}
	return c.call(ctx, "/admin", headers, method, params, out)
}

// publicCall authenticates with the service token and invokes a public method.
func (c *Client) publicCall(ctx context.Context, method string, params []interface{}, out interface{}) error {
	token, err := c.serviceToken.getOrRefresh(ctx, c.now())
	if err != nil {
		return err
	}
	headers := map[string]string{
		"X-Company-Login": c.company,
		"X-Token":         token,
	}
	return c.call(ctx, "", headers, method, params, out)
}

type rawBooking struct {
	ID            json.Number `json:"id"`
	Code          string      `json:"code"`
	ClientName    string      `json:"client_name"`
	StartDateTime string      `json:"start_date_time"`
	EventID       json.Number `json:"event_id"`
	IsConfirmed   interface{} `json:"is_confirmed"`
}

func (b rawBooking) toModel() (*model.Booking, error) {
	start, err := time.Parse("2006-01-02 15:04:05", b.StartDateTime)
	if err != nil {
		return nil, apperr.Ef(apperr.KindUnavailable, "simplybook booking %s: cannot parse start %q", b.ID, b.StartDateTime)
	}
	confirmed := false
	switch v := b.IsConfirmed.(type) {
	case bool:
		confirmed = v
	case string:
		confirmed = v == "1"
	case float64:
		confirmed = v == 1
	}
	return &model.Booking{
		ID:         b.ID.String(),
		Code:       b.Code,
		SchoolName: b.ClientName,
		Start:      start,
		ServiceID:  b.EventID.String(),
		Confirmed:  confirmed,
	}, nil
}

// ListUpcomingBookings fetches confirmed bookings starting from today.
func (c *Client) ListUpcomingBookings(ctx context.Context) ([]*model.Booking, error) {
	filter := map[string]interface{}{
		"date_from":    c.now().Format("2006-01-02"),
		"is_confirmed": 1,
	}
	var raw []rawBooking
	if err := c.adminCall(ctx, "getBookings", []interface{}{filter}, &raw); err != nil {
		return nil, err
	}
	bookings := make([]*model.Booking, 0, len(raw))
	for _, rb := range raw {
		b, err := rb.toModel()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// GetBookingDetails fetches one booking by its numeric ID.
func (c *Client) GetBookingDetails(ctx context.Context, bookingID string) (*model.Booking, error) {
	id, err := strconv.Atoi(bookingID)
	if err != nil {
		return nil, apperr.Ef(apperr.KindInvalid, "invalid booking id %q", bookingID)
	}
	var raw rawBooking
	if err := c.adminCall(ctx, "getBookingDetails", []interface{}{id}, &raw); err != nil {
		return nil, err
	}
	return raw.toModel()
}

// CancelBooking cancels a booking on the SimplyBook side.
func (c *Client) CancelBooking(ctx context.Context, bookingID string) error {
	id, err := strconv.Atoi(bookingID)
	if err != nil {
		return apperr.Ef(apperr.KindInvalid, "invalid booking id %q", bookingID)
	}
	var ok bool
	if err := c.adminCall(ctx, "cancelBooking", []interface{}{id}, &ok); err != nil {
		return err
	}
	if !ok {
		return apperr.Ef(apperr.KindUnavailable, "simplybook refused to cancel booking %d", id)
	}
	return nil
}

// ListServices fetches the public service catalog (event types).
func (c *Client) ListServices(ctx context.Context) (map[string]string, error) {
	var raw map[string]struct {
		Name string `json:"name"`
	}
	if err := c.publicCall(ctx, "getEventList", nil, &raw); err != nil {
		return nil, err
	}
	services := make(map[string]string, len(raw))
	for id, svc := range raw {
		services[id] = svc.Name
	}
	return services, nil
}
