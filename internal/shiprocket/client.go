package shiprocket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

const upstreamName = "shiprocket"

// Token lifetime announced by the provider is ten days. Refreshing a
// little early avoids racing the expiry on long-lived processes.
const tokenLifetime = 9 * 24 * time.Hour

// Client talks to the shipping provider's REST API. Authentication is
// token based: the client logs in lazily and refreshes the cached token
// when it expires or a request comes back unauthorized.
type Client struct {
	baseURL        string
	email          string
	password       string
	pickupPostcode string
	pickupLocation string
	httpClient     *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient builds a provider client. pickupPostcode is the warehouse
// postcode used as the default origin for serviceability checks.
func NewClient(baseURL, email, password, pickupPostcode, pickupLocation string, timeout time.Duration) *Client {
	return &Client{
		baseURL:        baseURL,
		email:          email,
		password:       password,
		pickupPostcode: pickupPostcode,
		pickupLocation: pickupLocation,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

type loginResponse struct {
	Token string `json:"token"`
}

type createOrderResponse struct {
	OrderID    json.Number `json:"order_id"`
	ShipmentID json.Number `json:"shipment_id"`
	Status     string      `json:"status"`
}

type serviceabilityResponse struct {
	Status int `json:"status"`
	Data   struct {
		AvailableCourierCompanies []struct {
			CourierName   string          `json:"courier_name"`
			Rate          decimal.Decimal `json:"rate"`
			EstimatedDays json.Number     `json:"estimated_delivery_days"`
		} `json:"available_courier_companies"`
	} `json:"data"`
}

type trackingResponse struct {
	TrackingData struct {
		ShipmentTrack []struct {
			AWBCode       string `json:"awb_code"`
			CourierName   string `json:"courier_name"`
			CurrentStatus string `json:"current_status"`
		} `json:"shipment_track"`
	} `json:"tracking_data"`
}

// RegisterOrder hands a placed order to the provider for fulfilment.
func (c *Client) RegisterOrder(ctx context.Context, order domain.Order) (*ports.ShipmentRegistration, error) {
	items := make([]map[string]any, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]any{
			"name":          item.Name,
			"sku":           item.ProductID,
			"units":         item.Quantity,
			"selling_price": item.Price,
		})
	}

	payload := map[string]any{
		"order_id":          order.OrderNumber,
		"order_date":        order.CreatedAt.UTC().Format("2006-01-02 15:04"),
		"pickup_location":   c.pickupLocation,
		"billing_customer_name": order.ShippingAddress.FullName,
		"billing_address":   order.ShippingAddress.Line1,
		"billing_address_2": order.ShippingAddress.Line2,
		"billing_city":      order.ShippingAddress.City,
		"billing_state":     order.ShippingAddress.State,
		"billing_pincode":   order.ShippingAddress.Postcode,
		"billing_country":   order.ShippingAddress.Country,
		"billing_phone":     order.ShippingAddress.Phone,
		"shipping_is_billing": true,
		"order_items":       items,
		"payment_method":    registrationPaymentMethod(order),
		"sub_total":         order.TotalPrice,
	}

	var out createOrderResponse
	if err := c.do(ctx, http.MethodPost, "/v1/external/orders/create/adhoc", payload, &out); err != nil {
		return nil, err
	}

	return &ports.ShipmentRegistration{
		ProviderOrderID: out.OrderID.String(),
		ShipmentID:      out.ShipmentID.String(),
	}, nil
}

// CheckServiceability asks whether a courier can serve the destination
// postcode. An empty origin falls back to the configured warehouse.
func (c *Client) CheckServiceability(ctx context.Context, q ports.ServiceabilityQuery) (*ports.ServiceabilityResult, error) {
	origin := q.OriginPostcode
	if origin == "" {
		origin = c.pickupPostcode
	}

	params := url.Values{}
	params.Set("pickup_postcode", origin)
	params.Set("delivery_postcode", q.DestPostcode)
	if q.CashOnDelivery {
		params.Set("cod", "1")
	} else {
		params.Set("cod", "0")
	}
	weight := q.WeightKG
	if weight <= 0 {
		weight = 0.5
	}
	params.Set("weight", strconv.FormatFloat(weight, 'f', -1, 64))

	var out serviceabilityResponse
	if err := c.do(ctx, http.MethodGet, "/v1/external/courier/serviceability/?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}

	result := &ports.ServiceabilityResult{}
	if len(out.Data.AvailableCourierCompanies) == 0 {
		return result, nil
	}

	cheapest := out.Data.AvailableCourierCompanies[0]
	for _, courier := range out.Data.AvailableCourierCompanies[1:] {
		if courier.Rate.LessThan(cheapest.Rate) {
			cheapest = courier
		}
	}

	result.Serviceable = true
	result.CourierName = cheapest.CourierName
	result.Rate = cheapest.Rate
	if days, err := cheapest.EstimatedDays.Int64(); err == nil {
		result.EstimatedDays = int(days)
	}

	return result, nil
}

// TrackShipment reads the courier's current status for a shipment.
func (c *Client) TrackShipment(ctx context.Context, shipmentID string) (*ports.TrackingStatus, error) {
	var out trackingResponse
	if err := c.do(ctx, http.MethodGet, "/v1/external/courier/track/shipment/"+shipmentID, nil, &out); err != nil {
		return nil, err
	}

	status := &ports.TrackingStatus{ShipmentID: shipmentID}
	if len(out.TrackingData.ShipmentTrack) > 0 {
		track := out.TrackingData.ShipmentTrack[0]
		status.Courier = track.CourierName
		status.TrackingID = track.AWBCode
		status.Status = track.CurrentStatus
	}

	return status, nil
}

func registrationPaymentMethod(order domain.Order) string {
	if order.PaymentMethod == domain.MethodCashOnDelivery {
		return "COD"
	}
	return "Prepaid"
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	status, err := c.send(ctx, method, path, payload, out, token)
	if err != nil {
		return err
	}
	if status != http.StatusUnauthorized {
		return nil
	}

	// Token expired server side, log in again and retry once.
	token, err = c.refreshToken(ctx)
	if err != nil {
		return err
	}
	if _, err := c.send(ctx, method, path, payload, out, token); err != nil {
		return err
	}
	return nil
}

// send performs one request. A 401 is reported through the status
// return so the caller can re-authenticate; other failures are errors.
func (c *Client) send(ctx context.Context, method, path string, payload, out any, token string) (int, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, ports.Upstream(upstreamName, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, ports.Upstream(upstreamName, fmt.Errorf("read %s %s response: %w", method, path, err))
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return http.StatusUnauthorized, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, ports.Upstream(upstreamName, fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, ports.Upstream(upstreamName, fmt.Errorf("decode %s %s response: %w", method, path, err))
		}
	}

	return resp.StatusCode, nil
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	return c.refreshToken(ctx)
}

func (c *Client) refreshToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("encode login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/external/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", ports.Upstream(upstreamName, fmt.Errorf("login: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", ports.Upstream(upstreamName, fmt.Errorf("read login response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", ports.Upstream(upstreamName, fmt.Errorf("login: unexpected status %d", resp.StatusCode))
	}

	var out loginResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", ports.Upstream(upstreamName, fmt.Errorf("decode login response: %w", err))
	}
	if out.Token == "" {
		return "", ports.Upstream(upstreamName, fmt.Errorf("login: empty token"))
	}

	c.token = out.Token
	c.tokenExpiry = time.Now().Add(tokenLifetime)
	return c.token, nil
}
