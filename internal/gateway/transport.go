package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"swiftride-rental-service/internal/domain"
	"swiftride-rental-service/internal/logger"
)

type transportClient struct {
	baseURL      string
	client       *http.Client
	serviceToken string
}

// NewTransportClient builds the HTTP client for the transport subsystem.
// Every call is bounded by the configured timeout.
func NewTransportClient(baseURL, serviceToken string, timeout time.Duration) TransportGateway {
	return &transportClient{
		baseURL:      baseURL,
		client:       &http.Client{Timeout: timeout},
		serviceToken: serviceToken,
	}
}

func (c *transportClient) GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error) {
	logger.ExternalServiceCall("transport", "GetVehicle", "vehicle_id", id)
	var vehicle domain.Vehicle
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/transports/%d", id), nil, &vehicle)
	logger.ExternalServiceResult("transport", "GetVehicle", err, "vehicle_id", id)
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (c *transportClient) ResolveStatusID(ctx context.Context, name string) (int64, error) {
	logger.ExternalServiceCall("transport", "ResolveStatusID", "name", name)
	var resp struct {
		ID int64 `json:"id"`
	}
	path := "/api/v1/transport-statuses?name=" + url.QueryEscape(name)
	err := c.doJSON(ctx, http.MethodGet, path, nil, &resp)
	logger.ExternalServiceResult("transport", "ResolveStatusID", err, "name", name)
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *transportClient) SetStatus(ctx context.Context, vehicleID int64, status string) error {
	logger.ExternalServiceCall("transport", "SetStatus", "vehicle_id", vehicleID, "status", status)
	body := map[string]string{"status": status}
	err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/transports/%d/status", vehicleID), body, nil)
	logger.ExternalServiceResult("transport", "SetStatus", err, "vehicle_id", vehicleID)
	return err
}

func (c *transportClient) SetCoordinates(ctx context.Context, vehicleID int64, lat, lng float64) error {
	logger.ExternalServiceCall("transport", "SetCoordinates", "vehicle_id", vehicleID)
	body := map[string]float64{"lat": lat, "lng": lng}
	err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/transports/%d/coordinates", vehicleID), body, nil)
	logger.ExternalServiceResult("transport", "SetCoordinates", err, "vehicle_id", vehicleID)
	return err
}

func (c *transportClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	return doJSON(ctx, c.client, c.baseURL+path, method, c.serviceToken, body, out)
}

// doJSON is shared by both gateway clients: marshal, send, classify the
// response, decode.
func doJSON(ctx context.Context, client *http.Client, u, method, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, method, u)
	case resp.StatusCode >= 400:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, u, resp.StatusCode, payload)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
