package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"swiftride-rental-service/internal/domain"
	"swiftride-rental-service/internal/logger"
)

type accountClient struct {
	baseURL      string
	client       *http.Client
	serviceToken string
}

// NewAccountClient builds the HTTP client for the user subsystem.
func NewAccountClient(baseURL, serviceToken string, timeout time.Duration) AccountGateway {
	return &accountClient{
		baseURL:      baseURL,
		client:       &http.Client{Timeout: timeout},
		serviceToken: serviceToken,
	}
}

func (c *accountClient) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	logger.ExternalServiceCall("account", "GetAccount", "user_id", id)
	var account domain.Account
	err := doJSON(ctx, c.client, fmt.Sprintf("%s/api/v1/accounts/%d", c.baseURL, id), http.MethodGet, c.serviceToken, nil, &account)
	logger.ExternalServiceResult("account", "GetAccount", err, "user_id", id)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *accountClient) ResolveCityID(ctx context.Context, name string) (int64, error) {
	logger.ExternalServiceCall("account", "ResolveCityID", "name", name)
	var resp struct {
		ID int64 `json:"id"`
	}
	u := c.baseURL + "/api/v1/cities?name=" + url.QueryEscape(name)
	err := doJSON(ctx, c.client, u, http.MethodGet, c.serviceToken, nil, &resp)
	logger.ExternalServiceResult("account", "ResolveCityID", err, "name", name)
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}
