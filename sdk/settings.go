package judgerun

import (
	"context"
	"net/http"
)

// SettingsService reads and updates the language and API key.
type SettingsService struct {
	c *Client
}

func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	return doRequest[Settings](ctx, s.c, http.MethodGet, "/settings", nil, http.StatusOK)
}

// Update stores the settings. An empty APIKey keeps the current key.
func (s *SettingsService) Update(ctx context.Context, next Settings) (*Settings, error) {
	return doRequest[Settings](ctx, s.c, http.MethodPut, "/settings", next, http.StatusOK)
}
