package revalidate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTP posts {"paths": [...], "secret": "..."} to the frontend's revalidation webhook.
type HTTP struct {
	url    string
	secret string
	client *http.Client
}

func NewHTTP(url, secret string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTP{url: url, secret: secret, client: client}
}

type webhookRequest struct {
	Paths  []string `json:"paths"`
	Secret string   `json:"secret,omitempty"`
}

func (h *HTTP) Invalidate(ctx context.Context, paths ...string) error {
	if err := checkPaths(paths); err != nil {
		return err
	}
	body, err := json.Marshal(webhookRequest{Paths: paths, Secret: h.secret})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("revalidate: webhook returned %d", resp.StatusCode)
	}
	return nil
}
