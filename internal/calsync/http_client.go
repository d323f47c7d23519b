package calsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"ymfit/studio-app/internal/config"
)

// httpClient implements Client against a REST calendar provider:
//
//	POST {base}/calendars/{cal}/events       -> create, returns {"id": ...}
//	GET  {base}/calendars/{cal}/events/{id}  -> current state, 404/410 = gone
//	PUT  {base}/calendars/{cal}/events/{id}  -> full replace
//
// Authentication is bearer-token via an oauth2 token source; expired tokens
// are refreshed by the refresh grant transparently to the caller.
type httpClient struct {
	base string
	http *http.Client
}

// NewHTTPClient builds a calendar client from config. The oauth2 refresh token
// keeps requests authenticated without the sync machinery knowing about token
// lifetimes.
func NewHTTPClient(cfg config.CalendarConfig) Client {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
	}
	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	return &httpClient{
		base: cfg.BaseURL,
		http: &http.Client{
			Transport: &oauth2.Transport{
				Source: oauthCfg.TokenSource(context.Background(), token),
			},
			Timeout: 15 * time.Second,
		},
	}
}

func (c *httpClient) CreateEvent(ctx context.Context, calendarID string, payload EventPayload) (string, error) {
	url := fmt.Sprintf("%s/calendars/%s/events", c.base, calendarID)
	body, err := json.Marshal(eventBody(payload, nil))
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("calendar create failed: %s", resp.Status)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("calendar create returned no event id")
	}
	return created.ID, nil
}

func (c *httpClient) GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error) {
	url := fmt.Sprintf("%s/calendars/%s/events/%s", c.base, calendarID, eventID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, ErrEventGone
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar fetch failed: %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return decodeEvent(eventID, raw)
}

func (c *httpClient) UpdateEvent(ctx context.Context, calendarID string, event *Event) error {
	url := fmt.Sprintf("%s/calendars/%s/events/%s", c.base, calendarID, event.ID)
	body, err := json.Marshal(eventBody(event.Payload, event.Extra))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return ErrEventGone
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("calendar update failed: %s", resp.Status)
	}
	return nil
}

// eventBody merges the owned payload fields over any externally-added fields
// so a full-replace PUT does not drop them.
func eventBody(payload EventPayload, extra map[string]interface{}) map[string]interface{} {
	body := make(map[string]interface{}, len(extra)+4)
	for k, v := range extra {
		body[k] = v
	}
	body["start"] = payload.Start.UTC().Format(time.RFC3339)
	body["end"] = payload.End.UTC().Format(time.RFC3339)
	body["summary"] = payload.Summary
	body["description"] = payload.Description
	return body
}

func decodeEvent(eventID string, raw []byte) (*Event, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	event := &Event{ID: eventID, Extra: fields}
	if s, ok := fields["summary"].(string); ok {
		event.Payload.Summary = s
	}
	if d, ok := fields["description"].(string); ok {
		event.Payload.Description = d
	}
	if start, ok := fields["start"].(string); ok {
		if t, err := time.Parse(time.RFC3339, start); err == nil {
			event.Payload.Start = t
		}
	}
	if end, ok := fields["end"].(string); ok {
		if t, err := time.Parse(time.RFC3339, end); err == nil {
			event.Payload.End = t
		}
	}
	// Owned fields live in Payload; drop them from Extra so eventBody does not
	// write stale copies back.
	delete(fields, "start")
	delete(fields, "end")
	delete(fields, "summary")
	delete(fields, "description")
	return event, nil
}
