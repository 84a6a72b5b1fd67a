// Package services contains external service integrations for the application
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shortsintel/shorts-intel-hub/app/dto"
	"github.com/shortsintel/shorts-intel-hub/models"
)

// CollectiveBridge pushes approved topics to the downstream agent system.
type CollectiveBridge interface {
	// Push sends the fixed 6-field payload for an approved topic. It returns
	// (false, nil) when the bridge is disabled so approval can proceed with
	// the push recorded as pending.
	Push(ctx context.Context, topic *models.Topic) (sent bool, err error)
}

// CollectiveBridgeConfig configures the downstream push endpoint.
type CollectiveBridgeConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// HTTPCollectiveBridge implements CollectiveBridge over HTTP.
type HTTPCollectiveBridge struct {
	cfg    CollectiveBridgeConfig
	client *http.Client
}

// NewCollectiveBridge creates a new bridge client.
func NewCollectiveBridge(cfg CollectiveBridgeConfig) CollectiveBridge {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPCollectiveBridge{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// BuildCollectivePayload maps an approved topic onto the downstream schema.
func BuildCollectivePayload(topic *models.Topic) dto.CollectivePayload {
	description := ""
	if topic.Description != nil {
		description = *topic.Description
	}
	referenceLink := ""
	if topic.ReferenceLink != nil {
		referenceLink = *topic.ReferenceLink
	}
	hashtags := []string(topic.Hashtags)
	if hashtags == nil {
		hashtags = []string{}
	}

	return dto.CollectivePayload{
		TopicName:     topic.Name,
		Description:   description,
		TargetDemo:    topic.Segment().DemoLabel(),
		ReferenceLink: referenceLink,
		Hashtags:      hashtags,
		Audio:         topic.Audio,
	}
}

// Push sends the approved topic downstream.
func (b *HTTPCollectiveBridge) Push(ctx context.Context, topic *models.Topic) (bool, error) {
	if b.cfg.Endpoint == "" {
		return false, nil
	}

	payload := BuildCollectivePayload(topic)
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to marshal collective payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to build collective request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("collective push failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("collective push returned status %d", resp.StatusCode)
	}

	return true, nil
}
