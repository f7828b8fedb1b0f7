// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package eventprocessor

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/cadence/internal/models"
)

// Message metadata keys.
const (
	MetadataEventType   = "event_type"
	MetadataRunID       = "run_id"
	MetadataPersistMode = "persist_mode"
	MetadataContentType = "content_type"
)

// ErrInvalidEvent is returned for events that cannot be published.
var ErrInvalidEvent = errors.New("invalid event")

// Validate checks the fields consumers depend on.
func validateEvent(event *models.PlaylistsUpdated) error {
	if event == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	if event.RunID == "" {
		return fmt.Errorf("%w: run_id is required", ErrInvalidEvent)
	}
	return nil
}

// NewMessage encodes a PlaylistsUpdated event as a watermill message. The
// event id becomes the message UUID; a missing id or type is filled in.
func NewMessage(event *models.PlaylistsUpdated) (*message.Message, error) {
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Type == "" {
		event.Type = models.EventTypePlaylistsUpdated
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(event.EventID, payload)
	msg.Metadata.Set(MetadataEventType, event.Type)
	msg.Metadata.Set(MetadataRunID, event.RunID)
	msg.Metadata.Set(MetadataPersistMode, event.PersistMode)
	msg.Metadata.Set(MetadataContentType, "application/json")
	msg.Metadata.Set("rows_written", strconv.Itoa(event.RowsWritten))
	return msg, nil
}

// DecodeEvent parses a message produced by NewMessage.
func DecodeEvent(msg *message.Message) (*models.PlaylistsUpdated, error) {
	var event models.PlaylistsUpdated
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event %s: %w", msg.UUID, err)
	}
	if err := validateEvent(&event); err != nil {
		return nil, err
	}
	return &event, nil
}
