// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shortsintel/shorts-intel-hub/models"
	"github.com/shortsintel/shorts-intel-hub/repository"
	"github.com/shortsintel/shorts-intel-hub/utils"
)

// ClientMetadata holds client-related information for audit tagging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// writeAudit appends one audit entry. Callers invoke it inside the same
// transaction as the mutation it describes; a failed audit write fails the
// whole unit of work.
func writeAudit(ctx context.Context, auditRepo repository.AuditLogRepository, actor, action, resourceType string, resourceID *string, details any, market *models.Market, source *string) error {
	var payload json.RawMessage
	if details != nil {
		bs, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
		payload = bs
	}

	entry := &models.AuditLog{
		ActorEmail:   actor,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      payload,
		Market:       market,
		Source:       source,
		CreatedAt:    utils.UTCNow(),
	}

	return auditRepo.Save(ctx, entry)
}

// parseSegment builds and validates a segment key from its raw components.
func parseSegment(market, gender, ageBand string) (models.Segment, error) {
	segment := models.Segment{
		Market:  models.Market(market),
		Gender:  models.Gender(gender),
		AgeBand: models.AgeBand(ageBand),
	}
	if err := segment.Validate(); err != nil {
		return models.Segment{}, fmt.Errorf("%w: %v", ErrInvalidSegment, err)
	}
	return segment, nil
}
