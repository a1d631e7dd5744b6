package connector

import (
	"errors"
	"fmt"
)

// ErrNoConversation is returned by the payload builders when the message
// carries no conversation reference.
var ErrNoConversation = errors.New("no conversation reference on message")

// AuthError reports a failed OAuth token issuance.
type AuthError struct {
	Status int
	Body   string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token request failed: %v", e.Err)
	}
	return fmt.Sprintf("token request rejected: status=%d body=%s", e.Status, e.Body)
}

func (e *AuthError) Unwrap() error { return e.Err }

// MalformedActivityError reports an inbound activity missing a required field.
type MalformedActivityError struct {
	Field string
}

func (e *MalformedActivityError) Error() string {
	return fmt.Sprintf("malformed activity: missing %s", e.Field)
}

// ChannelUnknownError reports an outbound send to a channel that was never
// registered, by inbound traffic or by seeding.
type ChannelUnknownError struct {
	ChannelID string
}

func (e *ChannelUnknownError) Error() string {
	return fmt.Sprintf("channel %q not registered", e.ChannelID)
}

// ProvisioningError reports a failed conversation-creation request.
type ProvisioningError struct {
	Status int
	Body   string
	Err    error
}

func (e *ProvisioningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conversation create failed: %v", e.Err)
	}
	return fmt.Sprintf("conversation create rejected: status=%d body=%s", e.Status, e.Body)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// DeliveryError reports a failed activity POST.
type DeliveryError struct {
	Status int
	Body   string
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("activity send failed: %v", e.Err)
	}
	return fmt.Sprintf("activity send rejected: status=%d body=%s", e.Status, e.Body)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
