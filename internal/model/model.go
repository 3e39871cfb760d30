package model

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAssigned  Status = "ASSIGNED"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
	StatusIssue     Status = "ISSUE"
	StatusReturned  Status = "RETURNED"
)

// AllStatuses lists every valid shipment status in lifecycle order.
var AllStatuses = []Status{
	StatusPending,
	StatusAssigned,
	StatusInTransit,
	StatusDelivered,
	StatusIssue,
	StatusReturned,
}

func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q, allowed values: %s", s, strings.Join(StatusNames(), ", "))
}

func StatusNames() []string {
	names := make([]string, 0, len(AllStatuses))
	for _, st := range AllStatuses {
		names = append(names, string(st))
	}
	return names
}

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERATOR"
	RoleDriver   Role = "DRIVER"
)

type Shipment struct {
	ID                 string           `json:"id"`
	ExternalReference  string           `json:"external_reference"`
	Origin             string           `json:"origin"`
	Destination        string           `json:"destination"`
	Client             string           `json:"client"`
	Date               string           `json:"date"`
	TimeWindow         string           `json:"time_window"`
	Packages           int              `json:"packages"`
	Weight             float64          `json:"weight"`
	Notes              string           `json:"notes"`
	Status             Status           `json:"status"`
	AssignedDriverID   string           `json:"assigned_driver_id,omitempty"`
	AssignedDriverName string           `json:"assigned_driver_name,omitempty"`
	POD                *ProofOfDelivery `json:"pod,omitempty"`
	LabelURL           string           `json:"label_url,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// ProofOfDelivery is immutable once attached to a shipment.
// Signature and photo are opaque base64 blobs supplied by the capture UI.
type ProofOfDelivery struct {
	RecipientName string    `json:"recipient_name"`
	SignatureData string    `json:"signature_data,omitempty"`
	PhotoData     string    `json:"photo_data,omitempty"`
	CapturedAt    time.Time `json:"captured_at"`
}

type TrackingEvent struct {
	ID          string    `json:"id"`
	ShipmentID  string    `json:"shipment_id"`
	EventType   string    `json:"event_type"`
	PayloadJSON string    `json:"payload_json"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type WebhookLog struct {
	ID           string    `json:"id"`
	Provider     string    `json:"provider"`
	Endpoint     string    `json:"endpoint"`
	Status       int       `json:"status"`
	RequestBody  string    `json:"request_body"`
	ResponseBody string    `json:"response_body"`
	CreatedAt    time.Time `json:"created_at"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	Password  string    `json:"password_hash"`
	BirthDate string    `json:"birth_date,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
