package repository

import (
	"errors"
	"time"
)

var ErrObjectNotFound = errors.New("not found")

type Shipment struct {
	ID                 string     `db:"id"`
	ExternalReference  string     `db:"external_reference"`
	Origin             string     `db:"origin"`
	Destination        string     `db:"destination"`
	Client             string     `db:"client"`
	Date               string     `db:"date"`
	TimeWindow         string     `db:"time_window"`
	Packages           int        `db:"packages"`
	Weight             float64    `db:"weight"`
	Notes              string     `db:"notes"`
	Status             string     `db:"status"`
	AssignedDriverID   *string    `db:"assigned_driver_id"`
	AssignedDriverName *string    `db:"assigned_driver_name"`
	PODRecipient       *string    `db:"pod_recipient"`
	PODSignature       *string    `db:"pod_signature"`
	PODPhoto           *string    `db:"pod_photo"`
	PODCapturedAt      *time.Time `db:"pod_captured_at"`
	LabelURL           *string    `db:"label_url"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

type TrackingEvent struct {
	ID          string    `db:"id"`
	ShipmentID  string    `db:"shipment_id"`
	EventType   string    `db:"event_type"`
	PayloadJSON string    `db:"payload_json"`
	UserID      string    `db:"user_id"`
	UserName    string    `db:"user_name"`
	CreatedAt   time.Time `db:"created_at"`
}

type WebhookLog struct {
	ID           string    `db:"id"`
	Provider     string    `db:"provider"`
	Endpoint     string    `db:"endpoint"`
	Status       int       `db:"status"`
	RequestBody  string    `db:"request_body"`
	ResponseBody string    `db:"response_body"`
	CreatedAt    time.Time `db:"created_at"`
}

type User struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	Active    bool      `db:"active"`
	Password  string    `db:"password"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
