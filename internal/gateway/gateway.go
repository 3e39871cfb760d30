// Package gateway implements the simulated public partner API: the request
// pipeline of rate limiting, input sanitization, routing, validation,
// mutation and audit logging. It is transport-agnostic; the HTTP adapter in
// internal/server exposes it on the wire.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hidalgo-logistics/tracking/internal/metrics"
	"github.com/hidalgo-logistics/tracking/internal/model"
	"github.com/hidalgo-logistics/tracking/internal/ratelimit"
	"github.com/hidalgo-logistics/tracking/internal/sanitize"
	"github.com/hidalgo-logistics/tracking/internal/storage"
)

// Provider tag recorded on every audit entry.
const Provider = "Talkual"

const publicShipmentsPath = "/api/public/shipments"

type Response struct {
	Status int
	Body   map[string]interface{}
}

type Gateway struct {
	limiter *ratelimit.Limiter
	store   *storage.Store
	audit   *storage.AuditLog
	logger  *zap.Logger
}

// New wires the gateway. The limiter is an explicit dependency rather than a
// package global so tests can use fresh instances.
func New(limiter *ratelimit.Limiter, store *storage.Store, audit *storage.AuditLog, logger *zap.Logger) *Gateway {
	return &Gateway{
		limiter: limiter,
		store:   store,
		audit:   audit,
		logger:  logger,
	}
}

// Handle runs one public API call through the full pipeline. Every call,
// whatever its outcome, produces exactly one audit log entry whose status
// matches the returned status.
func (g *Gateway) Handle(ctx context.Context, method, path string, body interface{}) Response {
	endpoint := method + " " + path

	if !g.limiter.Allow(time.Now()) {
		metrics.RateLimitedTotal.Inc()
		g.logger.Warn("Public API call rate limited", zap.String("endpoint", endpoint))
		g.audit.Append(model.WebhookLog{
			Provider:     Provider,
			Endpoint:     endpoint,
			Status:       429,
			RequestBody:  "BLOCKED",
			ResponseBody: "Too Many Requests",
		})
		return Response{Status: 429, Body: map[string]interface{}{
			"error": "Too many requests. Try again later.",
		}}
	}

	sanitized := sanitize.Value(body)
	resp := g.route(ctx, method, path, sanitized)

	g.audit.Append(model.WebhookLog{
		Provider:     Provider,
		Endpoint:     endpoint,
		Status:       resp.Status,
		RequestBody:  serialize(sanitized),
		ResponseBody: serialize(resp.Body),
	})

	g.logger.Debug("Public API call handled",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.Status))
	return resp
}

func (g *Gateway) route(ctx context.Context, method, path string, body interface{}) Response {
	fields, _ := body.(map[string]interface{})

	switch {
	case method == "POST" && path == publicShipmentsPath:
		return g.createShipment(fields)
	case method == "POST" && strings.HasSuffix(path, "/labels"):
		if id, ok := shipmentIDFrom(path, "/labels"); ok {
			return g.attachLabel(id, fields)
		}
	case method == "PUT" && strings.HasPrefix(path, publicShipmentsPath+"/"):
		if id, ok := shipmentIDFrom(path, ""); ok {
			return g.updateShipment(id, fields)
		}
	}

	return errorResponse(404, "endpoint not found")
}

// shipmentIDFrom extracts the id segment of /api/public/shipments/{id}<suffix>.
func shipmentIDFrom(path, suffix string) (string, bool) {
	trimmed := strings.TrimSuffix(path, suffix)
	if trimmed == path && suffix != "" {
		return "", false
	}
	id := strings.TrimPrefix(trimmed, publicShipmentsPath+"/")
	if id == "" || id == trimmed || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func (g *Gateway) createShipment(fields map[string]interface{}) Response {
	var missing []string
	for _, key := range []string{"externalReference", "client", "destination"} {
		if stringField(fields, key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		metrics.OperationErrorsTotal.WithLabelValues("create_shipment").Inc()
		return errorResponse(400, "missing required fields: "+strings.Join(missing, ", "))
	}

	now := time.Now().UTC()
	shipment := model.Shipment{
		ID:                g.store.NewID(),
		ExternalReference: stringField(fields, "externalReference"),
		Client:            stringField(fields, "client"),
		Destination:       stringField(fields, "destination"),
		Origin:            stringFieldOr(fields, "origin", "Central Warehouse"),
		Date:              now.Format("2006-01-02"),
		TimeWindow:        stringFieldOr(fields, "timeWindow", "09:00 - 18:00"),
		Packages:          intFieldOr(fields, "packages", 1),
		Weight:            floatFieldOr(fields, "weight", 1),
		Notes:             stringField(fields, "notes"),
		Status:            model.StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := g.store.Create(shipment); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("create_shipment").Inc()
		return errorResponse(400, err.Error())
	}

	metrics.ShipmentsCreatedTotal.Inc()
	return Response{Status: 201, Body: map[string]interface{}{
		"id":      shipment.ID,
		"success": true,
	}}
}

func (g *Gateway) updateShipment(id string, fields map[string]interface{}) Response {
	if _, err := g.store.Get(id); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("update_shipment").Inc()
		return errorResponse(404, "shipment not found")
	}

	var status model.Status
	if raw, ok := fields["status"]; ok {
		s, isString := raw.(string)
		if !isString {
			metrics.OperationErrorsTotal.WithLabelValues("update_shipment").Inc()
			return errorResponse(400, fmt.Sprintf("invalid status, allowed values: %s", strings.Join(model.StatusNames(), ", ")))
		}
		parsed, err := model.ParseStatus(s)
		if err != nil {
			metrics.OperationErrorsTotal.WithLabelValues("update_shipment").Inc()
			return errorResponse(400, err.Error())
		}
		status = parsed
	}

	_, err := g.store.Update(id, func(current model.Shipment) (model.Shipment, *model.TrackingEvent, bool) {
		updated := current

		// id and createdAt are protected; anything else supplied overwrites.
		if v := stringField(fields, "externalReference"); hasKey(fields, "externalReference") {
			updated.ExternalReference = v
		}
		if v := stringField(fields, "origin"); hasKey(fields, "origin") {
			updated.Origin = v
		}
		if v := stringField(fields, "destination"); hasKey(fields, "destination") {
			updated.Destination = v
		}
		if v := stringField(fields, "client"); hasKey(fields, "client") {
			updated.Client = v
		}
		if v := stringField(fields, "date"); hasKey(fields, "date") {
			updated.Date = v
		}
		if v := stringField(fields, "timeWindow"); hasKey(fields, "timeWindow") {
			updated.TimeWindow = v
		}
		if hasKey(fields, "packages") {
			updated.Packages = intFieldOr(fields, "packages", updated.Packages)
		}
		if hasKey(fields, "weight") {
			updated.Weight = floatFieldOr(fields, "weight", updated.Weight)
		}
		if v := stringField(fields, "notes"); hasKey(fields, "notes") {
			updated.Notes = v
		}
		if v := stringField(fields, "labelUrl"); hasKey(fields, "labelUrl") {
			updated.LabelURL = v
		}
		if v := stringField(fields, "assignedDriverId"); hasKey(fields, "assignedDriverId") {
			updated.AssignedDriverID = v
		}
		if v := stringField(fields, "assignedDriverName"); hasKey(fields, "assignedDriverName") {
			updated.AssignedDriverName = v
		}
		if hasKey(fields, "pod") {
			updated.POD = podField(fields)
		}
		if status != "" {
			updated.Status = status
		}
		updated.UpdatedAt = time.Now().UTC()
		return updated, nil, true
	})
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("update_shipment").Inc()
		return errorResponse(404, "shipment not found")
	}

	return Response{Status: 200, Body: map[string]interface{}{"success": true}}
}

func (g *Gateway) attachLabel(id string, fields map[string]interface{}) Response {
	if _, err := g.store.Get(id); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("attach_label").Inc()
		return errorResponse(404, "shipment not found")
	}

	labelURL := stringField(fields, "labelUrl")
	if labelURL == "" {
		metrics.OperationErrorsTotal.WithLabelValues("attach_label").Inc()
		return errorResponse(400, "missing required field: labelUrl")
	}

	_, err := g.store.Update(id, func(current model.Shipment) (model.Shipment, *model.TrackingEvent, bool) {
		updated := current
		updated.LabelURL = labelURL
		updated.UpdatedAt = time.Now().UTC()
		return updated, nil, true
	})
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("attach_label").Inc()
		return errorResponse(404, "shipment not found")
	}

	return Response{Status: 200, Body: map[string]interface{}{"success": true}}
}

func errorResponse(status int, message string) Response {
	return Response{Status: status, Body: map[string]interface{}{"error": message}}
}

func serialize(v interface{}) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func hasKey(fields map[string]interface{}, key string) bool {
	_, ok := fields[key]
	return ok
}

// podField decodes a supplied pod object; a non-object value (null included)
// clears the proof.
func podField(fields map[string]interface{}) *model.ProofOfDelivery {
	raw, ok := fields["pod"].(map[string]interface{})
	if !ok {
		return nil
	}
	return &model.ProofOfDelivery{
		RecipientName: stringField(raw, "recipientName"),
		SignatureData: stringField(raw, "signatureData"),
		PhotoData:     stringField(raw, "photoData"),
		CapturedAt:    time.Now().UTC(),
	}
}

func stringField(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func stringFieldOr(fields map[string]interface{}, key, fallback string) string {
	if v := stringField(fields, key); v != "" {
		return v
	}
	return fallback
}

func intFieldOr(fields map[string]interface{}, key string, fallback int) int {
	if v, ok := fields[key].(float64); ok && v > 0 {
		return int(v)
	}
	return fallback
}

func floatFieldOr(fields map[string]interface{}, key string, fallback float64) float64 {
	if v, ok := fields[key].(float64); ok && v > 0 {
		return v
	}
	return fallback
}
