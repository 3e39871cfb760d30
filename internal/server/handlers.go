package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hidalgo-logistics/tracking/internal/auth"
	"github.com/hidalgo-logistics/tracking/internal/model"
	"github.com/hidalgo-logistics/tracking/internal/storage"
)

// handlePublicAPI proxies a request into the gateway pipeline. The gateway
// owns rate limiting, sanitization, routing and audit logging; the HTTP
// layer only moves bytes.
func (s *Server) handlePublicAPI(w http.ResponseWriter, r *http.Request) {
	var body interface{}
	if r.Body != nil {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			respondError(w, http.StatusBadRequest, "unreadable request body")
			return
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &body); err != nil {
				respondError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
		}
	}

	resp := s.gateway.Handle(r.Context(), r.Method, r.URL.Path, body)
	respondJSON(w, resp.Status, resp.Body)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	user.Password = ""
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleListShipments(w http.ResponseWriter, r *http.Request) {
	filter := storage.ListFilter{
		DriverID: r.URL.Query().Get("driver"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := model.ParseStatus(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = status
	}

	// Drivers only see their own route.
	if user := userFrom(r); user != nil && user.Role == model.RoleDriver {
		filter.DriverID = user.ID
	}

	respondJSON(w, http.StatusOK, s.store.List(filter))
}

func (s *Server) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	shipment, err := s.store.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "shipment not found")
		return
	}
	respondJSON(w, http.StatusOK, shipment)
}

func (s *Server) handleShipmentEvents(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.store.Get(id); err != nil {
		respondError(w, http.StatusNotFound, "shipment not found")
		return
	}

	events := storage.NewestFirstEvents(s.store.EventsFor(id))
	respondJSON(w, http.StatusOK, events)
}

func (s *Server) handleApplyStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
		Note   string `json:"note"`
		POD    *struct {
			RecipientName string `json:"recipientName"`
			SignatureData string `json:"signatureData"`
			PhotoData     string `json:"photoData"`
		} `json:"pod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := model.ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var pod *model.ProofOfDelivery
	if req.POD != nil {
		if req.POD.RecipientName == "" {
			respondError(w, http.StatusBadRequest, "missing required field: recipientName")
			return
		}
		pod = &model.ProofOfDelivery{
			RecipientName: req.POD.RecipientName,
			SignatureData: req.POD.SignatureData,
			PhotoData:     req.POD.PhotoData,
			CapturedAt:    time.Now().UTC(),
		}
	}

	shipment, err := s.engine.ApplyStatus(mux.Vars(r)["id"], status, userFrom(r), req.Note, pod)
	if err != nil {
		if errors.Is(err, storage.ErrShipmentNotFound) {
			respondError(w, http.StatusNotFound, "shipment not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to apply status")
		return
	}

	respondJSON(w, http.StatusOK, shipment)
}

func (s *Server) handleAssignDriver(w http.ResponseWriter, r *http.Request) {
	if !auth.CanAssignDrivers(userFrom(r)) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req struct {
		DriverID string `json:"driverId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DriverID == "" {
		respondError(w, http.StatusBadRequest, "missing driverId")
		return
	}

	shipment, err := s.engine.AssignDriver(mux.Vars(r)["id"], req.DriverID)
	if err != nil {
		if errors.Is(err, storage.ErrShipmentNotFound) {
			respondError(w, http.StatusNotFound, "shipment not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to assign driver")
		return
	}

	respondJSON(w, http.StatusOK, shipment)
}

func (s *Server) handleAssignBatch(w http.ResponseWriter, r *http.Request) {
	if !auth.CanAssignDrivers(userFrom(r)) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req struct {
		ShipmentIDs []string `json:"shipmentIds"`
		DriverID    string   `json:"driverId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DriverID == "" || len(req.ShipmentIDs) == 0 {
		respondError(w, http.StatusBadRequest, "missing driverId or shipmentIds")
		return
	}

	assigned := s.engine.AssignDriverBatch(req.ShipmentIDs, req.DriverID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"assigned":  assigned,
		"requested": len(req.ShipmentIDs),
	})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	shipment, err := s.engine.FindByScannedCode(mux.Vars(r)["code"])
	if err != nil {
		respondError(w, http.StatusNotFound, "shipment not found")
		return
	}
	respondJSON(w, http.StatusOK, shipment)
}

func (s *Server) handleListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers := s.users.ListDrivers()
	for i := range drivers {
		drivers[i].Password = ""
	}
	respondJSON(w, http.StatusOK, drivers)
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	if !auth.CanViewAuditLogs(userFrom(r)) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}
	respondJSON(w, http.StatusOK, storage.NewestFirstLogs(s.auditLog.List()))
}
