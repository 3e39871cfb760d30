package storage

import (
	"fmt"
	"time"

	"github.com/hidalgo-logistics/tracking/internal/model"
)

// Demo data loaded when the persistence collaborator has nothing for a key.
// Credentials are plaintext on purpose: the legacy login flow compares them
// verbatim (see UserDirectory.Authenticate).

func SeedUsers() []model.User {
	now := time.Now().UTC()
	users := []model.User{
		{ID: "admin-ivan", Name: "Ivan Hidalgo", Email: "ivan", Role: model.RoleAdmin, Active: true, Password: "hidalgo123", CreatedAt: now},
		{ID: "ops-nuria", Name: "Nuria Soler", Email: "nuria", Role: model.RoleOperator, Active: true, Password: "hidalgo123", CreatedAt: now},
		{ID: "driver-lleida", Name: "Carlos (Lleida)", Email: "carlos", Role: model.RoleDriver, Active: true, Password: "hidalgo123", CreatedAt: now},
		{ID: "driver-bcn", Name: "Marta (BCN)", Email: "marta", Role: model.RoleDriver, Active: true, Password: "hidalgo123", CreatedAt: now},
		{ID: "driver-tgn", Name: "Jordi (Tarragona)", Email: "jordi", Role: model.RoleDriver, Active: true, Password: "hidalgo123", CreatedAt: now},
		{ID: "driver-gir", Name: "Ana (Girona)", Email: "ana", Role: model.RoleDriver, Active: true, Password: "hidalgo123", CreatedAt: now},
		{ID: "driver-zgz", Name: "Luis (Zaragoza)", Email: "luis", Role: model.RoleDriver, Active: true, Password: "hidalgo123", CreatedAt: now},
	}
	return users
}

func SeedShipments() []model.Shipment {
	now := time.Now().UTC()
	today := now.Format("2006-01-02")

	shipments := []model.Shipment{
		{
			ID:                "SH001",
			ExternalReference: "TK-99283",
			Origin:            "Central Warehouse",
			Destination:       "Poligono Ind. El Segre, Lleida",
			Client:            "AgroLleida S.L.",
			Date:              today,
			TimeWindow:        "09:00 - 14:00",
			Packages:          20,
			Weight:            150.5,
			Notes:             "Deliver at dock 4",
			Status:            model.StatusPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			ID:                 "SH002",
			ExternalReference:  "TK-11223",
			Origin:             "Central Warehouse",
			Destination:        "Av. Diagonal 440, Barcelona",
			Client:             "Oficinas Centrales",
			Date:               today,
			TimeWindow:         "16:00 - 20:00",
			Packages:           1,
			Weight:             5.0,
			Notes:              "Leave at reception",
			Status:             model.StatusAssigned,
			AssignedDriverID:   "driver-bcn",
			AssignedDriverName: "Marta (BCN)",
			CreatedAt:          now,
			UpdatedAt:          now,
		},
	}

	cities := []string{"Lleida", "Barcelona", "Tarragona", "Girona", "Zaragoza"}
	clients := []string{"Frutas Manolo", "Supermercados Dia", "Mercadona", "Tienda Local"}
	for i := 0; i < 10; i++ {
		shipments = append(shipments, model.Shipment{
			ID:                fmt.Sprintf("SH%03d", 100+i),
			ExternalReference: fmt.Sprintf("TK-%d", 99000+i),
			Origin:            "Central Warehouse",
			Destination:       fmt.Sprintf("Calle Mayor %d, %s", i, cities[i%len(cities)]),
			Client:            clients[i%len(clients)],
			Date:              today,
			TimeWindow:        "09:00 - 18:00",
			Packages:          i%5 + 1,
			Weight:            float64(i%20 + 1),
			Status:            model.StatusPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	return shipments
}

func SeedWebhookLogs() []model.WebhookLog {
	return []model.WebhookLog{
		{
			ID:           "L1",
			Provider:     "Talkual",
			Endpoint:     "POST /api/public/shipments",
			Status:       201,
			RequestBody:  `{"externalReference": "TK-99283"}`,
			ResponseBody: `{"success": true}`,
			CreatedAt:    time.Now().UTC(),
		},
	}
}
