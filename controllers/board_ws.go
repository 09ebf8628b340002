package controller

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"leadboard/config"
	"leadboard/models"
	"leadboard/utils"
)

// HandleBoardEventsWS streams a unit's change events to the board. The client
// connects with ?token=<jwt>&unit_id=<id> and receives one JSON event per
// lead/activity/unit change until it disconnects.
func HandleBoardEventsWS(hub *utils.EventHub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		claims, err := utils.ParseJWTToken(c.Query("token"))
		if err != nil {
			_ = c.WriteJSON(map[string]string{"error": "Invalid or expired token"})
			return
		}

		var user models.User
		if err := config.DB.First(&user, claims.UserID).Error; err != nil || !user.IsActive {
			_ = c.WriteJSON(map[string]string{"error": "User not found"})
			return
		}

		unitID := utils.ParseUint(c.Query("unit_id"))
		ok, err := userHasUnit(config.DB, &user, unitID)
		if err != nil || !ok {
			_ = c.WriteJSON(map[string]string{"error": "No access to this unit"})
			return
		}

		events, cancel := hub.Subscribe(unitID)
		defer cancel()

		// Drain client frames so we notice the disconnect
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case evt, open := <-events:
				if !open {
					return
				}
				if err := c.WriteJSON(evt); err != nil {
					log.Printf("Error writing board event: %v", err)
					return
				}
			}
		}
	}
}
