package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Ricardo-1112/waterbar-reservation/database"
	"github.com/Ricardo-1112/waterbar-reservation/database/dbhelper"
	"github.com/Ricardo-1112/waterbar-reservation/timeutil"
	"github.com/Ricardo-1112/waterbar-reservation/utils"
)

// ReservationToday tells students whether ordering is open right now.
// A day nobody flagged open is closed.
func ReservationToday(w http.ResponseWriter, r *http.Request) {
	day := timeutil.Day(0)
	isOpen, err := dbhelper.IsDayOpen(database.WaterBar, day)
	if err != nil {
		logrus.WithError(err).Error("failed to read reservation day")
		utils.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"day":    day,
		"isOpen": isOpen,
	})
}

// ReservationTomorrow shows the bar admin the flag they are about to set.
func ReservationTomorrow(w http.ResponseWriter, r *http.Request) {
	day := timeutil.Day(1)
	isOpen, err := dbhelper.IsDayOpen(database.WaterBar, day)
	if err != nil {
		logrus.WithError(err).Error("failed to read reservation day")
		utils.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"day":    day,
		"isOpen": isOpen,
	})
}

// SetReservationTomorrow opens or closes tomorrow. The target day is always
// computed server-side; admins cannot rewrite history or the current day.
func SetReservationTomorrow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsOpen bool `json:"isOpen"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	day := timeutil.Day(1)
	if err := dbhelper.SetDayOpen(day, req.IsOpen); err != nil {
		logrus.WithError(err).Error("failed to set reservation day")
		utils.RespondError(w, http.StatusInternalServerError, "failed to update")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"day":     day,
		"isOpen":  req.IsOpen,
	})
}
