package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Ricardo-1112/waterbar-reservation/database/dbhelper"
	"github.com/Ricardo-1112/waterbar-reservation/models"
	"github.com/Ricardo-1112/waterbar-reservation/timeutil"
	"github.com/Ricardo-1112/waterbar-reservation/utils"
)

// StudentOrdersToday is the pickup-reconciliation list: every non-cancelled
// order placed today, one row per item, with the owner's handle.
func StudentOrdersToday(w http.ResponseWriter, r *http.Request) {
	rows, err := dbhelper.ListDayOrders(timeutil.Day(0))
	if err != nil {
		logrus.WithError(err).Error("failed to list pickup orders")
		utils.RespondError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if rows == nil {
		rows = []dbhelper.DayOrderRow{}
	}
	utils.RespondJSON(w, http.StatusOK, rows)
}

// UpdatePickupStatus marks an order picked or back to pending. Repeating the
// same update is a no-op success. Clients may send a boolean or the status
// string; anything that is not "picked"/true means pending.
func UpdatePickupStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req struct {
		PickupStatus interface{} `json:"pickupStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	status := models.PickupPending
	switch v := req.PickupStatus.(type) {
	case bool:
		if v {
			status = models.PickupPicked
		}
	case string:
		if v == string(models.PickupPicked) {
			status = models.PickupPicked
		}
	}

	if err := dbhelper.SetPickupStatus(orderID, status); err != nil {
		logrus.WithError(err).Error("failed to update pickup status")
		utils.RespondError(w, http.StatusInternalServerError, "failed to update pickup status")
		return
	}
	utils.RespondSuccess(w)
}
