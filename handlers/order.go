package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Ricardo-1112/waterbar-reservation/database"
	"github.com/Ricardo-1112/waterbar-reservation/database/dbhelper"
	"github.com/Ricardo-1112/waterbar-reservation/middlewares"
	"github.com/Ricardo-1112/waterbar-reservation/models"
	"github.com/Ricardo-1112/waterbar-reservation/timeutil"
	"github.com/Ricardo-1112/waterbar-reservation/utils"
)

// CreateOrder admits and commits a reservation in one transaction. The
// admission reads run after advisory locks on the (day,user) and every
// (day,product) scope, so two racing requests cannot both see the same
// headroom and oversell a cap.
func CreateOrder(w http.ResponseWriter, r *http.Request) {
	principal, err := middlewares.GetPrincipal(r)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	type line struct {
		ProductID int64 `json:"productId"`
		Qty       int   `json:"qty"`
	}
	var req struct {
		Items []line `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if len(req.Items) == 0 {
		utils.RespondError(w, http.StatusBadRequest, models.ErrEmptyCart.Error())
		return
	}

	// Duplicate lines for one product collapse into a single quantity.
	requested := map[int64]int{}
	totalQty := 0
	for _, item := range req.Items {
		if item.ProductID <= 0 || item.Qty <= 0 {
			utils.RespondError(w, http.StatusBadRequest, "items need a product and a positive quantity")
			return
		}
		requested[item.ProductID] += item.Qty
		totalQty += item.Qty
	}

	if !timeutil.WithinWindow(timeutil.OrderWindowStart, timeutil.OrderWindowEnd) {
		utils.RespondError(w, http.StatusBadRequest, models.ErrOrderWindow.Error())
		return
	}

	productIDs := make([]int64, 0, len(requested))
	for id := range requested {
		productIDs = append(productIDs, id)
	}
	// Deterministic lock order across concurrent orders.
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	day := timeutil.Day(0)
	var orderID int64

	txErr := database.Tx(func(tx *sql.Tx) error {
		if err := dbhelper.LockReservationScope(tx,
			fmt.Sprintf("user:%s:%d", day, principal.UserID)); err != nil {
			return err
		}
		for _, id := range productIDs {
			if err := dbhelper.LockReservationScope(tx,
				fmt.Sprintf("product:%s:%d", day, id)); err != nil {
				return err
			}
		}

		open, err := dbhelper.IsDayOpen(tx, day)
		if err != nil {
			return err
		}
		if !open {
			return models.ErrDayNotOpen
		}

		already, err := dbhelper.UserCommittedOnDay(tx, principal.UserID, day)
		if err != nil {
			return err
		}
		if err := models.CheckUserCap(already, totalQty); err != nil {
			return err
		}

		stocks, err := dbhelper.ProductsForOrder(tx, productIDs, day)
		if err != nil {
			return err
		}
		if len(stocks) != len(productIDs) {
			return models.ErrInvalidProduct
		}
		for _, id := range productIDs {
			stock := stocks[id]
			remaining := models.RemainingToday(stock.MaxPerDay, stock.SoldToday)
			if requested[id] > remaining {
				return models.ErrInsufficientStock(stock.Name, remaining)
			}
		}

		orderID, err = dbhelper.InsertOrder(tx, principal.UserID, timeutil.Now())
		if err != nil {
			return err
		}
		for _, id := range productIDs {
			stock := stocks[id]
			if err := dbhelper.InsertOrderItem(tx, orderID, id,
				stock.Name, stock.Price, requested[id]); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if models.IsBusinessError(txErr) {
			utils.RespondError(w, http.StatusBadRequest, txErr.Error())
			return
		}
		logrus.WithError(txErr).Error("failed to create order")
		utils.RespondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"orderId": orderID,
	})
}

func CancelOrder(w http.ResponseWriter, r *http.Request) {
	principal, err := middlewares.GetPrincipal(r)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	orderID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := dbhelper.GetOrderForUser(orderID, principal.UserID)
	if err == sql.ErrNoRows {
		utils.RespondError(w, http.StatusNotFound, "order not found")
		return
	} else if err != nil {
		logrus.WithError(err).Error("cancel lookup failed")
		utils.RespondError(w, http.StatusInternalServerError, "failed to cancel order")
		return
	}

	if err := order.CancelGuard(timeutil.Now()); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cancelled, err := dbhelper.CancelOrder(orderID)
	if err != nil {
		logrus.WithError(err).Error("failed to cancel order")
		utils.RespondError(w, http.StatusInternalServerError, "failed to cancel order")
		return
	}
	if !cancelled {
		// The order was picked up or cancelled between the guard read
		// and the update.
		utils.RespondError(w, http.StatusBadRequest, models.ErrCancelConflict.Error())
		return
	}
	utils.RespondSuccess(w)
}

func MyOrders(w http.ResponseWriter, r *http.Request) {
	principal, err := middlewares.GetPrincipal(r)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	orders, err := dbhelper.ListOrdersByUser(principal.UserID)
	if err != nil {
		logrus.WithError(err).Error("failed to list orders")
		utils.RespondError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	now := timeutil.Now()
	for i := range orders {
		orders[i].PickupStatus = models.EffectivePickupStatus(
			orders[i].Cancelled,
			orders[i].PickupStatus,
			timeutil.DayOf(orders[i].CreatedAt),
			now,
		)
	}
	if orders == nil {
		orders = []dbhelper.UserOrder{}
	}
	utils.RespondJSON(w, http.StatusOK, orders)
}

func MyTodayCount(w http.ResponseWriter, r *http.Request) {
	principal, err := middlewares.GetPrincipal(r)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	count, err := dbhelper.UserCommittedOnDay(database.WaterBar, principal.UserID, timeutil.Day(0))
	if err != nil {
		logrus.WithError(err).Error("failed to count today's cups")
		utils.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]int{"count": count})
}
