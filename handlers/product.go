package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Ricardo-1112/waterbar-reservation/config"
	"github.com/Ricardo-1112/waterbar-reservation/database/dbhelper"
	"github.com/Ricardo-1112/waterbar-reservation/models"
	"github.com/Ricardo-1112/waterbar-reservation/timeutil"
	"github.com/Ricardo-1112/waterbar-reservation/utils"
)

const defaultMaxPerDay = 50

// ListProducts shows the storefront: active products with how many cups are
// still available today under each per-product cap.
func ListProducts(w http.ResponseWriter, r *http.Request) {
	type product struct {
		ID         int64   `json:"id"`
		Name       string  `json:"name"`
		Price      float64 `json:"price"`
		Img        string  `json:"img"`
		Hot        bool    `json:"hot"`
		MaxPerDay  int     `json:"maxPerDay"`
		StockToday int     `json:"stockToday"`
	}

	rows, err := dbhelper.ListActiveWithSoldToday(timeutil.Day(0))
	if err != nil {
		logrus.WithError(err).Error("failed to list products")
		utils.RespondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	products := make([]product, 0, len(rows))
	for _, row := range rows {
		products = append(products, product{
			ID:         row.ID,
			Name:       row.Name,
			Price:      row.Price,
			Img:        row.Img,
			Hot:        row.Hot,
			MaxPerDay:  row.MaxPerDay,
			StockToday: models.RemainingToday(row.MaxPerDay, row.SoldToday),
		})
	}
	utils.RespondJSON(w, http.StatusOK, products)
}

func CreateProduct(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name      string  `json:"name"`
		Price     float64 `json:"price"`
		Img       string  `json:"img"`
		Hot       bool    `json:"hot"`
		MaxPerDay int     `json:"maxPerDay"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Name == "" || req.Price <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "name and price are required")
		return
	}
	if req.Img == "" {
		utils.RespondError(w, http.StatusBadRequest, "a product image is required")
		return
	}
	if req.MaxPerDay <= 0 {
		req.MaxPerDay = defaultMaxPerDay
	}

	id, err := dbhelper.CreateProduct(models.Product{
		Name:      req.Name,
		Price:     req.Price,
		Img:       req.Img,
		Hot:       req.Hot,
		MaxPerDay: req.MaxPerDay,
	})
	if err != nil {
		logrus.WithError(err).Error("failed to create product")
		utils.RespondError(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      id,
	})
}

// UpdateProduct replaces every editable field of one product. Historical
// orders keep their snapshots and are unaffected.
func UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req models.Product
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.ID = id

	if _, err := dbhelper.GetProductByID(id); err == sql.ErrNoRows {
		utils.RespondError(w, http.StatusNotFound, "product not found")
		return
	} else if err != nil {
		logrus.WithError(err).Error("product lookup failed")
		utils.RespondError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	if err := dbhelper.UpdateProduct(req); err != nil {
		logrus.WithError(err).Error("failed to update product")
		utils.RespondError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	updated, err := dbhelper.GetProductByID(id)
	if err != nil {
		logrus.WithError(err).Error("product reload failed")
		utils.RespondError(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	utils.RespondJSON(w, http.StatusOK, updated)
}

// PatchProduct applies only the fields present in the body.
func PatchProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	changed, err := dbhelper.UpdateProductFields(id, fields)
	if err != nil {
		logrus.WithError(err).Error("failed to patch product")
		utils.RespondError(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	if !changed {
		utils.RespondError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	utils.RespondSuccess(w)
}

func DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := dbhelper.DeleteProduct(id); err != nil {
		logrus.WithError(err).Error("failed to delete product")
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	utils.RespondSuccess(w)
}

// ResetStudentPassword lets the bar admin recover a student account. Only
// plain-user accounts with a valid campus handle can be reset this way.
func ResetStudentPassword(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Email == "" || req.NewPassword == "" {
		utils.RespondError(w, http.StatusBadRequest, "email and newPassword are required")
		return
	}
	if !models.ValidStudentHandle(req.Email, config.StudentDomain) {
		utils.RespondError(w, http.StatusBadRequest, models.StudentHandleHint(config.StudentDomain))
		return
	}

	user, err := dbhelper.GetUserByEmail(req.Email)
	if err == sql.ErrNoRows {
		utils.RespondError(w, http.StatusNotFound, "no such student account")
		return
	} else if err != nil {
		logrus.WithError(err).Error("reset lookup failed")
		utils.RespondError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}
	if user.Role != models.RoleUser {
		utils.RespondError(w, http.StatusForbidden, "only student accounts can be reset")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}
	if err := dbhelper.UpdateUserPassword(user.ID, hash); err != nil {
		logrus.WithError(err).Error("failed to reset password")
		utils.RespondError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}
	utils.RespondSuccess(w)
}
