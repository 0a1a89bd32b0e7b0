package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Ricardo-1112/waterbar-reservation/config"
	"github.com/Ricardo-1112/waterbar-reservation/database"
	"github.com/Ricardo-1112/waterbar-reservation/database/dbhelper"
	"github.com/Ricardo-1112/waterbar-reservation/middlewares"
	"github.com/Ricardo-1112/waterbar-reservation/models"
	"github.com/Ricardo-1112/waterbar-reservation/timeutil"
	"github.com/Ricardo-1112/waterbar-reservation/utils"
)

func Register(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.Email == "" || req.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	// Unknown role values silently become a plain student account.
	role := req.Role
	if !role.IsValid() {
		role = models.RoleUser
	}

	if role == models.RoleUser && !models.ValidStudentHandle(req.Email, config.StudentDomain) {
		utils.RespondError(w, http.StatusBadRequest, models.StudentHandleHint(config.StudentDomain))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	if _, err := dbhelper.CreateUser(database.WaterBar, req.Email, hash, role); err != nil {
		if dbhelper.IsUniqueViolation(err) {
			utils.RespondError(w, http.StatusBadRequest, "this student ID is already registered, please log in")
			return
		}
		logrus.WithError(err).Error("failed to create user")
		utils.RespondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	utils.RespondSuccess(w)
}

func Login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.Email == "" || req.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	// Same message for unknown account and wrong password, so handles
	// cannot be enumerated.
	user, err := dbhelper.GetUserByEmail(req.Email)
	if err == sql.ErrNoRows {
		utils.RespondError(w, http.StatusBadRequest, "account or password incorrect")
		return
	} else if err != nil {
		logrus.WithError(err).Error("login lookup failed")
		utils.RespondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.RespondError(w, http.StatusBadRequest, "account or password incorrect")
		return
	}

	if err := middlewares.SaveSession(w, r, user.ID, user.Role); err != nil {
		logrus.WithError(err).Error("failed to save session")
		utils.RespondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	utils.RespondSuccess(w)
}

func Logout(w http.ResponseWriter, r *http.Request) {
	if err := middlewares.ClearSession(w, r); err != nil {
		logrus.WithError(err).Error("failed to clear session")
	}
	utils.RespondSuccess(w)
}

func Me(w http.ResponseWriter, r *http.Request) {
	principal, err := middlewares.GetPrincipal(r)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	user, err := dbhelper.GetUserByID(principal.UserID)
	if err == sql.ErrNoRows {
		utils.RespondError(w, http.StatusUnauthorized, "not logged in")
		return
	} else if err != nil {
		logrus.WithError(err).Error("me lookup failed")
		utils.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	})
}

// ServerTime lets clients render the ordering window against the bar's
// clock instead of their own.
func ServerTime(w http.ResponseWriter, r *http.Request) {
	now := timeutil.Now().In(timeutil.Zone())
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"now": now.Format(time.RFC3339),
		"day": timeutil.DayOf(now),
	})
}
