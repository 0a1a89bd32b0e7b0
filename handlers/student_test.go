package handlers

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/Ricardo-1112/waterbar-reservation/middlewares"
	"github.com/Ricardo-1112/waterbar-reservation/models"
)

func studentRouter() *mux.Router {
	router := mux.NewRouter()
	student := router.PathPrefix("/api/student").Subrouter()
	student.Use(middlewares.RequireRole(models.RoleStudentAdmin))
	student.HandleFunc("/order/{id:[0-9]+}/pickup-status", UpdatePickupStatus).Methods("PUT")
	return router
}

// Marking an order picked twice must succeed both times with the same
// stored state; the handler never rejects a repeat of the same update.
func TestUpdatePickupStatusIsIdempotent(t *testing.T) {
	mock := stubDB(t)
	router := studentRouter()

	for i := 0; i < 2; i++ {
		mock.ExpectExec("UPDATE orders").
			WithArgs("picked", int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	for i := 0; i < 2; i++ {
		rec := doAs(t, router, models.RoleStudentAdmin,
			http.MethodPut, "/api/student/order/5/pickup-status", `{"pickupStatus":"picked"}`)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Scanner clients send a boolean, the admin UI sends the status string;
// both spellings land on the same stored value.
func TestUpdatePickupStatusCoercesBodyShapes(t *testing.T) {
	mock := stubDB(t)
	router := studentRouter()

	mock.ExpectExec("UPDATE orders").
		WithArgs("picked", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders").
		WithArgs("pending", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doAs(t, router, models.RoleStudentAdmin,
		http.MethodPut, "/api/student/order/5/pickup-status", `{"pickupStatus":true}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Anything that is not "picked"/true falls back to pending.
	rec = doAs(t, router, models.RoleStudentAdmin,
		http.MethodPut, "/api/student/order/5/pickup-status", `{"pickupStatus":"nonsense"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePickupStatusRequiresStudentAdmin(t *testing.T) {
	rec := doAs(t, studentRouter(), models.RoleUser,
		http.MethodPut, "/api/student/order/5/pickup-status", `{"pickupStatus":"picked"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
