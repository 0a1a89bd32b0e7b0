package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ricardo-1112/waterbar-reservation/database"
	"github.com/Ricardo-1112/waterbar-reservation/middlewares"
	"github.com/Ricardo-1112/waterbar-reservation/models"
	"github.com/Ricardo-1112/waterbar-reservation/timeutil"
)

func TestMain(m *testing.M) {
	middlewares.InitSessions([]byte("test-secret-not-for-production"))
	m.Run()
}

// stubDB swaps the pool for a sqlmock instance for one test.
func stubDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	restore := database.WaterBar
	database.WaterBar = db
	t.Cleanup(func() {
		database.WaterBar = restore
		db.Close()
	})
	return mock
}

// fixNow pins the clock to a Shanghai wall-clock time on 2026-08-31.
func fixNow(t *testing.T, hour, minute int) {
	t.Helper()
	restore := timeutil.Now
	timeutil.Now = func() time.Time {
		return time.Date(2026, 8, 31, hour, minute, 0, 0, timeutil.Zone())
	}
	t.Cleanup(func() { timeutil.Now = restore })
}

func sessionCookies(t *testing.T, userID int64, role models.Role) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	require.NoError(t, middlewares.SaveSession(rec, req, userID, role))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

// userRouter mounts the student-facing order routes the way server.SetupRoutes does.
func userRouter() *mux.Router {
	router := mux.NewRouter()
	user := router.PathPrefix("/api").Subrouter()
	user.Use(middlewares.RequireRole(models.RoleUser))
	user.HandleFunc("/order", CreateOrder).Methods("POST")
	user.HandleFunc("/order/{id:[0-9]+}", CancelOrder).Methods("DELETE")
	return router
}

func doAs(t *testing.T, router *mux.Router, role models.Role, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for _, c := range sessionCookies(t, 42, role) {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrderCommitsWithSnapshot(t *testing.T) {
	mock := stubDB(t)
	fixNow(t, 10, 0)

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM reservation_days").
		WithArgs("2026-08-31").
		WillReturnRows(sqlmock.NewRows([]string{"is_open"}).AddRow(true))
	mock.ExpectQuery("o.user_id").
		WithArgs(int64(42), "2026-08-31").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("ANY").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "max_per_day", "sold_today"}).
			AddRow(int64(3), "Latte", 12.5, 50, 10))
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(42), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	// The item freezes the product name and price read inside the same
	// transaction.
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(9), int64(3), "Latte", 12.5, 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rec := doAs(t, userRouter(), models.RoleUser,
		http.MethodPost, "/api/order", `{"items":[{"productId":3,"qty":1}]}`)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"orderId":9`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRejectsWhenDayNotOpen(t *testing.T) {
	mock := stubDB(t)
	fixNow(t, 10, 0)

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 1))
	// Default-deny: no reservation_days row at all.
	mock.ExpectQuery("FROM reservation_days").
		WithArgs("2026-08-31").
		WillReturnRows(sqlmock.NewRows([]string{"is_open"}))
	mock.ExpectRollback()

	rec := doAs(t, userRouter(), models.RoleUser,
		http.MethodPost, "/api/order", `{"items":[{"productId":3,"qty":1}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not open today")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRejectsOverUserCap(t *testing.T) {
	mock := stubDB(t)
	fixNow(t, 10, 0)

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM reservation_days").
		WithArgs("2026-08-31").
		WillReturnRows(sqlmock.NewRows([]string{"is_open"}).AddRow(true))
	// Two cups already committed today: one more must be refused.
	mock.ExpectQuery("o.user_id").
		WithArgs(int64(42), "2026-08-31").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	rec := doAs(t, userRouter(), models.RoleUser,
		http.MethodPost, "/api/order", `{"items":[{"productId":3,"qty":1}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "daily limit is 2 cups")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	mock := stubDB(t)
	fixNow(t, 10, 0)

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM reservation_days").
		WithArgs("2026-08-31").
		WillReturnRows(sqlmock.NewRows([]string{"is_open"}).AddRow(true))
	mock.ExpectQuery("o.user_id").
		WithArgs(int64(42), "2026-08-31").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("ANY").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "max_per_day", "sold_today"}).
			AddRow(int64(3), "Latte", 12.5, 50, 50))
	mock.ExpectRollback()

	rec := doAs(t, userRouter(), models.RoleUser,
		http.MethodPost, "/api/order", `{"items":[{"productId":3,"qty":1}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not enough stock")
	assert.Contains(t, rec.Body.String(), "0 cup(s) left")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRejectsOutsideWindowBeforeTouchingDB(t *testing.T) {
	mock := stubDB(t)
	fixNow(t, 12, 0)

	rec := doAs(t, userRouter(), models.RoleUser,
		http.MethodPost, "/api/order", `{"items":[{"productId":3,"qty":1}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ordering window is closed")
	assert.NoError(t, mock.ExpectationsWereMet(), "no statement may run outside the window")
}

func TestCancelOrderRefusedWhenRowChangedUnderneath(t *testing.T) {
	mock := stubDB(t)
	fixNow(t, 10, 0)

	createdAt := time.Date(2026, 8, 31, 9, 0, 0, 0, timeutil.Zone())
	mock.ExpectQuery("AND user_id").
		WithArgs(int64(5), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "cancelled", "pickup_status"}).
			AddRow(int64(5), int64(42), createdAt, false, nil))
	// Guards passed on the read, but the conditional update finds the row
	// picked (or cancelled) in the meantime and touches nothing.
	mock.ExpectExec("UPDATE orders").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := doAs(t, userRouter(), models.RoleUser,
		http.MethodDelete, "/api/order/5", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "can no longer be cancelled")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelOrderSucceeds(t *testing.T) {
	mock := stubDB(t)
	fixNow(t, 10, 0)

	createdAt := time.Date(2026, 8, 31, 9, 0, 0, 0, timeutil.Zone())
	mock.ExpectQuery("AND user_id").
		WithArgs(int64(5), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "cancelled", "pickup_status"}).
			AddRow(int64(5), int64(42), createdAt, false, nil))
	mock.ExpectExec("UPDATE orders").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doAs(t, userRouter(), models.RoleUser,
		http.MethodDelete, "/api/order/5", "")

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
