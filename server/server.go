package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Ricardo-1112/waterbar-reservation/config"
	"github.com/Ricardo-1112/waterbar-reservation/handlers"
	"github.com/Ricardo-1112/waterbar-reservation/middlewares"
	"github.com/Ricardo-1112/waterbar-reservation/models"
)

type Server struct {
	Router *mux.Router
	server *http.Server
}

const (
	readTimeout       = 1 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 1 * time.Minute
)

func SetupRoutes() *Server {
	router := mux.NewRouter()
	router.Use(middlewares.CORS(config.CORSOrigins))
	router.Use(middlewares.RequestLogger)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// public
	api.HandleFunc("/register", handlers.Register).Methods("POST")
	api.HandleFunc("/login", handlers.Login).Methods("POST")
	api.HandleFunc("/server-time", handlers.ServerTime).Methods("GET")
	api.HandleFunc("/products", handlers.ListProducts).Methods("GET")

	// any logged-in role
	authed := api.NewRoute().Subrouter()
	authed.Use(middlewares.RequireLogin)
	authed.HandleFunc("/logout", handlers.Logout).Methods("POST")
	authed.HandleFunc("/me", handlers.Me).Methods("GET")
	authed.HandleFunc("/reservation/today", handlers.ReservationToday).Methods("GET")

	// students only
	user := api.NewRoute().Subrouter()
	user.Use(middlewares.RequireRole(models.RoleUser))
	user.HandleFunc("/order", handlers.CreateOrder).Methods("POST")
	user.HandleFunc("/order/mine", handlers.MyOrders).Methods("GET")
	user.HandleFunc("/order/{id:[0-9]+}", handlers.CancelOrder).Methods("DELETE")
	user.HandleFunc("/me/today-count", handlers.MyTodayCount).Methods("GET")

	// bar admin
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middlewares.RequireRole(models.RoleBarAdmin))
	admin.HandleFunc("/product", handlers.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id:[0-9]+}", handlers.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/product/{id:[0-9]+}", handlers.PatchProduct).Methods("PUT")
	admin.HandleFunc("/product/{id:[0-9]+}", handlers.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/reservation/tomorrow", handlers.ReservationTomorrow).Methods("GET")
	admin.HandleFunc("/reservation/tomorrow", handlers.SetReservationTomorrow).Methods("PUT")
	admin.HandleFunc("/users/reset-student-password", handlers.ResetStudentPassword).Methods("POST")
	admin.HandleFunc("/orders/today", handlers.AdminOrdersToday).Methods("GET")
	admin.HandleFunc("/report/daily", handlers.DailyReport).Methods("GET")
	admin.HandleFunc("/report/weekly", handlers.WeeklyReport).Methods("GET")
	admin.HandleFunc("/report/monthly", handlers.MonthlyReport).Methods("GET")
	admin.HandleFunc("/report/excel", handlers.ExcelReport).Methods("GET")

	// student admin (pickup reconciliation)
	student := api.PathPrefix("/student").Subrouter()
	student.Use(middlewares.RequireRole(models.RoleStudentAdmin))
	student.HandleFunc("/orders/today", handlers.StudentOrdersToday).Methods("GET")
	student.HandleFunc("/order/{id:[0-9]+}/pickup-status", handlers.UpdatePickupStatus).Methods("PUT")

	return &Server{
		Router: router,
	}
}

func (svr *Server) Run(port string) error {
	svr.server = &http.Server{
		Addr:              ":" + port,
		Handler:           svr.Router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return svr.server.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
