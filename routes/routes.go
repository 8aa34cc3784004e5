package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/omarstateECS/ECS-Mobisales-sub001/handlers"
	"github.com/omarstateECS/ECS-Mobisales-sub001/middleware"
)

// RegisterRoutes wires every endpoint onto a mux router. Everything under
// /api except /api/auth/login requires a session token.
func RegisterRoutes(h *handlers.Handler) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(h.Log))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))),
	)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.SessionMiddleware)

	// Salesmen, including the two mobile sync endpoints.
	api.HandleFunc("/salesmen", h.ListSalesmen).Methods("GET")
	api.HandleFunc("/salesmen", h.CreateSalesman).Methods("POST")
	api.HandleFunc("/salesmen/{id}", h.GetSalesman).Methods("GET")
	api.HandleFunc("/salesmen/{id}", h.UpdateSalesman).Methods("PUT")
	api.HandleFunc("/salesmen/{id}", h.DeleteSalesman).Methods("DELETE")
	api.HandleFunc("/salesmen/{id}/reset-device", h.ResetSalesmanDevice).Methods("POST")
	// Devices call /salesmen/load/{id}; the resource-style path is an alias.
	api.HandleFunc("/salesmen/load/{id}", h.LoadSalesman).Methods("GET")
	api.HandleFunc("/salesmen/{id}/load", h.LoadSalesman).Methods("GET")
	api.HandleFunc("/salesmen/{id}/checkin", h.CheckInSalesman).Methods("POST")

	api.HandleFunc("/customers", h.ListCustomers).Methods("GET")
	api.HandleFunc("/customers", h.CreateCustomer).Methods("POST")
	api.HandleFunc("/customers/{id}", h.GetCustomer).Methods("GET")
	api.HandleFunc("/customers/{id}", h.UpdateCustomer).Methods("PUT")
	api.HandleFunc("/customers/{id}", h.DeleteCustomer).Methods("DELETE")

	api.HandleFunc("/products", h.ListProducts).Methods("GET")
	api.HandleFunc("/products", h.CreateProduct).Methods("POST")
	api.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")
	api.HandleFunc("/products/{id}", h.UpdateProduct).Methods("PUT")
	api.HandleFunc("/products/{id}", h.DeleteProduct).Methods("DELETE")
	api.HandleFunc("/products/{id}/image", h.UploadProductImage).Methods("POST")

	api.HandleFunc("/journeys", h.ListJourneys).Methods("GET")
	api.HandleFunc("/journeys", h.CreateJourney).Methods("POST")
	api.HandleFunc("/journeys/{salesId}/{journeyId}", h.GetJourney).Methods("GET")

	api.HandleFunc("/visits", h.ListVisits).Methods("GET")
	api.HandleFunc("/visits", h.CreateVisit).Methods("POST")
	api.HandleFunc("/visits/{salesId}/{journeyId}/{visitId}", h.GetVisit).Methods("GET")

	api.HandleFunc("/invoices", h.ListInvoices).Methods("GET")
	api.HandleFunc("/invoices", h.CreateInvoice).Methods("POST")
	api.HandleFunc("/invoices/export/excel", h.ExportInvoicesExcel).Methods("GET")
	api.HandleFunc("/invoices/export/csv", h.ExportInvoicesCSV).Methods("GET")
	api.HandleFunc("/invoices/{salesId}/{invId}", h.GetInvoice).Methods("GET")

	api.HandleFunc("/fillups", h.ListFillups).Methods("GET")
	api.HandleFunc("/fillups", h.CreateFillup).Methods("POST")
	api.HandleFunc("/fillups/{id}", h.GetFillup).Methods("GET")

	api.HandleFunc("/regions", h.ListRegions).Methods("GET")
	api.HandleFunc("/regions", h.CreateRegion).Methods("POST")
	api.HandleFunc("/industries", h.ListIndustries).Methods("GET")
	api.HandleFunc("/industries", h.CreateIndustry).Methods("POST")
	api.HandleFunc("/authorities", h.ListAuthorities).Methods("GET")
	api.HandleFunc("/authorities", h.CreateAuthority).Methods("POST")
	api.HandleFunc("/reasons", h.ListReasons).Methods("GET")
	api.HandleFunc("/reasons", h.CreateReason).Methods("POST")
	api.HandleFunc("/return-reasons", h.ListReturnReasons).Methods("GET")
	api.HandleFunc("/cancel-reasons", h.ListCancelReasons).Methods("GET")

	api.HandleFunc("/settings", h.ListSettings).Methods("GET")
	api.HandleFunc("/settings", h.UpsertSetting).Methods("PUT")

	return r
}
