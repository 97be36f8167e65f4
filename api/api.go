package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/0xcafe-io/iz"

	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/restapi"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/storage"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/logging"
)

// Api serves the ledger endpoints over the in-memory reference storage.
type Api struct {
	Store *storage.InMemoryLedger
}

func NewApi(store *storage.InMemoryLedger) *Api {
	return &Api{
		Store: store,
	}
}

func (api *Api) ListRecordsHandler(r *iz.Request) iz.Responder {
	params, err := listValidateParams(r.URL.Query())
	if err != nil {
		msg := fmt.Sprintf("invalid filter parameters: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	items, totalCount := api.Store.ListRecords(params.filter, params.page, params.pageSize)

	resp := restapi.ListRecordsResponse{
		Items:      items,
		Page:       params.page,
		TotalPages: totalPages(totalCount, params.pageSize),
		TotalCount: totalCount,
	}
	return iz.Respond().Status(200).JSON(resp)
}

func (api *Api) CreateRecordHandler(r *iz.Request) iz.Responder {
	var record ledger.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	record.ID = ""
	if err := record.Validate(); err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}

	created := api.Store.SaveRecord(record)
	return iz.Respond().Status(201).JSON(created)
}

func (api *Api) UpdateRecordHandler(r *iz.Request) iz.Responder {
	id := r.PathValue("id")

	var patch restapi.RecordPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}
	if patch.Amount != nil && patch.Amount.IsNegative() {
		return iz.Respond().Status(400).Text("record amount cannot be negative")
	}

	updated, err := api.Store.UpdateRecord(id, patch.ToFieldPatch())
	if err != nil {
		logging.Logger.Warnf("failed to update record %s: %v", id, err)
		msg := fmt.Sprintf("failed to update record: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(updated)
}

func (api *Api) DeleteRecordHandler(r *iz.Request) iz.Responder {
	id := r.PathValue("id")

	if err := api.Store.DeleteRecord(id); err != nil {
		msg := fmt.Sprintf("failed to delete record: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).Text("record deleted successfully")
}

func (api *Api) BulkDeleteRecordsHandler(r *iz.Request) iz.Responder {
	var req restapi.BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}
	if len(req.IDs) == 0 {
		return iz.Respond().Status(400).Text("ids is empty")
	}

	// All-or-nothing: storage verifies every id before removing any.
	if err := api.Store.DeleteRecords(req.IDs); err != nil {
		msg := fmt.Sprintf("failed to delete records: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).Text("records deleted successfully")
}

func (api *Api) ListBudgetsHandler(r *iz.Request) iz.Responder {
	activeOnly := r.URL.Query().Get("active") == "true"

	resp := restapi.ListBudgetsResponse{
		Items: api.Store.ListBudgets(activeOnly),
	}
	return iz.Respond().Status(200).JSON(resp)
}

func (api *Api) CreateBudgetHandler(r *iz.Request) iz.Responder {
	var budget ledger.Budget
	if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	budget.ID = ""
	if err := budget.Validate(); err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}

	created := api.Store.SaveBudget(budget)
	return iz.Respond().Status(201).JSON(created)
}

func (api *Api) UpdateBudgetHandler(r *iz.Request) iz.Responder {
	var budget ledger.Budget
	if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	budget.ID = r.PathValue("id")
	if err := budget.Validate(); err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}

	updated, err := api.Store.UpdateBudget(budget)
	if err != nil {
		msg := fmt.Sprintf("failed to update budget: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(updated)
}

func (api *Api) UpdateBudgetStatusHandler(r *iz.Request) iz.Responder {
	id := r.PathValue("id")

	var req restapi.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}
	switch req.Status {
	case ledger.StatusRunning, ledger.StatusPaused, ledger.StatusCompleted:
	default:
		msg := fmt.Sprintf("status %q cannot be set directly", req.Status)
		return iz.Respond().Status(400).Text(msg)
	}

	if err := api.Store.UpdateBudgetStatus(id, req.Status); err != nil {
		msg := fmt.Sprintf("failed to update budget status: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).Text("budget status updated successfully")
}

func (api *Api) DeleteBudgetHandler(r *iz.Request) iz.Responder {
	id := r.PathValue("id")

	if err := api.Store.DeleteBudget(id); err != nil {
		msg := fmt.Sprintf("failed to delete budget: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).Text("budget deleted successfully")
}

func (api *Api) GetStatsHandler(r *iz.Request) iz.Responder {
	domain := ledger.Domain(r.URL.Query().Get("domain"))
	if !domain.IsExpense() {
		msg := fmt.Sprintf("stats are only available for expense domains, got: %q", domain)
		return iz.Respond().Status(400).Text(msg)
	}

	snapshot := api.Store.ComputeStats(domain, time.Now().UTC())
	return iz.Respond().Status(200).JSON(snapshot)
}

// Routes builds the endpoint table, shared by main and the integration tests.
func (api *Api) Routes() *http.ServeMux {
	server := http.NewServeMux()

	// RECORD ENDPOINTS.
	server.HandleFunc("GET /api/records", iz.Bind(api.ListRecordsHandler))               // Get Records with filters
	server.HandleFunc("POST /api/records", iz.Bind(api.CreateRecordHandler))             // Create Record
	server.HandleFunc("DELETE /api/records/bulk", iz.Bind(api.BulkDeleteRecordsHandler)) // Delete Records in one batch
	server.HandleFunc("PUT /api/records/{id}", iz.Bind(api.UpdateRecordHandler))         // Update Record
	server.HandleFunc("DELETE /api/records/{id}", iz.Bind(api.DeleteRecordHandler))      // Delete Record

	// BUDGET ENDPOINTS.
	server.HandleFunc("GET /api/budgets", iz.Bind(api.ListBudgetsHandler))                    // Get Budgets with joined aggregates
	server.HandleFunc("POST /api/budgets", iz.Bind(api.CreateBudgetHandler))                  // Create Budget
	server.HandleFunc("PUT /api/budgets/{id}", iz.Bind(api.UpdateBudgetHandler))              // Update Budget
	server.HandleFunc("DELETE /api/budgets/{id}", iz.Bind(api.DeleteBudgetHandler))           // Delete Budget
	server.HandleFunc("PUT /api/budgets/{id}/status", iz.Bind(api.UpdateBudgetStatusHandler)) // Update Budget lifecycle status

	// STATISTICS ENDPOINTS.
	server.HandleFunc("GET /api/stats", iz.Bind(api.GetStatsHandler)) // Get overview stats per expense domain

	return server
}
