package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
	"github.com/omarstateECS/ECS-Mobisales-sub001/services"
	"github.com/omarstateECS/ECS-Mobisales-sub001/utils"
)

func (h *Handler) invoiceListQuery(r *http.Request) *gorm.DB {
	q := h.DB.Model(&models.InvoiceHeader{})
	if sales := r.URL.Query().Get("salesId"); sales != "" {
		q = q.Where("sales_id = ?", sales)
	}
	if journey := r.URL.Query().Get("journeyId"); journey != "" {
		q = q.Where("journey_id = ?", journey)
	}
	if cust := r.URL.Query().Get("custId"); cust != "" {
		q = q.Where("cust_id = ?", cust)
	}
	if typ := r.URL.Query().Get("type"); typ != "" {
		q = q.Where("type = ?", typ)
	}
	if from := r.URL.Query().Get("from"); from != "" {
		q = q.Where("created_at >= ?", from)
	}
	if to := r.URL.Query().Get("to"); to != "" {
		q = q.Where("created_at <= ?", to)
	}
	return q
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)
	q := h.invoiceListQuery(r)
	var total int64
	q.Count(&total)

	var invoices []models.InvoiceHeader
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&invoices).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query invoices"))
		return
	}
	h.respondJSON(w, http.StatusOK, listResponse(total, page, limit, invoices))
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	salesID, err := pathID(vars, "salesId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	invID := vars["invId"]
	var inv models.InvoiceHeader
	err = h.DB.Preload("Items").First(&inv, "inv_id = ? AND sales_id = ?", invID, salesID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.respondError(w, r, apperr.New(apperr.NotFound, "invoice %s not found for salesman %d", invID, salesID))
			return
		}
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query invoice"))
		return
	}
	h.respondJSON(w, http.StatusOK, inv)
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var in services.InvoiceInput
	if err := h.decodeBody(r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}
	inv, err := h.Invoices.Create(&in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, inv)
}

var invoiceExportHeader = []string{
	"Invoice", "Salesman", "Customer", "Journey", "Visit", "Type",
	"Net", "Tax", "Discount", "Total", "Created",
}

func invoiceExportRow(inv *models.InvoiceHeader) []any {
	return []any{
		inv.InvID, inv.SalesID, inv.CustID, inv.JourneyID, inv.VisitID, inv.Type,
		inv.NetTotal.String(), inv.TaxTotal.String(), inv.DiscTotal.String(),
		inv.Total.String(), inv.CreatedAt,
	}
}

// ExportInvoicesExcel streams the filtered invoice list as an xlsx download.
// Filters are the same query parameters ListInvoices accepts.
func (h *Handler) ExportInvoicesExcel(w http.ResponseWriter, r *http.Request) {
	var invoices []models.InvoiceHeader
	if err := h.invoiceListQuery(r).Order("created_at ASC").Find(&invoices).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query invoices"))
		return
	}

	f := excelize.NewFile()
	sheet := "Invoices"
	index, err := f.NewSheet(sheet)
	if err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "create sheet"))
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for col, label := range invoiceExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, label)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	for row := range invoices {
		for col, value := range invoiceExportRow(&invoices[row]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "write workbook"))
		return
	}

	filename := fmt.Sprintf("invoices_%s.xlsx", utils.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

func (h *Handler) ExportInvoicesCSV(w http.ResponseWriter, r *http.Request) {
	var invoices []models.InvoiceHeader
	if err := h.invoiceListQuery(r).Order("created_at ASC").Find(&invoices).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query invoices"))
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Write(invoiceExportHeader)
	for i := range invoices {
		record := make([]string, 0, len(invoiceExportHeader))
		for _, value := range invoiceExportRow(&invoices[i]) {
			record = append(record, fmt.Sprintf("%v", value))
		}
		writer.Write(record)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "write csv"))
		return
	}

	filename := fmt.Sprintf("invoices_%s.csv", utils.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
