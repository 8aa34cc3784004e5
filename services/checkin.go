package services

import (
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
	"github.com/omarstateECS/ECS-Mobisales-sub001/utils"
)

// CheckInService applies one salesman's batch of field activity — journey
// state, visits, invoices, stock and action logs — as a single transaction.
type CheckInService struct {
	db       *gorm.DB
	log      *logrus.Logger
	invoices *InvoiceService
}

func NewCheckInService(db *gorm.DB, log *logrus.Logger, invoices *InvoiceService) *CheckInService {
	return &CheckInService{db: db, log: log, invoices: invoices}
}

type CheckInJourney struct {
	StartJourney *string `json:"startJourney"`
	EndJourney   *string `json:"endJourney"`
}

type CheckInVisit struct {
	VisitID        int64    `json:"visitId" validate:"required"`
	CustID         int64    `json:"custId"`
	StartTime      *string  `json:"startTime"`
	EndTime        *string  `json:"endTime"`
	CancelTime     *string  `json:"cancelTime"`
	CancelReasonID *int64   `json:"cancelReasonId"`
	CreatedAt      *string  `json:"createdAt"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Photos         []string `json:"photos"`
}

type CheckInProduct struct {
	ProductID      int64    `json:"productId" validate:"required"`
	Stock          float64  `json:"stock"`
	NonSellableQty float64  `json:"nonSellableQty"`
	Qty            *float64 `json:"qty"` // unconsumed quantity still on the vehicle
}

type CheckInAction struct {
	ID        int64  `json:"id" validate:"required"`
	ActionID  int64  `json:"actionId" validate:"required"`
	VisitID   int64  `json:"visitId"`
	CreatedAt string `json:"createdAt"`
}

// InvoiceList accepts either a JSON array or a single invoice object; older
// client builds send the latter.
type InvoiceList []InvoiceInput

func (l *InvoiceList) UnmarshalJSON(b []byte) error {
	var many []InvoiceInput
	if err := json.Unmarshal(b, &many); err == nil {
		*l = many
		return nil
	}
	var one InvoiceInput
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*l = InvoiceList{one}
	return nil
}

type CheckInRequest struct {
	SalesmanID int64            `json:"salesmanId" validate:"required"`
	DeviceID   string           `json:"deviceId" validate:"required"`
	JourneyID  int64            `json:"journeyId" validate:"required"`
	Salesman   *CheckInJourney  `json:"salesman"`
	Visits     []CheckInVisit   `json:"visits" validate:"dive"`
	Invoices   InvoiceList      `json:"invoices"`
	Products   []CheckInProduct `json:"products" validate:"dive"`
	Actions    []CheckInAction  `json:"actions" validate:"dive"`
}

type CheckInSummary struct {
	Message      string `json:"message"`
	JourneyID    int64  `json:"journeyId"`
	InvoiceCount int    `json:"invoiceCount"`
	VisitCount   int    `json:"visitCount"`
	ActionCount  int    `json:"actionCount"`
	ProductCount int    `json:"productCount"`
}

func hasValue(p *string) bool { return p != nil && *p != "" }

// deriveVisitStatus picks the status from whichever timestamp is present;
// cancel wins over end, end over start. A visit update carrying none of the
// three is invalid and rejects the whole check-in.
func deriveVisitStatus(v *CheckInVisit) (string, error) {
	switch {
	case hasValue(v.CancelTime):
		return models.VisitCancel, nil
	case hasValue(v.EndTime):
		return models.VisitEnd, nil
	case hasValue(v.StartTime):
		return models.VisitStart, nil
	}
	return "", apperr.New(apperr.Validation, "visit %d carries no timestamp", v.VisitID)
}

// visitOrderKey is the string actions are ordered by when picking the most
// recent visit: createdAt when the client sent one, else startTime.
func visitOrderKey(v *CheckInVisit) string {
	if hasValue(v.CreatedAt) {
		return *v.CreatedAt
	}
	if hasValue(v.StartTime) {
		return *v.StartTime
	}
	return ""
}

// resolveOrphanVisitID assigns a start/end journey action with visitId 0 to a
// visit from the current request: the first visit in array order for a start
// action, the visit with the lexically largest order key for an end action.
func resolveOrphanVisitID(actionID int64, visits []CheckInVisit) (int64, bool) {
	if len(visits) == 0 {
		return 0, false
	}
	if actionID == models.ActionStartJourney {
		return visits[0].VisitID, true
	}
	best := 0
	bestKey := visitOrderKey(&visits[0])
	for i := 1; i < len(visits); i++ {
		if k := visitOrderKey(&visits[i]); k > bestKey {
			best, bestKey = i, k
		}
	}
	return visits[best].VisitID, true
}

// CheckIn reconciles the submitted batch. Steps 1–4 (journey, visits,
// invoices, stock) abort the transaction on any failure; individual action
// upserts in step 5 are best-effort telemetry and are skipped on error.
func (s *CheckInService) CheckIn(req *CheckInRequest) (*CheckInSummary, error) {
	summary := &CheckInSummary{JourneyID: req.JourneyID}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sm models.Salesman
		if err := tx.First(&sm, "sales_id = ?", req.SalesmanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "salesman %d not found", req.SalesmanID)
			}
			return apperr.Wrap(apperr.Internal, err, "query salesman")
		}
		if sm.DeviceID == "" || sm.DeviceID != req.DeviceID {
			return apperr.New(apperr.Unauthorized, "device not authorized for salesman %d", req.SalesmanID)
		}

		if err := s.applyJourney(tx, req); err != nil {
			return err
		}
		if err := s.applyVisits(tx, req, summary); err != nil {
			return err
		}
		if err := s.applyInvoices(tx, req, summary); err != nil {
			return err
		}
		if err := s.applyProducts(tx, req, summary); err != nil {
			return err
		}
		return s.applyActions(tx, req, summary)
	})
	if err != nil {
		return nil, err
	}
	summary.Message = "check-in applied"
	return summary, nil
}

// applyJourney partially updates the journey row and flips availability.
// Ending a journey also returns unconsumed fillup stock to the warehouse.
func (s *CheckInService) applyJourney(tx *gorm.DB, req *CheckInRequest) error {
	if req.Salesman == nil {
		return nil
	}
	start, end := req.Salesman.StartJourney, req.Salesman.EndJourney
	if !hasValue(start) && !hasValue(end) {
		return nil
	}

	updates := map[string]interface{}{}
	if hasValue(start) {
		updates["start_journey"] = *start
	}
	if hasValue(end) {
		updates["end_journey"] = *end
	}
	res := tx.Model(&models.Journey{}).
		Where("journey_id = ? AND sales_id = ?", req.JourneyID, req.SalesmanID).
		Updates(updates)
	if res.Error != nil {
		return apperr.Wrap(apperr.Internal, res.Error, "update journey")
	}
	if res.RowsAffected == 0 {
		// Journeys are created implicitly by whichever sync path sees them first.
		j := models.Journey{JourneyID: req.JourneyID, SalesID: req.SalesmanID,
			StartJourney: start, EndJourney: end}
		if err := tx.Create(&j).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "create journey")
		}
	}

	available := hasValue(end)
	if err := tx.Model(&models.Salesman{}).
		Where("sales_id = ?", req.SalesmanID).
		Updates(map[string]interface{}{"available": available, "updated_at": utils.Stamp()}).Error; err != nil {
		return apperr.Wrap(apperr.Internal, err, "update salesman availability")
	}

	if hasValue(end) {
		return s.returnFillupStock(tx, req)
	}
	return nil
}

// returnFillupStock adds back, per product loaded for this journey, whatever
// the device reports as unconsumed — or the full allocation when the device
// reported nothing for that product.
func (s *CheckInService) returnFillupStock(tx *gorm.DB, req *CheckInRequest) error {
	allocated, err := fillupQuantities(tx, req.SalesmanID, req.JourneyID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "query fillup quantities")
	}
	reported := make(map[int64]*float64, len(req.Products))
	for i := range req.Products {
		reported[req.Products[i].ProductID] = req.Products[i].Qty
	}
	for productID, alloc := range allocated {
		back := alloc
		if qty, ok := reported[productID]; ok && qty != nil {
			back = *qty
		}
		if back == 0 {
			continue
		}
		if err := tx.Model(&models.Product{}).
			Where("product_id = ?", productID).
			UpdateColumn("stock", gorm.Expr("stock + ?", back)).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "return fillup stock")
		}
	}
	return nil
}

func (s *CheckInService) applyVisits(tx *gorm.DB, req *CheckInRequest, summary *CheckInSummary) error {
	for i := range req.Visits {
		v := &req.Visits[i]
		status, err := deriveVisitStatus(v)
		if err != nil {
			return err
		}

		var existing models.Visit
		err = tx.Where("visit_id = ? AND sales_id = ? AND journey_id = ?",
			v.VisitID, req.SalesmanID, req.JourneyID).First(&existing).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{"status": status}
			if hasValue(v.StartTime) {
				updates["start_time"] = *v.StartTime
			}
			if hasValue(v.EndTime) {
				updates["end_time"] = *v.EndTime
			}
			if hasValue(v.CancelTime) {
				updates["cancel_time"] = *v.CancelTime
			}
			if v.CancelReasonID != nil {
				updates["cancel_reason_id"] = *v.CancelReasonID
			}
			if d := s.visitDistance(tx, v, existing.CustID); d != nil {
				updates["distance_km"] = *d
			}
			if err := tx.Model(&models.Visit{}).
				Where("visit_id = ? AND sales_id = ? AND journey_id = ?",
					v.VisitID, req.SalesmanID, req.JourneyID).
				Updates(updates).Error; err != nil {
				return apperr.Wrap(apperr.Internal, err, "update visit")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if v.CustID == 0 {
				return apperr.New(apperr.Validation, "visit %d has no customer", v.VisitID)
			}
			nv := models.Visit{
				VisitID:        v.VisitID,
				SalesID:        req.SalesmanID,
				JourneyID:      req.JourneyID,
				CustID:         v.CustID,
				Status:         status,
				StartTime:      v.StartTime,
				EndTime:        v.EndTime,
				CancelTime:     v.CancelTime,
				CancelReasonID: v.CancelReasonID,
				Photos:         v.Photos,
				DistanceKm:     s.visitDistance(tx, v, v.CustID),
			}
			if v.CreatedAt != nil {
				nv.CreatedAt = *v.CreatedAt
			}
			if err := tx.Create(&nv).Error; err != nil {
				return apperr.Wrap(apperr.Internal, err, "create visit")
			}
		default:
			return apperr.Wrap(apperr.Internal, err, "query visit")
		}
		summary.VisitCount++
	}
	return nil
}

// visitDistance computes how far from the customer's registered location the
// visit was started. Missing coordinates on either side just skip the field.
func (s *CheckInService) visitDistance(tx *gorm.DB, v *CheckInVisit, custID int64) *float64 {
	if v.Latitude == nil || v.Longitude == nil || custID == 0 {
		return nil
	}
	var c models.Customer
	if err := tx.First(&c, "cust_id = ?", custID).Error; err != nil {
		return nil
	}
	if c.Latitude == 0 && c.Longitude == 0 {
		return nil
	}
	d := utils.DistanceKm(*v.Latitude, *v.Longitude, c.Latitude, c.Longitude)
	return &d
}

func (s *CheckInService) applyInvoices(tx *gorm.DB, req *CheckInRequest, summary *CheckInSummary) error {
	for i := range req.Invoices {
		inv := req.Invoices[i]
		inv.SalesID = req.SalesmanID
		if inv.JourneyID == 0 {
			inv.JourneyID = req.JourneyID
		}
		if _, err := s.invoices.CreateTx(tx, &inv); err != nil {
			return err
		}
		summary.InvoiceCount++
	}
	return nil
}

// applyProducts overwrites stock counters with the device-reported values.
// The device is authoritative for final resting stock here; this is not a
// delta like the fillup draw-down.
func (s *CheckInService) applyProducts(tx *gorm.DB, req *CheckInRequest, summary *CheckInSummary) error {
	for i := range req.Products {
		p := &req.Products[i]
		if err := tx.Model(&models.Product{}).
			Where("product_id = ?", p.ProductID).
			Updates(map[string]interface{}{
				"stock":            p.Stock,
				"non_sellable_qty": p.NonSellableQty,
			}).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "sync product stock")
		}
		summary.ProductCount++
	}
	return nil
}

// applyActions resolves orphaned start/end journey actions to a visit, drops
// what cannot be resolved or validated, and upserts the rest. Per-action
// upsert failures are logged and skipped: action logs are telemetry, losing
// one must not revert a whole day of field work.
func (s *CheckInService) applyActions(tx *gorm.DB, req *CheckInRequest, summary *CheckInSummary) error {
	if len(req.Actions) == 0 {
		return nil
	}

	candidates := make([]models.ActionDetails, 0, len(req.Actions))
	for _, a := range req.Actions {
		visitID := a.VisitID
		if (a.ActionID == models.ActionStartJourney || a.ActionID == models.ActionEndJourney) && visitID == 0 {
			if id, ok := resolveOrphanVisitID(a.ActionID, req.Visits); ok {
				visitID = id
			} else if id, ok := s.resolvePersistedVisitID(tx, a.ActionID, req.SalesmanID, req.JourneyID); ok {
				visitID = id
			}
			if visitID == 0 {
				s.log.WithFields(logrus.Fields{
					"salesId": req.SalesmanID, "journeyId": req.JourneyID,
					"actionId": a.ActionID, "id": a.ID,
				}).Warn("dropping action: no visit could be resolved")
				continue
			}
		}
		candidates = append(candidates, models.ActionDetails{
			ID: a.ID, JourneyID: req.JourneyID, VisitID: visitID,
			SalesID: req.SalesmanID, ActionID: a.ActionID, CreatedAt: a.CreatedAt,
		})
	}
	if len(candidates) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(candidates))
	seen := make(map[int64]bool, len(candidates))
	for _, c := range candidates {
		if !seen[c.VisitID] {
			seen[c.VisitID] = true
			ids = append(ids, c.VisitID)
		}
	}
	var persisted []int64
	if err := tx.Model(&models.Visit{}).
		Where("sales_id = ? AND journey_id = ? AND visit_id IN ?", req.SalesmanID, req.JourneyID, ids).
		Pluck("visit_id", &persisted).Error; err != nil {
		return apperr.Wrap(apperr.Internal, err, "validate action visits")
	}
	valid := make(map[int64]bool, len(persisted))
	for _, id := range persisted {
		valid[id] = true
	}

	for _, c := range candidates {
		if !valid[c.VisitID] {
			s.log.WithFields(logrus.Fields{
				"salesId": c.SalesID, "journeyId": c.JourneyID, "visitId": c.VisitID, "id": c.ID,
			}).Warn("dropping action: visit does not exist")
			continue
		}
		if err := s.upsertAction(tx, &c); err != nil {
			s.log.WithFields(logrus.Fields{
				"salesId": c.SalesID, "journeyId": c.JourneyID, "visitId": c.VisitID, "id": c.ID,
			}).WithError(err).Warn("skipping action upsert")
			continue
		}
		summary.ActionCount++
	}
	return nil
}

// resolvePersistedVisitID falls back to visits already in the database when
// the request carried none: oldest for a start action, newest for an end.
func (s *CheckInService) resolvePersistedVisitID(tx *gorm.DB, actionID, salesID, journeyID int64) (int64, bool) {
	order := "created_at ASC"
	if actionID == models.ActionEndJourney {
		order = "created_at DESC"
	}
	var v models.Visit
	err := tx.Where("sales_id = ? AND journey_id = ?", salesID, journeyID).
		Order(order).First(&v).Error
	if err != nil {
		return 0, false
	}
	return v.VisitID, true
}

func (s *CheckInService) upsertAction(tx *gorm.DB, c *models.ActionDetails) error {
	var existing models.ActionDetails
	err := tx.Where("id = ? AND journey_id = ? AND visit_id = ?", c.ID, c.JourneyID, c.VisitID).
		First(&existing).Error
	if err == nil {
		updates := map[string]interface{}{"action_id": c.ActionID, "sales_id": c.SalesID}
		if c.CreatedAt != "" {
			updates["created_at"] = c.CreatedAt
		}
		return tx.Model(&models.ActionDetails{}).
			Where("id = ? AND journey_id = ? AND visit_id = ?", c.ID, c.JourneyID, c.VisitID).
			Updates(updates).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(c).Error
}
