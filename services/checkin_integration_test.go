package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
)

// These tests need a throwaway Postgres database. Set TEST_DB_DSN to run
// them; they migrate the schema into whatever database the DSN points at.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("set TEST_DB_DSN to run database integration tests")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	err = db.AutoMigrate(
		&models.Salesman{}, &models.Journey{}, &models.Visit{},
		&models.InvoiceHeader{}, &models.InvoiceItem{},
		&models.Product{}, &models.ProductUOM{},
		&models.Fillup{}, &models.FillupItem{},
		&models.ActionDetails{}, &models.Customer{},
		&models.Region{}, &models.Industry{}, &models.Authority{},
		&models.SalesmanAuthority{}, &models.Reason{}, &models.Setting{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	tables := []string{
		"action_details", "invoice_items", "invoice_headers", "fillup_items",
		"fillups", "visits", "journeys", "salesmen", "customers", "products",
		"product_uoms", "settings",
	}
	for _, tb := range tables {
		if err := db.Exec("TRUNCATE TABLE " + tb + " CASCADE").Error; err != nil {
			t.Fatalf("truncate %s: %v", tb, err)
		}
	}
	return db
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func seedFieldDay(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, m := range []interface{}{
		&models.Salesman{SalesID: 1000000, Name: "Field One", Phone: "0100000001",
			PasswordHash: "x", DeviceID: "D1", Status: models.SalesmanActive, Available: true},
		&models.Customer{CustID: 1, Name: "Corner Shop", Latitude: 30.05, Longitude: 31.23},
		&models.Journey{JourneyID: 1, SalesID: 1000000},
		&models.Visit{VisitID: 1, SalesID: 1000000, JourneyID: 1, CustID: 1,
			Status: models.VisitWait, CreatedAt: "2024-01-01 07:00:00.000"},
		&models.Product{ProductID: 10, Name: "Cola 330ml", BaseUom: 1, Stock: 100},
		&models.Product{ProductID: 11, Name: "Water 1.5L", BaseUom: 1, Stock: 50},
	} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed %T: %v", m, err)
		}
	}
}

func TestCheckInFieldDayScenario(t *testing.T) {
	db := testDB(t)
	seedFieldDay(t, db)
	log := testLogger()
	svc := NewCheckInService(db, log, NewInvoiceService(db, log))

	sum, err := svc.CheckIn(&CheckInRequest{
		SalesmanID: 1000000,
		DeviceID:   "D1",
		JourneyID:  1,
		Salesman:   &CheckInJourney{StartJourney: strp("2024-01-01 08:00:00.000")},
		Visits: []CheckInVisit{
			{VisitID: 1, CustID: 1, StartTime: strp("2024-01-01 08:05:00.000")},
		},
		Actions: []CheckInAction{
			{ID: 1, ActionID: models.ActionStartJourney, VisitID: 0, CreatedAt: "2024-01-01 08:00:00.000"},
		},
	})
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if sum.VisitCount != 1 || sum.ActionCount != 1 {
		t.Errorf("summary = %+v", sum)
	}

	var j models.Journey
	if err := db.First(&j, "journey_id = ? AND sales_id = ?", 1, 1000000).Error; err != nil {
		t.Fatalf("journey: %v", err)
	}
	if j.StartJourney == nil || *j.StartJourney != "2024-01-01 08:00:00.000" {
		t.Errorf("journey.startJourney = %v", j.StartJourney)
	}

	var sm models.Salesman
	db.First(&sm, "sales_id = ?", 1000000)
	if sm.Available {
		t.Error("salesman should not be available after startJourney")
	}

	var v models.Visit
	db.First(&v, "visit_id = ? AND sales_id = ? AND journey_id = ?", 1, 1000000, 1)
	if v.Status != models.VisitStart {
		t.Errorf("visit status = %q, want START", v.Status)
	}

	var a models.ActionDetails
	if err := db.First(&a, "id = ? AND journey_id = ? AND sales_id = ?", 1, 1, 1000000).Error; err != nil {
		t.Fatalf("action: %v", err)
	}
	if a.VisitID != 1 {
		t.Errorf("action.visitId = %d, want 1 (resolved from request visits)", a.VisitID)
	}
}

func TestCheckInOrphanActionFallsBackToPersistedVisits(t *testing.T) {
	db := testDB(t)
	seedFieldDay(t, db)
	log := testLogger()
	svc := NewCheckInService(db, log, NewInvoiceService(db, log))

	// Second visit created after the seeded 07:00 one.
	if err := db.Create(&models.Visit{
		VisitID: 2, SalesID: 1000000, JourneyID: 1, CustID: 1,
		Status: models.VisitWait, CreatedAt: "2024-01-01 09:00:00.000",
	}).Error; err != nil {
		t.Fatalf("seed visit 2: %v", err)
	}

	// No visits in the request, so both orphans must resolve against the
	// database: oldest created_at for the start, newest for the end.
	sum, err := svc.CheckIn(&CheckInRequest{
		SalesmanID: 1000000,
		DeviceID:   "D1",
		JourneyID:  1,
		Actions: []CheckInAction{
			{ID: 1, ActionID: models.ActionStartJourney, VisitID: 0, CreatedAt: "2024-01-01 08:00:00.000"},
			{ID: 2, ActionID: models.ActionEndJourney, VisitID: 0, CreatedAt: "2024-01-01 18:00:00.000"},
		},
	})
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if sum.ActionCount != 2 {
		t.Errorf("actionCount = %d, want 2", sum.ActionCount)
	}

	var start models.ActionDetails
	if err := db.First(&start, "id = ? AND journey_id = ? AND sales_id = ?", 1, 1, 1000000).Error; err != nil {
		t.Fatalf("start action: %v", err)
	}
	if start.VisitID != 1 {
		t.Errorf("start action visitId = %d, want oldest visit 1", start.VisitID)
	}

	var end models.ActionDetails
	if err := db.First(&end, "id = ? AND journey_id = ? AND sales_id = ?", 2, 1, 1000000).Error; err != nil {
		t.Fatalf("end action: %v", err)
	}
	if end.VisitID != 2 {
		t.Errorf("end action visitId = %d, want newest visit 2", end.VisitID)
	}
}

func TestCheckInDeviceMismatchRollsBackEverything(t *testing.T) {
	db := testDB(t)
	seedFieldDay(t, db)
	log := testLogger()
	svc := NewCheckInService(db, log, NewInvoiceService(db, log))

	_, err := svc.CheckIn(&CheckInRequest{
		SalesmanID: 1000000,
		DeviceID:   "WRONG",
		JourneyID:  1,
		Salesman:   &CheckInJourney{StartJourney: strp("2024-01-01 08:00:00.000")},
	})
	if apperr.KindOf(err) != apperr.Unauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	var j models.Journey
	db.First(&j, "journey_id = ? AND sales_id = ?", 1, 1000000)
	if j.StartJourney != nil {
		t.Error("journey must be untouched after a rejected check-in")
	}
}

func TestCheckInInvalidVisitAbortsTransaction(t *testing.T) {
	db := testDB(t)
	seedFieldDay(t, db)
	log := testLogger()
	svc := NewCheckInService(db, log, NewInvoiceService(db, log))

	_, err := svc.CheckIn(&CheckInRequest{
		SalesmanID: 1000000,
		DeviceID:   "D1",
		JourneyID:  1,
		Salesman:   &CheckInJourney{StartJourney: strp("2024-01-01 08:00:00.000")},
		Visits:     []CheckInVisit{{VisitID: 1, CustID: 1}}, // no timestamp
	})
	if apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation error, got %v", err)
	}
	var sm models.Salesman
	db.First(&sm, "sales_id = ?", 1000000)
	if !sm.Available {
		t.Error("availability flip must roll back with the rejected visit")
	}
}

func TestCheckInInvoiceIdempotent(t *testing.T) {
	db := testDB(t)
	seedFieldDay(t, db)
	log := testLogger()
	svc := NewCheckInService(db, log, NewInvoiceService(db, log))

	req := &CheckInRequest{
		SalesmanID: 1000000,
		DeviceID:   "D1",
		JourneyID:  1,
		Visits: []CheckInVisit{
			{VisitID: 1, CustID: 1, StartTime: strp("2024-01-01 08:05:00.000")},
		},
		Invoices: InvoiceList{{
			InvID:  "INV-1",
			CustID: 1, VisitID: 1,
			Items: []InvoiceItemInput{{ProductID: 10, UomID: 1, Qty: 3}},
		}},
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.CheckIn(req); err != nil {
			t.Fatalf("CheckIn #%d: %v", i+1, err)
		}
	}

	var headers int64
	db.Model(&models.InvoiceHeader{}).Where("inv_id = ? AND sales_id = ?", "INV-1", 1000000).Count(&headers)
	if headers != 1 {
		t.Errorf("headers = %d, want 1", headers)
	}
	var items int64
	db.Model(&models.InvoiceItem{}).Where("inv_id = ? AND sales_id = ?", "INV-1", 1000000).Count(&items)
	if items != 1 {
		t.Errorf("items = %d, want 1", items)
	}
}

func TestEndJourneyReturnsFillupStock(t *testing.T) {
	db := testDB(t)
	seedFieldDay(t, db)
	log := testLogger()

	fillups := NewFillupService(db, log)
	if _, err := fillups.Create(&FillupInput{
		SalesID: 1000000, JourneyID: 1,
		Items: []FillupItemInput{{ProductID: 10, Qty: 20}, {ProductID: 11, Qty: 5}},
	}); err != nil {
		t.Fatalf("fillup: %v", err)
	}
	var p models.Product
	db.First(&p, "product_id = ?", 10)
	if p.Stock != 80 {
		t.Fatalf("fillup must decrement stock, got %v", p.Stock)
	}

	svc := NewCheckInService(db, log, NewInvoiceService(db, log))
	qty := 12.0
	_, err := svc.CheckIn(&CheckInRequest{
		SalesmanID: 1000000,
		DeviceID:   "D1",
		JourneyID:  1,
		Salesman:   &CheckInJourney{EndJourney: strp("2024-01-01 18:00:00.000")},
		// Product 10 reports 12 unconsumed; product 11 reports nothing, so its
		// full allocation of 5 comes back.
		Products: []CheckInProduct{{ProductID: 10, Stock: 92, Qty: &qty}},
	})
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	var sm models.Salesman
	db.First(&sm, "sales_id = ?", 1000000)
	if !sm.Available {
		t.Error("salesman should be available after endJourney")
	}

	// Step 4 overwrites product 10 with the device value after the return.
	db.First(&p, "product_id = ?", 10)
	if p.Stock != 92 {
		t.Errorf("product 10 stock = %v, want device-reported 92", p.Stock)
	}
	db.First(&p, "product_id = ?", 11)
	if p.Stock != 50 {
		t.Errorf("product 11 stock = %v, want 45+5 returned = 50", p.Stock)
	}
}

func TestFillupInsufficientStock(t *testing.T) {
	db := testDB(t)
	seedFieldDay(t, db)
	svc := NewFillupService(db, testLogger())

	_, err := svc.Create(&FillupInput{
		SalesID: 1000000, JourneyID: 1,
		Items: []FillupItemInput{{ProductID: 11, Qty: 500}},
	})
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	var p models.Product
	db.First(&p, "product_id = ?", 11)
	if p.Stock != 50 {
		t.Errorf("stock = %v, decrement must roll back", p.Stock)
	}
}

func TestJourneyCompositeKeyAndOpenInvariant(t *testing.T) {
	db := testDB(t)
	seedFieldDay(t, db)
	svc := NewJourneyService(db, testLogger())

	// journey (1,1000000) exists and is open: a second journey must be refused.
	_, err := svc.Create(&JourneyInput{SalesID: 1000000})
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("expected conflict while journey 1 is open, got %v", err)
	}

	end := "2024-01-01 18:00:00.000"
	db.Model(&models.Journey{}).
		Where("journey_id = ? AND sales_id = ?", 1, 1000000).
		Update("end_journey", end)

	j, err := svc.Create(&JourneyInput{SalesID: 1000000})
	if err != nil {
		t.Fatalf("create after close: %v", err)
	}
	if j.JourneyID != 2 {
		t.Errorf("journeyId = %d, want 2", j.JourneyID)
	}

	// Same journeyId under another salesman is a distinct row.
	other := models.Salesman{SalesID: 2000000, Name: "Two", Phone: "0100000002",
		PasswordHash: "x", Status: models.SalesmanActive, Available: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed second salesman: %v", err)
	}
	if err := db.Create(&models.Journey{JourneyID: 1, SalesID: 2000000}).Error; err != nil {
		t.Errorf("journey (1,2000000) must not collide with (1,1000000): %v", err)
	}
}

func TestLoadAssembly(t *testing.T) {
	db := testDB(t)
	seedFieldDay(t, db)
	log := testLogger()

	fillups := NewFillupService(db, log)
	if _, err := fillups.Create(&FillupInput{
		SalesID: 1000000, JourneyID: 1,
		Items: []FillupItemInput{{ProductID: 10, Qty: 20}},
	}); err != nil {
		t.Fatalf("fillup: %v", err)
	}

	svc := NewLoadService(db, log)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	payload, err := svc.Load(ctx, 1000000)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if payload.Journey == nil || payload.Journey.JourneyID != 1 {
		t.Fatalf("journey = %+v", payload.Journey)
	}
	if len(payload.Visits) != 1 {
		t.Errorf("visits = %d, want 1", len(payload.Visits))
	}
	if payload.NextVisitID != 2 {
		t.Errorf("nextVisitId = %d, want 2", payload.NextVisitID)
	}
	if payload.StartIDInvoice != deriveStartInvoiceID(1000000) {
		t.Errorf("startIdInvoice = %q", payload.StartIDInvoice)
	}
	var remaining float64 = -1
	for _, p := range payload.Products {
		if p.ProductID == 10 {
			remaining = p.RemainingQty
		}
	}
	if remaining != 20 {
		t.Errorf("remainingQty for product 10 = %v, want 20", remaining)
	}
	// Customer 1 already has a visit in journey 1, so the unvisited list is empty.
	if len(payload.Customers) != 0 {
		t.Errorf("customers = %d, want 0", len(payload.Customers))
	}

	if _, err := svc.Load(ctx, 999); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("expected not found for unknown salesman, got %v", err)
	}
}

func TestLoadNextInvoiceSeedAfterFirstInvoice(t *testing.T) {
	db := testDB(t)
	seedFieldDay(t, db)
	log := testLogger()

	inv := NewInvoiceService(db, log)
	if _, err := inv.Create(&InvoiceInput{
		InvID: "INV-9", SalesID: 1000000, CustID: 1, JourneyID: 1, VisitID: 1,
		CreatedAt: fmt.Sprintf("%d", time.Now().Year()) + "-01-02 10:00:00.000",
		Items:     []InvoiceItemInput{{ProductID: 10, UomID: 1, Qty: 1}},
	}); err != nil {
		t.Fatalf("invoice: %v", err)
	}

	svc := NewLoadService(db, log)
	payload, err := svc.Load(context.Background(), 1000000)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if payload.StartIDInvoice != "INV-9" {
		t.Errorf("startIdInvoice = %q, want last invoice id", payload.StartIDInvoice)
	}
}
