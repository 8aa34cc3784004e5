package services

import (
	"encoding/json"
	"testing"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
)

func strp(s string) *string { return &s }

func TestDeriveVisitStatus(t *testing.T) {
	tests := []struct {
		name    string
		visit   CheckInVisit
		want    string
		wantErr bool
	}{
		{"start only", CheckInVisit{VisitID: 1, StartTime: strp("2024-01-01 08:05:00.000")}, models.VisitStart, false},
		{"end only", CheckInVisit{VisitID: 1, EndTime: strp("2024-01-01 09:00:00.000")}, models.VisitEnd, false},
		{"cancel only", CheckInVisit{VisitID: 1, CancelTime: strp("2024-01-01 09:00:00.000")}, models.VisitCancel, false},
		{"start and end", CheckInVisit{VisitID: 1, StartTime: strp("a"), EndTime: strp("b")}, models.VisitEnd, false},
		{"cancel beats end", CheckInVisit{VisitID: 1, EndTime: strp("b"), CancelTime: strp("c")}, models.VisitCancel, false},
		{"cancel beats all", CheckInVisit{VisitID: 1, StartTime: strp("a"), EndTime: strp("b"), CancelTime: strp("c")}, models.VisitCancel, false},
		{"no timestamps", CheckInVisit{VisitID: 1}, "", true},
		{"empty strings count as absent", CheckInVisit{VisitID: 1, StartTime: strp(""), EndTime: strp("")}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := deriveVisitStatus(&tt.visit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("deriveVisitStatus() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if apperr.KindOf(err) != apperr.Validation {
					t.Errorf("expected a validation error, got kind %v", apperr.KindOf(err))
				}
				return
			}
			if got != tt.want {
				t.Errorf("deriveVisitStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveOrphanVisitID(t *testing.T) {
	visits := []CheckInVisit{
		{VisitID: 3, StartTime: strp("2024-01-01 08:05:00.000")},
		{VisitID: 7, StartTime: strp("2024-01-01 11:30:00.000")},
		{VisitID: 5, CreatedAt: strp("2024-01-01 09:10:00.000")},
	}

	t.Run("start action takes the first visit in array order", func(t *testing.T) {
		id, ok := resolveOrphanVisitID(models.ActionStartJourney, visits)
		if !ok || id != 3 {
			t.Errorf("got (%d, %v), want (3, true)", id, ok)
		}
	})

	t.Run("end action takes the lexically largest createdAt/startTime", func(t *testing.T) {
		id, ok := resolveOrphanVisitID(models.ActionEndJourney, visits)
		if !ok || id != 7 {
			t.Errorf("got (%d, %v), want (7, true)", id, ok)
		}
	})

	t.Run("createdAt wins over startTime when both present", func(t *testing.T) {
		vs := []CheckInVisit{
			{VisitID: 1, CreatedAt: strp("2024-01-01 23:00:00.000"), StartTime: strp("2024-01-01 01:00:00.000")},
			{VisitID: 2, StartTime: strp("2024-01-01 12:00:00.000")},
		}
		id, ok := resolveOrphanVisitID(models.ActionEndJourney, vs)
		if !ok || id != 1 {
			t.Errorf("got (%d, %v), want (1, true)", id, ok)
		}
	})

	t.Run("no visits in request", func(t *testing.T) {
		if id, ok := resolveOrphanVisitID(models.ActionStartJourney, nil); ok || id != 0 {
			t.Errorf("got (%d, %v), want (0, false)", id, ok)
		}
	})

	t.Run("tie keeps array order", func(t *testing.T) {
		vs := []CheckInVisit{
			{VisitID: 9, StartTime: strp("2024-01-01 10:00:00.000")},
			{VisitID: 4, StartTime: strp("2024-01-01 10:00:00.000")},
		}
		id, _ := resolveOrphanVisitID(models.ActionEndJourney, vs)
		if id != 9 {
			t.Errorf("got %d, want 9", id)
		}
	})
}

func TestNormalizeReasons(t *testing.T) {
	t.Run("header zero means none", func(t *testing.T) {
		in := &InvoiceInput{Items: []InvoiceItemInput{{ReasonID: 0}, {ReasonID: 4}}}
		header, items := normalizeReasons(in)
		if header != nil {
			t.Errorf("header = %v, want nil", *header)
		}
		if items[0] != nil {
			t.Errorf("items[0] = %v, want nil", *items[0])
		}
		if items[1] == nil || *items[1] != 4 {
			t.Errorf("items[1] = %v, want 4", items[1])
		}
	})

	t.Run("nonzero header clears item reasons", func(t *testing.T) {
		in := &InvoiceInput{ReasonID: 2, Items: []InvoiceItemInput{{ReasonID: 4}, {ReasonID: 5}}}
		header, items := normalizeReasons(in)
		if header == nil || *header != 2 {
			t.Fatalf("header = %v, want 2", header)
		}
		for i, r := range items {
			if r != nil {
				t.Errorf("items[%d] = %v, want nil", i, *r)
			}
		}
	})
}

func TestInvoiceListAcceptsObjectOrArray(t *testing.T) {
	var l InvoiceList
	if err := json.Unmarshal([]byte(`{"invId":"A1","custId":5,"items":[]}`), &l); err != nil {
		t.Fatalf("single object: %v", err)
	}
	if len(l) != 1 || l[0].InvID != "A1" {
		t.Fatalf("single object parsed as %+v", l)
	}

	l = nil
	if err := json.Unmarshal([]byte(`[{"invId":"A1"},{"invId":"A2"}]`), &l); err != nil {
		t.Fatalf("array: %v", err)
	}
	if len(l) != 2 || l[1].InvID != "A2" {
		t.Fatalf("array parsed as %+v", l)
	}
}
