package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
)

type JourneyService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewJourneyService(db *gorm.DB, log *logrus.Logger) *JourneyService {
	return &JourneyService{db: db, log: log}
}

// latestJourney returns the highest-numbered journey for a salesman, nil when
// the salesman has never had one.
func latestJourney(db *gorm.DB, salesID int64) (*models.Journey, error) {
	var j models.Journey
	err := db.Where("sales_id = ?", salesID).Order("journey_id DESC").First(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

type JourneyInput struct {
	JourneyID    int64   `json:"journeyId"`
	SalesID      int64   `json:"salesId" validate:"required"`
	RegionID     *int64  `json:"regionId"`
	StartJourney *string `json:"startJourney"`
}

// Create opens a new journey. A salesman may not start one while the current
// journey has no endJourney.
func (s *JourneyService) Create(in *JourneyInput) (*models.Journey, error) {
	var out models.Journey
	err := s.db.Transaction(func(tx *gorm.DB) error {
		last, err := latestJourney(tx, in.SalesID)
		if err != nil {
			return apperr.Wrap(apperr.Internal, err, "query latest journey")
		}
		if last != nil && last.Open() {
			return apperr.New(apperr.Conflict,
				"journey %d is still open for salesman %d", last.JourneyID, in.SalesID)
		}
		id := in.JourneyID
		if id == 0 {
			id = 1
			if last != nil {
				id = last.JourneyID + 1
			}
		}
		out = models.Journey{
			JourneyID:    id,
			SalesID:      in.SalesID,
			RegionID:     in.RegionID,
			StartJourney: in.StartJourney,
		}
		if err := tx.Create(&out).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "create journey")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
