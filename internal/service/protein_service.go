package service

import (
	"context"
	"errors"
	"time"

	"liftlog/fitness-api/internal/domain"
	"liftlog/fitness-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidGoal    = errors.New("protein goal must be between 1 and 500")
	ErrIntakeConflict = errors.New("intake update conflicted with a concurrent daily reset")
)

// The date format used for the daily rollover comparison.
const dateLayout = "2006-01-02"

// ProteinService tracks daily protein intake with a lazy calendar-day reset:
// the counter is zeroed on the first access of a new day rather than by a
// scheduled job, so a missed timer can never leave stale state behind.
// "Today" is evaluated in the configured reference time zone.
type ProteinService interface {
	// GetToday returns the user's record for the current day, creating it on
	// first access and applying the daily reset if the date rolled over.
	GetToday(ctx context.Context, userID primitive.ObjectID) (*domain.ProteinRecord, error)

	// UpdateIntake adds delta (which may be negative) to today's counter.
	// The result is clamped to [0, MaxDailyIntake].
	UpdateIntake(ctx context.Context, userID primitive.ObjectID, delta int) (*domain.ProteinRecord, error)

	// SetGoal changes the daily goal; values outside [1, 500] are rejected.
	SetGoal(ctx context.Context, userID primitive.ObjectID, goal int) (*domain.ProteinRecord, error)
}

// proteinService implements the ProteinService interface.
type proteinService struct {
	proteinRepo repository.ProteinRepository
	location    *time.Location
	now         func() time.Time
}

// NewProteinService creates a new instance of proteinService. The location
// fixes which wall clock decides when a new day starts.
func NewProteinService(proteinRepo repository.ProteinRepository, location *time.Location) ProteinService {
	if location == nil {
		location = time.UTC
	}
	return &proteinService{
		proteinRepo: proteinRepo,
		location:    location,
		now:         time.Now,
	}
}

func (s *proteinService) today() string {
	return s.now().In(s.location).Format(dateLayout)
}

// GetToday fetches the record, resetting the counter when the stored date is
// not today. Both the creation and the reset are conditional writes, so
// concurrent calls at a midnight rollover all converge on the same zeroed
// record.
func (s *proteinService) GetToday(ctx context.Context, userID primitive.ObjectID) (*domain.ProteinRecord, error) {
	today := s.today()
	record, err := s.proteinRepo.GetOrCreate(ctx, userID, domain.DefaultProteinGoal, today)
	if err != nil {
		return nil, err
	}
	if record.LastUpdated == today {
		return record, nil
	}
	return s.proteinRepo.ResetDaily(ctx, userID, today)
}

// UpdateIntake applies the reset check, then adjusts today's counter.
func (s *proteinService) UpdateIntake(ctx context.Context, userID primitive.ObjectID, delta int) (*domain.ProteinRecord, error) {
	// Two attempts: if the calendar day rolls over between the reset check
	// and the adjustment, the conditional write fails once and the second
	// pass lands on the fresh day.
	for attempt := 0; attempt < 2; attempt++ {
		if _, err := s.GetToday(ctx, userID); err != nil {
			return nil, err
		}
		record, err := s.proteinRepo.AdjustIntake(ctx, userID, s.today(), delta, domain.MaxDailyIntake)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}
	}
	return nil, ErrIntakeConflict
}

// SetGoal validates and persists a new daily goal.
func (s *proteinService) SetGoal(ctx context.Context, userID primitive.ObjectID, goal int) (*domain.ProteinRecord, error) {
	if goal < domain.MinProteinGoal || goal > domain.MaxProteinGoal {
		return nil, ErrInvalidGoal
	}

	// Make sure the record exists and is on today's date before writing the
	// goal, so the response reflects a current counter.
	if _, err := s.GetToday(ctx, userID); err != nil {
		return nil, err
	}
	return s.proteinRepo.SetGoal(ctx, userID, goal)
}
