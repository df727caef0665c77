package service

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"attendance-core/models"
	"attendance-core/pkg/delaycalc"
	"attendance-core/repository"
	syncpkg "attendance-core/sync"
)

// AbsenceSweeper creates status=absent records for active employees who
// never checked in, once their center's day is over. Runs from a cron
// schedule; every pass is idempotent because the unique (employee_id, date)
// index rejects records that a late check-in already created.
type AbsenceSweeper struct {
	employees  repository.EmployeeRepository
	centers    repository.CenterRepository
	attendance repository.AttendanceRepository
	clock      TimeSource
	calendar   WorkingDayChecker
	commands   CommandExecutor
}

func NewAbsenceSweeper(
	employees repository.EmployeeRepository,
	centers repository.CenterRepository,
	attendance repository.AttendanceRepository,
	clock TimeSource,
	calendar WorkingDayChecker,
	commands CommandExecutor,
) *AbsenceSweeper {
	return &AbsenceSweeper{
		employees:  employees,
		centers:    centers,
		attendance: attendance,
		clock:      clock,
		calendar:   calendar,
		commands:   commands,
	}
}

// Run sweeps every active center whose closing time (plus checkout grace)
// has passed today. Returns the number of absences recorded.
func (s *AbsenceSweeper) Run(ctx context.Context) (int, error) {
	now := s.clock.Now()
	today := delaycalc.DateString(now)

	centers, err := s.centers.FindAllActive(ctx)
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range centers {
		center := &centers[i]

		endOfDay, err := delaycalc.At(now, center.EndTime)
		if err != nil {
			log.Printf("absence sweep: center %s has invalid end_time %q, skipping", center.Name, center.EndTime)
			continue
		}
		if now.Before(endOfDay.Add(time.Duration(center.CheckOutGrace) * time.Minute)) {
			continue
		}

		workingDay, err := s.calendar.IsWorkingDay(ctx, center, now)
		if err != nil {
			return marked, err
		}
		if !workingDay {
			continue
		}

		employees, err := s.employees.FindActiveByCenter(ctx, center.ID)
		if err != nil {
			return marked, err
		}

		for i := range employees {
			employee := &employees[i]
			existing, err := s.attendance.FindByEmployeeAndDate(ctx, employee.ID, today)
			if err != nil {
				return marked, err
			}
			if existing != nil {
				continue
			}

			record := &models.AttendanceRecord{
				ID:          primitive.NewObjectID(),
				EmployeeID:  employee.ID,
				CenterID:    center.ID,
				Date:        today,
				Status:      models.StatusAbsent,
				TimeTrusted: s.clock.Trusted(),
			}
			err = <-s.commands.Execute(ctx, syncpkg.AttendanceInsert(*record, func(ctx context.Context) error {
				_, err := s.attendance.Create(ctx, record)
				return err
			}))
			if errors.Is(err, repository.ErrDuplicateDay) {
				// The employee checked in between our read and write.
				continue
			}
			if err != nil {
				return marked, err
			}
			marked++
		}
	}
	return marked, nil
}
