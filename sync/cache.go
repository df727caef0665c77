package sync

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"attendance-core/config"
	"attendance-core/models"
)

// Cache mirrors the employees, centers and attendance tables in memory.
// Events apply row-level upserts instead of whole-table refetches; ReplaceAll
// backs the manual full refresh.
type Cache struct {
	mu         sync.RWMutex
	employees  map[primitive.ObjectID]models.Employee
	centers    map[primitive.ObjectID]models.Center
	attendance map[primitive.ObjectID]models.AttendanceRecord
}

func NewCache() *Cache {
	return &Cache{
		employees:  make(map[primitive.ObjectID]models.Employee),
		centers:    make(map[primitive.ObjectID]models.Center),
		attendance: make(map[primitive.ObjectID]models.AttendanceRecord),
	}
}

// ApplyEvent folds one table event into the cache. Unknown tables and
// replace/error events are ignored here; replace goes through ReplaceAll.
func (c *Cache) ApplyEvent(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch event.Table {
	case config.EmployeeCollection:
		switch row := event.Row.(type) {
		case models.Employee:
			c.employees[row.ID] = row
		case primitive.ObjectID:
			if event.Type == EventDelete {
				delete(c.employees, row)
			}
		}
	case config.CenterCollection:
		switch row := event.Row.(type) {
		case models.Center:
			c.centers[row.ID] = row
		case primitive.ObjectID:
			if event.Type == EventDelete {
				delete(c.centers, row)
			}
		}
	case config.AttendanceCollection:
		switch row := event.Row.(type) {
		case models.AttendanceRecord:
			c.attendance[row.ID] = row
		case primitive.ObjectID:
			if event.Type == EventDelete {
				delete(c.attendance, row)
			}
		}
	}
}

func (c *Cache) ReplaceEmployees(rows []models.Employee) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.employees = make(map[primitive.ObjectID]models.Employee, len(rows))
	for _, row := range rows {
		c.employees[row.ID] = row
	}
}

func (c *Cache) ReplaceCenters(rows []models.Center) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.centers = make(map[primitive.ObjectID]models.Center, len(rows))
	for _, row := range rows {
		c.centers[row.ID] = row
	}
}

func (c *Cache) ReplaceAttendance(rows []models.AttendanceRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attendance = make(map[primitive.ObjectID]models.AttendanceRecord, len(rows))
	for _, row := range rows {
		c.attendance[row.ID] = row
	}
}

func (c *Cache) Employee(id primitive.ObjectID) (models.Employee, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	row, ok := c.employees[id]
	return row, ok
}

func (c *Cache) Center(id primitive.ObjectID) (models.Center, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	row, ok := c.centers[id]
	return row, ok
}

func (c *Cache) AttendanceRecord(id primitive.ObjectID) (models.AttendanceRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	row, ok := c.attendance[id]
	return row, ok
}

func (c *Cache) RemoveAttendance(id primitive.ObjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.attendance, id)
}

// Counts returns table name to cached row count, for the status endpoint.
func (c *Cache) Counts() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return map[string]int{
		config.EmployeeCollection:   len(c.employees),
		config.CenterCollection:     len(c.centers),
		config.AttendanceCollection: len(c.attendance),
	}
}
