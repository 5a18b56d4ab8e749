package model

import "time"

// Category groups tasks for fairness balancing and day-level ordering.
type Category string

const (
	CategoryCooking  Category = "cooking"
	CategoryCleaning Category = "cleaning"
	CategoryOther    Category = "other"
)

// Rank returns the processing order for a day's tasks: cooking first,
// then cleaning, then everything else.
func (c Category) Rank() int {
	switch c {
	case CategoryCooking:
		return 0
	case CategoryCleaning:
		return 1
	default:
		return 2
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryCooking, CategoryCleaning, CategoryOther:
		return true
	}
	return false
}

// Task is a unit of recurring household work. FrequencyDays controls how
// often it appears, anchored to the 1st of the month being scheduled.
type Task struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      Category  `json:"category"`
	WeekdayOnly   bool      `json:"weekday_only"`
	WeekendOnly   bool      `json:"weekend_only"`
	FrequencyDays int       `json:"frequency_days"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
