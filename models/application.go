package models

import "time"

// Application status labels shown to applicants. The workflow engine
// itself tracks state on assignments; these labels summarize the latest
// cycle outcome for listing screens.
const (
	ApplicationStatusDraft       = "draft"
	ApplicationStatusUnderReview = "under_review"
	ApplicationStatusCorrections = "corrections_required"
	ApplicationStatusAccredited  = "accredited"
)

// Application is one warehouse-operator accreditation application.
type Application struct {
	ApplicationID     int        `gorm:"primaryKey;column:application_id" json:"application_id"`
	ApplicationNumber string     `gorm:"column:application_number;unique" json:"application_number"`
	UserID            int        `gorm:"column:user_id;index" json:"user_id"`
	OperatorName      string     `gorm:"column:operator_name" json:"operator_name"`
	Status            string     `gorm:"column:status" json:"status"`
	CreateAt          time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt          time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt          *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	User      *User                 `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Locations []ApplicationLocation `gorm:"foreignKey:ApplicationID" json:"locations,omitempty"`
}

// ApplicationLocation is one physical warehouse site under an
// application. Some review cycles run per location rather than per
// application.
type ApplicationLocation struct {
	ApplicationLocationID int        `gorm:"primaryKey;column:application_location_id" json:"application_location_id"`
	ApplicationID         int        `gorm:"column:application_id;index" json:"application_id"`
	LocationName          string     `gorm:"column:location_name" json:"location_name"`
	Address               string     `gorm:"column:address" json:"address"`
	Province              *string    `gorm:"column:province" json:"province,omitempty"`
	StorageCapacityTons   *float64   `gorm:"column:storage_capacity_tons" json:"storage_capacity_tons,omitempty"`
	CreateAt              time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt              time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt              *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (Application) TableName() string {
	return "applications"
}

func (ApplicationLocation) TableName() string {
	return "application_locations"
}
