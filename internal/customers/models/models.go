package models

import "time"

type Customer struct {
	ID    int64   `gorm:"primaryKey;autoIncrement"`
	Name  string  `gorm:"type:text;not null"`
	Email string  `gorm:"type:text;not null;uniqueIndex:ux_customers_email"`
	Phone *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Customer) TableName() string { return "customers" }
