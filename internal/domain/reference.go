package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Actor is the caller identity supplied by the external auth layer.
type Actor struct {
	ID   uint64 `json:"id"`
	Role string `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type User struct {
	ID           uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	MobileNumber string    `json:"mobileNumber"`
	Role         string    `json:"role" gorm:"type:varchar(16);default:'customer'"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

type City struct {
	ID   uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"not null"`
}

type Area struct {
	ID     uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	CityID uint64 `json:"cityId" gorm:"not null;index"`
	Name   string `json:"name" gorm:"not null"`
}
