package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a medical-records patient profile. CreatedBy is immutable
// after creation.
type Patient struct {
	Base
	Archivable
	CreatedBy   uuid.UUID  `json:"created_by" db:"created_by"`
	UserID      *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	FirstName   string     `json:"first_name" db:"first_name"`
	LastName    string     `json:"last_name" db:"last_name"`
	Email       string     `json:"email" db:"email"`
	Phone       string     `json:"phone" db:"phone"`
	DateOfBirth time.Time  `json:"date_of_birth" db:"date_of_birth"`
	History     string     `json:"history" db:"history"`
}

type CreatePatientRequest struct {
	FirstName   string    `json:"first_name" binding:"required"`
	LastName    string    `json:"last_name" binding:"required"`
	Email       string    `json:"email" binding:"required,email"`
	Phone       string    `json:"phone" binding:"omitempty,phone"`
	DateOfBirth time.Time `json:"date_of_birth" binding:"required"`
	History     string    `json:"history"`
}

type UpdatePatientRequest struct {
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	Email     *string    `json:"email" binding:"omitempty,email"`
	Phone     *string    `json:"phone" binding:"omitempty,phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	History   *string    `json:"history"`
}

// PatientFilter represents patient list/search parameters.
type PatientFilter struct {
	Pagination
	Search          string `json:"search" form:"search"`
	IncludeArchived bool   `json:"-" form:"-"`
}
