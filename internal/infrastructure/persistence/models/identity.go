package models

import (
	"time"

	"github.com/farmledger/backend/internal/domain/identity"
)

// FarmerModel is the persistence model for the Farmer aggregate root
type FarmerModel struct {
	AggregateModel
	Username       string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	DisplayName    string     `gorm:"type:varchar(100)"`
	PasswordHash   string     `gorm:"type:varchar(255);not null"`
	IsActive       bool       `gorm:"not null;default:true"`
	LastLoginAt    *time.Time `gorm:"index"`
	FailedAttempts int        `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (FarmerModel) TableName() string {
	return "farmers"
}

// ToDomain converts the persistence model to a domain Farmer
func (m *FarmerModel) ToDomain() *identity.Farmer {
	return &identity.Farmer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Username:          m.Username,
		DisplayName:       m.DisplayName,
		PasswordHash:      m.PasswordHash,
		IsActive:          m.IsActive,
		LastLoginAt:       m.LastLoginAt,
		FailedAttempts:    m.FailedAttempts,
		LockedUntil:       m.LockedUntil,
	}
}

// FromDomain populates the persistence model from a domain Farmer
func (m *FarmerModel) FromDomain(f *identity.Farmer) {
	m.FromDomainAggregateRoot(f.BaseAggregateRoot)
	m.Username = f.Username
	m.DisplayName = f.DisplayName
	m.PasswordHash = f.PasswordHash
	m.IsActive = f.IsActive
	m.LastLoginAt = f.LastLoginAt
	m.FailedAttempts = f.FailedAttempts
	m.LockedUntil = f.LockedUntil
}

// FarmerModelFromDomain creates a new persistence model from a domain Farmer
func FarmerModelFromDomain(f *identity.Farmer) *FarmerModel {
	m := &FarmerModel{}
	m.FromDomain(f)
	return m
}
