package models

import "time"

// EclipseSession caches one authenticated Eclipse API session. The table
// holds at most one valid row; re-login replaces it.
type EclipseSession struct {
	ID                      int        `gorm:"primary_key" json:"id"`
	SessionId               string     `gorm:"size:64;not null" json:"session_id"`
	SessionToken            string     `gorm:"size:512;not null" json:"session_token"`
	RefreshToken            string     `gorm:"size:512;not null" json:"refresh_token"`
	ApplicationKey          string     `gorm:"size:128" json:"application_key"`
	DeveloperKey            string     `gorm:"size:128" json:"developer_key"`
	ClientDescription       string     `gorm:"size:255" json:"client_description"`
	DeviceId                string     `gorm:"size:64" json:"device_id"`
	WorkstationId           string     `gorm:"size:64" json:"workstation_id"`
	PrinterLocationId       string     `gorm:"size:64" json:"printer_location_id"`
	ValidPrinterLocationIds StringList `gorm:"type:json" json:"valid_printer_location_ids"`
	CreationDateTime        time.Time  `json:"creation_date_time"`
	LastUsedDateTime        time.Time  `json:"last_used_date_time"`
	IsValid                 *bool      `gorm:"not null;default:true" json:"is_valid"`
	CreatedAt               time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
