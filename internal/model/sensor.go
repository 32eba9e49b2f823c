package model

import "time"

// Sensor is an environmental probe installed at a sede.
type Sensor struct {
	ID          uint   `gorm:"primaryKey"`
	Nombre      string `gorm:"type:varchar(45)"`
	Descripcion string `gorm:"type:varchar(45)"`
	SedeID      uint   `gorm:"index"`
}

func (Sensor) TableName() string { return "sensores" }

// Temperatura is a reading in °C.
type Temperatura struct {
	ID       uint      `gorm:"primaryKey"`
	Valor    float64   `gorm:"column:temperatura;not null"`
	SensorID uint      `gorm:"index"`
	Fecha    time.Time `gorm:"not null;index"`
}

// Humedad is a relative humidity reading (0-100).
type Humedad struct {
	ID       uint      `gorm:"primaryKey"`
	Valor    float64   `gorm:"column:humedad;not null"`
	SensorID uint      `gorm:"index"`
	Fecha    time.Time `gorm:"not null;index"`
}

// TableName overrides GORM's default pluralization (humedads → humedades).
func (Humedad) TableName() string { return "humedades" }
