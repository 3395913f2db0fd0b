package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the snapshot the storefront keeps of a catalog entry. Prices arrive
// either as JSON numbers or numeric strings; decimal accepts both.
type Product struct {
	ID    string          `json:"_id"`
	Name  string          `json:"nombre"`
	Price decimal.Decimal `json:"precio"`
}

type Category struct {
	Name string `json:"nombre"`
}

type Characteristics struct {
	Type        string   `json:"tipo,omitempty"`
	Description string   `json:"descripcion,omitempty"`
	Color       string   `json:"color,omitempty"`
	Weight      *float64 `json:"peso,omitempty"`
}

type SensorReading struct {
	Value float64 `json:"valor"`
	Date  string  `json:"fecha"`
}

type Sensor struct {
	Name    string         `json:"nombre,omitempty"`
	Type    string         `json:"tipo,omitempty"`
	State   string         `json:"estado,omitempty"`
	Reading *SensorReading `json:"lectura,omitempty"`
}

// ProductDetail is the record served by GET /producto/{id}.
type ProductDetail struct {
	Product
	Quantity        int              `json:"cantidad,omitempty"`
	Status          string           `json:"estatus,omitempty"`
	Category        *Category        `json:"categoria,omitempty"`
	Characteristics *Characteristics `json:"caracteristicas,omitempty"`
	Images          []string         `json:"imagen,omitempty"`
	Sensor          *Sensor          `json:"sensor,omitempty"`
}

// CartItem is a product captured at add-time. It keeps no link to the live catalog.
type CartItem struct {
	Product
	AddedAt time.Time `json:"added_at"`
}
