package domain

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pendiente"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pendiente"
)

type PaymentMethod string

const (
	PaymentMethodUndefined PaymentMethod = "no definido"
)

type Payment struct {
	Status PaymentStatus `json:"estatus_pago"`
	Method PaymentMethod `json:"metodo_pago"`
}

// Order is the body of POST /pedido. It is write-only: the storefront never reads
// an order back.
type Order struct {
	ProductIDs []string    `json:"producto"`
	Count      int         `json:"cantidad"`
	Total      float64     `json:"total"`
	Status     OrderStatus `json:"estado"`
	Payment    Payment     `json:"pago"`
}
