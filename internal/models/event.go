package models

type ProductEventType string

const (
	ProductCreated ProductEventType = "created"
	ProductUpdated ProductEventType = "updated"
	ProductDeleted ProductEventType = "deleted"
)

// ProductEvent circule sur le flux temps réel (Redis pub/sub → websocket).
type ProductEvent struct {
	Type    ProductEventType `json:"type"`
	ID      string           `json:"id"`
	Product *Product         `json:"product,omitempty"`
}
