package inventory

import "time"

type ItemInput struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Unit     string  `json:"unit" validate:"max=40"`
}

// UpsertRequest creates or replaces items by case-insensitive name.
type UpsertRequest struct {
	Items []ItemInput `json:"items" validate:"required,min=1,max=200,dive"`
}

type ItemDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListResponse struct {
	Items []ItemDTO `json:"items"`
}
