package entity

import (
	"time"
)

type Product struct {
	ID          string  `json:"id" firestore:"id"`
	SellerID    string  `json:"seller_id" firestore:"sellerId"`
	Title       string  `json:"title" firestore:"title"`
	Description string  `json:"description" firestore:"description"`
	ImageURL    string  `json:"image_url,omitempty" firestore:"imageUrl,omitempty"`
	Price       float64 `json:"price" firestore:"price"`
	Quantity    int     `json:"quantity" firestore:"quantity"`
	Location    string  `json:"location" firestore:"location"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
