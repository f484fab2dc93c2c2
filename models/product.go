package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product status values
const (
	ProductStatusHidden    = 0
	ProductStatusPublished = 1
)

// Product is the stored product document
type Product struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	Name         string             `json:"name" bson:"name"`
	Slug         string             `json:"slug" bson:"slug"`
	Description  string             `json:"description" bson:"description"`
	Price        float64            `json:"price" bson:"price"`
	Discount     float64            `json:"discount" bson:"discount"`
	Type         string             `json:"type" bson:"type"`
	CountInStock int                `json:"countInStock" bson:"countInStock"`
	Status       int                `json:"status" bson:"status"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CreateProductRequest is used for product creation requests
type CreateProductRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Slug         string  `json:"slug" validate:"required,min=2,max=120"`
	Description  string  `json:"description" validate:"omitempty,max=1000"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	Discount     float64 `json:"discount" validate:"gte=0,lte=100"`
	Type         string  `json:"type" validate:"required"`
	CountInStock int     `json:"countInStock" validate:"gte=0"`
	Status       int     `json:"status" validate:"oneof=0 1"`
}

// UpdateProductRequest is used for product update requests
type UpdateProductRequest struct {
	Name         string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Slug         string   `json:"slug,omitempty" validate:"omitempty,min=2,max=120"`
	Description  string   `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price        float64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	Discount     *float64 `json:"discount,omitempty" validate:"omitempty,gte=0,lte=100"`
	Type         string   `json:"type,omitempty"`
	CountInStock *int     `json:"countInStock,omitempty" validate:"omitempty,gte=0"`
	Status       *int     `json:"status,omitempty" validate:"omitempty,oneof=0 1"`
}
