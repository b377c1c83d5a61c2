package model

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImagePathPrefix is the public prefix under which product images are served.
const ImagePathPrefix = "/product_images/"

type Product struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	ProductName string               `bson:"product_name"`
	Description string               `bson:"description,omitempty"`
	Category    primitive.ObjectID   `bson:"category"`
	Price       primitive.Decimal128 `bson:"price"`
	Image       string               `bson:"image,omitempty"`
	Sale        bool                 `bson:"sale"`
	Discount    *float64             `bson:"discount,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

// ProductView is the JSON shape returned to clients: the price is a plain
// number and the image an absolute URL.
type ProductView struct {
	ID          primitive.ObjectID `json:"id"`
	ProductName string             `json:"product_name"`
	Description string             `json:"description,omitempty"`
	Category    primitive.ObjectID `json:"category"`
	Price       json.Number        `json:"price"`
	Image       string             `json:"image,omitempty"`
	Sale        bool               `json:"sale"`
	Discount    *float64           `json:"discount,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// View renders p for clients, resolving the stored relative image path
// against baseURL.
func (p Product) View(baseURL string) ProductView {
	image := p.Image
	if image != "" && strings.HasPrefix(image, "/") {
		image = strings.TrimRight(baseURL, "/") + image
	}
	return ProductView{
		ID:          p.ID,
		ProductName: p.ProductName,
		Description: p.Description,
		Category:    p.Category,
		Price:       json.Number(p.Price.String()),
		Image:       image,
		Sale:        p.Sale,
		Discount:    p.Discount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
