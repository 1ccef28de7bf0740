package command

import "github.com/example/ec-catalog-cart/internal/domain/product"

// Product Commands
type CreateProduct struct {
	Product product.NewProduct
}

type UpdateProduct struct {
	ProductID int64
	Patch     product.Patch
}

type DeleteProduct struct {
	ProductID int64
}

type DecrementStock struct {
	ProductID int64
	Quantity  int
}

// Cart Commands
type AddToCart struct {
	ProductID int64
	Quantity  int
}

type UpdateCartItem struct {
	ItemID   int64
	Quantity int
}

type RemoveFromCart struct {
	ItemID int64
}

type ClearCart struct{}
