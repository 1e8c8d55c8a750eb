package models

type RegisterRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
	FullName string `json:"full_name" form:"full_name" binding:"required,min=3"`
	Phone    string `json:"phone" form:"phone" binding:"omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type AddCartLineRequest struct {
	ProductID int    `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type CartLineRequest struct {
	ProductID int    `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (r CartLineRequest) Key() LineKey {
	return NewLineKey(r.ProductID, r.Size, r.Color)
}

type UpdateCartLineRequest struct {
	CartLineRequest
	Quantity *int `json:"quantity" binding:"required"`
}

type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

type CheckoutRequest struct {
	Email          string `json:"email" form:"email" binding:"omitempty,email"`
	FullName       string `json:"full_name" form:"full_name" binding:"omitempty,max=255"`
	Address        string `json:"address" form:"address" binding:"required_if=DeliveryMethod door_delivery"`
	DeliveryMethod string `json:"delivery_method" form:"delivery_method" binding:"omitempty,oneof=dine_in door_delivery pick_up"`
	Notes          string `json:"notes" form:"notes" binding:"omitempty,max=500"`
}

type CreateProductRequest struct {
	Name        string   `json:"name" form:"name" binding:"required"`
	Description string   `json:"description" form:"description" binding:"required"`
	CategoryID  int      `json:"category_id" form:"category_id" binding:"required"`
	Price       string   `json:"price" form:"price" binding:"required"`
	Stock       int      `json:"stock" form:"stock" binding:"gte=0"`
	Sizes       []string `json:"sizes" form:"sizes"`
	Colors      []string `json:"colors" form:"colors"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name" form:"name"`
	Description *string  `json:"description" form:"description"`
	CategoryID  *int     `json:"category_id" form:"category_id"`
	Price       *string  `json:"price" form:"price"`
	Stock       *int     `json:"stock" form:"stock"`
	Sizes       []string `json:"sizes" form:"sizes"`
	Colors      []string `json:"colors" form:"colors"`
	IsActive    *bool    `json:"is_active" form:"is_active"`
}

type CategoryRequest struct {
	Name string `json:"name" form:"name" binding:"required,min=3"`
}

type PromoRequest struct {
	Title       string `json:"title" form:"title" binding:"required"`
	Description string `json:"description" form:"description"`
	Code        string `json:"code" form:"code" binding:"required"`
}

type OrderStatusRequest struct {
	Status string `json:"status" form:"status" binding:"required"`
}
