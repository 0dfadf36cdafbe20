package catalog

// Product is the live catalog projection of a storefront item. Prices are
// whole-rupiah values, no minor units.
type Product struct {
	ID           int           `json:"id"`
	Price        int           `json:"price"`
	Stock        int           `json:"stok"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug"`
	IsPopular    bool          `json:"is_popular"`
	Category     *Category     `json:"category,omitempty"`
	Thumbnail    string        `json:"thumbnail"`
	About        string        `json:"about,omitempty"`
	Benefits     []Benefit     `json:"benefits,omitempty"`
	Testimonials []Testimonial `json:"testimonials,omitempty"`
}

type Benefit struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Testimonial struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Photo   string `json:"photo"`
}

type Category struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Photo           string    `json:"photo"`
	ProductsCount   int       `json:"products_count"`
	Products        []Product `json:"products,omitempty"`
	PopularProducts []Product `json:"popular_products,omitempty"`
}

// OrderDetails is the server's record of a submitted order, returned by the
// booking lookup.
type OrderDetails struct {
	ID             int               `json:"id"`
	Name           string            `json:"name"`
	Phone          string            `json:"phone"`
	Email          string            `json:"email"`
	Address        string            `json:"address"`
	PostCode       string            `json:"post_code"`
	City           string            `json:"city"`
	OrderTrxID     string            `json:"order_trx_id"`
	IsPaid         bool              `json:"is_paid"`
	SubTotal       int               `json:"sub_total"`
	TotalTaxAmount int               `json:"total_tax_amount"`
	TotalAmount    int               `json:"total_amount"`
	StartedTime    string            `json:"started_time"`
	ScheduleAt     string            `json:"schedule_at"`
	Proof          string            `json:"proof,omitempty"`
	Transactions   []TransactionLine `json:"transaction_details"`
}

type TransactionLine struct {
	ID        int      `json:"id"`
	Price     int      `json:"price"`
	ProductID int      `json:"product_id"`
	Product   *Product `json:"product,omitempty"`
}

// OrderReceipt is what the order-transaction endpoint hands back on success.
type OrderReceipt struct {
	OrderTrxID string `json:"order_trx_id"`
	Email      string `json:"email"`
}

// ProductQuery filters the product listing endpoint.
type ProductQuery struct {
	Limit       int
	PopularOnly bool
}
