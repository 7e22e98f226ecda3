package model

// PendingSale is an escrowed item offered to a buyer. The item has already
// left the seller's inventory.
type PendingSale struct {
	SaleID    string
	Buyer     string
	Seller    string
	Item      string
	Count     int
	Price     int64
	CreatedAt int64
}
