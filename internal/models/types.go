package models

type Nft struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Images      []string `json:"images" yaml:"images"`
	Rating      int      `json:"rating" yaml:"rating"`
	Description string   `json:"description" yaml:"description"`
	Price       float64  `json:"price" yaml:"price"`
	Author      string   `json:"author" yaml:"author"`
	CreatedAt   string   `json:"createdAt,omitempty" yaml:"created_at"`
}

// FirstImage returns the preview image URL, or "" when the NFT has none.
func (n Nft) FirstImage() string {
	if len(n.Images) == 0 {
		return ""
	}
	return n.Images[0]
}

type Order struct {
	ID   string   `json:"id" yaml:"id"`
	Nfts []string `json:"nfts" yaml:"nfts"`
}

type Profile struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Avatar      string   `json:"avatar" yaml:"avatar"`
	Description string   `json:"description" yaml:"description"`
	Website     string   `json:"website" yaml:"website"`
	Nfts        []string `json:"nfts" yaml:"nfts"`
	Likes       []string `json:"likes" yaml:"likes"`
}

// ProfileFields are the editable profile attributes sent on update.
type ProfileFields struct {
	Name        string
	Avatar      string
	Description string
	Website     string
}

type NftCollection struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Cover       string   `json:"cover" yaml:"cover"`
	Nfts        []string `json:"nfts" yaml:"nfts"`
	Description string   `json:"description" yaml:"description"`
	Author      string   `json:"author" yaml:"author"`
}

func (c NftCollection) Count() int {
	return len(c.Nfts)
}

type PaymentMethod struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title" yaml:"title"`
	Image string `json:"image" yaml:"image"`
}

type PaymentResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	ID      string `json:"id"`
}

// CartItem is the display row built from an order id and its NFT details.
type CartItem struct {
	ID       string
	Name     string
	ImageURL string
	Price    float64
	Rating   int
}

func NewCartItem(n Nft) CartItem {
	return CartItem{
		ID:       n.ID,
		Name:     n.Name,
		ImageURL: n.FirstImage(),
		Price:    n.Price,
		Rating:   n.Rating,
	}
}
