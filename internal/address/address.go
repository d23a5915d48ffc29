package address

// Address is a saved shipping destination. Fields mirror what checkout
// collects so a saved address can prefill the form directly.
type Address struct {
	AddressID int    `json:"addressId"`
	UserID    int    `json:"userId"`
	Label     string `json:"label,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}
