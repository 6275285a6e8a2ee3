package constants

var (
	// BillableCategories holds ServiceNav "Category Name" values, lowercased,
	// that are invoiced per unit.
	BillableCategories = map[string]bool{
		"serveur":         true,
		"serveur linux":   true,
		"serveur windows": true,
	}
)
