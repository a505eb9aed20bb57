package category

// Fixed product categories, in display order.
const (
	Books       = "books"
	Electronics = "electronics"
	Stationery  = "stationery"
	Furniture   = "furniture"
	Clothing    = "clothing"
)

// All contains the supported product categories used across the app.
var All = []string{Books, Electronics, Stationery, Furniture, Clothing}

// Valid reports whether name is one of the fixed categories. Matching is exact.
func Valid(name string) bool {
	for _, c := range All {
		if name == c {
			return true
		}
	}
	return false
}
