package models

// All lists every relational model, in dependency order.
func All() []any {
	return []any{
		&User{},
		&Session{},
		&Product{},
		&Attribute{},
		&Order{},
	}
}
