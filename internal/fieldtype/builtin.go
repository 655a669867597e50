package fieldtype

func intPtr(v int) *int {
	return &v
}

// RegisterBuiltins installs the stock logical types. Callers may re-register
// any of these afterwards to override the mapping.
func RegisterBuiltins(r *Registry) {
	r.Register(Definition{Name: "id", NativeType: "varchar", Length: intPtr(24)})
	r.Register(Definition{Name: "varchar", Length: intPtr(255)})
	r.Register(Definition{Name: "text"})
	r.Register(Definition{Name: "int"})
	r.Register(Definition{Name: "bigint"})
	r.Register(Definition{Name: "float"})
	r.Register(Definition{Name: "bool"})
	r.Register(Definition{Name: "date"})
	r.Register(Definition{Name: "datetime"})
	r.Register(Definition{Name: "json"})
	r.Register(Definition{Name: "currency", NativeType: "decimal", Precision: intPtr(14), Scale: intPtr(4)})
}
