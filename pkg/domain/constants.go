package domain

// Interpretation kinds stored under "<key>Type" in node data.
const (
	KindText     = "TEXT"
	KindVariable = "VARIABLE"
	KindNumber   = "NUMBER"
	KindBoolean  = "BOOLEAN"
)

// TypeSuffix is appended to an input key to find its interpretation kind.
const TypeSuffix = "Type"
