/*
Package dsl builds aoflow graphs in Go instead of JSON or YAML files.

It is mostly useful in tests and for graphs generated by other programs:

	b := dsl.New()
	b.Add("start").Type(domain.NodeTypeStart).To("greet")
	b.Add("greet").Type(domain.NodeTypePrint).At(0, 100).
		Var("var", "Name").
		To("end")
	b.Add("end").Type(domain.NodeTypeAdd).At(0, 200)

	loader, err := b.Build()
	// ... pass loader to aoflow.New("", aoflow.WithLoader(loader))

Nodes keep the order in which they were added and edges keep the order in
which they were declared, which is the discovery order the compiler walks.
*/
package dsl
