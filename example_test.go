package aoflow_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/aoflow"
	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/dsl"
)

func Example() {
	b := dsl.New()
	b.Add("start").Type(domain.NodeTypeStart).To("check")
	b.Add("check").Type(domain.NodeTypeConditional).At(0, 100).
		Var("lhs", "balance").
		Set("operator", ">").
		Set("rhs", "0").Set("rhsType", domain.KindNumber).
		To("greet").To("add")
	b.Add("greet").Type(domain.NodeTypePrint).At(0, 200).Text("var", "hello")
	b.Add("add").Type(domain.NodeTypeAdd).At(0, 50)

	loader, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	compiler, err := aoflow.New("", aoflow.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	code, err := compiler.GenerateCode(context.Background(), "check", nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(code)
	// Output:
	// -- [start:check]
	// if balance > 0 then
	//     -- [start:greet]
	//     print("hello")
	//     -- [end:greet]
	// end
	// -- [end:check]
}
