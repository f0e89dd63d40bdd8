package wheel_test

import (
	"fmt"

	"github.com/matzehuels/wheeltool/pkg/marker"
	"github.com/matzehuels/wheeltool/pkg/wheel"
)

func ExampleParseMetadata() {
	content := `Name: attrs
Requires-Dist: coverage; extra == 'tests'
Requires-Dist: sphinx; extra == 'docs'
`
	meta, err := wheel.ParseMetadata([]byte(content), wheel.FormatLegacy, wheel.ParseOptions{})
	if err != nil {
		panic(err)
	}

	view, err := wheel.NewView(meta, marker.DefaultEnvironment())
	if err != nil {
		panic(err)
	}
	for name := range view.Dependencies("tests") {
		fmt.Println(name)
	}
	fmt.Println(view.Extras())
	// Output:
	// coverage
	// [tests docs]
}

func ExampleBareName() {
	fmt.Println(wheel.BareName("foo (>=1.0,<2.0)"))
	// Output: foo
}
