package scenario

import (
	_ "embed"
	"fmt"
)

//go:embed demo.yaml
var demoYAML []byte

// Demo returns the built-in scenario used when no scenario file is given.
func Demo() *Scenario {
	sc, err := Parse(demoYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in scenario: %v", err))
	}
	return sc
}

// DemoSource returns the YAML text of the built-in scenario.
func DemoSource() []byte {
	return append([]byte(nil), demoYAML...)
}
