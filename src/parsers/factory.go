package parsers

import (
	"fmt"

	"github.com/username/tradeherder/src/parsers/ig"
	"github.com/username/tradeherder/src/parsers/optionsxpress"
)

func GetParser(source string) (Parser, error) {
	switch source {
	case "ig":
		return ig.NewParser(), nil
	case "optionsxpress":
		return optionsxpress.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
