package translator

// The expression and JSON dialects are enabled by default; Builder.WithExtensions
// and Builder.WithoutExtensions narrow them per configuration.
import (
	_ "github.com/Station-Manager/translator/source/exprsource"
	_ "github.com/Station-Manager/translator/source/jsonsource"
)
