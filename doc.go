// Package translator copies object graphs into destination types: each
// destination field is populated from a source expression evaluated against
// the source object, with nested objects, collections and value types
// translated recursively.
//
// Basic Usage
//
//	cfg := translator.New()
//	view, err := translator.TranslateTo[OrderView](cfg, order)
//
// A Session holds the identity cache of one run: translating the same source
// pointer twice yields the same destination, and cycles terminate.
//
//	s := translator.NewSessionWithVariables(cfg, map[string]any{"currency": "EUR"})
//	a, _ := s.Translate(order, reflect.TypeFor[OrderView]())
//	b, _ := s.Translate(order, reflect.TypeFor[OrderView]()) // a == b
//
// # Field Settings
//
// Fields are read by name from the source unless a translate tag says
// otherwise:
//
//	type OrderView struct {
//	    ID       string
//	    Customer *CustomerView `translate:"source=Buyer"`
//	    Total    float64       `translate:"source=expr:Quantity * UnitPrice"`
//	    Country  string        `translate:"source=Buyer.Address.Country;optional"`
//	    Lines    []LineView    `translate:"itemSource=Line"`
//	    Audit    *AuditView    `translate:"update"`
//	    Secret   string        `translate:"-"`
//	}
//
// The same settings can be given with Builder.Describe or a YAML file
// (see FileConfig), for types that cannot carry tags.
//
// # Source Expressions
//
// A bare expression ("Buyer.Address.City") is offered to every provider in
// order, the reflection provider first. "prefix:rest" goes only to the
// providers claiming prefix: "field:", "property:" and "var:" are handled by
// the reflection provider, "expr:" by source/exprsource and "json:" by
// source/jsonsource. A colon at either end of an expression is not a prefix.
//
// # Collections
//
// Slices, arrays, sets (map[K]struct{}), maps and collection.Container
// values are copied into new collections unless defensive copies are
// disabled and no item needs translating. Sorted containers keep their
// ordering in the copy.
//
// # Thread Safety
//
// A Configuration is safe for concurrent use and caches one object
// translator per destination type. Sessions are not; use one per goroutine.
package translator
