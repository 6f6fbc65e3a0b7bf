// Package jsonsource adds the "json:" dialect, which reads values stored in
// JSON-carrying source fields such as null.JSON or sqlboiler's types.JSON.
//
//	type Row struct {
//	    ID             int
//	    AdditionalData null.JSON // {"alias":"nick","tags":["a","b"]}
//	}
//
//	type View struct {
//	    Alias    string `translate:"source=json:AdditionalData.alias"`
//	    FirstTag string `translate:"source=json:AdditionalData.tags.0"`
//	}
//
// The first path segment names the payload field; the remaining segments walk
// object keys and array indexes of the decoded document.
package jsonsource

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/goccy/go-json"

	"github.com/Station-Manager/translator/source"
)

// Prefix is the expression prefix claimed by this dialect.
const Prefix = "json"

func init() {
	source.Register(Prefix, func() (source.Provider, error) { return New(), nil })
}

// Provider decodes JSON payload fields with goccy/go-json.
type Provider struct{}

// New returns a JSON payload dialect provider.
func New() *Provider { return &Provider{} }

func (p *Provider) SupportsPrefix(prefix string) bool { return prefix == Prefix }

func (p *Provider) Resolve(expression string, src any, ctx source.Context) (any, bool, error) {
	if ctx.Prefix != Prefix {
		return nil, false, nil
	}
	field, rest, _ := strings.Cut(expression, ".")
	payload, found, err := source.Lookup(src, field, ctx.Access)
	if err != nil || !found {
		return nil, found, err
	}
	doc, ok, err := decode(payload)
	if err != nil || !ok {
		return nil, false, err
	}
	if rest == "" {
		return doc, true, nil
	}
	return walk(doc, strings.Split(rest, "."))
}

// decode turns a payload value into a generic JSON document. An invalid
// null.JSON or an empty payload reports ok=false.
func decode(payload any) (any, bool, error) {
	var raw []byte
	switch v := payload.(type) {
	case nil:
		return nil, false, nil
	case null.JSON:
		if !v.Valid {
			return nil, false, nil
		}
		raw = v.JSON
	case *null.JSON:
		if v == nil || !v.Valid {
			return nil, false, nil
		}
		raw = v.JSON
	case map[string]any, []any:
		return v, true, nil
	default:
		rv := reflect.ValueOf(payload)
		switch {
		case rv.Kind() == reflect.String:
			raw = []byte(rv.String())
		case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
			raw = rv.Bytes()
		default:
			return nil, false, nil
		}
	}
	if len(raw) == 0 {
		return nil, false, nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func walk(doc any, path []string) (any, bool, error) {
	cur := doc
	for _, seg := range path {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false, nil
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false, nil
			}
			cur = node[i]
		default:
			return nil, false, nil
		}
	}
	return cur, true, nil
}
