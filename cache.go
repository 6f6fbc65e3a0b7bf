package translator

import (
	"reflect"
	"unsafe"
)

// sourceID identifies a source reference: its address and its type, since a
// struct and its first field share an address.
type sourceID struct {
	addr unsafe.Pointer
	typ  reflect.Type
}

type cacheKey struct {
	src sourceID
	dst reflect.Type // destination struct type
}

// translationCache maps source references to the destination objects made
// from them during one session. Entries are added before fields are
// populated, which is what stops cycles.
type translationCache struct {
	entries map[cacheKey]reflect.Value
}

func newTranslationCache() *translationCache {
	return &translationCache{entries: make(map[cacheKey]reflect.Value)}
}

// identity returns the cache identity of src. Only non-nil pointers and maps
// have one; values passed by value are translated afresh every time.
func identity(src reflect.Value) (sourceID, bool) {
	if !src.IsValid() {
		return sourceID{}, false
	}
	switch src.Kind() {
	case reflect.Ptr, reflect.Map:
		if src.IsNil() {
			return sourceID{}, false
		}
		return sourceID{addr: src.UnsafePointer(), typ: src.Type()}, true
	}
	return sourceID{}, false
}

// get returns the destination pointer registered for src and dst.
func (c *translationCache) get(src reflect.Value, dst reflect.Type) (reflect.Value, bool) {
	id, ok := identity(src)
	if !ok {
		return reflect.Value{}, false
	}
	v, ok := c.entries[cacheKey{src: id, dst: dst}]
	return v, ok
}

// put registers dstPtr, a pointer to a dst struct, as the translation of src.
func (c *translationCache) put(src reflect.Value, dst reflect.Type, dstPtr reflect.Value) {
	id, ok := identity(src)
	if !ok {
		return
	}
	c.entries[cacheKey{src: id, dst: dst}] = dstPtr
}

func (c *translationCache) size() int { return len(c.entries) }
