package httpclient

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Param is one query parameter. Value may be a scalar, a pointer to one, or a
// slice/array of scalars.
type Param struct {
	Key   string
	Value interface{}
}

// Params is an ordered list of query parameters
type Params []Param

// P is shorthand for building a Param
func P(key string, value interface{}) Param {
	return Param{Key: key, Value: value}
}

// Encode serializes the parameters in order.
//
// nil values, nil pointers and empty strings are dropped. Slices and arrays
// become repeated key=value pairs. Maps and structs are dropped rather than
// encoded recursively; callers relying on the backend's flat query format
// depend on that.
func (p Params) Encode() string {
	parts := make([]string, 0, len(p))
	for _, param := range p {
		if param.Key == "" {
			continue
		}
		key := url.QueryEscape(param.Key)
		for _, v := range flatten(param.Value) {
			parts = append(parts, key+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(parts, "&")
}

func flatten(value interface{}) []string {
	if value == nil {
		return nil
	}

	rv, ok := indirect(reflect.ValueOf(value))
	if !ok {
		return nil
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if s, ok := scalar(rv.Index(i)); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		if s, ok := scalar(rv); ok {
			return []string{s}
		}
		return nil
	}
}

// indirect follows pointers and interfaces, reporting false on nil
func indirect(rv reflect.Value) (reflect.Value, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return rv, false
		}
		rv = rv.Elem()
	}
	return rv, rv.IsValid()
}

func scalar(rv reflect.Value) (string, bool) {
	rv, ok := indirect(rv)
	if !ok {
		return "", false
	}

	switch rv.Kind() {
	case reflect.String:
		s := rv.String()
		return s, s != ""
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	default:
		// nested objects and nested lists
		return "", false
	}
}
