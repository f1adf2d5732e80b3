package event

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultFieldExtractor reads struct fields by their db tag, descending into
// embedded structs.
type DefaultFieldExtractor struct{}

func (e *DefaultFieldExtractor) ExtractFields(obj interface{}, fields []string) map[string]interface{} {
	result := make(map[string]interface{})
	if obj == nil || len(fields) == 0 {
		return result
	}

	val := reflect.ValueOf(obj)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return result
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return result
	}

	collect(val, fields, result)
	return result
}

func collect(val reflect.Value, fields []string, out map[string]interface{}) {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collect(val.Field(i), fields, out)
			continue
		}
		if !field.IsExported() {
			continue
		}

		tag := strings.Split(field.Tag.Get("db"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		if contains(fields, tag) {
			out[tag] = val.Field(i).Interface()
		}
	}
}

// ExtractChanges compares the rendered value of every listed field and returns
// the differing ones ordered by field name.
func (e *DefaultFieldExtractor) ExtractChanges(old, new interface{}, fields []string) []Change {
	if old == nil || new == nil || len(fields) == 0 {
		return nil
	}

	oldFields := e.ExtractFields(old, fields)
	newFields := e.ExtractFields(new, fields)

	var changes []Change
	for field, newValue := range newFields {
		oldValue, exists := oldFields[field]
		if !exists {
			continue
		}
		before, after := Render(oldValue), Render(newValue)
		if equalStrings(before, after) {
			continue
		}
		changes = append(changes, Change{Field: field, Old: before, New: after})
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes
}

// Render formats a field value for the change log. Nil pointers render as nil.
func Render(v interface{}) *string {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	var s string
	switch x := rv.Interface().(type) {
	case time.Time:
		s = x.UTC().Format(time.RFC3339)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		s = strconv.FormatBool(x)
	case interface{ String() string }:
		s = x.String()
	default:
		switch rv.Kind() {
		case reflect.String:
			s = rv.String()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			s = strconv.FormatInt(rv.Int(), 10)
		default:
			s = fmt.Sprint(x)
		}
	}
	return &s
}

func equalStrings(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
