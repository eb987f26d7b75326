package utils

import (
	"fmt"
	"reflect"
)

var ColumnTag = "db"

// taggedFields calls fn for every exported field of input carrying a column
// tag, in declaration order.
func taggedFields(input any, fn func(column string, value reflect.Value)) {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		column := field.Tag.Get(ColumnTag)
		if column == "" || column == "-" {
			continue
		}

		fn(column, v.Field(i))
	}
}

// StructTagValues lists the column names of a row type, e.g. for SELECT.
func StructTagValues(input any) []string {
	result := make([]string, 0)
	taggedFields(input, func(column string, _ reflect.Value) {
		result = append(result, column)
	})
	return result
}

// StructToMap maps column names to field values, ready for squirrel SetMap.
func StructToMap(input any) map[string]any {
	result := make(map[string]any)
	taggedFields(input, func(column string, value reflect.Value) {
		result[column] = value.Interface()
	})
	return result
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}
