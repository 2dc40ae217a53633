package querybuilder

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// UpsertModel inserts the db-tagged fields of model and, on a conflict over
// keyColumns, overwrites every other column from EXCLUDED. extraSet is
// appended to the update list verbatim, e.g. "updated_at = NOW()".
func UpsertModel(table string, model any, keyColumns []string, extraSet ...string) (string, []any, error) {
	cols, vals, err := columnsAndValuesFromModel(model)
	if err != nil {
		return "", nil, err
	}
	if len(keyColumns) == 0 {
		return "", nil, fmt.Errorf("upsert key columns are required")
	}

	updates := make([]string, 0, len(cols)+len(extraSet))
	for _, col := range cols {
		if slices.Contains(keyColumns, col) {
			continue
		}
		updates = append(updates, col+" = EXCLUDED."+col)
	}
	updates = append(updates, extraSet...)

	suffix := "ON CONFLICT (" + strings.Join(keyColumns, ", ") + ") DO NOTHING"
	if len(updates) > 0 {
		suffix = "ON CONFLICT (" + strings.Join(keyColumns, ", ") + ") DO UPDATE SET " + strings.Join(updates, ", ")
	}

	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

func columnsAndValuesFromModel(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct")
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		col := strings.TrimSpace(strings.Split(field.Tag.Get("db"), ",")[0])
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}
