package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// requiredColumns lists, per import table, the columns the importer
// reads or writes. Extra columns are fine; missing ones are not.
var requiredColumns = map[string][]string{
	"users":       {"id", "name", "email", "password"},
	"products":    {"id", "name", "price", "description"},
	"orders":      {"id", "user_id", "date"},
	"order_items": {"id", "order_id", "product_id", "quantity"},
}

// VerifyImportSchema checks that the four import tables exist and carry
// the columns the importer depends on. It is a preflight for the import
// command, catching schema drift before a batch is attempted.
func VerifyImportSchema(db *gorm.DB) error {
	var problems []string

	for table, required := range requiredColumns {
		columns, err := GetTableColumns(db, table)
		if err != nil {
			return fmt.Errorf("failed to inspect table %s: %w", table, err)
		}
		if len(columns) == 0 {
			problems = append(problems, fmt.Sprintf("table %s is missing", table))
			continue
		}

		present := make(map[string]struct{}, len(columns))
		for _, col := range columns {
			present[col.Field] = struct{}{}
		}
		for _, name := range required {
			if _, ok := present[name]; !ok {
				problems = append(problems, fmt.Sprintf("table %s is missing column %s", table, name))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("import schema verification failed: %s", strings.Join(problems, "; "))
	}
	return nil
}
