package dbfacade

import (
	"database/sql"
	"fmt"

	"github.com/georgysavva/scany/v2/dbscan"
	"github.com/rfberaldo/dbfacade/internal/named"
)

// SnakeCaseMapper converts a camelCase/PascalCase identifier to snake_case,
// the default struct-field-to-column mapping.
func SnakeCaseMapper(str string) string { return named.SnakeCaseMapper(str) }

// newScanAPI builds a [dbscan.API] configured the way this package maps
// struct fields: structTag selects the tag, fieldNameMapper falls back for
// untagged fields, and anything implementing [sql.Scanner] is left to the
// driver instead of being reflected into.
func newScanAPI(structTag string, fieldNameMapper func(string) string, ignoreMissingFields bool) *dbscan.API {
	if structTag == "" {
		structTag = "db"
	}
	if fieldNameMapper == nil {
		fieldNameMapper = SnakeCaseMapper
	}

	opts := []dbscan.APIOption{
		dbscan.WithStructTagKey(structTag),
		dbscan.WithFieldNameMapper(fieldNameMapper),
		dbscan.WithScannableTypes((*sql.Scanner)(nil)),
	}
	if ignoreMissingFields {
		opts = append(opts, dbscan.WithAllowUnknownColumns(true))
	}

	api, err := dbscan.NewAPI(opts...)
	if err != nil {
		panic("dbfacade: building scanner: " + err.Error())
	}

	return api
}

// scanAll drains rows into dest, a pointer to a slice of struct or map.
func scanAll(api *dbscan.API, rows *sql.Rows, dest any) error {
	if err := api.ScanAll(dest, rows); err != nil {
		return fmt.Errorf("dbfacade: scanning rows: %w", err)
	}
	return nil
}

// scanOne scans the single expected row from rows into dest, a pointer to
// a struct or map. Returns an error satisfying IsNotFound when rows is
// empty, mirroring dbscan.ScanOne's sql.ErrNoRows wrapping.
func scanOne(api *dbscan.API, rows *sql.Rows, dest any) error {
	if err := api.ScanOne(dest, rows); err != nil {
		if dbscan.NotFound(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("dbfacade: scanning row: %w", err)
	}
	return nil
}
