package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const usersTableName = "users"

// ExportUserData exports every row belonging to the user into a separate
// SQLite database file under basePath and returns the file's path.
//
// This can be used for providing a user with all their data to comply with
// GDPR. Table relationships are discovered through foreign keys, so schema
// migrations do not require touching the export. A table reaches the export
// when a chain of single-column foreign keys connects it to users.id; tables
// referenced by exported tables but unrelated to users (the exercise catalog)
// are copied whole so the foreign keys in the export stay satisfiable.
func (db *Database) ExportUserData(ctx context.Context, userID string, basePath string) (_ string, err error) {
	if !validExportID(userID) {
		return "", fmt.Errorf("user ID %q is not exportable", userID)
	}
	exportPath := filepath.Join(basePath, fmt.Sprintf("user-export-%s.sqlite3", userID))
	// A previous export would make the CREATE TABLE statements fail.
	if err = os.Remove(exportPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("remove previous export: %w", err)
	}
	exportDsn := fmt.Sprintf("file:%s?mode=rwc", exportPath)

	conn, err := db.setupExportConnection(ctx)
	if err != nil {
		return "", fmt.Errorf("setup export connection: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close db connection: %w", closeErr)
		}
	}()

	return db.executeExport(ctx, conn, exportDsn, userID, exportPath)
}

// validExportID refuses IDs that could escape basePath when joined into the
// export file name.
func validExportID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// setupExportConnection prepares a database connection for export operations.
func (db *Database) setupExportConnection(ctx context.Context) (*sql.Conn, error) {
	conn, err := db.ReadOnly.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get db connection: %w", err)
	}

	if pragmaErr := db.configurePragmas(ctx, conn, false); pragmaErr != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, fmt.Errorf("configure pragmas: %w (close error: %w)", pragmaErr, closeErr)
		}
		return nil, fmt.Errorf("configure pragmas: %w", pragmaErr)
	}

	return conn, nil
}

// configurePragmas sets up the necessary PRAGMA settings for export operations.
func (db *Database) configurePragmas(ctx context.Context, conn *sql.Conn, readOnly bool) error {
	var queryOnlyMode, foreignKeysMode string
	var modeErr, fkErr string

	if readOnly {
		queryOnlyMode = "TRUE"
		foreignKeysMode = "ON"
		modeErr = "enable read only mode"
		fkErr = "enable foreign keys"
	} else {
		queryOnlyMode = "FALSE"
		foreignKeysMode = "OFF"
		modeErr = "disable read only mode"
		fkErr = "disable foreign keys"
	}

	if _, err := conn.ExecContext(ctx, `PRAGMA QUERY_ONLY = `+queryOnlyMode); err != nil {
		return fmt.Errorf("%s: %w", modeErr, err)
	}
	if _, err := conn.ExecContext(ctx, `PRAGMA FOREIGN_KEYS = `+foreignKeysMode); err != nil {
		return fmt.Errorf("%s: %w", fkErr, err)
	}
	return nil
}

// executeExport performs the main export operation within a transaction.
func (db *Database) executeExport(
	ctx context.Context, conn *sql.Conn, exportDsn string, userID string, exportPath string,
) (string, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback() // Ignore rollback errors to preserve original error
		}
		// Restore original pragmas
		_ = db.configurePragmas(ctx, conn, true) // Ignore pragma restoration errors
	}()

	_, err = tx.ExecContext(ctx, `ATTACH DATABASE ? AS export`, exportDsn)
	if err != nil {
		return "", fmt.Errorf("create export database: %w", err)
	}

	err = db.validateUsersTable(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("validate users table: %w", err)
	}

	exportTables, err := db.findExportTables(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("find export tables: %w", err)
	}

	err = db.copyTableSchemas(ctx, tx, exportTables)
	if err != nil {
		return "", fmt.Errorf("copy table schemas: %w", err)
	}

	err = db.copyTableData(ctx, tx, exportTables, userID)
	if err != nil {
		return "", fmt.Errorf("copy table data: %w", err)
	}

	_, err = tx.ExecContext(ctx, `PRAGMA export.foreign_keys = ON`)
	if err != nil {
		return "", fmt.Errorf("re-enable foreign keys in export database: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return "", fmt.Errorf("commit export database: %w", err)
	}
	committed = true

	return exportPath, nil
}

// validateUsersTable checks if the users table exists.
func (db *Database) validateUsersTable(ctx context.Context, tx *sql.Tx) error {
	var count int
	query := `SELECT COUNT(*) FROM sqlite_schema WHERE type = 'table' AND name = ?`
	if err := tx.QueryRowContext(ctx, query, usersTableName).Scan(&count); err != nil {
		return fmt.Errorf("check users table existence: %w", err)
	}
	if count == 0 {
		return errors.New("users table does not exist")
	}
	return nil
}

// exportTable is a table included in the export. filter is a predicate over
// the table's rows with one ? placeholder per params for the user ID; an
// empty filter copies every row.
type exportTable struct {
	name   string
	filter string
	params int
}

// tableForeignKey is one single-column foreign key of a table.
type tableForeignKey struct {
	referencedTable string
	fromColumn      string
	toColumn        string
}

// findExportTables discovers all tables connected to the users table, plus
// the tables they reference.
func (db *Database) findExportTables(ctx context.Context, tx *sql.Tx) ([]exportTable, error) {
	tables, err := db.getAllTableNames(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("get all table names: %w", err)
	}

	related := map[string]exportTable{
		usersTableName: {name: usersTableName, filter: "id = ?", params: 1},
	}

	// A table joins the export when any of its foreign keys lands on an
	// already-related table, so iterate until no new table qualifies. A table
	// with several qualifying keys (a plan belongs to both its trainer and
	// its client) matches when any of them does.
	changed := true
	for changed {
		changed = false
		for _, tableName := range tables {
			if _, alreadyRelated := related[tableName]; alreadyRelated {
				continue
			}

			foreignKeys, fkErr := db.singleColumnForeignKeys(ctx, tx, tableName)
			if fkErr != nil {
				return nil, fmt.Errorf("foreign keys of table %s: %w", tableName, fkErr)
			}

			var (
				userPredicates       []string
				transitivePredicates []string
				transitiveParams     int
			)
			for _, fk := range foreignKeys {
				parent, isRelated := related[fk.referencedTable]
				if !isRelated {
					continue
				}
				if fk.referencedTable == usersTableName && fk.toColumn == "id" {
					userPredicates = append(userPredicates, fk.fromColumn+" = ?")
					continue
				}
				transitivePredicates = append(transitivePredicates, fmt.Sprintf(
					"%s IN (SELECT %s FROM main.%s WHERE %s)",
					fk.fromColumn, fk.toColumn, parent.name, parent.filter))
				transitiveParams += parent.params
			}

			// A table carrying a users key filters on it alone: a workout log
			// belongs to the user who logged it, not to everyone on the same
			// plan. Only tables without a direct key follow their parents.
			predicates := userPredicates
			params := len(userPredicates)
			if len(predicates) == 0 {
				predicates = transitivePredicates
				params = transitiveParams
			}
			if len(predicates) > 0 {
				related[tableName] = exportTable{
					name:   tableName,
					filter: strings.Join(predicates, " OR "),
					params: params,
				}
				changed = true
			}
		}
	}

	result := make([]exportTable, 0, len(related))

	// Referenced but unrelated tables, like the exercise catalog, are copied
	// whole and first so the export's foreign keys resolve.
	referenced, err := db.findReferencedTables(ctx, tx, related)
	if err != nil {
		return nil, fmt.Errorf("find referenced tables: %w", err)
	}
	for tableName := range referenced {
		result = append(result, exportTable{name: tableName})
	}
	for _, table := range related {
		result = append(result, table)
	}

	return result, nil
}

// getAllTableNames retrieves all table names except 'users'.
func (db *Database) getAllTableNames(ctx context.Context, tx *sql.Tx) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT name FROM sqlite_schema WHERE type = 'table' AND name != ?`, usersTableName)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			if err == nil {
				err = fmt.Errorf("close rows: %w", closeErr)
			}
		}
	}()

	var tables []string
	for rows.Next() {
		var tableName string
		err = rows.Scan(&tableName)
		if err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, tableName)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate over tables: %w", err)
	}

	return tables, nil
}

// singleColumnForeignKeys lists the table's foreign keys, skipping composite
// keys: a composite parent is always reachable through a single-column key in
// this schema, and composite predicates would complicate the filters for
// nothing.
func (db *Database) singleColumnForeignKeys(
	ctx context.Context, tx *sql.Tx, tableName string,
) (_ []tableForeignKey, err error) {
	fkRows, err := tx.QueryContext(ctx,
		`SELECT "id", "table", "from", "to" FROM pragma_foreign_key_list(?)`, tableName)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys: %w", err)
	}
	defer func() {
		if closeErr := fkRows.Close(); closeErr != nil {
			if err == nil {
				err = fmt.Errorf("close foreign key rows: %w", closeErr)
			}
		}
	}()

	byID := map[int][]tableForeignKey{}
	for fkRows.Next() {
		var (
			id              int
			referencedTable string
			fromColumn      string
			toColumn        sql.NullString
		)
		err = fkRows.Scan(&id, &referencedTable, &fromColumn, &toColumn)
		if err != nil {
			return nil, fmt.Errorf("scan foreign key: %w", err)
		}
		byID[id] = append(byID[id], tableForeignKey{
			referencedTable: referencedTable,
			fromColumn:      fromColumn,
			toColumn:        toColumn.String,
		})
	}
	err = fkRows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate foreign key rows: %w", err)
	}

	var foreignKeys []tableForeignKey
	for _, group := range byID {
		if len(group) != 1 || group[0].toColumn == "" {
			continue
		}
		foreignKeys = append(foreignKeys, group[0])
	}
	return foreignKeys, nil
}

// findReferencedTables finds tables referenced by related tables that are not
// themselves related to users.
func (db *Database) findReferencedTables(
	ctx context.Context, tx *sql.Tx, related map[string]exportTable,
) (map[string]bool, error) {
	referencedTables := make(map[string]bool)

	for tableName := range related {
		foreignKeys, err := db.singleColumnForeignKeys(ctx, tx, tableName)
		if err != nil {
			return nil, fmt.Errorf("foreign keys of table %s: %w", tableName, err)
		}
		for _, fk := range foreignKeys {
			if _, isRelated := related[fk.referencedTable]; !isRelated {
				referencedTables[fk.referencedTable] = true
			}
		}
	}

	return referencedTables, nil
}

// copyTableSchemas copies the schemas for all export tables.
func (db *Database) copyTableSchemas(ctx context.Context, tx *sql.Tx, tables []exportTable) error {
	for _, table := range tables {
		if err := db.copyTableSchema(ctx, tx, table.name); err != nil {
			return fmt.Errorf("copy schema for table %s: %w", table.name, err)
		}
	}
	return nil
}

// copyTableSchema copies the schema for a table from the main database to the export database.
func (db *Database) copyTableSchema(ctx context.Context, tx *sql.Tx, tableName string) error {
	var createSQL string
	schemaQuery := `SELECT sql FROM sqlite_schema WHERE type = 'table' AND name = ?`
	err := tx.QueryRowContext(ctx, schemaQuery, tableName).Scan(&createSQL)
	if err != nil {
		return fmt.Errorf("get schema for table %s: %w", tableName, err)
	}

	// Replace the table name with export.tableName to create it in the export database
	exportSQL := fmt.Sprintf("CREATE TABLE export.%s%s", tableName, createSQL[len("CREATE TABLE "+tableName):])
	_, err = tx.ExecContext(ctx, exportSQL)
	if err != nil {
		return fmt.Errorf("create table schema in export db: %w", err)
	}

	return nil
}

// copyTableData copies the user's rows for every export table.
func (db *Database) copyTableData(ctx context.Context, tx *sql.Tx, tables []exportTable, userID string) error {
	for _, table := range tables {
		query := "INSERT INTO export." + table.name + " SELECT * FROM main." + table.name
		var args []any
		if table.filter != "" {
			query += " WHERE " + table.filter
			for range table.params {
				args = append(args, userID)
			}
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("copy data for table %s: %w", table.name, err)
		}
	}
	return nil
}
