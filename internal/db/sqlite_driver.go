package db

import (
	"database/sql"
	"fmt"
	"strings"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"
)

const (
	// SQLiteDriverName is the project-specific SQLCipher driver with custom SQL functions.
	SQLiteDriverName = "sqlite3_agreements"
)

func init() {
	sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if err := conn.RegisterFunc("search_fold", sqliteSearchFold, true); err != nil {
				return fmt.Errorf("register search_fold SQL function: %w", err)
			}
			return nil
		},
	})
}

// SearchFold is the normalization applied to both sides of a listing search:
// Unicode lower case with runs of whitespace collapsed to one space.
func SearchFold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func sqliteSearchFold(input any) (string, error) {
	switch x := input.(type) {
	case nil:
		return "", nil
	case string:
		return SearchFold(x), nil
	case []byte:
		return SearchFold(string(x)), nil
	case int64:
		return fmt.Sprint(x), nil
	case float64:
		return fmt.Sprint(x), nil
	default:
		return "", fmt.Errorf("unsupported search_fold input type: %T", input)
	}
}
