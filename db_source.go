package main

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pivolan/ddsummary/dictionary"
)

// openDatabase connects over the MySQL wire protocol, which ClickHouse also speaks.
func openDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	return db, nil
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func qualifiedTable(database, table string) string {
	if database == "" {
		return quoteIdentifier(table)
	}
	return quoteIdentifier(database) + "." + quoteIdentifier(table)
}

type ColumnInfo struct {
	Name string
	Type string
}

func getColumnAndTypeList(db *gorm.DB, database, table string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	tx := db.Raw(fmt.Sprintf("DESCRIBE TABLE %s", qualifiedTable(database, table))).Scan(&columns)
	if tx.Error != nil {
		return nil, errors.Wrapf(tx.Error, "describe %s", table)
	}
	return columns, nil
}

func listTables(db *gorm.DB, database string) ([]string, error) {
	query := "SHOW TABLES"
	if database != "" {
		query += " FROM " + quoteIdentifier(database)
	}
	rows, err := db.Raw(query).Rows()
	if err != nil {
		return nil, errors.Wrap(err, "show tables")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scan table name")
		}
		tables = append(tables, name)
	}
	return tables, errors.Wrap(rows.Err(), "show tables")
}

// readTableRows selects every row of a table as text. NULL cells become empty
// strings, which count as missing.
func readTableRows(db *gorm.DB, database, table string) ([]dictionary.Row, error) {
	columns, err := getColumnAndTypeList(db, database, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return []dictionary.Row{}, nil
	}
	fields := make([]string, len(columns))
	for i, c := range columns {
		fields[i] = quoteIdentifier(c.Name)
	}

	rows, err := db.Raw("SELECT " + strings.Join(fields, ",") + " FROM " + qualifiedTable(database, table)).Rows()
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", table)
	}
	defer rows.Close()

	values := make([]sql.NullString, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	out := []dictionary.Row{}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrapf(err, "scan %s", table)
		}
		row := make(dictionary.Row, len(columns))
		for i, c := range columns {
			row[c.Name] = values[i].String
		}
		out = append(out, row)
	}
	return out, errors.Wrapf(rows.Err(), "read %s", table)
}

// loadDatabase reads every table of a workspace database. Unreadable tables are
// logged and summarized as empty.
func loadDatabase(db *gorm.DB, database string, logger *zap.Logger) (map[string][]dictionary.Row, error) {
	tables, err := listTables(db, database)
	if err != nil {
		return nil, err
	}
	data := make(map[string][]dictionary.Row, len(tables))
	for _, table := range tables {
		rows, err := readTableRows(db, database, table)
		if err != nil {
			logger.Warn("table unreadable, summarizing as empty", zap.String("table", table), zap.Error(err))
			rows = []dictionary.Row{}
		}
		data[dictionary.NormalizeHeader(table)] = rows
	}
	return data, nil
}
