/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tomoncle/hummer-orm/errs"
)

// ExecScript runs every statement of a SQL script on the transaction carried
// by ctx and returns the total number of affected rows. Statements end with
// ';' at the end of a line; lines starting with "--" are skipped.
func ExecScript(ctx context.Context, r io.Reader) (int64, error) {
	conn, err := CurrentConnection(ctx)
	if err != nil {
		return 0, err
	}
	statements, err := splitSQLStatements(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read SQL script: %w", err)
	}

	var total int64
	for _, stmt := range statements {
		res, err := conn.ExecContext(ctx, stmt)
		if err != nil {
			return total, errs.Database(stmt, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	GetLogger().Debug("SQL script executed", "statements", len(statements), "rows_affected", total)
	return total, nil
}

// ExecScriptFile runs the SQL script at path with ExecScript.
func ExecScriptFile(ctx context.Context, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open SQL script: %w", err)
	}
	defer f.Close()
	return ExecScript(ctx, f)
}

func splitSQLStatements(r io.Reader) ([]string, error) {
	var (
		statements []string
		current    strings.Builder
	)
	flush := func() {
		stmt := strings.TrimSpace(current.String())
		stmt = strings.TrimSpace(strings.TrimSuffix(stmt, ";"))
		if stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteByte(' ')
		if strings.HasSuffix(line, ";") {
			flush()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return statements, nil
}
