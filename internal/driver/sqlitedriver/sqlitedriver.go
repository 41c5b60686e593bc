// Package sqlitedriver implements the Driver contract against a single
// SQLite database file, mirroring the teacher's db.go bulk-insert/
// explicit-transaction discipline but against the live read/write schema
// this module needs rather than a one-shot export (spec §4.10).
package sqlitedriver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"jvmcpg/internal/cpgerr"
	"jvmcpg/internal/driver"
	"jvmcpg/internal/extract/ids"
	"jvmcpg/internal/schema"
)

const ddl = `
CREATE TABLE IF NOT EXISTS nodes (
	id         INTEGER PRIMARY KEY,
	kind       TEXT NOT NULL,
	properties TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS edges (
	source     INTEGER NOT NULL,
	target     INTEGER NOT NULL,
	kind       TEXT NOT NULL,
	properties TEXT
);
CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind);
CREATE INDEX IF NOT EXISTS idx_edges_source_kind ON edges(source, kind);
CREATE INDEX IF NOT EXISTS idx_edges_target_kind ON edges(target, kind);
CREATE INDEX IF NOT EXISTS idx_nodes_file_name ON nodes(json_extract(properties, '$.name')) WHERE kind = 'FILE';
CREATE INDEX IF NOT EXISTS idx_nodes_ns_fullname ON nodes(json_extract(properties, '$.fullName')) WHERE kind = 'NAMESPACE_BLOCK';
CREATE INDEX IF NOT EXISTS idx_nodes_method_key ON nodes(json_extract(properties, '$.fullName'), json_extract(properties, '$.signature')) WHERE kind = 'METHOD';
CREATE TEMP TABLE IF NOT EXISTS selection (id INTEGER PRIMARY KEY);
`

// traversalKinds is the edge-kind set get_method traverses outward along,
// spanning the same closure memdriver.Driver walks (spec §4.3). Assembled
// once into the literal SQL IN-list below since the set is fixed at
// compile time, never derived from caller input.
var traversalKindList = sqlInList(schema.AST, schema.Ref, schema.CFG, schema.Argument,
	schema.CapturedBy, schema.BindsTo, schema.Receiver, schema.Condition, schema.Binds)

func sqlInList(kinds ...schema.EdgeKind) string {
	quoted := make([]string, len(kinds))
	for i, k := range kinds {
		quoted[i] = "'" + string(k) + "'"
	}
	return strings.Join(quoted, ", ")
}

// Driver is the SQLite-backed implementation of driver.Driver. A single
// *Driver is not safe for concurrent use from multiple goroutines without
// external synchronization beyond mu, because the pipeline is single-
// writer by design (spec §5); mu only guards against accidental misuse.
type Driver struct {
	mu     sync.Mutex
	conn   *sqlite.Conn
	nextID int64
}

// Open creates or reopens a SQLite-backed driver at path, applying the
// same performance pragmas the teacher's WriteDB uses and creating the
// schema if absent. Unlike WriteDB, Open never truncates an existing
// file: the pipeline reopens the same store across runs to diff against
// it (spec §4.9 "currentFileHashes").
func Open(path string) (*Driver, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite, sqlite.OpenWAL)
	if err != nil {
		return nil, &cpgerr.DriverUnavailable{Op: "open", Detail: path, Err: err}
	}

	for _, pragma := range []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = OFF",
	} {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			_ = conn.Close()
			return nil, &cpgerr.DriverUnavailable{Op: "pragma", Detail: pragma, Err: err}
		}
	}

	if err := sqlitex.ExecuteScript(conn, ddl, nil); err != nil {
		_ = conn.Close()
		return nil, &cpgerr.DriverUnavailable{Op: "create schema", Err: err}
	}

	d := &Driver{conn: conn}
	if err := d.loadNextID(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return d, nil
}

// Close releases the underlying connection.
func (d *Driver) Close() error {
	return d.conn.Close()
}

// loadNextID resumes the in-process id counter from the highest id already
// persisted in the file, via the same spec §4.4 allocator helper a fresh
// in-memory driver never needs.
func (d *Driver) loadNextID() error {
	max, err := ids.NewAllocator(d).CurrentMax(context.Background())
	if err != nil {
		return &cpgerr.DriverUnavailable{Op: "load next id", Err: err}
	}
	d.nextID = max
	return nil
}

// Begin/Commit/Rollback implement driver.Transactional by issuing BEGIN
// IMMEDIATE / COMMIT / ROLLBACK on the connection (spec §4.10 "a
// driver-held transaction that callers begin/commit explicitly"). The
// extractor pipeline does not call them; writes made outside a Begin run
// in SQLite's autocommit mode.
func (d *Driver) Begin(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := sqlitex.ExecuteTransient(d.conn, "BEGIN IMMEDIATE", nil); err != nil {
		return &cpgerr.DriverUnavailable{Op: "begin", Err: err}
	}
	return nil
}

func (d *Driver) Commit(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := sqlitex.ExecuteTransient(d.conn, "COMMIT", nil); err != nil {
		return &cpgerr.DriverUnavailable{Op: "commit", Err: err}
	}
	return nil
}

func (d *Driver) Rollback(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := sqlitex.ExecuteTransient(d.conn, "ROLLBACK", nil); err != nil {
		return &cpgerr.DriverUnavailable{Op: "rollback", Err: err}
	}
	return nil
}

func (d *Driver) AddVertex(_ context.Context, n *driver.Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addVertexLocked(n)
}

func (d *Driver) addVertexLocked(n *driver.Node) error {
	if n.ID() != -1 {
		exists, err := d.rowExists(`SELECT 1 FROM nodes WHERE id = ?`, n.ID())
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}

	switch n.Kind() {
	case schema.File:
		if id, ok, err := d.lookupByProp("FILE", "name", n.String("name")); err != nil {
			return err
		} else if ok {
			n.SetID(id)
			return nil
		}
	case schema.NamespaceBlock:
		if id, ok, err := d.lookupByProp("NAMESPACE_BLOCK", "fullName", n.String("fullName")); err != nil {
			return err
		} else if ok {
			n.SetID(id)
			return nil
		}
	case schema.Method:
		if id, ok, err := d.lookupMethod(n.String("fullName"), n.String("signature")); err != nil {
			return err
		} else if ok {
			n.SetID(id)
			return nil
		}
	}

	d.nextID++
	id := d.nextID
	n.SetID(id)

	props, err := encodeProps(n.Properties())
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}

	stmt, err := d.conn.Prepare(`INSERT INTO nodes (id, kind, properties) VALUES (?, ?, ?)`)
	if err != nil {
		return &cpgerr.DriverUnavailable{Op: "add vertex", Err: err}
	}
	defer func() { _ = stmt.Finalize() }()
	stmt.BindInt64(1, id)
	stmt.BindText(2, string(n.Kind()))
	stmt.BindText(3, props)
	if _, err := stmt.Step(); err != nil {
		return &cpgerr.DriverUnavailable{Op: "add vertex", Err: err}
	}
	return nil
}

func (d *Driver) Exists(_ context.Context, n *driver.Node) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n.ID() == -1 {
		return false, nil
	}
	return d.rowExists(`SELECT 1 FROM nodes WHERE id = ?`, n.ID())
}

func (d *Driver) ExistsEdge(_ context.Context, src, dst *driver.Node, label schema.EdgeKind) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if src.ID() == -1 || dst.ID() == -1 {
		return false, nil
	}
	return d.rowExists(`SELECT 1 FROM edges WHERE source = ? AND target = ? AND kind = ?`, src.ID(), dst.ID(), string(label))
}

func (d *Driver) AddEdge(_ context.Context, src, dst *driver.Node, label schema.EdgeKind, properties map[string]any) error {
	if !schema.IsAllowed(src.Kind(), label, dst.Kind()) {
		return &cpgerr.SchemaViolation{
			Detail: fmt.Sprintf("edge %s not allowed from %s to %s", label, src.Kind(), dst.Kind()),
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if src.ID() == -1 {
		if err := d.addVertexLocked(src); err != nil {
			return err
		}
	}
	if dst.ID() == -1 {
		if err := d.addVertexLocked(dst); err != nil {
			return err
		}
	}

	exists, err := d.rowExists(`SELECT 1 FROM edges WHERE source = ? AND target = ? AND kind = ?`, src.ID(), dst.ID(), string(label))
	if err != nil {
		return err
	}
	if exists {
		return nil // idempotent, spec §8 property 7.
	}

	propsJSON, err := encodeEdgeProps(properties)
	if err != nil {
		return fmt.Errorf("encode edge properties: %w", err)
	}

	stmt, err := d.conn.Prepare(`INSERT INTO edges (source, target, kind, properties) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return &cpgerr.DriverUnavailable{Op: "add edge", Err: err}
	}
	defer func() { _ = stmt.Finalize() }()
	stmt.BindInt64(1, src.ID())
	stmt.BindInt64(2, dst.ID())
	stmt.BindText(3, string(label))
	if propsJSON == "" {
		stmt.BindNull(4)
	} else {
		stmt.BindText(4, propsJSON)
	}
	if _, err := stmt.Step(); err != nil {
		return &cpgerr.DriverUnavailable{Op: "add edge", Err: err}
	}
	return nil
}

func (d *Driver) DeleteVertex(_ context.Context, n *driver.Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleteVertexLocked(n.ID())
}

func (d *Driver) deleteVertexLocked(id int64) error {
	if err := d.exec(`DELETE FROM edges WHERE source = ? OR target = ?`, id, id); err != nil {
		return err
	}
	return d.exec(`DELETE FROM nodes WHERE id = ?`, id)
}

// DeleteMethod removes the method's full AST closure but preserves
// inbound CALL edges by replaying them onto a freshly inserted phantom
// head, mirroring memdriver.Driver.DeleteMethod (spec §3 "Call-graph
// stability").
func (d *Driver) DeleteMethod(_ context.Context, fullName, signature string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rootID, ok, err := d.lookupMethod(fullName, signature)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	closure, err := d.collectIDs(
		fmt.Sprintf(`WITH RECURSIVE closure(id) AS (
			SELECT ?
			UNION
			SELECT e.target FROM edges e JOIN closure c ON e.source = c.id WHERE e.kind = 'AST'
		) SELECT id FROM closure`),
		rootID,
	)
	if err != nil {
		return err
	}

	type preservedCaller struct {
		src   int64
		props string
	}
	var preserved []preservedCaller
	err = sqlitex.ExecuteTransient(d.conn, `SELECT source, properties FROM edges WHERE target = ? AND kind = 'CALL'`,
		&sqlitex.ExecOptions{Args: []any{rootID}, ResultFunc: func(stmt *sqlite.Stmt) error {
			preserved = append(preserved, preservedCaller{src: stmt.ColumnInt64(0), props: stmt.ColumnText(1)})
			return nil
		}})
	if err != nil {
		return &cpgerr.DriverUnavailable{Op: "delete method", Err: err}
	}

	var methodName, methodFullName, methodSig string
	err = sqlitex.ExecuteTransient(d.conn, `SELECT properties FROM nodes WHERE id = ?`, &sqlitex.ExecOptions{
		Args: []any{rootID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			raw := decodeEdgeProps(stmt.ColumnText(0))
			methodName, _ = raw["name"].(string)
			methodFullName, _ = raw["fullName"].(string)
			methodSig, _ = raw["signature"].(string)
			return nil
		},
	})
	if err != nil {
		return &cpgerr.DriverUnavailable{Op: "delete method", Err: err}
	}

	if err := d.withSelection(closure, func() error {
		if err := d.exec(`DELETE FROM edges WHERE source IN (SELECT id FROM selection) OR target IN (SELECT id FROM selection)`); err != nil {
			return err
		}
		return d.exec(`DELETE FROM nodes WHERE id IN (SELECT id FROM selection)`)
	}); err != nil {
		return err
	}

	if len(preserved) == 0 {
		return nil
	}

	phantom := driver.NewNode(schema.Method).
		Set("name", methodName).
		Set("fullName", methodFullName).
		Set("signature", methodSig).
		Set("external", true)
	if err := d.addVertexLocked(phantom); err != nil {
		return err
	}
	for _, p := range preserved {
		stmt, err := d.conn.Prepare(`INSERT INTO edges (source, target, kind, properties) VALUES (?, ?, 'CALL', ?)`)
		if err != nil {
			return &cpgerr.DriverUnavailable{Op: "delete method", Err: err}
		}
		stmt.BindInt64(1, p.src)
		stmt.BindInt64(2, phantom.ID())
		if p.props == "" {
			stmt.BindNull(3)
		} else {
			stmt.BindText(3, p.props)
		}
		_, stepErr := stmt.Step()
		_ = stmt.Finalize()
		if stepErr != nil {
			return &cpgerr.DriverUnavailable{Op: "delete method", Err: stepErr}
		}
	}
	return nil
}

func (d *Driver) GetMethod(_ context.Context, fullName, signature string, includeBody bool) (*driver.Subgraph, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rootID, ok, err := d.lookupMethod(fullName, signature)
	if err != nil {
		return nil, err
	}
	if !ok {
		return driver.NewSubgraph(), nil
	}

	ids := []int64{rootID}
	if includeBody {
		ids, err = d.collectIDs(
			fmt.Sprintf(`WITH RECURSIVE closure(id) AS (
				SELECT ?
				UNION
				SELECT e.target FROM edges e JOIN closure c ON e.source = c.id WHERE e.kind IN (%s)
			) SELECT id FROM closure`, traversalKindList),
			rootID,
		)
		if err != nil {
			return nil, err
		}
	}
	return d.loadSubgraph(ids)
}

func (d *Driver) GetProgramStructure(_ context.Context) (*driver.Subgraph, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids, err := d.collectIDs(`WITH RECURSIVE closure(id) AS (
		SELECT id FROM nodes WHERE kind = 'FILE'
		UNION
		SELECT e.target FROM edges e
			JOIN closure c ON e.source = c.id
			JOIN nodes n ON n.id = e.target
		WHERE e.kind = 'AST' AND n.kind = 'NAMESPACE_BLOCK'
	) SELECT id FROM closure`)
	if err != nil {
		return nil, err
	}
	return d.loadSubgraph(ids)
}

func (d *Driver) GetNeighbours(_ context.Context, n *driver.Node) (*driver.Subgraph, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids, err := d.collectIDs(
		`SELECT ? UNION SELECT target FROM edges WHERE source = ? UNION SELECT source FROM edges WHERE target = ?`,
		n.ID(), n.ID(), n.ID(),
	)
	if err != nil {
		return nil, err
	}
	return d.loadSubgraph(ids)
}

func (d *Driver) GetWholeGraph(_ context.Context) (*driver.Subgraph, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	view := driver.NewSubgraph()
	byID := make(map[int64]*driver.Node)
	err := sqlitex.ExecuteTransient(d.conn, `SELECT id, kind, properties FROM nodes`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			n, err := decodeNode(stmt.ColumnInt64(0), stmt.ColumnText(1), stmt.ColumnText(2))
			if err != nil {
				return err
			}
			byID[n.ID()] = n
			view.Nodes = append(view.Nodes, n)
			return nil
		},
	})
	if err != nil {
		return nil, &cpgerr.DriverUnavailable{Op: "get whole graph", Err: err}
	}

	err = sqlitex.ExecuteTransient(d.conn, `SELECT source, target, kind, properties FROM edges`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			src := byID[stmt.ColumnInt64(0)]
			dst := byID[stmt.ColumnInt64(1)]
			if src == nil || dst == nil {
				return nil
			}
			view.Edges = append(view.Edges, &driver.Edge{
				Src: src, Dst: dst, Label: schema.EdgeKind(stmt.ColumnText(2)),
				Properties: decodeEdgeProps(stmt.ColumnText(3)),
			})
			return nil
		},
	})
	if err != nil {
		return nil, &cpgerr.DriverUnavailable{Op: "get whole graph", Err: err}
	}
	return view, nil
}

func (d *Driver) GetVertexIDs(_ context.Context, lo, hi int64) ([]int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.collectIDs(`SELECT id FROM nodes WHERE id BETWEEN ? AND ? ORDER BY id`, lo, hi)
}

func (d *Driver) Clear(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.exec(`DELETE FROM edges`); err != nil {
		return err
	}
	if err := d.exec(`DELETE FROM nodes`); err != nil {
		return err
	}
	if err := d.exec(`DELETE FROM selection`); err != nil {
		return err
	}
	d.nextID = 0
	return nil
}

// --- helpers ---

func (d *Driver) rowExists(query string, args ...any) (bool, error) {
	found := false
	err := sqlitex.ExecuteTransient(d.conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			return nil
		},
	})
	if err != nil {
		return false, &cpgerr.DriverUnavailable{Op: "query", Err: err}
	}
	return found, nil
}

func (d *Driver) lookupByProp(kind, prop, value string) (int64, bool, error) {
	var id int64
	found := false
	query := fmt.Sprintf(`SELECT id FROM nodes WHERE kind = ? AND json_extract(properties, '$.%s') = ? LIMIT 1`, prop)
	err := sqlitex.ExecuteTransient(d.conn, query, &sqlitex.ExecOptions{
		Args: []any{kind, value},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			id = stmt.ColumnInt64(0)
			found = true
			return nil
		},
	})
	if err != nil {
		return 0, false, &cpgerr.DriverUnavailable{Op: "lookup", Err: err}
	}
	return id, found, nil
}

func (d *Driver) lookupMethod(fullName, signature string) (int64, bool, error) {
	var id int64
	found := false
	err := sqlitex.ExecuteTransient(d.conn,
		`SELECT id FROM nodes WHERE kind = 'METHOD' AND json_extract(properties, '$.fullName') = ? AND json_extract(properties, '$.signature') = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			Args: []any{fullName, signature},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				id = stmt.ColumnInt64(0)
				found = true
				return nil
			},
		})
	if err != nil {
		return 0, false, &cpgerr.DriverUnavailable{Op: "lookup method", Err: err}
	}
	return id, found, nil
}

func (d *Driver) exec(query string, args ...any) error {
	if err := sqlitex.ExecuteTransient(d.conn, query, &sqlitex.ExecOptions{Args: args}); err != nil {
		return &cpgerr.DriverUnavailable{Op: "exec", Err: err}
	}
	return nil
}

func (d *Driver) collectIDs(query string, args ...any) ([]int64, error) {
	var ids []int64
	err := sqlitex.ExecuteTransient(d.conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			ids = append(ids, stmt.ColumnInt64(0))
			return nil
		},
	})
	if err != nil {
		return nil, &cpgerr.DriverUnavailable{Op: "traverse", Err: err}
	}
	return ids, nil
}

// withSelection populates the per-connection temp selection table with
// ids for the duration of fn, so callers can express set-membership
// against an arbitrary id list without building a giant IN (...) clause.
func (d *Driver) withSelection(ids []int64, fn func() error) error {
	if err := d.exec(`DELETE FROM selection`); err != nil {
		return err
	}
	stmt, err := d.conn.Prepare(`INSERT OR IGNORE INTO selection (id) VALUES (?)`)
	if err != nil {
		return &cpgerr.DriverUnavailable{Op: "selection", Err: err}
	}
	for _, id := range ids {
		stmt.BindInt64(1, id)
		if _, err := stmt.Step(); err != nil {
			_ = stmt.Finalize()
			return &cpgerr.DriverUnavailable{Op: "selection", Err: err}
		}
		_ = stmt.Reset()
	}
	_ = stmt.Finalize()
	return fn()
}

func (d *Driver) loadSubgraph(ids []int64) (*driver.Subgraph, error) {
	view := driver.NewSubgraph()
	if len(ids) == 0 {
		return view, nil
	}

	byID := make(map[int64]*driver.Node, len(ids))
	err := d.withSelection(ids, func() error {
		err := sqlitex.ExecuteTransient(d.conn,
			`SELECT n.id, n.kind, n.properties FROM nodes n JOIN selection s ON s.id = n.id`,
			&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
				n, err := decodeNode(stmt.ColumnInt64(0), stmt.ColumnText(1), stmt.ColumnText(2))
				if err != nil {
					return err
				}
				byID[n.ID()] = n
				view.Nodes = append(view.Nodes, n)
				return nil
			}})
		if err != nil {
			return err
		}

		return sqlitex.ExecuteTransient(d.conn,
			`SELECT e.source, e.target, e.kind, e.properties FROM edges e
				JOIN selection ssrc ON ssrc.id = e.source
				JOIN selection sdst ON sdst.id = e.target`,
			&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
				src := byID[stmt.ColumnInt64(0)]
				dst := byID[stmt.ColumnInt64(1)]
				if src == nil || dst == nil {
					return nil
				}
				view.Edges = append(view.Edges, &driver.Edge{
					Src: src, Dst: dst, Label: schema.EdgeKind(stmt.ColumnText(2)),
					Properties: decodeEdgeProps(stmt.ColumnText(3)),
				})
				return nil
			}})
	})
	if err != nil {
		return nil, &cpgerr.DriverUnavailable{Op: "load subgraph", Err: err}
	}
	return view, nil
}

// encodeProps serialises a node's property bag, dropping "_"-prefixed
// hidden keys (pdgbuild's in-memory "_args"/"_receiver"/"_refKind"
// bookkeeping, which never needs to survive a persisted round-trip since
// every builder that reads them runs against the same in-process
// *driver.Node within one pipeline invocation).
func encodeProps(props map[string]any) (string, error) {
	clean := make(map[string]any, len(props))
	for k, v := range props {
		if strings.HasPrefix(k, "_") {
			continue
		}
		clean[k] = v
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func encodeEdgeProps(props map[string]any) (string, error) {
	if len(props) == 0 {
		return "", nil
	}
	b, err := json.Marshal(props)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeNode(id int64, kind, propsJSON string) (*driver.Node, error) {
	n := driver.NewNode(schema.NodeKind(kind))
	for k, v := range decodeEdgeProps(propsJSON) {
		n.Set(k, v)
	}
	n.SetID(id)
	return n, nil
}

// decodeEdgeProps unmarshals a JSON property bag, coercing whole-valued
// float64s (every number round-trips through encoding/json as float64)
// back to int so callers reading via Node.Int keep seeing ints.
func decodeEdgeProps(s string) map[string]any {
	if s == "" || s == "null" {
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil
	}
	for k, v := range raw {
		if f, ok := v.(float64); ok && f == math.Trunc(f) {
			raw[k] = int(f)
		}
	}
	return raw
}
