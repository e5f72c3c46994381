// Package fakedriver is an in-memory driver.Driver for tests.
//
// It understands equality filters, the comparison operators $ne, $gt, $gte, $lt, $lte and $in,
// and the modifiers $set, $inc and $unset. Every call is recorded and failures can be
// injected per operation.
package fakedriver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/jongo-go/jongo/pkg/constants"
	"github.com/jongo-go/jongo/pkg/driver"
)

type Op string

const (
	OpCount       Op = "count"
	OpFind        Op = "find"
	OpFindOne     Op = "findOne"
	OpDistinct    Op = "distinct"
	OpUpdate      Op = "update"
	OpSave        Op = "save"
	OpInsert      Op = "insert"
	OpRemove      Op = "remove"
	OpEnsureIndex Op = "ensureIndex"
	OpDrop        Op = "drop"
)

// Call is one recorded driver invocation.
type Call struct {
	Op       Op
	Filter   bson.D
	Modifier bson.D
	Field    string
	Find     driver.FindOptions
	Update   driver.UpdateOptions
	Concern  *writeconcern.WriteConcern
}

type Driver struct {
	name string

	mu       sync.Mutex
	docs     []bson.D
	indexes  []bson.D
	calls    []Call
	failures map[Op]error
	cursors  []*Cursor
}

var _ driver.Driver = (*Driver)(nil)

func New(name string, docs ...bson.D) *Driver {
	d := &Driver{name: name, failures: map[Op]error{}}
	for _, doc := range docs {
		d.docs = append(d.docs, clone(doc))
	}
	return d
}

// Fail makes every later op call return err. A nil err clears the failure.
func (d *Driver) Fail(op Op, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err == nil {
		delete(d.failures, op)
		return
	}
	d.failures[op] = err
}

// Calls returns the recorded invocations in order.
func (d *Driver) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]Call(nil), d.calls...)
}

// Docs returns a copy of the stored documents in insertion order.
func (d *Driver) Docs() []bson.D {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]bson.D, len(d.docs))
	for i, doc := range d.docs {
		out[i] = clone(doc)
	}
	return out
}

func (d *Driver) Indexes() []bson.D {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]bson.D(nil), d.indexes...)
}

// OpenCursors returns the number of cursors not yet closed.
func (d *Driver) OpenCursors() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, c := range d.cursors {
		if !c.closed {
			n++
		}
	}
	return n
}

func (d *Driver) Name() string {
	return d.name
}

func (d *Driver) record(c Call) error {
	d.calls = append(d.calls, c)
	return d.failures[c.Op]
}

func (d *Driver) Count(ctx context.Context, filter bson.D) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record(Call{Op: OpCount, Filter: filter}); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(d.match(filter))), nil
}

func (d *Driver) Find(ctx context.Context, filter bson.D, opts driver.FindOptions) (driver.Cursor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record(Call{Op: OpFind, Filter: filter, Find: opts}); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := d.match(filter)
	if len(opts.Sort) > 0 {
		sortDocs(matched, opts.Sort)
	}
	if opts.Skip > 0 {
		matched = matched[min(int(opts.Skip), len(matched)):]
	}
	if opts.Limit > 0 && int(opts.Limit) < len(matched) {
		matched = matched[:opts.Limit]
	}

	raws := make([]bson.Raw, 0, len(matched))
	for _, doc := range matched {
		r, err := bson.Marshal(project(doc, opts.Projection))
		if err != nil {
			return nil, err
		}
		raws = append(raws, r)
	}

	c := &Cursor{docs: raws, pos: -1}
	d.cursors = append(d.cursors, c)
	return c, nil
}

func (d *Driver) FindOne(ctx context.Context, filter bson.D, opts driver.FindOneOptions) (bson.Raw, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record(Call{Op: OpFindOne, Filter: filter, Find: driver.FindOptions{Projection: opts.Projection}}); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := d.match(filter)
	if len(matched) == 0 {
		return nil, nil
	}
	return bson.Marshal(project(matched[0], opts.Projection))
}

func (d *Driver) Distinct(ctx context.Context, field string, filter bson.D) ([]any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record(Call{Op: OpDistinct, Filter: filter, Field: field}); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []any{}
	for _, doc := range d.match(filter) {
		v, ok := lookup(doc, field)
		if !ok {
			continue
		}
		values := []any{v}
		if arr, isArr := v.(bson.A); isArr {
			values = arr
		}
		for _, value := range values {
			if !containsValue(out, value) {
				out = append(out, value)
			}
		}
	}
	return out, nil
}

func (d *Driver) Update(ctx context.Context, filter, modifier bson.D, opts driver.UpdateOptions) (*driver.WriteResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record(Call{Op: OpUpdate, Filter: filter, Modifier: modifier, Update: opts, Concern: opts.WriteConcern}); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &driver.WriteResult{}
	for i, doc := range d.docs {
		if !matches(doc, filter) {
			continue
		}
		updated, err := apply(doc, modifier)
		if err != nil {
			return nil, err
		}
		res.Matched++
		if !equalDocs(doc, updated) {
			res.Modified++
		}
		d.docs[i] = updated
		if !opts.Multi {
			break
		}
	}

	if res.Matched == 0 && opts.Upsert {
		base := bson.D{}
		for _, e := range filter {
			if !strings.HasPrefix(e.Key, "$") && !isOperatorDoc(e.Value) {
				base = append(base, e)
			}
		}
		doc, err := apply(base, modifier)
		if err != nil {
			return nil, err
		}
		id := ensureID(&doc)
		d.docs = append(d.docs, doc)
		res.Upserted = 1
		res.UpsertedID = id
	}
	return res, nil
}

func (d *Driver) Save(ctx context.Context, doc bson.D, wc *writeconcern.WriteConcern) (*driver.WriteResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record(Call{Op: OpSave, Modifier: doc, Concern: wc}); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc = clone(doc)
	id, ok := lookup(doc, constants.IDField)
	if !ok {
		return nil, fmt.Errorf("fakedriver: save without %s", constants.IDField)
	}
	for i, existing := range d.docs {
		if existingID, _ := lookup(existing, constants.IDField); equalValues(existingID, id) {
			d.docs[i] = doc
			return &driver.WriteResult{Matched: 1, Modified: 1}, nil
		}
	}
	d.docs = append(d.docs, doc)
	return &driver.WriteResult{Upserted: 1, UpsertedID: id}, nil
}

func (d *Driver) Insert(ctx context.Context, doc bson.D, wc *writeconcern.WriteConcern) (*driver.WriteResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record(Call{Op: OpInsert, Modifier: doc, Concern: wc}); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc = clone(doc)
	id := ensureID(&doc)
	for _, existing := range d.docs {
		if existingID, _ := lookup(existing, constants.IDField); equalValues(existingID, id) {
			return nil, fmt.Errorf("fakedriver: duplicate key %v", id)
		}
	}
	d.docs = append(d.docs, doc)
	return &driver.WriteResult{UpsertedID: id}, nil
}

func (d *Driver) Remove(ctx context.Context, filter bson.D, wc *writeconcern.WriteConcern) (*driver.WriteResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record(Call{Op: OpRemove, Filter: filter, Concern: wc}); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kept := d.docs[:0]
	var removed int64
	for _, doc := range d.docs {
		if matches(doc, filter) {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	d.docs = kept
	return &driver.WriteResult{Removed: removed}, nil
}

func (d *Driver) EnsureIndex(ctx context.Context, keys bson.D) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record(Call{Op: OpEnsureIndex, Modifier: keys}); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := indexName(keys)
	for _, idx := range d.indexes {
		if indexName(idx) == name {
			return name, nil
		}
	}
	d.indexes = append(d.indexes, keys)
	return name, nil
}

func (d *Driver) Drop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record(Call{Op: OpDrop}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d.docs = nil
	d.indexes = nil
	return nil
}

func (d *Driver) match(filter bson.D) []bson.D {
	var out []bson.D
	for _, doc := range d.docs {
		if matches(doc, filter) {
			out = append(out, clone(doc))
		}
	}
	return out
}

func ensureID(doc *bson.D) any {
	if id, ok := lookup(*doc, constants.IDField); ok {
		return id
	}
	id := primitive.NewObjectID()
	*doc = append(bson.D{{Key: constants.IDField, Value: id}}, *doc...)
	return id
}

func indexName(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s_%v", k.Key, k.Value))
	}
	return strings.Join(parts, "_")
}

func sortDocs(docs []bson.D, keys bson.D) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			a, _ := lookup(docs[i], k.Key)
			b, _ := lookup(docs[j], k.Key)
			c := compare(a, b)
			if c == 0 {
				continue
			}
			if dir, ok := number(k.Value); ok && dir < 0 {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func project(doc bson.D, projection bson.D) bson.D {
	if len(projection) == 0 {
		return doc
	}

	include := map[string]bool{}
	exclude := map[string]bool{}
	for _, p := range projection {
		if n, ok := number(p.Value); ok && n == 0 || p.Value == false {
			exclude[p.Key] = true
		} else {
			include[p.Key] = true
		}
	}

	out := bson.D{}
	for _, e := range doc {
		switch {
		case exclude[e.Key]:
		case len(include) == 0, include[e.Key], e.Key == constants.IDField:
			out = append(out, e)
		}
	}
	return out
}
