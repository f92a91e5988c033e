// Package graphql executes GraphQL documents against the resolver root.
//
// Documents are parsed and validated with gqlparser and cached by query
// text. Root query fields resolve concurrently; root mutation fields run in
// document order. Nested fields resolve sequentially under their parent.
package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"
	"golang.org/x/sync/errgroup"

	"github.com/rl1809/graphql-bench/internal/core/service"
	"github.com/rl1809/graphql-bench/internal/logging"
	"github.com/rl1809/graphql-bench/internal/port"
)

const (
	defaultCacheTTL     = 10 * time.Minute
	defaultCacheCleanup = 5 * time.Minute
)

// Executor executes GraphQL operations against a resolver root.
type Executor struct {
	schema *ast.Schema
	root   port.ResolverRoot
	logger *slog.Logger

	cacheTTL     time.Duration
	cacheCleanup time.Duration
	docs         *cache.Cache
}

type Option func(*Executor)

// WithLogger sets the fallback logger; a request-scoped logger in the
// context takes precedence.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithQueryCache controls how long parsed documents stay cached.
// A zero ttl disables caching.
func WithQueryCache(ttl, cleanup time.Duration) Option {
	return func(e *Executor) {
		e.cacheTTL = ttl
		e.cacheCleanup = cleanup
	}
}

func NewExecutor(schema *ast.Schema, root port.ResolverRoot, opts ...Option) *Executor {
	e := &Executor{
		schema:       schema,
		root:         root,
		logger:       logging.Nop(),
		cacheTTL:     defaultCacheTTL,
		cacheCleanup: defaultCacheCleanup,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cacheTTL > 0 {
		e.docs = cache.New(e.cacheTTL, e.cacheCleanup)
	}
	return e
}

// Schema returns the schema documents are validated against.
func (e *Executor) Schema() *ast.Schema {
	return e.schema
}

// CachedDocuments returns the number of parsed documents held in the cache.
func (e *Executor) CachedDocuments() int {
	if e.docs == nil {
		return 0
	}
	return e.docs.ItemCount()
}

// Execute runs req and always returns a response; failures are reported in
// Response.Errors.
func (e *Executor) Execute(ctx context.Context, req *Request) *Response {
	if req == nil || req.Query == "" {
		return requestError(gqlerror.Errorf("query is required"), CodeBadUserInput)
	}

	doc, errs := e.parse(req.Query)
	if errs != nil {
		return &Response{Errors: errs}
	}

	op := doc.Operations.ForName(req.OperationName)
	if op == nil {
		if req.OperationName != "" {
			return requestError(gqlerror.Errorf("operation %q not found", req.OperationName), CodeBadUserInput)
		}
		return requestError(gqlerror.Errorf("operationName is required when the document has more than one operation"), CodeBadUserInput)
	}

	vars, err := validator.VariableValues(e.schema, op, req.Variables)
	if err != nil {
		gqlErr := gqlerror.WrapIfUnwrapped(err)
		return requestError(gqlErr, CodeBadUserInput)
	}

	x := &execution{
		schema: e.schema,
		root:   e.root,
		doc:    doc,
		vars:   vars,
		logger: logging.FromContext(ctx, e.logger),
	}

	data := x.executeOperation(ctx, op)

	encoded, err := json.Marshal(data)
	if err != nil {
		x.logger.ErrorContext(ctx, "failed to encode response", "error", err)
		return requestError(gqlerror.Errorf("failed to encode response"), CodeInternal)
	}

	return &Response{Data: encoded, Errors: x.errs}
}

// parse loads and validates query, serving repeats from the document cache.
func (e *Executor) parse(query string) (*ast.QueryDocument, gqlerror.List) {
	if e.docs != nil {
		if doc, ok := e.docs.Get(query); ok {
			return doc.(*ast.QueryDocument), nil
		}
	}

	doc, errs := gqlparser.LoadQueryWithRules(e.schema, query, nil)
	if len(errs) > 0 {
		for _, err := range errs {
			if err.Rule == "" {
				setCode(err, CodeParseFailed)
			} else {
				setCode(err, CodeValidationFailed)
			}
		}
		return nil, errs
	}

	if e.docs != nil {
		e.docs.SetDefault(query, doc)
	}
	return doc, nil
}

func requestError(err *gqlerror.Error, code string) *Response {
	setCode(err, code)
	return &Response{Errors: gqlerror.List{err}}
}

func setCode(err *gqlerror.Error, code string) {
	if err.Extensions == nil {
		err.Extensions = map[string]any{}
	}
	if _, ok := err.Extensions["code"]; !ok {
		err.Extensions["code"] = code
	}
}

// execution holds the state of one operation.
type execution struct {
	schema *ast.Schema
	root   port.ResolverRoot
	doc    *ast.QueryDocument
	vars   map[string]any
	logger *slog.Logger

	mu   sync.Mutex
	errs gqlerror.List
}

type collectedField struct {
	key   string
	field *ast.Field
	sets  []ast.SelectionSet
}

func (x *execution) executeOperation(ctx context.Context, op *ast.OperationDefinition) any {
	var rootType *ast.Definition
	switch op.Operation {
	case ast.Mutation:
		rootType = x.schema.Mutation
	default:
		rootType = x.schema.Query
	}

	fields := x.collectFields(rootType.Name, []ast.SelectionSet{op.SelectionSet})
	values := make([]any, len(fields))
	ok := make([]bool, len(fields))

	if op.Operation == ast.Mutation {
		for i, cf := range fields {
			values[i], ok[i] = x.executeField(ctx, rootType.Name, nil, cf, ast.Path{ast.PathName(cf.key)})
		}
	} else {
		var g errgroup.Group
		for i, cf := range fields {
			g.Go(func() error {
				values[i], ok[i] = x.executeField(ctx, rootType.Name, nil, cf, ast.Path{ast.PathName(cf.key)})
				return nil
			})
		}
		_ = g.Wait()
	}

	out := make(object, 0, len(fields))
	for i, cf := range fields {
		if !ok[i] {
			return nil
		}
		out = append(out, entry{key: cf.key, value: values[i]})
	}
	return out
}

// collectFields flattens fragments, applies @skip/@include and merges
// fields that share a response key, keeping first-seen order.
func (x *execution) collectFields(typeName string, sets []ast.SelectionSet) []*collectedField {
	var fields []*collectedField
	index := make(map[string]*collectedField)
	visited := make(map[string]bool)

	var walk func(set ast.SelectionSet)
	walk = func(set ast.SelectionSet) {
		for _, sel := range set {
			switch s := sel.(type) {
			case *ast.Field:
				if !x.included(s.Directives) {
					continue
				}
				key := s.Alias
				if key == "" {
					key = s.Name
				}
				if cf, ok := index[key]; ok {
					cf.sets = append(cf.sets, s.SelectionSet)
					continue
				}
				cf := &collectedField{key: key, field: s, sets: []ast.SelectionSet{s.SelectionSet}}
				index[key] = cf
				fields = append(fields, cf)

			case *ast.InlineFragment:
				if !x.included(s.Directives) || !applies(s.TypeCondition, typeName) {
					continue
				}
				walk(s.SelectionSet)

			case *ast.FragmentSpread:
				if !x.included(s.Directives) || visited[s.Name] {
					continue
				}
				visited[s.Name] = true
				def := x.doc.Fragments.ForName(s.Name)
				if def == nil || !applies(def.TypeCondition, typeName) {
					continue
				}
				walk(def.SelectionSet)
			}
		}
	}

	for _, set := range sets {
		walk(set)
	}
	return fields
}

func applies(condition, typeName string) bool {
	return condition == "" || condition == typeName
}

func (x *execution) included(directives ast.DirectiveList) bool {
	if d := directives.ForName("skip"); d != nil && x.directiveIf(d) {
		return false
	}
	if d := directives.ForName("include"); d != nil && !x.directiveIf(d) {
		return false
	}
	return true
}

func (x *execution) directiveIf(d *ast.Directive) bool {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false
	}
	v, err := arg.Value.Value(x.vars)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

// executeField resolves and completes one field. ok is false when a null
// must propagate to the parent.
func (x *execution) executeField(ctx context.Context, typeName string, parent any, cf *collectedField, path ast.Path) (value any, ok bool) {
	f := cf.field
	if f.Name == "__typename" {
		return typeName, true
	}

	raw, err := x.resolveSafely(ctx, typeName, parent, f)
	if err != nil {
		x.fieldError(ctx, f, path, err)
		return nil, !f.Definition.Type.NonNull
	}
	if raw == nil && f.Definition.Type.NonNull {
		x.fieldError(ctx, f, path, fmt.Errorf("cannot return null for non-nullable field %s.%s", typeName, f.Name))
		return nil, false
	}
	return x.completeValue(ctx, f.Definition.Type, cf, raw, path)
}

func (x *execution) resolveSafely(ctx context.Context, typeName string, parent any, f *ast.Field) (raw any, err error) {
	defer func() {
		if r := recover(); r != nil {
			x.logger.ErrorContext(ctx, "resolver panicked", "field", typeName+"."+f.Name, "panic", r)
			raw, err = nil, fmt.Errorf("internal error resolving %s.%s", typeName, f.Name)
		}
	}()
	return x.resolve(ctx, typeName, parent, f)
}

func (x *execution) completeValue(ctx context.Context, typ *ast.Type, cf *collectedField, value any, path ast.Path) (any, bool) {
	if value == nil {
		return nil, !typ.NonNull
	}

	if typ.Elem != nil {
		items, _ := value.([]any)
		out := make([]any, len(items))
		for i, item := range items {
			v, ok := x.completeValue(ctx, typ.Elem, cf, item, extend(path, ast.PathIndex(i)))
			if !ok {
				return nil, !typ.NonNull
			}
			out[i] = v
		}
		return out, true
	}

	def := x.schema.Types[typ.NamedType]
	if def == nil || def.Kind != ast.Object {
		return value, true
	}

	fields := x.collectFields(def.Name, cf.sets)
	out := make(object, 0, len(fields))
	for _, child := range fields {
		v, ok := x.executeField(ctx, def.Name, value, child, extend(path, ast.PathName(child.key)))
		if !ok {
			return nil, !typ.NonNull
		}
		out = append(out, entry{key: child.key, value: v})
	}
	return out, true
}

func (x *execution) fieldError(ctx context.Context, f *ast.Field, path ast.Path, err error) {
	gqlErr := gqlerror.WrapPath(path, err)
	if f.Position != nil {
		gqlErr.Locations = []gqlerror.Location{{Line: f.Position.Line, Column: f.Position.Column}}
	}

	code := CodeInternal
	switch {
	case errors.Is(err, service.ErrNotFound):
		code = CodeNotFound
	case errors.Is(err, errInvalidArgument):
		code = CodeBadUserInput
	default:
		x.logger.WarnContext(ctx, "field resolution failed", "path", path.String(), "error", err)
	}
	setCode(gqlErr, code)

	x.mu.Lock()
	x.errs = append(x.errs, gqlErr)
	x.mu.Unlock()
}

func extend(path ast.Path, elem ast.PathElement) ast.Path {
	out := make(ast.Path, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}
