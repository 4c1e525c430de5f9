// Package query compiles driver-neutral query text and arguments into the
// exact text and ordered argument list a specific dialect's driver expects.
// It is the one place that knows about named (:ident) parameters, IN-clause
// slice expansion, and per-dialect placeholder rendering.
package query

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/rfberaldo/dbfacade/internal/named"
	"github.com/rfberaldo/dbfacade/internal/parser"
	"github.com/rfberaldo/dbfacade/internal/reflectutil"
)

// Bind re-exports the parser's placeholder-style enum so callers outside
// internal/ don't need to import internal/parser directly.
type Bind = parser.Bind

const (
	BindUnknown  = parser.BindUnknown
	BindQuestion = parser.BindQuestion
	BindColon    = parser.BindColon
	BindAt       = parser.BindAt
	BindDollar   = parser.BindDollar
)

// BindProcessor adapts a Go value to whatever representation a dialect's
// driver accepts for it, e.g. truncating time.Time for MySQL's DATETIME.
type BindProcessor func(any) (any, error)

var ddlPattern = regexp.MustCompile(`(?i)^\s*(CREATE|ALTER|DROP|TRUNCATE|COMMENT)\b`)

// IsDDL reports whether query is a data-definition statement, which never
// carries bind parameters or produces a result set recognized by this
// package's compiler.
func IsDDL(query string) bool {
	return ddlPattern.MatchString(query)
}

// Compile turns query text plus either zero or more positional argument
// values or exactly one named argument value (map, struct, or a slice of
// them) into the text and ordered arguments a dialect-specific driver can
// execute directly. structTag selects the struct field tag used to map
// struct args to named parameters; fieldNameMapper maps untagged struct
// fields to column names (nil selects the default snake_case mapper).
func Compile(bind Bind, structTag string, fieldNameMapper func(string) string, queryStr string, args []any, processors map[reflect.Type]BindProcessor) (string, []any, error) {
	queryStr = strings.TrimSpace(queryStr)
	if queryStr == "" {
		return "", nil, fmt.Errorf("dbfacade/query: query cannot be blank")
	}

	if IsDDL(queryStr) {
		return queryStr, nil, nil
	}

	if len(args) == 0 {
		return queryStr, nil, nil
	}

	argType := reflectutil.TypeOfAny(args[0])
	if argType == reflectutil.Invalid {
		return "", nil, fmt.Errorf("dbfacade/query: unsupported argument type: %T", args[0])
	}

	var outQuery string
	var outArgs []any
	var err error

	switch argType {
	case reflectutil.Map, reflectutil.Struct, reflectutil.SliceMap, reflectutil.SliceStruct:
		if len(args) > 1 {
			return "", nil, fmt.Errorf("dbfacade/query: too many arguments for named query, want 1 got %d", len(args))
		}
		outQuery, outArgs, err = named.CompileWithMapper(bind, structTag, fieldNameMapper, queryStr, args[0])

	default:
		outQuery, outArgs, err = parser.ParseIn(bind, queryStr, args...)
	}

	if err != nil {
		return "", nil, err
	}

	if len(processors) > 0 {
		for i, a := range outArgs {
			if a == nil {
				continue
			}
			if p, ok := processors[reflect.TypeOf(a)]; ok {
				if outArgs[i], err = p(a); err != nil {
					return "", nil, fmt.Errorf("dbfacade/query: processing bind value: %w", err)
				}
			}
		}
	}

	return outQuery, outArgs, nil
}

// processorRegistry is a per-dialect-name set of BindProcessor keyed by
// reflect.Type, populated by the backend package at dialect-registration
// time and consulted by Compile through the dialect's own wrapper.
type processorRegistry struct {
	mu         sync.RWMutex
	processors map[reflect.Type]BindProcessor
}

func newProcessorRegistry() *processorRegistry {
	return &processorRegistry{processors: make(map[reflect.Type]BindProcessor)}
}

func (r *processorRegistry) register(t reflect.Type, p BindProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[t] = p
}

func (r *processorRegistry) snapshot() map[reflect.Type]BindProcessor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[reflect.Type]BindProcessor, len(r.processors))
	for k, v := range r.processors {
		out[k] = v
	}
	return out
}

// NewBindProcessors returns an empty, concurrency-safe registry of
// BindProcessor a dialect can populate and later snapshot for Compile.
func NewBindProcessors() *BindProcessors {
	return &BindProcessors{r: newProcessorRegistry()}
}

// BindProcessors is a dialect's mutable set of argument-type conversions.
type BindProcessors struct{ r *processorRegistry }

func (b *BindProcessors) Register(t reflect.Type, p BindProcessor) { b.r.register(t, p) }
func (b *BindProcessors) Snapshot() map[reflect.Type]BindProcessor { return b.r.snapshot() }
