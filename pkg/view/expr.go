package view

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/agentstation/playmap/pkg/errors"
)

// exprVariables are the names a Where expression can reference.
var exprVariables = []string{
	"title", "key", "type", "tags", "regions", "ownership", "publisher",
	"metascore", "userscore", "popularity", "price", "discount", "currency",
	"players_min", "players_max", "release_timestamp",
	"owned", "wished", "upcoming", "match", "match_score", "good_deal",
}

// Evaluator compiles and caches CEL filter expressions over view items.
type Evaluator struct {
	env   *cel.Env
	mu    sync.RWMutex
	cache map[string]cel.Program
}

// NewEvaluator creates an evaluator. Every item field is declared dynamic
// so missing values can be tested against null.
func NewEvaluator() (*Evaluator, error) {
	opts := make([]cel.EnvOption, 0, len(exprVariables)+1)
	for _, name := range exprVariables {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return &Evaluator{env: env, cache: make(map[string]cel.Program)}, nil
}

// Compile checks expr and caches its program.
func (ev *Evaluator) Compile(expr string) (cel.Program, error) {
	ev.mu.RLock()
	prg, hit := ev.cache[expr]
	ev.mu.RUnlock()
	if hit {
		return prg, nil
	}

	ev.mu.Lock()
	defer ev.mu.Unlock()
	if prg, hit = ev.cache[expr]; hit {
		return prg, nil
	}
	ast, issues := ev.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errors.NewValidationError("where", expr, issues.Err().Error())
	}
	prg, err := ev.env.Program(ast,
		cel.InterruptCheckFrequency(100),
		cel.CostLimit(10000),
	)
	if err != nil {
		return nil, errors.NewValidationError("where", expr, err.Error())
	}
	ev.cache[expr] = prg
	return prg, nil
}

// Match evaluates expr against it. The expression must yield a bool.
func (ev *Evaluator) Match(expr string, it *Item) (bool, error) {
	prg, err := ev.Compile(expr)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(activation(it))
	if err != nil {
		return false, fmt.Errorf("CEL eval error: %w", err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, errors.NewValidationError("where", expr, "result not boolean")
	}
	return ok, nil
}

func activation(it *Item) map[string]any {
	return map[string]any{
		"title":             it.Title,
		"key":               it.MatchKey,
		"type":              string(it.Type),
		"tags":              nonNil(it.Tags),
		"regions":           nonNil(it.Regions),
		"ownership":         it.Ownership,
		"publisher":         it.Publisher,
		"metascore":         deref(it.Metascore),
		"userscore":         deref(it.Userscore),
		"popularity":        deref(it.Popularity),
		"price":             deref(it.BestPrice),
		"discount":          deref(it.BestDiscount),
		"currency":          deref(it.BestCurrency),
		"players_min":       deref(it.PlayersMin),
		"players_max":       deref(it.PlayersMax),
		"release_timestamp": deref(it.ReleaseTimestamp),
		"owned":             it.IsOwned,
		"wished":            it.IsWished,
		"upcoming":          it.IsUpcoming,
		"match":             it.IsMatch,
		"match_score":       it.MatchScore,
		"good_deal":         it.IsGoodDeal,
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var (
	defaultEvaluatorOnce sync.Once
	defaultEvaluator     *Evaluator
	defaultEvaluatorErr  error
)

func sharedEvaluator() (*Evaluator, error) {
	defaultEvaluatorOnce.Do(func() {
		defaultEvaluator, defaultEvaluatorErr = NewEvaluator()
	})
	return defaultEvaluator, defaultEvaluatorErr
}
