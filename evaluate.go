package cart

import (
	"errors"
	"fmt"
	"time"
)

var ErrNoEvaluator = errors.New("cart: evaluator not configured")

// Evaluate runs a rule expression against the current snapshot: promotion
// gates, free-shipping thresholds, coupon eligibility. The configured
// evaluator is used; without one an expr-lang evaluator is built on first
// use.
func (c *Cart) Evaluate(expr string) (any, error) {
	return c.EvaluateWith(RuleContext{}, expr)
}

// EvaluateWith executes expr with caller-supplied args and clock. A zero
// ctx.Snapshot is replaced with the live snapshot.
func (c *Cart) EvaluateWith(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("cart: expression must not be empty")
	}
	evaluator, err := c.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	if ctx.Snapshot.ID == "" && len(ctx.Snapshot.Items) == 0 && ctx.Snapshot.Metadata == nil {
		ctx.Snapshot = c.Snapshot()
	}
	ctx = ctx.withDefaultNow().withDefaultArgs()

	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(engine, expr, ctx.Snapshot.ID, evalErr)
	c.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		CartID:   ctx.Snapshot.ID,
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

func (c *Cart) resolveEvaluator() (Evaluator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.evaluator != nil {
		return c.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if c.cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(c.cfg.programCache))
	}
	if c.cfg.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(c.cfg.functions))
	}
	evaluator := NewExprEvaluator(exprOpts...)
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	c.cfg.evaluator = evaluator
	return evaluator, nil
}

func (c *Cart) evaluatorLogger() EvaluatorLogger {
	if c.cfg.evalLogger != nil {
		return c.cfg.evalLogger
	}
	return noopEvaluatorLogger{}
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*cart.exprEvaluator":
		return "expr"
	case "*cart.celEvaluator":
		return "cel"
	case "*cart.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
