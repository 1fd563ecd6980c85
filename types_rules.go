package cart

import "time"

// RuleContext carries the inputs available to a rule expression: the cart
// snapshot bindings plus caller-supplied args.
type RuleContext struct {
	Snapshot Snapshot
	Now      *time.Time
	Args     map[string]any
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) withDefaultArgs() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

// binding flattens the snapshot into the variables exposed to expressions:
// id, items, totalItems, totalUniqueItems, cartTotal, isEmpty, metadata.
func (ctx RuleContext) binding() map[string]any {
	items := make([]map[string]any, len(ctx.Snapshot.Items))
	for i := range ctx.Snapshot.Items {
		items[i] = ctx.Snapshot.Items[i].asMap()
	}
	metadata := ctx.Snapshot.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return map[string]any{
		"id":               ctx.Snapshot.ID,
		"items":            items,
		"totalItems":       ctx.Snapshot.TotalItems,
		"totalUniqueItems": ctx.Snapshot.TotalUniqueItems,
		"cartTotal":        ctx.Snapshot.CartTotal,
		"isEmpty":          ctx.Snapshot.IsEmpty,
		"metadata":         metadata,
	}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}
