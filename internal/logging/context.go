package logging

import "context"

type ctxKey struct{}

// ContextWith returns a copy of ctx carrying args, which both adapters
// append to every entry logged with that context.
func ContextWith(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	prev := fieldsFrom(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

func fieldsFrom(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(ctxKey{}).([]any)
	return f
}

// withFields appends the fields carried by ctx to args.
func withFields(ctx context.Context, args []any) []any {
	f := fieldsFrom(ctx)
	if len(f) == 0 {
		return args
	}
	out := make([]any, 0, len(args)+len(f))
	out = append(out, args...)
	return append(out, f...)
}
