package checks

import (
	"context"
	"time"
)

// Check is one named step of the suite. Run returns values worth reporting,
// such as the id of a created record.
type Check struct {
	Name        string
	Description string
	Run         func(ctx context.Context, t *Target) (map[string]any, error)
}

type suiteOptions struct {
	clientName func() string
}

type Option func(*suiteOptions)

// WithClientName replaces the generated client name. fn is called once per
// run of the create check.
func WithClientName(fn func() string) Option {
	return func(o *suiteOptions) {
		o.clientName = fn
	}
}

// Default returns the root, create_status and list_status checks in the
// order they must run.
func Default(opts ...Option) []Check {
	o := &suiteOptions{
		clientName: func() string { return NewClientName(time.Now()) },
	}
	for _, opt := range opts {
		opt(o)
	}

	return []Check{
		{
			Name:        "root",
			Description: "root endpoint",
			Run: func(ctx context.Context, t *Target) (map[string]any, error) {
				return nil, Root(ctx, t)
			},
		},
		{
			Name:        "create_status",
			Description: "status check creation",
			Run: func(ctx context.Context, t *Target) (map[string]any, error) {
				name := o.clientName()
				record, err := CreateStatus(ctx, t, name)
				if err != nil {
					return map[string]any{"client_name": name}, err
				}
				return map[string]any{"client_name": name, "id": record.ID}, nil
			},
		},
		{
			Name:        "list_status",
			Description: "status check retrieval",
			Run: func(ctx context.Context, t *Target) (map[string]any, error) {
				records, err := ListStatus(ctx, t)
				if err != nil {
					return nil, err
				}
				return map[string]any{"count": len(records)}, nil
			},
		},
	}
}
