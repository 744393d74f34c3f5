// Package gateway exposes one entry point per storage operation. Every
// entry point runs the same pipeline: translate the configuration
// document, build a fresh operator, execute the operation through the
// bridge, marshal the outcome. Any failing stage short-circuits with a
// classified error; nothing escapes a call as a panic.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/starford/laguz/internal/bridge"
	"github.com/starford/laguz/internal/operator"
)

// Gateway is stateless; all per-call state lives on the call stack.
// A single Gateway serves concurrent callers.
type Gateway struct{}

// New creates a Gateway.
func New() *Gateway {
	return &Gateway{}
}

// translate parses the service identifier and converts the document
// into a typed configuration. Pure; runs outside the bridge.
func translate(service string, doc map[string]any) (operator.Config, error) {
	scheme, err := operator.ParseScheme(service)
	if err != nil {
		return nil, err
	}
	return operator.Translate(scheme, doc)
}

// run executes fn against a freshly built operator inside the bridge.
// The operator is closed before the call returns, on every path.
func run[T any](ctx context.Context, service string, doc map[string]any, fn func(context.Context, operator.Operator) (T, error)) (T, error) {
	var zero T
	cfg, err := translate(service, doc)
	if err != nil {
		return zero, err
	}
	return bridge.Run(ctx, func(ctx context.Context) (T, error) {
		op, err := buildOperator(ctx, cfg)
		if err != nil {
			return zero, fmt.Errorf("build %s operator: %w", service, err)
		}
		defer op.Close()
		return fn(ctx, op)
	})
}

// Read returns the content at path as UTF-8 text.
func (g *Gateway) Read(ctx context.Context, service, path string, doc map[string]any) (string, error) {
	return run(ctx, service, doc, func(ctx context.Context, op operator.Operator) (string, error) {
		data, err := op.Read(ctx, path)
		if err != nil {
			return "", err
		}
		if !utf8.Valid(data) {
			return "", fmt.Errorf("gateway: content at %q is not valid UTF-8", path)
		}
		return string(data), nil
	})
}

// Write stores content at path and reports success.
func (g *Gateway) Write(ctx context.Context, service, path, content string, doc map[string]any) (bool, error) {
	return run(ctx, service, doc, func(ctx context.Context, op operator.Operator) (bool, error) {
		if err := op.Write(ctx, path, []byte(content)); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Exists reports whether an entry is present at path, implemented as a
// stat interpreted as presence.
func (g *Gateway) Exists(ctx context.Context, service, path string, doc map[string]any) (bool, error) {
	return run(ctx, service, doc, func(ctx context.Context, op operator.Operator) (bool, error) {
		_, err := op.Stat(ctx, path)
		if errors.Is(err, operator.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	})
}

// Delete removes the entry at path and reports success. Deleting a
// missing entry succeeds.
func (g *Gateway) Delete(ctx context.Context, service, path string, doc map[string]any) (bool, error) {
	return run(ctx, service, doc, func(ctx context.Context, op operator.Operator) (bool, error) {
		if err := op.Delete(ctx, path); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Stat returns the metadata record for the entry at path.
func (g *Gateway) Stat(ctx context.Context, service, path string, doc map[string]any) (*Stat, error) {
	return run(ctx, service, doc, func(ctx context.Context, op operator.Operator) (*Stat, error) {
		md, err := op.Stat(ctx, path)
		if err != nil {
			return nil, err
		}
		st := statFrom(md)
		return &st, nil
	})
}

// List returns the entries under path, in backend order.
func (g *Gateway) List(ctx context.Context, service, path string, doc map[string]any) ([]Entry, error) {
	return run(ctx, service, doc, func(ctx context.Context, op operator.Operator) ([]Entry, error) {
		items, err := op.List(ctx, path)
		if err != nil {
			return nil, err
		}
		entries := make([]Entry, len(items))
		for i, it := range items {
			entries[i] = entryFrom(it)
		}
		return entries, nil
	})
}

// CreateDir creates the directory at path and reports success.
func (g *Gateway) CreateDir(ctx context.Context, service, path string, doc map[string]any) (bool, error) {
	return run(ctx, service, doc, func(ctx context.Context, op operator.Operator) (bool, error) {
		if err := op.CreateDir(ctx, path); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Copy duplicates source to target and reports success.
func (g *Gateway) Copy(ctx context.Context, service, source, target string, doc map[string]any) (bool, error) {
	return run(ctx, service, doc, func(ctx context.Context, op operator.Operator) (bool, error) {
		if err := op.Copy(ctx, source, target); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Rename moves source to target and reports success.
func (g *Gateway) Rename(ctx context.Context, service, source, target string, doc map[string]any) (bool, error) {
	return run(ctx, service, doc, func(ctx context.Context, op operator.Operator) (bool, error) {
		if err := op.Rename(ctx, source, target); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Capability returns the capability record for the backend.
func (g *Gateway) Capability(ctx context.Context, service string, doc map[string]any) (*Capability, error) {
	return run(ctx, service, doc, func(_ context.Context, op operator.Operator) (*Capability, error) {
		c := capabilityFrom(op.Capability())
		return &c, nil
	})
}
