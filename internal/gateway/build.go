package gateway

import (
	"context"
	"fmt"

	"github.com/starford/laguz/internal/operator"
	"github.com/starford/laguz/internal/operator/fs"
	"github.com/starford/laguz/internal/operator/memory"
	"github.com/starford/laguz/internal/operator/s3"
	"github.com/starford/laguz/internal/operator/sqlite"
)

// buildOperator dispatches a validated configuration to the matching
// backend constructor. The set of cases is the compiled-in backend
// registration; it is fixed at build time.
func buildOperator(ctx context.Context, cfg operator.Config) (operator.Operator, error) {
	switch c := cfg.(type) {
	case *operator.FSConfig:
		return fs.New(c)
	case *operator.MemoryConfig:
		return memory.New(c), nil
	case *operator.S3Config:
		return s3.New(ctx, c)
	case *operator.SQLiteConfig:
		return sqlite.New(c)
	default:
		return nil, fmt.Errorf("%w: %q", operator.ErrUnknownScheme, cfg.Scheme())
	}
}
