package mcpserver

import (
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/notepad/internal/apperr"
)

// intArgument reads a whole-number argument. A missing or null value yields
// def. JSON numbers arrive as float64; they must have no fractional part and
// are clamped to the int range. Anything else is an invalid argument.
func intArgument(req mcp.CallToolRequest, name string, def int) (int, error) {
	raw, ok := req.GetArguments()[name]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %s must be an integer", apperr.ErrInvalidArgument, name)
		}
		return clampInt(v), nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer", apperr.ErrInvalidArgument, name)
	}
}

func clampInt(v float64) int {
	switch {
	case v >= math.MaxInt:
		return math.MaxInt
	case v <= math.MinInt:
		return math.MinInt
	default:
		return int(v)
	}
}
