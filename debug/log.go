package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/signadot/fodot/ast"
)

func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch x := a.(type) {
		case map[string]any, []any, json.Number:
			d, err := json.MarshalIndent(a, "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		case *ast.Expr:
			if x == nil {
				args[i] = "<nil>"
				continue
			}
			args[i] = x.Code()
		case []*ast.Expr:
			codes := make([]string, len(x))
			for j, e := range x {
				codes[j] = e.Code()
			}
			args[i] = "[" + strings.Join(codes, "; ") + "]"
		case bool, string, float64, int:

		default:
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
