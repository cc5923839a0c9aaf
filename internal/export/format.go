package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ERPlora/module-training/internal/domain/enrollment"
	"github.com/ERPlora/module-training/internal/domain/record"
)

// Cell formats one value for export. Dates render as YYYY-MM-DD, scores
// with two decimals, booleans as Yes/No and nil as an empty cell.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		return x.Format(record.DateLayout)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(record.DateLayout)
	case enrollment.Score:
		return x.String()
	case *enrollment.Score:
		if x == nil {
			return ""
		}
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
