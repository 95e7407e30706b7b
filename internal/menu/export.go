package menu

import (
	"io"

	"bizup-dashboard/internal/spreadsheet"
)

var exportHeaders = []string{"ID", "메뉴명", "카테고리", "수량", "최소 수량", "단위", "가격", "상태"}

// Export writes the filtered menu list as a spreadsheet.
func (t *Tab) Export(w io.Writer) error {
	v := t.View()
	rows := make([][]any, 0, len(v.Items))
	for _, m := range v.Items {
		rows = append(rows, []any{
			m.ID,
			m.Name,
			m.Category,
			m.Quantity,
			m.MinQuantity,
			m.Unit,
			m.Price.InexactFloat64(),
			m.StatusLabel,
		})
	}
	return spreadsheet.WriteSheet(w, "메뉴", exportHeaders, rows)
}
