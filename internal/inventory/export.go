package inventory

import (
	"io"

	"bizup-dashboard/internal/spreadsheet"
)

var exportHeaders = []string{"ID", "상품명", "카테고리", "수량", "단위", "최소 수량", "단가", "상태", "최종 업데이트"}

// Export writes the currently displayed rows as a spreadsheet.
func (t *Tab) Export(w io.Writer) error {
	v := t.View()
	rows := make([][]any, 0, len(v.Items))
	for _, it := range v.Items {
		updated := ""
		if !it.LastUpdated.IsZero() {
			updated = it.LastUpdated.Format("2006-01-02 15:04")
		}
		rows = append(rows, []any{
			it.ID,
			it.Name,
			it.Category,
			it.Quantity,
			it.Unit,
			it.MinQuantity,
			it.Price.InexactFloat64(),
			it.StatusLabel,
			updated,
		})
	}
	return spreadsheet.WriteSheet(w, defaultExportSheet, exportHeaders, rows)
}
