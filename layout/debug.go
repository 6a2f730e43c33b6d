package layout

import (
	"encoding/json"
	"os"
)

// DebugRecord 将文本框参数与其排版结果放在一起，便于对照检查。
type DebugRecord struct {
	Box    *TextBox `json:"box"`
	Result *Result  `json:"result"`
}

// WriteDebugJSON 将排版记录输出为 JSON，便于调试或可视化。
func WriteDebugJSON(records []DebugRecord, path string) error {
	if len(records) == 0 {
		return nil
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
