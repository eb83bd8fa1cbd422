package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将排版结果（样式、行、字形与画布尺寸）输出为 JSON，便于调试或可视化。
func WriteDebugJSON(m *Measurement, path string) error {
	if m == nil {
		return nil
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
