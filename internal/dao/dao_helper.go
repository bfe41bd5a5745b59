package dao

import "encoding/json"

// encodeJSON 将 map 序列化为 JSON 文本，空 map 返回空字符串
func encodeJSON(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

// decodeJSON 将 JSON 文本反序列化为 map，解析失败返回 nil
func decodeJSON(s string) map[string]any {
	if s == "" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

// pageOffset 计算分页偏移
func pageOffset(page, pageSize int) int {
	if page <= 0 {
		page = 1
	}
	return (page - 1) * pageSize
}
