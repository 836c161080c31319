// Package entity 定义领域实体
package entity

// Artifact 一次生成结果解析出的代码产物对，字段可为空串但永不缺失
type Artifact struct {
	ComponentSource string `json:"component_source"`
	StyleSource     string `json:"style_source"`
}

// IsEmpty 两个字段均为空
func (a Artifact) IsEmpty() bool {
	return a.ComponentSource == "" && a.StyleSource == ""
}

// Equal 按值比较两个产物
func (a Artifact) Equal(other Artifact) bool {
	return a.ComponentSource == other.ComponentSource && a.StyleSource == other.StyleSource
}
