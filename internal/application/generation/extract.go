package generation

import (
	"strings"

	"ui-forge-api/internal/domain/entity"
)

// 输出契约的标记行，提示词与提取器共用同一组常量
const (
	ComponentMarker = "// App.jsx"
	StyleMarker     = "// styles.css"
)

// 提取器状态机：找组件标记 → 找样式标记 → 收集样式
type scanState int

const (
	seekingComponentMarker scanState = iota
	seekingStyleMarker
	collectingStyle
)

// Extract 将模型原始文本切分为组件源码与样式源码。
// 逐行扫描，只认每种标记的第一条格式良好的标记行（整行去除首尾空白后
// 与标记完全相等）；组件块需要两个标记齐备才有边界，样式块只需样式标记。
// 提取从不失败，缺失标记时对应字段退化为空串。
func Extract(raw string) entity.Artifact {
	var (
		state          = seekingComponentMarker
		componentLines []string
		styleLines     []string
		sawComponent   bool
		sawStyle       bool
	)

	for _, line := range strings.Split(raw, "\n") {
		marker := strings.TrimSpace(line)
		switch state {
		case seekingComponentMarker:
			switch marker {
			case ComponentMarker:
				sawComponent = true
				state = seekingStyleMarker
			case StyleMarker:
				// 组件标记缺失时样式标记仍独立生效
				sawStyle = true
				state = collectingStyle
			}
		case seekingStyleMarker:
			if marker == StyleMarker {
				sawStyle = true
				state = collectingStyle
				continue
			}
			componentLines = append(componentLines, line)
		case collectingStyle:
			styleLines = append(styleLines, line)
		}
	}

	var artifact entity.Artifact
	if sawComponent && sawStyle {
		artifact.ComponentSource = strings.TrimSpace(strings.Join(componentLines, "\n"))
	}
	if sawStyle {
		artifact.StyleSource = strings.TrimSpace(strings.Join(styleLines, "\n"))
	}
	return artifact
}
