package generation

import (
	"fmt"
)

const instructionTemplate = `You are a frontend component generator.

Here is previous context (for reference):
%s

Now, based on this prompt:
%q

Generate only one file: App.jsx, and include any required CSS in a separate block.

Output format:
1. Start with the comment line: %s
2. Then a complete React app in JSX, including imports, a default App component, and all UI and logic inside App
3. Followed by the comment line: %s
4. Then the CSS code

Requirements:
- Do not create separate component files
- Do not include markdown or explanations outside the two blocks
- The app must be runnable as-is in an online React sandbox`

const standaloneInstructionSuffix = `

Generate a single React component using JSX and include CSS separately if needed.
Start the component block with the comment line %s and the stylesheet block with the comment line %s.
Do not include markdown or explanations outside the two blocks.`

// PromptComposer 将上下文、新请求与输出契约合并为一条指令。
// 纯函数，无副作用，无失败分支。
type PromptComposer struct{}

// NewPromptComposer 创建提示词组装器
func NewPromptComposer() *PromptComposer {
	return &PromptComposer{}
}

// Compose 组装会话内生成指令：角色声明、上下文块、新请求、输出契约
func (PromptComposer) Compose(contextBlock, prompt string) string {
	return fmt.Sprintf(instructionTemplate, contextBlock, prompt, ComponentMarker, StyleMarker)
}

// ComposeStandalone 组装无会话生成指令，上下文由调用方自带
func (PromptComposer) ComposeStandalone(contextBlock, prompt string) string {
	return contextBlock + prompt + fmt.Sprintf(standaloneInstructionSuffix, ComponentMarker, StyleMarker)
}
