package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompose_ContainsContract(t *testing.T) {
	composer := NewPromptComposer()

	instruction := composer.Compose("Prompt: a button\nJSX: <button/>\nCSS: .b{}", "make it red")

	assert.Contains(t, instruction, ComponentMarker)
	assert.Contains(t, instruction, StyleMarker)
	assert.Contains(t, instruction, "Prompt: a button")
	assert.Contains(t, instruction, `"make it red"`)
	// 上下文块在新请求之前
	assert.Less(t,
		strings.Index(instruction, "Prompt: a button"),
		strings.Index(instruction, `"make it red"`),
	)
}

func TestCompose_EmptyContext(t *testing.T) {
	composer := NewPromptComposer()

	instruction := composer.Compose("", "a login form")

	assert.Contains(t, instruction, `"a login form"`)
	assert.Contains(t, instruction, ComponentMarker)
}

func TestComposeStandalone_AppendsContract(t *testing.T) {
	composer := NewPromptComposer()

	instruction := composer.ComposeStandalone("prior context. ", "a navbar")

	assert.True(t, strings.HasPrefix(instruction, "prior context. a navbar"))
	assert.Contains(t, instruction, ComponentMarker)
	assert.Contains(t, instruction, StyleMarker)
}
