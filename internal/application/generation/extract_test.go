package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_BothMarkers(t *testing.T) {
	raw := "// App.jsx\nexport default function App(){return null;}\n// styles.css\nbody{margin:0;}"

	artifact := Extract(raw)

	assert.Equal(t, "export default function App(){return null;}", artifact.ComponentSource)
	assert.Equal(t, "body{margin:0;}", artifact.StyleSource)
}

func TestExtract_TrimsWhitespace(t *testing.T) {
	raw := "some preamble\n// App.jsx\n\n  const x = 1;\n\n// styles.css\n\n  .a { color: red; }\n\n"

	artifact := Extract(raw)

	assert.Equal(t, "const x = 1;", artifact.ComponentSource)
	assert.Equal(t, ".a { color: red; }", artifact.StyleSource)
}

func TestExtract_StyleMarkerAbsent(t *testing.T) {
	raw := "// App.jsx\nexport default function App(){return null;}"

	artifact := Extract(raw)

	assert.Empty(t, artifact.StyleSource)
	assert.Empty(t, artifact.ComponentSource)
	assert.True(t, artifact.IsEmpty())
}

func TestExtract_NoMarkers(t *testing.T) {
	artifact := Extract("Here is your component! ```jsx\nconst App = () => null;\n```")

	assert.True(t, artifact.IsEmpty())
}

func TestExtract_EmptyInput(t *testing.T) {
	artifact := Extract("")

	assert.True(t, artifact.IsEmpty())
}

func TestExtract_FirstMarkerWins(t *testing.T) {
	raw := "// App.jsx\nfirst component\n// styles.css\nfirst style\n// App.jsx\nsecond component\n// styles.css\nsecond style"

	artifact := Extract(raw)

	assert.Equal(t, "first component", artifact.ComponentSource)
	// 第一个样式标记之后的全部内容都归入样式块
	assert.Equal(t, "first style\n// App.jsx\nsecond component\n// styles.css\nsecond style", artifact.StyleSource)
}

func TestExtract_MarkerMustBeOwnLine(t *testing.T) {
	raw := "see // App.jsx for details\nno markers here"

	artifact := Extract(raw)

	assert.True(t, artifact.IsEmpty())
}

func TestExtract_MarkerLineMayHaveSurroundingSpaces(t *testing.T) {
	raw := "  // App.jsx  \ncomponent body\n\t// styles.css\nstyle body"

	artifact := Extract(raw)

	assert.Equal(t, "component body", artifact.ComponentSource)
	assert.Equal(t, "style body", artifact.StyleSource)
}

func TestExtract_StyleMarkerOnly(t *testing.T) {
	raw := "some text\n// styles.css\nbody{margin:0;}"

	artifact := Extract(raw)

	assert.Empty(t, artifact.ComponentSource)
	assert.Equal(t, "body{margin:0;}", artifact.StyleSource)
}
