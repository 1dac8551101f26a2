package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/src/components/unnamed.js", "Unnamed"},
		{"/src/components/date-picker.jsx", "DatePicker"},
		{"/src/components/date_picker.tsx", "DatePicker"},
		{"/src/components/Button/index.js", "Button"},
		{"/src/components/nav-bar/index.tsx", "NavBar"},
		{"/UnknownComponent3", "UnknownComponent3"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, nameFromPath(tt.path))
		})
	}
}

func TestStripNumericSuffix(t *testing.T) {
	assert.Equal(t, "Unnamed", stripNumericSuffix("Unnamed2"))
	assert.Equal(t, "UnknownComponent", stripNumericSuffix("UnknownComponent17"))
	assert.Equal(t, "Button", stripNumericSuffix("Button"))
	assert.Equal(t, "H1Title", stripNumericSuffix("H1Title"))
	assert.Equal(t, "42", stripNumericSuffix("42"))
	assert.Equal(t, "", stripNumericSuffix(""))
}
