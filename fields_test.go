package biblatex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct{}

func (stubClassifier) ClassifyField(entryType, fieldName, raw string) FieldValue {
	return Unknown{Name: fieldName, Value: raw}
}

func TestFieldContracts(t *testing.T) {
	var c FieldClassifier = stubClassifier{}
	v := c.ClassifyField("article", "tardis", "{blue}")
	assert.Equal(t, KindUnknown, v.Kind())
	assert.Equal(t, "{blue}", v.Raw())

	var p ValueParser = func(raw string) (FieldValue, error) {
		return Unknown{Value: raw}, nil
	}
	got, err := p("{x}")
	require.NoError(t, err)
	assert.Equal(t, "{x}", got.Raw())
}
