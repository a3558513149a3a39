package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEveryCodeHasText(t *testing.T) {
	for c := LoadingTasksError; c <= NoTasksCompleted; c++ {
		assert.NotEmpty(t, c.String(), "code %d", int(c))
	}
	assert.Empty(t, None.String())
}

func TestCodeMarshalsAsText(t *testing.T) {
	b, err := json.Marshal(struct {
		Msg Code `json:"msg"`
	}{TaskAdded})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"msg":"Task added"}`, string(b))
}
