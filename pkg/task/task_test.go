package task

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleForList(t *testing.T) {
	assert.Equal(t, "title", Task{Title: "title", Description: "desc"}.TitleForList())
	assert.Equal(t, "desc", Task{Description: "desc"}.TitleForList())
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"Active", FilterActive, false},
		{" completed ", FilterCompleted, false},
		{"done", FilterAll, true},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			require.NoError(t, err, tt.in)
		}
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFilterIsPartition(t *testing.T) {
	for n := 0; n < 8; n++ {
		var tasks []Task
		for i := 0; i < n; i++ {
			tasks = append(tasks, Task{ID: fmt.Sprint(i), Completed: i%3 == 0})
		}
		all := FilterAll.Apply(tasks)
		active := FilterActive.Apply(tasks)
		completed := FilterCompleted.Apply(tasks)

		assert.Len(t, all, len(active)+len(completed))
		for _, tk := range active {
			assert.False(t, tk.Completed)
		}
		for _, tk := range completed {
			assert.True(t, tk.Completed)
		}
	}
}
