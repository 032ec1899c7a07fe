package datachat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/datachat/chat"
	"github.com/hupe1980/datachat/core"
)

func TestDataChat_FullConversation(t *testing.T) {
	session := &chat.MockSession{Fragments: []string{"Sales grew ", "steadily."}}
	dc := New(&chat.MockFactory{Session: session})

	content := "month,sales\nJan,10\nFeb,20\n"
	file := core.File{Name: "sales.csv", Size: int64(len(content)), Content: []byte(content)}
	require.NoError(t, dc.IngestFile(context.Background(), file))
	require.True(t, dc.State().HasDataset())

	require.NoError(t, dc.SubmitQuery(context.Background(), "How are sales trending?", core.TaskInsights))

	state := dc.State()
	require.Len(t, state.Transcript, 2)
	last, _ := state.LastEntry()
	assert.Equal(t, "Sales grew steadily.", last.Text)

	dc.Reset(false)
	assert.Equal(t, core.SessionState{}, dc.State())
}

func TestDataChat_OptionsFlowThrough(t *testing.T) {
	var seen []core.SessionState
	dc := New(&chat.MockFactory{}, func(o *Options) {
		o.MaxUploadBytes = 4
		o.OnChange = func(s core.SessionState) { seen = append(seen, s) }
	})

	err := dc.IngestFile(context.Background(), core.File{Name: "big.csv", Content: []byte("a,b\n1,2\n")})

	require.Error(t, err)
	require.NotEmpty(t, seen)
	assert.Contains(t, seen[len(seen)-1].Err, "too large")
}
