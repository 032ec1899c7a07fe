package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/datachat/core"
)

func TestCSV_Parse(t *testing.T) {
	content := "month,sales,active\nJan,10.5,true\nFeb,20,false\n"
	file := core.File{Name: "sales.csv", Size: int64(len(content)), Content: []byte(content)}

	rows, raw, err := NewCSV().Parse(context.Background(), file)

	require.NoError(t, err)
	assert.Equal(t, content, raw)
	require.Len(t, rows, 2)
	assert.Equal(t, core.Row{"month": "Jan", "sales": 10.5, "active": true}, rows[0])
	assert.Equal(t, core.Row{"month": "Feb", "sales": 20.0, "active": false}, rows[1])
}

func TestCSV_ParseQuotedFields(t *testing.T) {
	content := "name,note\nwidget,\"hello, world\"\n"
	file := core.File{Name: "notes.csv", Content: []byte(content)}

	rows, _, err := NewCSV().Parse(context.Background(), file)

	require.NoError(t, err)
	assert.Equal(t, "hello, world", rows[0]["note"])
}

func TestCSV_ParseCustomDelimiter(t *testing.T) {
	content := "a;b\n1;2\n"
	file := core.File{Name: "semi.csv", Content: []byte(content)}

	rows, _, err := NewCSV(func(o *Options) { o.Comma = ';' }).Parse(context.Background(), file)

	require.NoError(t, err)
	assert.Equal(t, core.Row{"a": 1.0, "b": 2.0}, rows[0])
}

func TestCSV_ParseFailures(t *testing.T) {
	cases := map[string]string{
		"header only":   "a,b\n",
		"empty":         "",
		"ragged quotes": "a,b\n\"1,2\n3\",4,5\",\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := NewCSV().Parse(context.Background(), core.File{Name: "bad.csv", Content: []byte(content)})
			assert.Error(t, err)
		})
	}
}

func TestCSV_ParseHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewCSV().Parse(ctx, core.File{Name: "x.csv", Content: []byte("a\n1\n")})

	assert.ErrorIs(t, err, context.Canceled)
}
