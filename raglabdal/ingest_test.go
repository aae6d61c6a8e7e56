package raglabdal

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const qaFixture = `{"id":"q1","title":"France","question":"What is the capital of France? ","context":" Paris is the capital of France.","answers":{"text":["Paris","paris"]}}
{"id":"q2","title":"Unanswerable","question":"Who?","context":"No answer here.","answers":{"text":[]}}
{"id":"q3","title":"Spain","question":"What is the capital of Spain?","context":"Madrid is the capital of Spain.","answers":{"text":["Madrid"]}}
`

func Test_NormalizeQARecord(t *testing.T) {
	record := &QARecord{
		Title:    "France",
		Question: "What is the capital of France? ",
		Context:  " Paris is the capital of France.",
		Answers:  QAAnswers{Text: []string{"Paris ", "paris"}},
	}

	doc := NormalizeQARecord(record, "squad_v2", "train", 0)

	assert.Equal(t, "squad_v2_train_0", doc.DocID)
	assert.Equal(t, "France", doc.Title)
	assert.Equal(t, "squad_v2", doc.Source)
	assert.Equal(t, "Question: What is the capital of France?\nAnswer: Paris\n\nContext:\nParis is the capital of France.", doc.Text)
}

func Test_NormalizeQARecord_LongTitle(t *testing.T) {
	record := &QARecord{
		Title: strings.Repeat("a", 500),
	}

	doc := NormalizeQARecord(record, "squad_v2", "train", 4)
	assert.Len(t, doc.Title, 200)
}

func Test_NormalizeQARecord_LongMultiByteTitle(t *testing.T) {
	record := &QARecord{
		Title: strings.Repeat("é", 500),
	}

	doc := NormalizeQARecord(record, "squad_v2", "train", 4)
	assert.True(t, utf8.ValidString(doc.Title))
	assert.Equal(t, strings.Repeat("é", 200), doc.Title)
}

func Test_IngestQA(t *testing.T) {
	reader := docsReaderFromString(t, qaFixture)

	buf := bytes.NewBuffer(nil)
	summary, err := IngestQA(reader, buf, IngestOptions{Source: "squad_v2", Split: "train"})
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.DocCount)
	assert.Equal(t, int64(3), summary.TextStats.Count)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	docsReader := docsReaderFromString(t, buf.String())
	require.True(t, docsReader.Scan())
	doc, errx := docsReader.Document()
	require.NoError(t, errx)
	assert.Equal(t, "squad_v2_train_0", doc.DocID)

	// unanswerable questions keep an empty answer line
	require.True(t, docsReader.Scan())
	doc, errx = docsReader.Document()
	require.NoError(t, errx)
	assert.Contains(t, doc.Text, "Answer: \n")
}

func Test_IngestQA_MaxDocs(t *testing.T) {
	reader := docsReaderFromString(t, qaFixture)

	buf := bytes.NewBuffer(nil)
	summary, err := IngestQA(reader, buf, IngestOptions{Source: "squad_v2", Split: "train", MaxDocs: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.DocCount)
}

func Test_IngestQA_BadOptions(t *testing.T) {
	reader := docsReaderFromString(t, qaFixture)

	_, err := IngestQA(reader, bytes.NewBuffer(nil), IngestOptions{})
	require.Error(t, err)
}
