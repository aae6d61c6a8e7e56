package raglabdal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/raglab/raglab"
)

// QARecord is one raw question-answering record, e.g. a SQuAD v2 row exported
// to JSONL. Answers may be empty for unanswerable questions.
type QARecord struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Question string    `json:"question"`
	Context  string    `json:"context"`
	Answers  QAAnswers `json:"answers"`
}

type QAAnswers struct {
	Text []string `json:"text"`
}

// FirstAnswer picks the first available answer text. Many questions have
// several acceptable answers; keeping the first is enough for a corpus.
func (a QAAnswers) FirstAnswer() string {
	if len(a.Text) == 0 {
		return ""
	}
	return strings.TrimSpace(a.Text[0])
}

type IngestOptions struct {
	// Source labels every produced document, e.g. "squad_v2".
	Source string
	// Split is baked into generated doc IDs, e.g. "train".
	Split string
	// MaxDocs stops the ingest after this many documents. 0 means no limit.
	MaxDocs int64
}

func (o IngestOptions) Validate() errorsx.Error {
	if o.Source == "" {
		return errorsx.Errorf("Source must be set")
	}
	if o.Split == "" {
		return errorsx.Errorf("Split must be set")
	}
	return nil
}

type IngestSummary struct {
	DocCount  int64
	TextStats *raglab.TextLengthStats
}

// NormalizeQARecord turns a raw QA record into a normalized document. The
// text blob keeps the question and answer up front with the grounding
// context below, so chunking and retrieval see all three.
func NormalizeQARecord(record *QARecord, source, split string, index int64) *raglab.Document {
	title := strings.TrimSpace(record.Title)
	if titleRunes := []rune(title); len(titleRunes) > raglab.MaxTitleLen {
		// truncate on runes so a multi-byte character isn't split
		title = string(titleRunes[:raglab.MaxTitleLen])
	}

	text := strings.TrimSpace(fmt.Sprintf(
		"Question: %s\nAnswer: %s\n\nContext:\n%s",
		strings.TrimSpace(record.Question),
		record.Answers.FirstAnswer(),
		strings.TrimSpace(record.Context),
	))

	return &raglab.Document{
		DocID:  fmt.Sprintf("%s_%s_%d", source, split, index),
		Title:  title,
		Source: source,
		Text:   text,
		URL:    "",
	}
}

// IngestQA reads raw QA records line by line and writes normalized documents
// to w as JSONL, one object per line.
func IngestQA(reader DocsReader, w io.Writer, opts IngestOptions) (*IngestSummary, errorsx.Error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	summary := &IngestSummary{
		TextStats: new(raglab.TextLengthStats),
	}

	for reader.Scan() {
		if opts.MaxDocs > 0 && summary.DocCount == opts.MaxDocs {
			break
		}

		record := new(QARecord)
		err := json.Unmarshal(reader.Raw(), record)
		if err != nil {
			return nil, errorsx.Wrap(err, "line", reader.LineNumber())
		}

		doc := NormalizeQARecord(record, opts.Source, opts.Split, summary.DocCount)

		docJSON, err := json.Marshal(doc)
		if err != nil {
			return nil, errorsx.Wrap(err, "docID", doc.DocID)
		}

		_, err = w.Write(append(docJSON, '\n'))
		if err != nil {
			return nil, errorsx.Wrap(err)
		}

		summary.DocCount++
		summary.TextStats.Add(len(doc.Text))
	}

	if reader.Err() != nil {
		return nil, reader.Err()
	}

	return summary, nil
}
