package raglabdal

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/raglab/raglab"
)

const (
	DefaultInspectPreviewN      = 3
	DefaultInspectSampleForKeys = 200
)

type InspectOptions struct {
	// PreviewN is how many records to keep as previews.
	PreviewN int
	// SampleForKeys is how many leading records to scan for the key union
	// and text length stats. The total record count always covers the whole
	// file.
	SampleForKeys int
}

func DefaultInspectOptions() InspectOptions {
	return InspectOptions{
		PreviewN:      DefaultInspectPreviewN,
		SampleForKeys: DefaultInspectSampleForKeys,
	}
}

type JSONLInspection struct {
	TotalRecords int64
	Keys         []string
	SampledTexts *raglab.TextLengthStats
	Previews     []*raglab.Document
}

const previewTextMaxChars = 80

// FormatReport renders the inspection as a short terminal report.
func (i *JSONLInspection) FormatReport() string {
	sb := new(strings.Builder)

	fmt.Fprintf(sb, "total records: %d\n", i.TotalRecords)
	fmt.Fprintf(sb, "keys: %s\n", strings.Join(i.Keys, ", "))
	fmt.Fprintf(sb, "sampled text chars: count=%d avg=%.1f min=%d max=%d\n",
		i.SampledTexts.Count, i.SampledTexts.AvgChars(), i.SampledTexts.MinChars, i.SampledTexts.MaxChars)

	for idx, preview := range i.Previews {
		fmt.Fprintf(sb, "preview %d: doc_id=%s title=%q text=%q\n",
			idx+1, preview.DocID, preview.Title, raglab.SafePreview(preview.Text, previewTextMaxChars))
	}

	return sb.String()
}

// InspectJSONL sanity-checks a docs JSONL stream: total record count, the
// union of JSON keys over a leading sample, text length statistics over the
// same sample and the first few parsed records as previews.
func InspectJSONL(reader DocsReader, opts InspectOptions) (*JSONLInspection, errorsx.Error) {
	inspection := &JSONLInspection{
		SampledTexts: new(raglab.TextLengthStats),
	}

	keyUnion := make(map[string]struct{})

	for reader.Scan() {
		inspection.TotalRecords++

		inSample := reader.LineNumber() <= int64(opts.SampleForKeys)
		wantPreview := len(inspection.Previews) < opts.PreviewN

		if !inSample && !wantPreview {
			continue
		}

		if inSample {
			var rawObj map[string]json.RawMessage
			err := json.Unmarshal(reader.Raw(), &rawObj)
			if err != nil {
				return nil, errorsx.Wrap(err, "line", reader.LineNumber())
			}

			for key := range rawObj {
				keyUnion[key] = struct{}{}
			}
		}

		doc, err := reader.Document()
		if err != nil {
			return nil, err
		}

		if inSample && doc.Text != "" {
			inspection.SampledTexts.Add(len(doc.Text))
		}

		if wantPreview {
			inspection.Previews = append(inspection.Previews, doc)
		}
	}

	if reader.Err() != nil {
		return nil, reader.Err()
	}

	for key := range keyUnion {
		inspection.Keys = append(inspection.Keys, key)
	}
	sort.Strings(inspection.Keys)

	return inspection, nil
}
