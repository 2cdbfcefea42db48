// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"bytes"
	"strings"
	"testing"

	"github.com/UNO-SOFT/jdbcx/internal/value"
)

func sampleResult(f *value.Factory) *value.Result {
	fields := []value.Field{
		value.NewField("id", value.KindInt32, 0, 0, true, false),
		value.NewField("name", value.KindString, 0, 0, false, true),
	}
	rows := []value.Row{
		value.NewRow(fields, []value.Value{f.Int(32, 1), f.String("ann")}),
		value.NewRow(fields, []value.Value{f.Int(32, 2), f.Null(value.KindString)}),
	}
	return value.SliceResult(fields, rows)
}

func TestTSVSerialize(t *testing.T) {
	f := value.NewFactory()
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.NullValue = "\\N"
	if err := (TSV{}).Serialize(&buf, sampleResult(f), opts); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.HasPrefix(got, "id\tname\n") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "2\t\\N\n") {
		t.Errorf("expected null substitution, got %q", got)
	}
}

func TestCSVSerializeQuotesOnConflict(t *testing.T) {
	f := value.NewFactory()
	fields := []value.Field{value.NewField("name", value.KindString, 0, 0, false, true)}
	rows := []value.Row{value.NewRow(fields, []value.Value{f.String("a,b")})}
	result := value.SliceResult(fields, rows)

	var buf bytes.Buffer
	opts := DefaultOptions()
	if err := (CSV{}).Serialize(&buf, result, opts); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"a,b"`) {
		t.Errorf("expected comma-triggered quoting, got %q", buf.String())
	}
}

func TestCSVSerializeUseQuotesForcesQuoting(t *testing.T) {
	f := value.NewFactory()
	fields := []value.Field{value.NewField("name", value.KindString, 0, 0, false, true)}
	rows := []value.Row{value.NewRow(fields, []value.Value{f.String("plain")})}
	result := value.SliceResult(fields, rows)

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.UseQuotes = true
	if err := (CSV{}).Serialize(&buf, result, opts); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"plain"`) {
		t.Errorf("expected forced quoting, got %q", buf.String())
	}
}

func TestMarkdownSerializeEscapesAndAligns(t *testing.T) {
	f := value.NewFactory()
	fields := []value.Field{value.NewField("amt", value.KindDecimal, 10, 2, true, false)}
	rows := []value.Row{value.NewRow(fields, []value.Value{f.Decimal(nil, 2)})}
	result := value.SliceResult(fields, rows)

	var buf bytes.Buffer
	if err := (Markdown{}).Serialize(&buf, result, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "---:") {
		t.Errorf("expected right-aligned column for scale>0, got %q", buf.String())
	}
}

func TestJSONSeqObjectForm(t *testing.T) {
	f := value.NewFactory()
	var buf bytes.Buffer
	opts := DefaultOptions()
	if err := (JSONSeq{}).Serialize(&buf, sampleResult(f), opts); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if got[0] != jsonSeqRecordSeparator {
		t.Errorf("expected leading record separator")
	}
	if !strings.Contains(got, `"id":1`) {
		t.Errorf("expected object form with field name, got %q", got)
	}
}

func TestValuesSerializeEscapesIdentifiersAndNulls(t *testing.T) {
	f := value.NewFactory()
	var buf bytes.Buffer
	if err := (Values{}).Serialize(&buf, sampleResult(f), DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.HasPrefix(got, `("id","name") VALUES`) {
		t.Errorf("unexpected VALUES header: %q", got)
	}
	if !strings.Contains(got, "(1,'ann'),\n(2,NULL)\n") {
		t.Errorf("unexpected VALUES body: %q", got)
	}
}

func TestBinarySerializePassesThroughPayload(t *testing.T) {
	var buf bytes.Buffer
	result := value.NewScalar([]byte("payload"))
	if err := (Binary{}).Serialize(&buf, result, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "payload" {
		t.Errorf("got %q", buf.String())
	}
}

func TestBinarySerializeNullWritesNothing(t *testing.T) {
	f := value.NewFactory()
	fields := []value.Field{value.NewField("blob", value.KindBinary, 0, 0, false, true)}
	rows := []value.Row{value.NewRow(fields, []value.Value{f.Null(value.KindBinary)})}
	result := value.SliceResult(fields, rows)

	var buf bytes.Buffer
	if err := (Binary{}).Serialize(&buf, result, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no bytes written for null payload, got %q", buf.String())
	}
}

func TestRegistryResolvesAllBuiltins(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"tsv", "csv", "markdown", "json-seq", "values", "binary", "arrow", "parquet"} {
		if _, ok := reg.Get(name); !ok {
			t.Errorf("registry missing built-in serializer %q", name)
		}
	}
}
