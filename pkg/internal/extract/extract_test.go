package extract_test

import (
	"strings"
	"testing"

	"github.com/sentinelbot/sentinel/pkg/internal/extract"
	"github.com/sentinelbot/sentinel/pkg/internal/model"
)

// TestClassify_RuleOrder 规则顺序即优先级，首个命中胜出.
func TestClassify_RuleOrder(t *testing.T) {
	rules := extract.DefaultRules()

	cases := []struct {
		value string
		kind  model.FieldKind
		ok    bool
	}{
		// 含数字的邮箱归为 email，不是 password
		{"a.b@x.com1", model.FieldKindEmail, true},
		{"alice@example.com", model.FieldKindEmail, true},
		// 长度 8 恰好不过 password 门槛，落入 username
		{"user1234", model.FieldKindUsername, true},
		// 长度 9 且含数字，password
		{"user12345", model.FieldKindPassword, true},
		{"pw123456789", model.FieldKindPassword, true},
		{"plainuser", model.FieldKindUsername, true},
		// 超长但无数字，不是 password；含标点不是 username
		{"long-value-without-digits", "", false},
		// 分隔符使 username 规则失效
		{"user_name", "", false},
		{"", "", false},
	}

	for _, c := range cases {
		kind, ok := extract.Classify(rules, c.value)
		if ok != c.ok || kind != c.kind {
			t.Errorf("Classify(%q) = (%q, %v), want (%q, %v)", c.value, kind, ok, c.kind, c.ok)
		}
	}
}

// TestExtract_DropsUnmatchedCells 未命中规则的单元格不产生记录.
func TestExtract_DropsUnmatchedCells(t *testing.T) {
	e := extract.New()

	table := [][]string{
		{"alice@example.com", "pw123456789", "plainuser"},
		{"***", "", "   "},
	}

	fields := e.Extract(table)
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}

	wantKinds := []model.FieldKind{
		model.FieldKindEmail,
		model.FieldKindPassword,
		model.FieldKindUsername,
	}

	for i, f := range fields {
		if f.Kind != wantKinds[i] {
			t.Errorf("field %d kind = %s, want %s", i, f.Kind, wantKinds[i])
		}

		if f.Confidence != nil {
			t.Errorf("baseline classifier must leave confidence unset, got %v", *f.Confidence)
		}

		if f.ExtractedAt.IsZero() {
			t.Errorf("field %d missing extracted_at", i)
		}
	}
}

// TestExtract_TrimsWhitespace 单元格值先去除首尾空白再分类.
func TestExtract_TrimsWhitespace(t *testing.T) {
	e := extract.New()

	fields := e.Extract([][]string{{"  alice@example.com  "}})
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Value != "alice@example.com" {
		t.Errorf("value should be trimmed: %q", fields[0].Value)
	}
}

// TestFormatFor 声明类型与扩展名兜底共同决定解析格式.
func TestFormatFor(t *testing.T) {
	cases := []struct {
		mime   string
		name   string
		format extract.Format
		ok     bool
	}{
		{"text/csv", "a.csv", extract.FormatDelimited, true},
		{"text/csv; charset=utf-8", "a.csv", extract.FormatDelimited, true},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "a.xlsx", extract.FormatTabular, true},
		{"application/json", "a.json", extract.FormatStructured, true},
		// 声明缺失时按扩展名兜底
		{"application/octet-stream", "dump.tsv", extract.FormatDelimited, true},
		{"", "data.JSON", extract.FormatStructured, true},
		// 不可解析的类型
		{"image/png", "photo.png", "", false},
		{"application/pdf", "doc.pdf", "", false},
	}

	for _, c := range cases {
		format, ok := extract.FormatFor(c.mime, c.name)
		if ok != c.ok || format != c.format {
			t.Errorf("FormatFor(%q, %q) = (%q, %v), want (%q, %v)",
				c.mime, c.name, format, ok, c.format, c.ok)
		}
	}
}

// TestParse_DelimitedSniffing 分隔符从首行嗅探.
func TestParse_DelimitedSniffing(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"comma", "a@x.com,pw123456789,plainuser\nb@y.com,pw987654321,other1\n"},
		{"semicolon", "a@x.com;pw123456789;plainuser\nb@y.com;pw987654321;other1\n"},
		{"tab", "a@x.com\tpw123456789\tplainuser\n"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			table, err := extract.Parse(extract.FormatDelimited, strings.NewReader(c.input))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}

			if len(table) == 0 || len(table[0]) != 3 {
				t.Fatalf("expected 3 columns, got %+v", table)
			}

			if table[0][0] != "a@x.com" {
				t.Errorf("unexpected first cell: %q", table[0][0])
			}
		})
	}
}

// TestParse_Structured JSON 对象数组、单对象与标量数组都能展开.
func TestParse_Structured(t *testing.T) {
	input := `[{"email":"alice@example.com","pass":"pw123456789"},{"email":"bob@example.com","pass":"pw987654321"}]`

	table, err := extract.Parse(extract.FormatStructured, strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(table) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table))
	}

	// 非字符串标量被强制转为字符串表示
	table, err = extract.Parse(extract.FormatStructured, strings.NewReader(`{"id":42,"active":true,"note":null}`))
	if err != nil {
		t.Fatalf("parse object: %v", err)
	}

	if len(table) != 1 || len(table[0]) != 3 {
		t.Fatalf("expected 1 row of 3 cells, got %+v", table)
	}

	cells := strings.Join(table[0], "|")
	if !strings.Contains(cells, "42") || !strings.Contains(cells, "true") {
		t.Errorf("scalar coercion missing: %q", cells)
	}
}

// TestParse_MalformedStructured 非法 JSON 返回错误而非 panic.
func TestParse_MalformedStructured(t *testing.T) {
	_, err := extract.Parse(extract.FormatStructured, strings.NewReader(`{"broken`))
	if err == nil {
		t.Error("expected parse error for malformed JSON")
	}
}

// TestEndToEnd_ParseThenExtract 规格化场景：一行三个值各归一类.
func TestEndToEnd_ParseThenExtract(t *testing.T) {
	input := "alice@example.com,pw123456789,plainuser\n"

	table, err := extract.Parse(extract.FormatDelimited, strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	fields := extract.New().Extract(table)
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}

	kinds := map[model.FieldKind]string{}
	for _, f := range fields {
		kinds[f.Kind] = f.Value
	}

	if kinds[model.FieldKindEmail] != "alice@example.com" {
		t.Errorf("email = %q", kinds[model.FieldKindEmail])
	}

	if kinds[model.FieldKindPassword] != "pw123456789" {
		t.Errorf("password = %q", kinds[model.FieldKindPassword])
	}

	if kinds[model.FieldKindUsername] != "plainuser" {
		t.Errorf("username = %q", kinds[model.FieldKindUsername])
	}
}
