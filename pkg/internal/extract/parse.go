package extract

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/xuri/excelize/v2"
)

// Format 可解析的文件格式类别.
type Format string

const (
	FormatDelimited  Format = "delimited"  // 分隔符文本（CSV/TSV 等）
	FormatTabular    Format = "tabular"    // 电子表格（xlsx）
	FormatStructured Format = "structured" // 结构化记录（JSON）
)

// mimeFormats 声明的 MIME 类型到格式类别的映射.
var mimeFormats = map[string]Format{
	"text/csv":                  FormatDelimited,
	"text/plain":                FormatDelimited,
	"text/tab-separated-values": FormatDelimited,
	"application/csv":           FormatDelimited,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatTabular,
	"application/vnd.ms-excel":                                          FormatTabular,
	"application/json":                                                  FormatStructured,
}

// extFormats 扩展名兜底映射，声明类型缺失或过于宽泛时使用.
var extFormats = map[string]Format{
	".csv":  FormatDelimited,
	".tsv":  FormatDelimited,
	".txt":  FormatDelimited,
	".xlsx": FormatTabular,
	".xls":  FormatTabular,
	".json": FormatStructured,
}

// FormatFor 判断声明类型与文件名对应的解析格式.
// 其余类型只入库不抽取，返回 ok 为 false.
func FormatFor(mimeType string, fileName string) (Format, bool) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	if f, ok := mimeFormats[mt]; ok {
		return f, true
	}

	if f, ok := extFormats[strings.ToLower(path.Ext(fileName))]; ok {
		return f, true
	}

	return "", false
}

// Parse 将文件内容解析为矩形字符串表格.
// 解析失败返回 error，由调用方降级为零字段结局.
func Parse(format Format, r io.Reader) ([][]string, error) {
	switch format {
	case FormatDelimited:
		return parseDelimited(r)
	case FormatTabular:
		return parseTabular(r)
	case FormatStructured:
		return parseStructured(r)
	default:
		return nil, fmt.Errorf("unsupported parse format: %s", format)
	}
}

// delimiterCandidates 分隔符嗅探候选，按常见程度排列.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// parseDelimited 解析分隔符文本，分隔符从首行嗅探.
func parseDelimited(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read delimited header: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(head)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited content: %w", err)
	}

	return rows, nil
}

// sniffDelimiter 统计首行各候选分隔符出现次数，取最多者，默认逗号.
func sniffDelimiter(head []byte) rune {
	line := string(head)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	best := ','
	bestCount := 0

	for _, cand := range delimiterCandidates {
		if n := strings.Count(line, string(cand)); n > bestCount {
			best = cand
			bestCount = n
		}
	}

	return best
}

// parseTabular 解析 xlsx 电子表格，所有工作表的行拼成一张表.
func parseTabular(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	var table [][]string

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}

		table = append(table, rows...)
	}

	return table, nil
}

// parseStructured 解析 JSON 结构化记录.
// 对象数组每个对象一行，单个对象一行，其余标量/数组元素逐个成单元格.
func parseStructured(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read structured content: %w", err)
	}

	var doc any
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse structured content: %w", err)
	}

	switch v := doc.(type) {
	case []any:
		table := make([][]string, 0, len(v))
		for _, item := range v {
			table = append(table, recordRow(item))
		}

		return table, nil
	default:
		return [][]string{recordRow(doc)}, nil
	}
}

// recordRow 将一条记录展开为一行字符串单元格.
func recordRow(item any) []string {
	switch v := item.(type) {
	case map[string]any:
		row := make([]string, 0, len(v))
		for _, val := range v {
			row = append(row, coerceString(val))
		}

		return row
	case []any:
		row := make([]string, 0, len(v))
		for _, val := range v {
			row = append(row, coerceString(val))
		}

		return row
	default:
		return []string{coerceString(item)}
	}
}

// coerceString 非字符串标量转为其字符串表示，嵌套结构丢弃.
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return ""
	}
}
