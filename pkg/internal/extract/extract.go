package extract

import (
	"strings"
	"time"

	"github.com/sentinelbot/sentinel/pkg/internal/model"
	"github.com/sentinelbot/sentinel/pkg/metrics"
)

// Extractor 按固定规则表对表格单元格分类.
type Extractor struct {
	rules []Rule
}

// New 创建使用默认规则表的抽取器.
func New() *Extractor {
	return &Extractor{rules: DefaultRules()}
}

// NewWithRules 创建使用自定义规则表的抽取器，规则顺序即优先级.
func NewWithRules(rules []Rule) *Extractor {
	return &Extractor{rules: rules}
}

// Extract 遍历表格所有单元格，对每个非空值做规则分类.
// 未命中任何规则的单元格被丢弃.基线分类器不给出置信度，Confidence 保持 NULL.
func (e *Extractor) Extract(table [][]string) []model.FieldRecord {
	start := time.Now()
	now := start.UTC()

	var fields []model.FieldRecord

	for _, row := range table {
		for _, cell := range row {
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}

			kind, ok := Classify(e.rules, value)
			if !ok {
				continue
			}

			fields = append(fields, model.FieldRecord{
				Kind:        kind,
				Value:       value,
				ExtractedAt: now,
			})

			metrics.FieldsExtracted.WithLabelValues(string(kind)).Inc()
		}
	}

	metrics.ExtractDuration.Observe(time.Since(start).Seconds())

	return fields
}
