// Package extract 实现对表格化文件内容的启发式字段分类与抽取.
package extract

import (
	"strings"
	"unicode"

	"github.com/sentinelbot/sentinel/pkg/internal/model"
)

// passwordMinLength password-like 规则的长度下限（严格大于）.
const passwordMinLength = 8

// Rule 一条分类规则：谓词命中则单元格归入对应类别.
type Rule struct {
	Kind  model.FieldKind
	Match func(value string) bool
}

// DefaultRules 返回按优先级排列的规则表.
// 顺序即语义：首个命中的规则胜出，每个单元格至多归入一类.
// 含数字的邮箱必须归为 email 而非 password，因此 email 规则在前，顺序不可调换.
func DefaultRules() []Rule {
	return []Rule{
		{
			Kind: model.FieldKindEmail,
			Match: func(v string) bool {
				return strings.Contains(v, "@") && strings.Contains(v, ".")
			},
		},
		{
			Kind: model.FieldKindPassword,
			Match: func(v string) bool {
				return len(v) > passwordMinLength && containsDigit(v)
			},
		},
		{
			Kind: model.FieldKindUsername,
			Match: isAlphanumeric,
		},
	}
}

// Classify 按规则表顺序对单个值分类，无规则命中时 ok 为 false.
func Classify(rules []Rule, value string) (model.FieldKind, bool) {
	for _, r := range rules {
		if r.Match(value) {
			return r.Kind, true
		}
	}

	return "", false
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}

	return false
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}
