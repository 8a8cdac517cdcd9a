package rule_test

import (
	"testing"

	"github.com/sentinelbot/sentinel/pkg/rule"
)

// fileEventStub 用于测试 ValidateStruct.
type fileEventStub struct {
	FileName string `rule:"required"`
	ByteSize int64  `rule:"min=0"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	engine := rule.Engine()
	if engine == nil {
		t.Error("Engine() returned nil")
	}
}

// TestValidateStruct 测试 ValidateStruct 对有效和无效结构体的验证.
func TestValidateStruct(t *testing.T) {
	valid := fileEventStub{FileName: "creds.csv", ByteSize: 128}
	if err := rule.ValidateStruct(valid); err != nil {
		t.Errorf("Expected no error for valid struct, got %v", err)
	}

	// 缺少 FileName
	invalid := fileEventStub{FileName: "", ByteSize: 128}
	if err := rule.ValidateStruct(invalid); err == nil {
		t.Error("Expected error for struct missing file name, got nil")
	}
}

// TestValidateVarSHA256Hex 测试自定义 sha256hex 规则.
func TestValidateVarSHA256Hex(t *testing.T) {
	okDigest := "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
	if err := rule.ValidateVar(okDigest, "sha256hex"); err != nil {
		t.Errorf("Expected no error for valid digest, got %v", err)
	}

	cases := []string{
		"",
		"abcd",
		"9F86D081884C7D659A2FEAA0C55AD015A3BF4F1B2B0B822CD15D6C15B0F00A08", // 大写不接受
		"zf86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
	}
	for _, c := range cases {
		if err := rule.ValidateVar(c, "sha256hex"); err == nil {
			t.Errorf("Expected error for %q, got nil", c)
		}
	}
}
