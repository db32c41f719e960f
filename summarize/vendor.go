package summarize

import (
	"strings"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/transcription"
)

// Vendor identifies a summary (chat-completion) vendor.
type Vendor string

const (
	VendorOpenAI        Vendor = "openai"
	VendorGroq          Vendor = "groq"
	VendorZhipu         Vendor = "zhipu"
	VendorMinimaxCN     Vendor = "minimax-cn"
	VendorMinimaxGlobal Vendor = "minimax-global"
	VendorTencent       Vendor = "tencent"
	VendorAliyun        Vendor = "aliyun"
)

// VendorInfo is the catalogue entry for a summary vendor. Credential fields
// share the transcription catalogue's shape.
type VendorInfo struct {
	ID          Vendor                          `json:"id"`
	DisplayName string                          `json:"display_name"`
	Fields      []transcription.CredentialField `json:"fields"`
}

// endpoint is where a vendor's chat completions live.
type endpoint struct {
	baseURL string
	model   string
}

var endpoints = map[Vendor]endpoint{
	VendorOpenAI:        {"https://api.openai.com/v1", "gpt-4o"},
	VendorGroq:          {"https://api.groq.com/openai/v1", "llama-3.3-70b-versatile"},
	VendorZhipu:         {"https://open.bigmodel.cn/api/paas/v4", "glm-4-flash"},
	VendorMinimaxCN:     {"https://api.minimax.chat/v1", "MiniMax-Text-01"},
	VendorMinimaxGlobal: {"https://api.minimaxi.chat/v1", "MiniMax-Text-01"},
	VendorTencent:       {"https://api.lkeap.cloud.tencent.com/v1", "deepseek-v3"},
	VendorAliyun:        {"https://dashscope.aliyuncs.com/compatible-mode/v1", "qwen-plus"},
}

func field(key, label, placeholder string, optional, secret bool) transcription.CredentialField {
	return transcription.CredentialField{Key: key, Label: label, Placeholder: placeholder, Optional: optional, Secret: secret}
}

var catalogue = []VendorInfo{
	{ID: VendorOpenAI, DisplayName: "OpenAI", Fields: []transcription.CredentialField{field("api_key", "API Key", "sk-xxxxxxxx", false, true)}},
	{ID: VendorGroq, DisplayName: "Groq", Fields: []transcription.CredentialField{field("api_key", "API Key", "gsk_xxxxxxxx", false, true)}},
	{ID: VendorZhipu, DisplayName: "智谱", Fields: []transcription.CredentialField{field("api_key", "API Key", "xxxxxxxx.xxxxxxxx", false, true)}},
	{ID: VendorMinimaxCN, DisplayName: "Minimax-CN", Fields: []transcription.CredentialField{
		field("api_key", "接口密钥", "xxxxxxxx", false, true),
		field("group_id", "Group ID", "xxxxxxxx", false, false),
	}},
	{ID: VendorMinimaxGlobal, DisplayName: "Minimax-Global", Fields: []transcription.CredentialField{
		field("group_id", "Group ID", "xxxxxxxx", false, false),
		field("api_key", "Key", "xxxxxxxx", false, true),
	}},
	{ID: VendorTencent, DisplayName: "腾讯云", Fields: []transcription.CredentialField{
		field("appid", "appid", "1400xxxxxx", true, false),
		field("secret_id", "SecretId", "AKIDxxxxxxxx", true, true),
		field("secret_key", "SecretKey", "xxxxxxxx", false, true),
	}},
	{ID: VendorAliyun, DisplayName: "阿里云", Fields: []transcription.CredentialField{
		field("api_key", "api_key", "sk-xxxxxxxx", false, true),
		field("url", "url", "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions", true, false),
	}},
}

// Vendors returns the catalogue in display order.
func Vendors() []VendorInfo {
	out := make([]VendorInfo, len(catalogue))
	copy(out, catalogue)
	return out
}

// ParseVendor accepts a vendor id or its display name.
func ParseVendor(s string) (Vendor, error) {
	s = strings.TrimSpace(s)
	for _, info := range catalogue {
		if strings.EqualFold(string(info.ID), s) || info.DisplayName == s {
			return info.ID, nil
		}
	}
	return "", errors.UnsupportedVendor("llm", s)
}

// Info returns the catalogue entry for v.
func (v Vendor) Info() (VendorInfo, bool) {
	for _, info := range catalogue {
		if info.ID == v {
			return info, true
		}
	}
	return VendorInfo{}, false
}

// DisplayName returns the human-readable vendor name.
func (v Vendor) DisplayName() string {
	if info, ok := v.Info(); ok {
		return info.DisplayName
	}
	return string(v)
}

// CheckCredentials verifies every required field for v is present.
func (v Vendor) CheckCredentials(creds transcription.Credentials) error {
	info, _ := v.Info()
	var keys []string
	for _, f := range info.Fields {
		if !f.Optional {
			keys = append(keys, f.Key)
		}
	}
	return creds.Require(keys...)
}

func (v Vendor) String() string { return string(v) }
