package transcription

import (
	"strings"

	"github.com/kbukum/scribe/errors"
)

// Vendor identifies a speech-recognition provider.
type Vendor string

const (
	VendorOpenAI      Vendor = "openai"
	VendorGroq        Vendor = "groq"
	VendorDeepgram    Vendor = "deepgram"
	VendorElevenLabs  Vendor = "elevenlabs"
	VendorSoniox      Vendor = "soniox"
	VendorAzureGlobal Vendor = "azure-global"
	VendorAzureCN     Vendor = "azure-cn"
	VendorAliyun      Vendor = "aliyun"
	VendorTencent     Vendor = "tencent"
	VendorVolcengine  Vendor = "volcengine"
	VendorIFlytek     Vendor = "iflytek"
)

// CredentialField describes one credential input a vendor needs.
type CredentialField struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	Optional    bool   `json:"optional,omitempty"`
	Secret      bool   `json:"secret"`
}

// VendorInfo is the catalogue entry for a vendor.
type VendorInfo struct {
	ID          Vendor            `json:"id"`
	DisplayName string            `json:"display_name"`
	Fields      []CredentialField `json:"fields"`
	Note        string            `json:"note,omitempty"`
}

func secret(key, label, placeholder string) CredentialField {
	return CredentialField{Key: key, Label: label, Placeholder: placeholder, Secret: true}
}

func plain(key, label, placeholder string, optional bool) CredentialField {
	return CredentialField{Key: key, Label: label, Placeholder: placeholder, Optional: optional}
}

var catalogue = []VendorInfo{
	{ID: VendorOpenAI, DisplayName: "OpenAI", Fields: []CredentialField{secret("api_key", "API Key", "sk-xxxxxxxx")}},
	{ID: VendorGroq, DisplayName: "Groq", Fields: []CredentialField{secret("api_key", "API Key", "gsk_xxxxxxxx")}},
	{ID: VendorDeepgram, DisplayName: "Deepgram", Fields: []CredentialField{secret("api_key", "API Key", "xxxxxxxx")}},
	{ID: VendorElevenLabs, DisplayName: "ElevenLabs", Fields: []CredentialField{secret("api_key", "Key", "xi-xxxxxxxx")}},
	{ID: VendorSoniox, DisplayName: "Soniox", Fields: []CredentialField{secret("api_key", "Key", "xxxxxxxx")}},
	{ID: VendorAzureGlobal, DisplayName: "微软-Global", Fields: []CredentialField{
		secret("key1", "密钥1", "xxxxxxxx"),
		{Key: "key2", Label: "密钥2", Placeholder: "xxxxxxxx", Optional: true, Secret: true},
		plain("region", "位置/区域", "eastus", false),
		plain("endpoint", "终结点", "https://eastus.api.cognitive.microsoft.com", true),
	}},
	{ID: VendorAzureCN, DisplayName: "微软-世纪互联", Fields: []CredentialField{
		secret("key1", "密钥1", "xxxxxxxx"),
		{Key: "key2", Label: "密钥2", Placeholder: "xxxxxxxx", Optional: true, Secret: true},
		plain("region", "位置/区域", "chinaeast2", false),
		plain("endpoint", "终结点", "https://chinaeast2.api.cognitive.azure.cn", true),
	}},
	{ID: VendorAliyun, DisplayName: "阿里云", Fields: []CredentialField{secret("api_key", "api_key", "sk-xxxxxxxx")}},
	{ID: VendorTencent, DisplayName: "腾讯云", Fields: []CredentialField{
		plain("appid", "appid", "1400xxxxxx", false),
		secret("secret_id", "SecretId", "AKIDxxxxxxxx"),
		secret("secret_key", "SecretKey", "xxxxxxxx"),
	}},
	{ID: VendorVolcengine, DisplayName: "火山云", Fields: []CredentialField{
		plain("app_id", "APP ID", "xxxxxxxx", false),
		secret("access_token", "Access Token", "xxxxxxxx"),
		{Key: "secret_key", Label: "Secret Key", Placeholder: "xxxxxxxx", Optional: true, Secret: true},
	}},
	{ID: VendorIFlytek, DisplayName: "讯飞", Fields: []CredentialField{
		plain("appid", "APPID", "xxxxxxxx", false),
		secret("access_key", "accessKey", "xxxxxxxx"),
		secret("access_secret", "accessSecret", "xxxxxxxx"),
	}, Note: "方言自由说ASR，语言参数：autodialect（自动识别中英及中文方言）"},
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
	return "", errors.UnsupportedVendor("asr", s)
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

// RequiredFields returns the keys of all non-optional credential fields.
func (v Vendor) RequiredFields() []string {
	info, _ := v.Info()
	var keys []string
	for _, f := range info.Fields {
		if !f.Optional {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// CheckCredentials verifies every required field for v is present.
func (v Vendor) CheckCredentials(creds Credentials) error {
	return creds.Require(v.RequiredFields()...)
}

func (v Vendor) String() string { return string(v) }
