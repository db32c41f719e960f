package validation

import (
	"testing"

	"github.com/kbukum/scribe/errors"
)

func TestValidatorRequired(t *testing.T) {
	if New().Required("asr_vendor", "deepgram").HasErrors() {
		t.Error("expected no errors for valid input")
	}
	if !New().Required("asr_vendor", "   ").HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorRequiredKeys(t *testing.T) {
	creds := map[string]string{"appid": "123", "secret_id": "", "secret_key": "k"}
	err := New().RequiredKeys("asr_creds", creds, "appid", "secret_id", "secret_key").Validate()
	if err == nil {
		t.Fatal("expected error for blank secret_id")
	}
	if err.Code != errors.ErrCodeMissingField {
		t.Errorf("expected MISSING_FIELD, got %s", err.Code)
	}
	if err.Details["field"] != "asr_creds.secret_id" {
		t.Errorf("expected field asr_creds.secret_id, got %v", err.Details["field"])
	}
}

func TestValidatorInvalidInput(t *testing.T) {
	err := New().
		OneOf("llm_vendor", "bard", []string{"openai", "zhipu"}).
		MaxSize("file", 2048, 1024).
		Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if err.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", err.Code)
	}
	fields, ok := err.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors, got %v", err.Details["fields"])
	}
}

func TestValidatorNoErrors(t *testing.T) {
	v := New().MaxLength("name", "call.mp3", 255).Custom(true, "x", "never")
	if v.Validate() != nil {
		t.Error("expected nil error")
	}
}

type uploadForm struct {
	Filename  string `form:"filename" validate:"required,mediaext"`
	ASRVendor string `form:"asr_vendor" validate:"required"`
	Note      string `json:"note" validate:"max=5"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name  string
		form  uploadForm
		code  errors.ErrorCode
		field string
	}{
		{"valid", uploadForm{Filename: "call.MP3", ASRVendor: "openai"}, "", ""},
		{"missing vendor", uploadForm{Filename: "call.mp3"}, errors.ErrCodeMissingField, "asr_vendor"},
		{"bad extension", uploadForm{Filename: "notes.txt", ASRVendor: "openai"}, errors.ErrCodeInvalidInput, ""},
		{"json tag name", uploadForm{Filename: "a.wav", ASRVendor: "openai", Note: "toolong"}, errors.ErrCodeInvalidInput, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(tc.form)
			if tc.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			appErr, ok := errors.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != tc.code {
				t.Errorf("expected %s, got %s", tc.code, appErr.Code)
			}
			if tc.field != "" && appErr.Details["field"] != tc.field {
				t.Errorf("expected field %q, got %v", tc.field, appErr.Details["field"])
			}
		})
	}
}

func TestIsMediaExtension(t *testing.T) {
	for _, ext := range []string{"mp3", "mpga", "flac"} {
		if !IsMediaExtension(ext) {
			t.Errorf("expected %q to be accepted", ext)
		}
	}
	if IsMediaExtension("exe") {
		t.Error("expected exe to be rejected")
	}
}
