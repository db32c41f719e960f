// Package validation checks request input before any vendor is contacted.
//
// Struct tag validation covers bound request forms:
//
//	type processForm struct {
//	    ASRVendor string `form:"asr_vendor" validate:"required"`
//	}
//	err := validation.Struct(form)
//
// The fluent Validator covers values that only exist after parsing, such as
// credential maps:
//
//	err := validation.New().RequiredKeys("asr_creds", creds, "api_key").Validate()
package validation
